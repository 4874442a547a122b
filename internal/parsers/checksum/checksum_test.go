package checksum

import (
	"encoding/binary"
	"hash/crc32"
	"testing"
)

func TestChecksumKnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint32
	}{
		// Standard CRC-32C check value.
		{"check string", []byte("123456789"), 0xE3069283},
		{"empty", nil, 0x00000000},
		{"32 zero bytes", make([]byte, 32), 0x8A9136AA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(Seed, tt.data); got != tt.expected {
				t.Errorf("Checksum() = 0x%08X, want 0x%08X", got, tt.expected)
			}
		})
	}
}

func TestChecksumSeed(t *testing.T) {
	data := []byte("btrfs")
	table := crc32.MakeTable(crc32.Castagnoli)

	if got, want := Checksum(Seed, data), crc32.Checksum(data, table); got != want {
		t.Errorf("Checksum(Seed) = 0x%08X, want 0x%08X", got, want)
	}
	if Checksum(0, data) == Checksum(Seed, data) {
		t.Error("different seeds produced the same checksum")
	}
}

func TestNameHash(t *testing.T) {
	tests := []struct {
		name     string
		expected uint32
	}{
		// The root tree's "default" DIR_ITEM lives at key offset 2378154706.
		{"default", 0x8DBFC2D2},
		{"hello.txt", 0x415FEB59},
		{"docs", 0xD14F6F18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NameHash(tt.name); got != tt.expected {
				t.Errorf("NameHash(%q) = 0x%08X, want 0x%08X", tt.name, got, tt.expected)
			}
		})
	}
}

func TestSealAndVerifyBlock(t *testing.T) {
	block := make([]byte, 4096)
	for i := 32; i < len(block); i++ {
		block[i] = byte(i * 7)
	}
	block[10] = 0xAA // stale bytes in the unused part of the field

	SealBlock(block)

	if !VerifyBlock(block) {
		t.Fatal("VerifyBlock() = false after SealBlock()")
	}
	if block[10] != 0 {
		t.Error("SealBlock() did not clear the checksum field tail")
	}
	if got := binary.LittleEndian.Uint32(block[0:4]); got != Checksum(Seed, block[32:]) {
		t.Errorf("stored checksum 0x%08X does not match covered range", got)
	}

	inspector := NewBlockInspector(block)
	if inspector.Stored() != inspector.Computed() {
		t.Errorf("Stored() = 0x%08X, Computed() = 0x%08X", inspector.Stored(), inspector.Computed())
	}
}

func TestVerifyBlockDetectsFlips(t *testing.T) {
	block := make([]byte, 256)
	for i := range block {
		block[i] = byte(i)
	}
	SealBlock(block)

	for i := 0; i < len(block); i++ {
		corrupted := append([]byte(nil), block...)
		corrupted[i] ^= 0x01
		// Bytes 4..31 are outside both the stored value and the covered range.
		if i >= 4 && i < 32 {
			if !VerifyBlock(corrupted) {
				t.Errorf("flip at byte %d outside the covered range broke verification", i)
			}
			continue
		}
		if VerifyBlock(corrupted) {
			t.Errorf("flip at byte %d was not detected", i)
		}
	}
}

func TestVerifyBlockShort(t *testing.T) {
	if VerifyBlock(make([]byte, 31)) {
		t.Error("VerifyBlock() = true for a block shorter than the checksum field")
	}
}

func BenchmarkChecksum(b *testing.B) {
	data := make([]byte, 16384)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Checksum(Seed, data)
	}
}
