package superblock

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/deploymenttheory/go-btrfs/internal/imagebuilder"
	"github.com/deploymenttheory/go-btrfs/internal/parsers/checksum"
	"github.com/deploymenttheory/go-btrfs/internal/types"
)

// createTestSuperblockData packs and seals a superblock with a populated
// system chunk array and backup roots.
func createTestSuperblockData(t *testing.T) (*types.Superblock, []byte) {
	t.Helper()

	b := imagebuilder.New(0x20000, imagebuilder.Options{
		NodeSize:   16384,
		Generation: 42,
		Label:      "testvol",
		FSID:       imagebuilder.SampleFSID,
	})
	if err := b.AddSystemChunk(0x1500000, 0x800000, 0x1500000); err != nil {
		t.Fatalf("AddSystemChunk() error = %v", err)
	}
	sb := b.Superblock()
	sb.RootTree = 0x1D04000
	sb.ChunkTree = 0x1504000
	sb.RootLevel = 1
	sb.BytesUsed = 0x120000
	sb.SuperRoots[0].TreeRoot = 0x1D04000
	sb.SuperRoots[0].TreeRootGen = 42
	sb.SuperRoots[3].FSRootLevel = 2
	sb.ByteNr = types.SuperblockOffsets[0]

	raw, err := types.Pack(sb)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	checksum.SealBlock(raw)
	copy(sb.Csum[:], raw[:types.CsumSize])
	return sb, raw
}

func TestParseRoundTrip(t *testing.T) {
	want, raw := createTestSuperblockData(t)

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	repacked, err := types.Pack(got)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if diff := cmp.Diff(raw, repacked); diff != "" {
		t.Errorf("repacked bytes differ (-want +got):\n%s", diff)
	}
}

func TestFieldOffsets(t *testing.T) {
	_, raw := createTestSuperblockData(t)

	tests := []struct {
		name   string
		offset int
		want   []byte
	}{
		{"magic", 0x40, []byte(types.Magic)},
		{"generation", 0x48, []byte{42, 0, 0, 0, 0, 0, 0, 0}},
		{"nodesize", 0x94, []byte{0x00, 0x40, 0x00, 0x00}},
		{"root level", 0xC6, []byte{1}},
		{"label", 0x12B, []byte("testvol\x00")},
		{"sys chunk array key type", 0x32B + 8, []byte{types.ChunkItemKey}},
		{"first backup tree root", 0xB2B, []byte{0x00, 0x40, 0xD0, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := raw[tt.offset : tt.offset+len(tt.want)]
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bytes at 0x%x mismatch (-want +got):\n%s", tt.offset, diff)
			}
		})
	}
}

func TestNewSuperblockReader(t *testing.T) {
	want, raw := createTestSuperblockData(t)

	reader, err := NewSuperblockReader(raw)
	if err != nil {
		t.Fatalf("NewSuperblockReader() error = %v", err)
	}

	if reader.Label() != "testvol" {
		t.Errorf("Label() = %q, want %q", reader.Label(), "testvol")
	}
	if reader.FSID() != imagebuilder.SampleFSID {
		t.Errorf("FSID() = %s, want %s", reader.FSID(), imagebuilder.SampleFSID)
	}
	if reader.Generation() != 42 {
		t.Errorf("Generation() = %d, want 42", reader.Generation())
	}
	if reader.NodeSize() != 16384 {
		t.Errorf("NodeSize() = %d, want 16384", reader.NodeSize())
	}
	if reader.RootTree() != want.RootTree {
		t.Errorf("RootTree() = 0x%x, want 0x%x", reader.RootTree(), want.RootTree)
	}
	if reader.ChunkTree() != want.ChunkTree {
		t.Errorf("ChunkTree() = 0x%x, want 0x%x", reader.ChunkTree(), want.ChunkTree)
	}
	if reader.NumDevices() != 1 {
		t.Errorf("NumDevices() = %d, want 1", reader.NumDevices())
	}
	if len(reader.Raw()) != types.SuperblockSize {
		t.Errorf("Raw() length = %d", len(reader.Raw()))
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(raw []byte)
		reseal  bool
		wantErr error
	}{
		{
			name:    "bad magic",
			mutate:  func(raw []byte) { copy(raw[0x40:], "_BHRfS_X") },
			reseal:  true,
			wantErr: ErrBadMagic,
		},
		{
			name:    "xxhash checksums",
			mutate:  func(raw []byte) { raw[0xC4] = byte(types.CsumTypeXXHash) },
			reseal:  true,
			wantErr: ErrUnsupportedChecksum,
		},
		{
			name:    "stale checksum",
			mutate:  func(raw []byte) { raw[0x48]++ },
			wantErr: ErrChecksumMismatch,
		},
		{
			name:    "zero node size",
			mutate:  func(raw []byte) { binary.LittleEndian.PutUint32(raw[0x94:], 0) },
			reseal:  true,
			wantErr: ErrBadGeometry,
		},
		{
			name:    "node size not a power of two",
			mutate:  func(raw []byte) { binary.LittleEndian.PutUint32(raw[0x94:], 12288) },
			reseal:  true,
			wantErr: ErrBadGeometry,
		},
		{
			name:    "node size above 64KiB",
			mutate:  func(raw []byte) { binary.LittleEndian.PutUint32(raw[0x94:], 128*1024) },
			reseal:  true,
			wantErr: ErrBadGeometry,
		},
		{
			name:    "node size below sector size",
			mutate:  func(raw []byte) { binary.LittleEndian.PutUint32(raw[0x94:], 2048) },
			reseal:  true,
			wantErr: ErrBadGeometry,
		},
		{
			name:    "zero sector size",
			mutate:  func(raw []byte) { binary.LittleEndian.PutUint32(raw[0x90:], 0) },
			reseal:  true,
			wantErr: ErrBadGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, raw := createTestSuperblockData(t)
			tt.mutate(raw)
			if tt.reseal {
				checksum.SealBlock(raw)
			}

			_, err := NewSuperblockReader(raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSuperblockReader() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, types.ErrNotRecognized) {
				t.Errorf("NewSuperblockReader() error = %v, want ErrNotRecognized", err)
			}
		})
	}
}

func TestValidateDetectsEveryByteFlip(t *testing.T) {
	_, raw := createTestSuperblockData(t)

	for i := types.CsumSize; i < types.SuperblockSize; i++ {
		corrupted := append([]byte(nil), raw...)
		corrupted[i] ^= 0x80

		_, err := NewSuperblockReader(corrupted)
		if !errors.Is(err, types.ErrNotRecognized) {
			t.Fatalf("flip at byte 0x%x: error = %v, want ErrNotRecognized", i, err)
		}
	}
}

func TestParseShortData(t *testing.T) {
	_, err := Parse(make([]byte, types.SuperblockSize-1))
	if !errors.Is(err, ErrTooShort) || !errors.Is(err, types.ErrNotRecognized) {
		t.Errorf("Parse() error = %v, want ErrTooShort", err)
	}
}

func BenchmarkNewSuperblockReader(b *testing.B) {
	builder := imagebuilder.New(0x20000, imagebuilder.Options{})
	if err := builder.WriteSuperblock(0); err != nil {
		b.Fatal(err)
	}
	raw := builder.Bytes()[types.SuperblockOffsets[0] : types.SuperblockOffsets[0]+types.SuperblockSize]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewSuperblockReader(raw); err != nil {
			b.Fatal(err)
		}
	}
}
