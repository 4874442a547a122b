package types

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// Unpack decodes the little-endian packed form of an on-disk structure into
// v, which must be a pointer. data may be longer than the structure.
func Unpack(data []byte, v interface{}) error {
	if err := restruct.Unpack(data, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("failed to unpack %T: %w", v, err)
	}
	return nil
}

// Pack encodes v in its little-endian packed form.
func Pack(v interface{}) ([]byte, error) {
	data, err := restruct.Pack(binary.LittleEndian, v)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %T: %w", v, err)
	}
	return data, nil
}

// SizeOf returns the packed size of v.
func SizeOf(v interface{}) (int, error) {
	return restruct.SizeOf(v)
}
