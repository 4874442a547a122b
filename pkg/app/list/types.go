package list

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// Request represents a root directory listing request
type Request struct {
	Target app.DeviceTarget

	// Filtering
	NamePattern string
	Types       []string
	MaxResults  int
}

// Response represents listing results
type Response struct {
	Device    string                      `json:"device" yaml:"device"`
	Directory uint64                      `json:"directory" yaml:"directory"`
	Entries   []interfaces.DirectoryEntry `json:"entries" yaml:"entries"`
	Total     int                         `json:"total" yaml:"total"`
	Truncated bool                        `json:"truncated" yaml:"truncated"`
}

// validTypes are the type names a listing can be filtered by
var validTypes = map[string]bool{
	"file":     true,
	"dir":      true,
	"chardev":  true,
	"blockdev": true,
	"fifo":     true,
	"socket":   true,
	"symlink":  true,
	"xattr":    true,
	"unknown":  true,
}

// formatSize returns a human-readable size string
func formatSize(size uint64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := uint64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// formatMode renders permission bits the way ls does, prefixed by the
// entry type
func formatMode(typeName string, mode uint32) string {
	kind := byte('-')
	switch typeName {
	case "dir":
		kind = 'd'
	case "symlink":
		kind = 'l'
	case "chardev":
		kind = 'c'
	case "blockdev":
		kind = 'b'
	case "fifo":
		kind = 'p'
	case "socket":
		kind = 's'
	}

	const rwx = "rwxrwxrwx"
	out := []byte{kind}
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			out = append(out, rwx[i])
		} else {
			out = append(out, '-')
		}
	}
	return string(out)
}
