package info

import (
	"fmt"
	"time"

	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/internal/types"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// Request represents a filesystem information request
type Request struct {
	Target app.DeviceTarget

	// List the chunk map entries
	ShowChunks bool
}

// Response represents filesystem information
type Response struct {
	Device     string                      `json:"device" yaml:"device"`
	Attributes interfaces.VolumeAttributes `json:"attributes" yaml:"attributes"`
	RootInode  *InodeSummary               `json:"root_inode,omitempty" yaml:"root_inode,omitempty"`
	Chunks     []types.ChunkEntry          `json:"chunks,omitempty" yaml:"chunks,omitempty"`
}

// InodeSummary describes the root directory inode
type InodeSummary struct {
	Inode   uint64    `json:"inode" yaml:"inode"`
	Mode    uint32    `json:"mode" yaml:"mode"`
	Size    uint64    `json:"size" yaml:"size"`
	NLink   uint32    `json:"nlink" yaml:"nlink"`
	ModTime time.Time `json:"mtime" yaml:"mtime"`
}

// UsagePercent returns the share of the filesystem in use
func (r *Response) UsagePercent() float64 {
	if r.Attributes.TotalBytes == 0 {
		return 0
	}
	return float64(r.Attributes.BytesUsed) * 100 / float64(r.Attributes.TotalBytes)
}

// formatBytes formats byte count as human readable
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
