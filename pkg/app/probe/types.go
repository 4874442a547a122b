package probe

import "github.com/deploymenttheory/go-btrfs/pkg/app"

// Request represents a probe request
type Request struct {
	Target app.DeviceTarget

	// Examine every superblock mirror instead of the primary copy only
	AllMirrors bool
}

// Response represents probe results
type Response struct {
	Device     string `json:"device" yaml:"device"`
	Recognized bool   `json:"recognized" yaml:"recognized"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	FSID       string `json:"fsid,omitempty" yaml:"fsid,omitempty"`
	Generation uint64 `json:"generation,omitempty" yaml:"generation,omitempty"`

	// Superblock copy that was selected, -1 when none
	Mirror         int    `json:"mirror" yaml:"mirror"`
	SuperblockAddr uint64 `json:"superblock_addr" yaml:"superblock_addr"`

	// Copies that fit on the device and were read
	Examined int            `json:"examined" yaml:"examined"`
	Rejected []RejectedCopy `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// RejectedCopy is a superblock copy that failed validation
type RejectedCopy struct {
	Mirror int    `json:"mirror" yaml:"mirror"`
	Addr   uint64 `json:"addr" yaml:"addr"`
	Reason string `json:"reason" yaml:"reason"`
}
