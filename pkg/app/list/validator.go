package list

import (
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// Validate validates a listing request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device target", err)
	}

	if r.NamePattern != "" {
		if _, err := filepath.Match(r.NamePattern, ""); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid name pattern", err)
		}
	}

	for _, t := range r.Types {
		if !validTypes[strings.ToLower(t)] {
			return app.NewError(app.ErrCodeInvalidInput, "unknown entry type: "+t, nil)
		}
	}

	if r.MaxResults < 0 || r.MaxResults > 100000 {
		return app.NewError(app.ErrCodeInvalidInput, "max results must be between 0 and 100000", nil)
	}

	return nil
}
