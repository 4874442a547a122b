package tree

import (
	"fmt"

	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// Validate validates a tree dump request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device target", err)
	}

	switch r.Tree {
	case TreeRoot, TreeChunk, TreeFS:
	default:
		return app.NewError(app.ErrCodeInvalidInput,
			fmt.Sprintf("unknown tree %q, use %s, %s or %s", r.Tree, TreeRoot, TreeChunk, TreeFS), nil)
	}

	if r.MaxItems < 0 {
		return app.NewError(app.ErrCodeInvalidInput, "max items must not be negative", nil)
	}
	return nil
}
