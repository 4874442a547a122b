package info

import "github.com/deploymenttheory/go-btrfs/pkg/app"

// Validate validates an information request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device target", err)
	}
	return nil
}
