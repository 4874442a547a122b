package probe

import "github.com/deploymenttheory/go-btrfs/pkg/app"

// Validate validates a probe request
func (r *Request) Validate() error {
	if err := r.Target.Validate(); err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid device target", err)
	}
	return nil
}
