package probe

import (
	"errors"

	"github.com/deploymenttheory/go-btrfs/internal/services"
	"github.com/deploymenttheory/go-btrfs/internal/types"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// Handle checks whether the target holds a btrfs filesystem. A device
// without a valid superblock is not an error: the response reports it as
// not recognized.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dev, err := app.OpenDevice(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	opts := app.MountOptions(ctx)
	opts.CheckMirrors = opts.CheckMirrors || req.AllMirrors

	response := &Response{Device: req.Target.String(), Mirror: -1}
	located, err := services.LocateSuperblock(dev, opts)
	if err != nil {
		if !errors.Is(err, types.ErrNotRecognized) {
			return nil, app.WrapError("cannot probe "+req.Target.String(), err)
		}
		ctx.Log("No valid superblock on %s: %v", req.Target.String(), err)
		return response, nil
	}

	sb := located.Superblock()
	response.Recognized = true
	response.Label = sb.LabelString()
	response.FSID = sb.FSID.String()
	response.Generation = sb.Generation
	response.Mirror = located.Mirror
	response.SuperblockAddr = uint64(located.Addr)
	response.Examined = located.Examined
	for _, r := range located.Rejected {
		response.Rejected = append(response.Rejected, RejectedCopy{
			Mirror: r.Mirror,
			Addr:   uint64(r.Addr),
			Reason: r.Reason.Error(),
		})
	}
	return response, nil
}
