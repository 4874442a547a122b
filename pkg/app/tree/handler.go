package tree

import (
	"errors"

	"github.com/deploymenttheory/go-btrfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// errLimit stops the walk once MaxItems leaf items were collected.
var errLimit = errors.New("item limit reached")

// Handle mounts the target and dumps every block of the requested tree,
// parents before children
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vol, err := app.MountVolume(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	defer vol.Unmount()

	root, level, err := vol.TreeRoot(req.Tree)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "cannot select tree", err)
	}

	response := &Response{
		Device: req.Target.String(),
		Tree:   req.Tree,
		Root:   uint64(root),
		Level:  level,
		Blocks: []Block{},
	}

	err = vol.WalkTree(root, func(tb *btrees.TreeBlock, depth int) error {
		block := Block{
			Logical:  uint64(tb.ByteNr()),
			Level:    tb.Level(),
			Depth:    depth,
			Owner:    tb.Owner(),
			NumItems: tb.Header.NumItems,
		}
		if tb.Truncated {
			block.Partial = tb.TruncatedReason
		}

		for _, p := range tb.Ptrs {
			block.Ptrs = append(block.Ptrs, KeyPointer{
				Key:        p.Key.String(),
				BlockPtr:   uint64(p.BlockPtr),
				Generation: p.Generation,
			})
		}

		var limited bool
		for _, it := range tb.Items {
			if req.MaxItems > 0 && response.Items >= req.MaxItems {
				limited = true
				break
			}
			block.Items = append(block.Items, Item{
				Key:      it.Key.String(),
				ObjectID: it.Key.ObjectID,
				Type:     it.Key.ItemType,
				Offset:   it.Key.Offset,
				Size:     it.Size,
			})
			response.Items++
		}

		response.Blocks = append(response.Blocks, block)
		if limited {
			return errLimit
		}
		return nil
	})
	if errors.Is(err, errLimit) {
		response.Truncated = true
		err = nil
	}
	if err != nil {
		return nil, app.WrapError("cannot walk "+req.Tree+" tree", err)
	}

	ctx.Log("Walked %d blocks of the %s tree", len(response.Blocks), req.Tree)
	return response, nil
}
