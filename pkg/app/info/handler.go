package info

import "github.com/deploymenttheory/go-btrfs/pkg/app"

// Handle mounts the target and reports its attributes
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vol, err := app.MountVolume(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	defer vol.Unmount()

	response := &Response{
		Device:     req.Target.String(),
		Attributes: vol.Attributes(),
	}

	inode, err := vol.RootInode()
	if err != nil {
		return nil, app.WrapError("cannot read root directory inode", err)
	}
	response.RootInode = &InodeSummary{
		Inode:   vol.RootDirID(),
		Mode:    inode.Mode,
		Size:    inode.Size,
		NLink:   inode.NLink,
		ModTime: inode.MTime.Time(),
	}

	if req.ShowChunks {
		response.Chunks = vol.ChunkMap().Entries()
	}

	ctx.Log("Filesystem %q generation %d, %d chunks", response.Attributes.Label, response.Attributes.Generation, response.Attributes.Chunks)
	return response, nil
}
