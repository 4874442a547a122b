package list

import (
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// Handle lists the root directory of the default filesystem tree
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vol, err := app.MountVolume(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	defer vol.Unmount()

	entries, err := vol.RootDirEntries()
	if err != nil {
		return nil, app.WrapError("cannot list root directory", err)
	}

	response := &Response{
		Device:    req.Target.String(),
		Directory: vol.RootDirID(),
		Entries:   []interfaces.DirectoryEntry{},
	}
	for _, entry := range entries {
		if matches(req, entry) {
			response.Entries = append(response.Entries, entry)
		}
	}
	response.Total = len(response.Entries)

	// Truncate results if over limit
	if req.MaxResults > 0 && len(response.Entries) > req.MaxResults {
		response.Entries = response.Entries[:req.MaxResults]
		response.Truncated = true
	}

	ctx.Log("Listed %d of %d entries", response.Total, len(entries))
	return response, nil
}

func matches(req *Request, entry interfaces.DirectoryEntry) bool {
	if len(req.Types) > 0 {
		found := false
		for _, t := range req.Types {
			if strings.EqualFold(t, entry.TypeName) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if req.NamePattern != "" {
		matched, _ := filepath.Match(strings.ToLower(req.NamePattern), strings.ToLower(entry.Name))
		if !matched {
			return false
		}
	}
	return true
}
