package list

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-btrfs/internal/imagebuilder"
	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

func newTestContext() *app.Context {
	ctx := app.NewContext()
	ctx.Logger.SetOutput(io.Discard)
	return ctx
}

func createTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.img")
	require.NoError(t, imagebuilder.WriteSampleFile(path))
	return path
}

func names(resp *Response) []string {
	var out []string
	for _, e := range resp.Entries {
		out = append(out, e.Name)
	}
	return out
}

func TestHandle(t *testing.T) {
	path := createTestImage(t)
	target := app.DeviceTarget{Path: path}

	tests := []struct {
		name      string
		request   *Request
		wantNames []string
		wantTotal int
		truncated bool
	}{
		{
			name:      "all entries",
			request:   &Request{Target: target},
			wantNames: []string{"hello.txt", "docs"},
			wantTotal: 2,
		},
		{
			name:      "directories only",
			request:   &Request{Target: target, Types: []string{"DIR"}},
			wantNames: []string{"docs"},
			wantTotal: 1,
		},
		{
			name:      "name pattern",
			request:   &Request{Target: target, NamePattern: "*.TXT"},
			wantNames: []string{"hello.txt"},
			wantTotal: 1,
		},
		{
			name:      "truncated",
			request:   &Request{Target: target, MaxResults: 1},
			wantNames: []string{"hello.txt"},
			wantTotal: 2,
			truncated: true,
		},
		{
			name:      "no match",
			request:   &Request{Target: target, NamePattern: "missing*"},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Handle(newTestContext(), tt.request)
			require.NoError(t, err)

			assert.Equal(t, uint64(256), resp.Directory)
			assert.Equal(t, tt.wantNames, names(resp))
			assert.Equal(t, tt.wantTotal, resp.Total)
			assert.Equal(t, tt.truncated, resp.Truncated)
		})
	}
}

func TestHandleEntryDetails(t *testing.T) {
	resp, err := Handle(newTestContext(), &Request{Target: app.DeviceTarget{Path: createTestImage(t)}})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	file := resp.Entries[0]
	assert.Equal(t, uint64(257), file.Inode)
	assert.Equal(t, uint64(2), file.Index)
	assert.Equal(t, "file", file.TypeName)
	assert.Equal(t, uint64(12), file.Size)
	assert.Equal(t, imagebuilder.SampleMTime.Time(), file.ModTime)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		wantErr bool
	}{
		{name: "valid", request: Request{Target: app.DeviceTarget{Path: "disk.img"}}},
		{name: "missing path", request: Request{}, wantErr: true},
		{name: "bad pattern", request: Request{Target: app.DeviceTarget{Path: "disk.img"}, NamePattern: "[a-"}, wantErr: true},
		{name: "unknown type", request: Request{Target: app.DeviceTarget{Path: "disk.img"}, Types: []string{"pipe"}}, wantErr: true},
		{name: "negative limit", request: Request{Target: app.DeviceTarget{Path: "disk.img"}, MaxResults: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				var ce *app.CommonError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, app.ErrCodeInvalidInput, ce.Code)
				return
			}
			assert.NoError(t, err)
		})
	}
}
