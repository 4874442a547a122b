package info

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-btrfs/internal/interfaces"
)

// FormatOutput formats filesystem information according to output format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatTable(w io.Writer, response *Response) error {
	a := response.Attributes

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Device:\t%s\n", response.Device)
	fmt.Fprintf(tw, "Label:\t%s\n", a.Label)
	fmt.Fprintf(tw, "FSID:\t%s\n", a.FSID)
	fmt.Fprintf(tw, "Device UUID:\t%s\n", a.DeviceUUID)
	fmt.Fprintf(tw, "Generation:\t%d\n", a.Generation)
	fmt.Fprintf(tw, "Size:\t%s\n", formatBytes(a.TotalBytes))
	fmt.Fprintf(tw, "Used:\t%s (%.1f%%)\n", formatBytes(a.BytesUsed), response.UsagePercent())
	fmt.Fprintf(tw, "Sector size:\t%d\n", a.SectorSize)
	fmt.Fprintf(tw, "Node size:\t%d\n", a.NodeSize)
	fmt.Fprintf(tw, "Devices:\t%d\n", a.NumDevices)
	fmt.Fprintf(tw, "Superblock:\t0x%x\n", a.SuperblockAddr)
	fmt.Fprintf(tw, "Chunk tree:\t%s\n", formatLocation(a.ChunkTree))
	fmt.Fprintf(tw, "Root tree:\t%s\n", formatLocation(a.RootTree))
	fmt.Fprintf(tw, "FS tree:\t%s\n", formatLocation(a.FSTree))
	fmt.Fprintf(tw, "Chunks:\t%d\n", a.Chunks)
	if ri := response.RootInode; ri != nil {
		fmt.Fprintf(tw, "Root directory:\tinode %d mode %o size %d modified %s\n",
			ri.Inode, ri.Mode, ri.Size, ri.ModTime.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(response.Chunks) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "LOGICAL\tSIZE\tPHYSICAL\n")
	fmt.Fprintf(tw, "-------\t----\t--------\n")
	for _, c := range response.Chunks {
		fmt.Fprintf(tw, "0x%x\t%s\t0x%x\n", c.LogicalStart, formatBytes(c.Size), c.PhysicalOffset)
	}
	return tw.Flush()
}

func formatLocation(loc interfaces.TreeLocation) string {
	return fmt.Sprintf("logical 0x%x physical 0x%x level %d", loc.Logical, loc.Physical, loc.Level)
}

func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}
