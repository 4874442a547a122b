package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatOutput formats a tree dump according to output format
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

// formatTable prints an indented dump, one line per block and per record
func formatTable(w io.Writer, response *Response) error {
	fmt.Fprintf(w, "%s tree at 0x%x level %d\n", response.Tree, response.Root, response.Level)

	for _, b := range response.Blocks {
		indent := strings.Repeat("  ", b.Depth)
		kind := "leaf"
		if b.Level > 0 {
			kind = "node"
		}
		fmt.Fprintf(w, "%s%s 0x%x level %d items %d owner %d\n", indent, kind, b.Logical, b.Level, b.NumItems, b.Owner)
		if b.Partial != "" {
			fmt.Fprintf(w, "%s  (partial: %s)\n", indent, b.Partial)
		}
		for i, p := range b.Ptrs {
			fmt.Fprintf(w, "%s  ptr %d key %s block 0x%x gen %d\n", indent, i, p.Key, p.BlockPtr, p.Generation)
		}
		for i, it := range b.Items {
			fmt.Fprintf(w, "%s  item %d key %s size %d\n", indent, i, it.Key, it.Size)
		}
	}

	fmt.Fprintf(w, "\n%d blocks, %d items", len(response.Blocks), response.Items)
	if response.Truncated {
		fmt.Fprint(w, " (truncated)")
	}
	_, err := fmt.Fprintln(w)
	return err
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
