package list

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// FormatOutput formats listing results according to output format
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
	if len(response.Entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "MODE\tINODE\tSIZE\tMODIFIED\tNAME\n")
	fmt.Fprintf(tw, "----\t-----\t----\t--------\t----\n")
	for _, e := range response.Entries {
		name := e.Name
		if e.TypeName == "dir" {
			name += "/"
		}
		if e.InodeMissing {
			fmt.Fprintf(tw, "?\t%d\t?\t?\t%s\n", e.Inode, name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			formatMode(e.TypeName, e.Mode), e.Inode, formatSize(e.Size), e.ModTime.Format("2006-01-02 15:04"), name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d entries", response.Total)
	if response.Truncated {
		fmt.Fprintf(w, " (showing first %d)", len(response.Entries))
	}
	fmt.Fprintln(w)
	return nil
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
