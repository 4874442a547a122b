package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-btrfs/pkg/app"
)

// FormatOutput formats probe results according to output format
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

// FormatUUID writes the filesystem UUID alone. It fails when the device was
// not recognized.
func FormatUUID(w io.Writer, response *Response) error {
	if !response.Recognized {
		return app.NewError(app.ErrCodeNotRecognized, response.Device+" is not a btrfs filesystem", nil)
	}
	_, err := fmt.Fprintln(w, response.FSID)
	return err
}

func formatTable(w io.Writer, response *Response) error {
	if !response.Recognized {
		fmt.Fprintf(w, "%s: not a btrfs filesystem\n", response.Device)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DEVICE\tLABEL\tFSID\tGENERATION\tMIRROR\n")
	fmt.Fprintf(tw, "------\t-----\t----\t----------\t------\n")
	fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d (0x%x)\n",
		response.Device, response.Label, response.FSID, response.Generation, response.Mirror, response.SuperblockAddr)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range response.Rejected {
		fmt.Fprintf(w, "Rejected mirror %d at 0x%x: %s\n", r.Mirror, r.Addr, r.Reason)
	}
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
