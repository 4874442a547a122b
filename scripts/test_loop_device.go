package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-btrfs/internal/device"
	"github.com/deploymenttheory/go-btrfs/internal/imagebuilder"
	"github.com/deploymenttheory/go-btrfs/internal/services"
)

// LoopDevice holds information about an attached image
type LoopDevice struct {
	ImagePath   string
	DevicePath  string
	needsDetach bool
}

// attachImage attaches an image read-only to a free loop device
func attachImage(imagePath string) (*LoopDevice, error) {
	fmt.Printf("=== Attaching image ===\n")
	fmt.Printf("Image: %s\n", imagePath)

	cmd := exec.Command("losetup", "--find", "--show", "--read-only", imagePath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to attach image: %w\nOutput: %s", err, string(output))
	}

	devicePath := strings.TrimSpace(string(output))
	if !strings.HasPrefix(devicePath, "/dev/loop") {
		return nil, fmt.Errorf("unexpected losetup output:\n%s", string(output))
	}

	fmt.Printf("✓ Attached as %s\n", devicePath)
	return &LoopDevice{ImagePath: imagePath, DevicePath: devicePath, needsDetach: true}, nil
}

// detach releases the loop device
func (ld *LoopDevice) detach() error {
	fmt.Printf("\n=== Detaching %s ===\n", ld.DevicePath)
	output, err := exec.Command("losetup", "--detach", ld.DevicePath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to detach: %w\nOutput: %s", err, string(output))
	}
	ld.needsDetach = false
	fmt.Printf("✓ Detached\n")
	return nil
}

// testDevice mounts the filesystem on the loop device and lists its root
// directory
func testDevice(ld *LoopDevice) error {
	fmt.Printf("\n=== Reading %s ===\n", ld.DevicePath)

	dev, err := device.OpenFile(ld.DevicePath, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Device size: %d bytes\n", dev.Size())

	vol, err := services.Mount(dev, services.DefaultOptions())
	if err != nil {
		dev.Close()
		return fmt.Errorf("mount failed: %w", err)
	}
	defer vol.Unmount()

	attrs := vol.Attributes()
	fmt.Printf("Label:      %s\n", attrs.Label)
	fmt.Printf("FSID:       %s\n", attrs.FSID)
	fmt.Printf("Generation: %d\n", attrs.Generation)
	fmt.Printf("FS tree:    logical 0x%x physical 0x%x\n", attrs.FSTree.Logical, attrs.FSTree.Physical)

	entries, err := vol.RootDirEntries()
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}
	for _, e := range entries {
		fmt.Printf("  %-6s %8d  %s\n", e.TypeName, e.Size, e.Name)
	}
	fmt.Printf("✓ %d root directory entries\n", len(entries))
	return nil
}

func main() {
	fmt.Println("=== BTRFS Loop Device Test ===")
	fmt.Println()

	// Use the image given on the command line, or write the sample image
	imagePath := ""
	if len(os.Args) > 1 {
		imagePath = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "go-btrfs-")
		if err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(dir)

		imagePath = filepath.Join(dir, "sample.img")
		if err := imagebuilder.WriteSampleFile(imagePath); err != nil {
			fmt.Printf("ERROR: failed to write sample image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote sample image to %s\n\n", imagePath)
	}

	ld, err := attachImage(imagePath)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		fmt.Printf("\nUsage: sudo go run scripts/test_loop_device.go [path/to/btrfs.img]\n")
		os.Exit(1)
	}

	testErr := testDevice(ld)

	if ld.needsDetach {
		if err := ld.detach(); err != nil {
			fmt.Printf("WARNING: %v\n", err)
		}
	}

	if testErr != nil {
		fmt.Printf("\nERROR: %v\n", testErr)
		os.Exit(1)
	}
	fmt.Println("\n✓ All checks passed")
}
