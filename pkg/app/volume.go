package app

import (
	"github.com/deploymenttheory/go-btrfs/internal/device"
	"github.com/deploymenttheory/go-btrfs/internal/services"
)

// OpenDevice opens the target device. A non-zero target partition offset
// overrides the configured one.
func OpenDevice(ctx *Context, target DeviceTarget) (*device.FileDevice, error) {
	if err := target.Validate(); err != nil {
		return nil, NewError(ErrCodeInvalidInput, "invalid device target", err)
	}

	cfg := *ctx.Config
	if target.PartitionOffset != 0 {
		cfg.PartitionOffset = target.PartitionOffset
	}

	dev, err := device.OpenFile(target.Path, &cfg)
	if err != nil {
		return nil, NewError(ErrCodeDeviceAccess, "cannot open "+target.String(), err)
	}
	ctx.Log("Opened %s (%d bytes)", target.String(), dev.Size())
	return dev, nil
}

// MountOptions returns engine options for the context's configuration and
// logger.
func MountOptions(ctx *Context) services.Options {
	opts := services.OptionsFromConfig(ctx.Config)
	opts.Logger = ctx.Logger
	return opts
}

// MountVolume opens and mounts the target. The returned volume owns the
// device; Unmount closes it.
func MountVolume(ctx *Context, target DeviceTarget) (*services.Volume, error) {
	dev, err := OpenDevice(ctx, target)
	if err != nil {
		return nil, err
	}

	vol, err := services.Mount(dev, MountOptions(ctx))
	if err != nil {
		dev.Close()
		return nil, WrapError("cannot mount "+target.String(), err)
	}
	return vol, nil
}
