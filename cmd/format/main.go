// Command format creates or reinitializes a microfs image at $ZDISK.
package main

import (
	"errors"
	"os"

	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/cstruct/microfs/device"
	"github.com/cstruct/microfs/filesystem/microfs"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("format", "Create or reinitialize a microfs image", cobra.NoArgs, run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, _ []string) {
	path := cli.DiskPath()
	dev, err := device.OpenFromPath(path, microfs.BlockSize, microfs.NBlocks, false)
	if errors.Is(err, os.ErrNotExist) {
		dev, err = device.CreateFromPath(path, microfs.BlockSize, microfs.NBlocks)
	}
	if err != nil {
		cli.Fatalf("cannot open %s: %v", path, err)
	}
	defer dev.Close()

	log := cli.Logger()
	if _, err := microfs.Format(dev, microfs.WithLogger(log)); err != nil {
		cli.Fatalf("format %s: %v", path, err)
	}
}
