// Command remove unlinks a file from a microfs image.
package main

import (
	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("remove <path>", "Unlink a file", cobra.ExactArgs(1), run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, args []string) {
	fs, dev := cli.OpenFileSystem(false)
	defer dev.Close()

	if err := fs.Remove(cli.Cwd(), args[0]); err != nil {
		cli.Fatalf("remove %s: %v", args[0], err)
	}
}
