// Command rmdir removes an empty directory from a microfs image.
package main

import (
	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("rmdir <path>", "Remove an empty directory", cobra.ExactArgs(1), run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, args []string) {
	fs, dev := cli.OpenFileSystem(false)
	defer dev.Close()

	if err := fs.Rmdir(cli.Cwd(), args[0]); err != nil {
		cli.Fatalf("rmdir %s: %v", args[0], err)
	}
}
