// Command link creates a second directory entry for an existing file.
package main

import (
	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("link <src> <dst>", "Hard-link a file to a new path", cobra.ExactArgs(2), run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, args []string) {
	fs, dev := cli.OpenFileSystem(false)
	defer dev.Close()

	if err := fs.Link(cli.Cwd(), args[0], args[1]); err != nil {
		cli.Fatalf("link %s %s: %v", args[0], args[1], err)
	}
}
