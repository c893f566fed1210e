// Command create makes a new file in a microfs image from standard input.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/cstruct/microfs/filesystem/microfs"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("create <path>", "Create a file from standard input", cobra.ExactArgs(1), run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		cli.Fatalf("reading standard input: %v", err)
	}

	fs, dev := cli.OpenFileSystem(false)
	defer dev.Close()

	var tooLarge *microfs.FileTooLargeError
	if err := fs.Create(cli.Cwd(), args[0], data); err != nil && !errors.As(err, &tooLarge) {
		cli.Fatalf("create %s: %v", args[0], err)
	}
}
