// Command append writes standard input to the end of a file in a microfs
// image, creating the file if it does not exist.
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
	cmd := cli.NewCommand("append <path>", "Append standard input to a file", cobra.ExactArgs(1), run)
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
	if err := fs.Append(cli.Cwd(), args[0], data); err != nil && !errors.As(err, &tooLarge) {
		cli.Fatalf("append %s: %v", args[0], err)
	}
}
