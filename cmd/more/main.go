// Command more prints a microfs file's contents to standard output,
// followed by a trailing newline.
package main

import (
	"fmt"
	"os"

	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("more <path>", "Print a file's contents", cobra.ExactArgs(1), run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, args []string) {
	fs, dev := cli.OpenFileSystem(true)
	defer dev.Close()

	content, err := fs.More(cli.Cwd(), args[0])
	if err != nil {
		cli.Fatalf("more %s: %v", args[0], err)
	}
	os.Stdout.Write(content)
	fmt.Println()
}
