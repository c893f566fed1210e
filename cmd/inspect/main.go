// Command inspect lists a directory's entries, marking subdirectories with
// a trailing slash - the microfs equivalent of `ls`.
package main

import (
	"fmt"

	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/cstruct/microfs/filesystem/microfs"
	"github.com/cstruct/microfs/util"
	"github.com/spf13/cobra"
)

var dumpBlock int

func main() {
	cmd := cli.NewCommand("inspect <path>", "List a directory's entries", cobra.ExactArgs(1), run)
	cmd.Flags().IntVar(&dumpBlock, "dump-block", -1, "hex-dump the raw contents of this block reference and exit")
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, args []string) {
	fs, dev := cli.OpenFileSystem(true)
	defer dev.Close()

	if dumpBlock >= 0 {
		raw := make([]byte, dev.BlockSize())
		if err := dev.ReadBlock(dumpBlock, raw); err != nil {
			cli.Fatalf("dump block %d: %v", dumpBlock, err)
		}
		fmt.Print(util.DumpByteSlice(raw, 16, true, true))
		return
	}

	entries, err := fs.ListDetailed(cli.Cwd(), args[0])
	if err != nil {
		cli.Fatalf("inspect %s: %v", args[0], err)
	}
	for _, e := range entries {
		name := e.Name
		if e.Type == microfs.TypeDirectory && name != "." && name != ".." {
			name += "/"
		}
		fmt.Println(name)
	}
}
