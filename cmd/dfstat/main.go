// Command dfstat prints free/used block and inode counts for a microfs
// image, computed purely from the on-disk allocation bitmaps. It is
// supplemental to the original verb set: a read-only diagnostic, not a
// persisted feature.
package main

import (
	"fmt"

	"github.com/cstruct/microfs/cmd/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	cmd := cli.NewCommand("dfstat", "Print block/inode allocation usage", cobra.NoArgs, run)
	if err := cmd.Execute(); err != nil {
		cli.Fatalf("%v", err)
	}
}

func run(_ *cobra.Command, _ []string) {
	fs, dev := cli.OpenFileSystem(true)
	defer dev.Close()

	stat, err := fs.Stat()
	if err != nil {
		cli.Fatalf("dfstat: %v", err)
	}
	fmt.Printf("blocks: %d/%d free\n", stat.BlocksFree, stat.BlocksTotal)
	fmt.Printf("inodes: %d/%d free\n", stat.InodesFree, stat.InodesTotal)
}
