// Package cli provides the shared scaffolding for every microfs verb
// binary: ZDISK/ZPWD environment discovery, image opening, and a uniform
// usage-message/non-zero-exit contract, so each binary under cmd/ is
// little more than argument parsing plus a call into filesystem/microfs.
package cli

import (
	"fmt"
	"os"

	"github.com/cstruct/microfs/device"
	"github.com/cstruct/microfs/filesystem/microfs"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envDisk = "ZDISK"
	envPwd  = "ZPWD"

	defaultDisk = "vdisk1"
	defaultPwd  = "/"
)

func init() {
	viper.BindEnv("disk", envDisk)
	viper.BindEnv("pwd", envPwd)
	viper.SetDefault("disk", defaultDisk)
	viper.SetDefault("pwd", defaultPwd)
}

// DiskPath returns the backing image path: $ZDISK, or "vdisk1" if unset.
func DiskPath() string { return viper.GetString("disk") }

// Cwd returns the working directory every relative path is resolved
// against: $ZPWD, or "/" if unset.
func Cwd() string { return viper.GetString("pwd") }

// Logger returns a logrus logger writing to stderr, colored when stderr is
// a terminal.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: isatty.IsTerminal(os.Stderr.Fd())})
	return log
}

// OpenDevice opens the disk image named by DiskPath for engine use, exiting
// the process with a usage-style error on failure - no backing image is the
// single most common first mistake a caller of these binaries makes.
func OpenDevice(readOnly bool) device.BlockDevice {
	dev, err := device.OpenFromPath(DiskPath(), microfs.BlockSize, microfs.NBlocks, readOnly)
	if err != nil {
		Fatalf("cannot open %s: %v", DiskPath(), err)
	}
	return dev
}

// OpenFileSystem opens DiskPath and attaches the engine to it.
func OpenFileSystem(readOnly bool) (*microfs.FileSystem, device.BlockDevice) {
	dev := OpenDevice(readOnly)
	fs, err := microfs.Open(dev, microfs.WithLogger(Logger()))
	if err != nil {
		dev.Close()
		Fatalf("%s is not a valid microfs image: %v", DiskPath(), err)
	}
	return fs, dev
}

// Fatalf prints a usage-style error to stderr and exits with status 1,
// matching the original tools' "print a message, exit non-zero" contract.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// NewCommand builds a cobra.Command sharing the ZDISK/ZPWD-aware flag set
// every verb binary needs. run receives the parsed positional arguments.
func NewCommand(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, args []string)) *cobra.Command {
	c := &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         args,
		SilenceUsage: false,
		Run:          run,
	}
	c.PersistentFlags().String("disk", "", "path to the microfs image (overrides $ZDISK)")
	c.PersistentFlags().String("pwd", "", "working directory paths are resolved against (overrides $ZPWD)")
	viper.BindPFlag("disk", c.PersistentFlags().Lookup("disk"))
	viper.BindPFlag("pwd", c.PersistentFlags().Lookup("pwd"))
	return c
}
