// Command psxcore loads a BIOS image (and, optionally, a BIN disc
// image) into a Console and reports whether it's well-formed.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/retrowave/psxcore/emulator"
)

// exitError carries the process exit code assigned to a
// particular failure: 2 for a missing file or an invalid --watch-addr,
// 3 for a malformed image
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var watchAddrs []string

var rootCmd = &cobra.Command{
	Use:   "emulator <bios-path> [bin-path]",
	Short: "Load a PS1 BIOS image (and optional BIN disc image) into the core",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runEmulator,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringArrayVar(&watchAddrs, "watch-addr", nil,
		"bus address (hex, e.g. 0x1f801070) to watch for reads/writes; repeatable")
}

func runEmulator(cmd *cobra.Command, args []string) error {
	biosPath := args[0]

	f, err := os.Open(biosPath)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer f.Close()

	bios, err := emulator.LoadBios(f)
	if err != nil {
		return &exitError{code: 3, err: err}
	}

	var disk *emulator.CdromDisk
	if len(args) == 2 {
		disk = emulator.NewCdromDisk(nil)
		if err := disk.InitFromBin(args[1]); err != nil {
			return &exitError{code: 2, err: err}
		}
	}

	console := emulator.NewConsole(bios, disk, nil)
	defer console.Close()

	for _, a := range watchAddrs {
		addr, err := parseHexAddr(a)
		if err != nil {
			return &exitError{code: 2, err: err}
		}
		console.Dbg.AddReadWatchpoint(addr)
		console.Dbg.AddWriteWatchpoint(addr)
	}

	console.Log.Printf("loaded BIOS %q", biosPath)
	if disk != nil {
		console.Log.Printf("loaded disc %q (%d track(s))", args[1], len(disk.Tracks))
	}
	return nil
}

func parseHexAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --watch-addr %q: %w", s, err)
	}
	return uint32(v), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.err)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
