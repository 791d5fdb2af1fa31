package emulator

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConsoleWithNilDiskAndLogger(t *testing.T) {
	bios, err := LoadBios(bytes.NewReader(make([]byte, BIOS_SIZE)))
	assert.NoError(t, err)

	console := NewConsole(bios, nil, nil)
	defer console.Close()

	assert.NotNil(t, console.Disk)
	assert.Empty(t, console.Disk.Tracks)
	assert.NotNil(t, console.Log)

	// the bus wiring is live end-to-end: a KSEG1 BIOS read reaches the
	// same underlying image NewConsole was given
	v, err := console.Bus.Read32(0xbfc00000)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestConsoleDebuggerWatchesBusTraffic(t *testing.T) {
	bios, err := LoadBios(bytes.NewReader(make([]byte, BIOS_SIZE)))
	assert.NoError(t, err)

	var logBuf bytes.Buffer
	console := NewConsole(bios, nil, log.New(&logBuf, "", 0))
	defer console.Close()

	console.Dbg.AddWriteWatchpoint(0x1000)
	assert.Contains(t, console.Dbg.WriteWatchpoints, uint32(0x1000))

	assert.NoError(t, console.Bus.Write32(0x1000, 0xdeadbeef))
	assert.Contains(t, logBuf.String(), "write watchpoint hit at 0x00001000")
	v, err := console.Bus.Read32(0x1000)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)
}
