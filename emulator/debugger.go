package emulator

import "log"

// Debugger holds Bus-level memory watchpoints. It has no notion of
// CPU execution state (no breakpoints, no program counter) since this
// module stops at the bus/peripheral boundary
type Debugger struct {
	ReadWatchpoints  []uint32
	WriteWatchpoints []uint32

	Log *log.Logger
}

// NewDebugger returns a Debugger with no watchpoints set. logger may
// be nil, in which case log.Default() is used
func NewDebugger(logger *log.Logger) *Debugger {
	if logger == nil {
		logger = log.Default()
	}
	return &Debugger{Log: logger}
}

// AddReadWatchpoint adds a memory read watchpoint for addr
func (debugger *Debugger) AddReadWatchpoint(addr uint32) {
	for _, watchpoint := range debugger.ReadWatchpoints {
		if watchpoint == addr {
			return
		}
	}
	debugger.ReadWatchpoints = append(debugger.ReadWatchpoints, addr)
}

// AddWriteWatchpoint adds a memory write watchpoint for addr
func (debugger *Debugger) AddWriteWatchpoint(addr uint32) {
	for _, watchpoint := range debugger.WriteWatchpoints {
		if watchpoint == addr {
			return
		}
	}
	debugger.WriteWatchpoints = append(debugger.WriteWatchpoints, addr)
}

// DeleteReadWatchpoint deletes a memory read watchpoint at addr. Does
// nothing if it doesn't exist
func (debugger *Debugger) DeleteReadWatchpoint(addr uint32) {
	for idx, watchpoint := range debugger.ReadWatchpoints {
		if watchpoint == addr {
			debugger.ReadWatchpoints = append(
				debugger.ReadWatchpoints[:idx],
				debugger.ReadWatchpoints[idx+1:]...,
			)
			return
		}
	}
}

// DeleteWriteWatchpoint deletes a memory write watchpoint at addr.
// Does nothing if it doesn't exist
func (debugger *Debugger) DeleteWriteWatchpoint(addr uint32) {
	for idx, watchpoint := range debugger.WriteWatchpoints {
		if watchpoint == addr {
			debugger.WriteWatchpoints = append(
				debugger.WriteWatchpoints[:idx],
				debugger.WriteWatchpoints[idx+1:]...,
			)
			return
		}
	}
}

// memoryRead is called by the Bus before every read
func (debugger *Debugger) memoryRead(addr uint32) {
	for _, watchpoint := range debugger.ReadWatchpoints {
		if watchpoint == addr {
			debugger.Log.Printf("debugger: read watchpoint hit at 0x%08x", addr)
			return
		}
	}
}

// memoryWrite is called by the Bus before every write
func (debugger *Debugger) memoryWrite(addr uint32) {
	for _, watchpoint := range debugger.WriteWatchpoints {
		if watchpoint == addr {
			debugger.Log.Printf("debugger: write watchpoint hit at 0x%08x", addr)
			return
		}
	}
}
