package emulator

import (
	"fmt"
	"io"
	"log"
	"os"
)

// CdromTrack is one track of a CdromDisk: a sequence of SECTOR_SIZE
// sectors backed by one open file handle
type CdromTrack struct {
	Filepath   string
	Number     int // 1-based
	Type       TrackType
	FrameCount uint32
	StartLba   uint32

	file io.ReadSeekCloser
}

func (track *CdromTrack) containsLba(lba uint32) bool {
	return lba >= track.StartLba && lba < track.StartLba+track.FrameCount
}

// readAt reads the sector at the track-relative frame index
func (track *CdromTrack) readAt(frame uint32) (*Sector, error) {
	if frame >= track.FrameCount {
		return newSector(), nil
	}

	off := int64(frame) * SECTOR_SIZE
	if _, err := track.file.Seek(off, io.SeekStart); err != nil {
		return nil, &IoError{Path: track.Filepath, Op: "seek", Err: err}
	}

	sector := newSector()
	if _, err := io.ReadFull(track.file, sector.Data[:]); err != nil {
		return nil, &IoError{Path: track.Filepath, Op: "read", Err: err}
	}
	return sector, nil
}

// CdromDisk owns an ordered list of tracks and serves sectors by
// physical position
type CdromDisk struct {
	Tracks []*CdromTrack
	Log    *log.Logger
}

// NewCdromDisk returns a disk with no tracks loaded
func NewCdromDisk(logger *log.Logger) *CdromDisk {
	if logger == nil {
		logger = log.Default()
	}
	return &CdromDisk{Log: logger}
}

// InitFromBin opens a raw BIN image as a single Data track numbered 1.
// An empty file yields a disk with no tracks
func (disk *CdromDisk) InitFromBin(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IoError{Path: path, Op: "open", Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return &IoError{Path: path, Op: "stat", Err: err}
	}

	frameCount := uint32(info.Size() / SECTOR_SIZE)
	if frameCount == 0 {
		f.Close()
		disk.Tracks = nil
		return nil
	}

	disk.Tracks = []*CdromTrack{{
		Filepath:   path,
		Number:     1,
		Type:       TRACK_DATA,
		FrameCount: frameCount,
		StartLba:   0,
		file:       f,
	}}
	return nil
}

// InitFromCue parses a multi-track CUE sheet. Not required for a
// minimal conforming implementation
func (disk *CdromDisk) InitFromCue(path string) error {
	return &CdromError{Reason: "cue sheet parsing not implemented"}
}

// trackForPosition returns the track with the highest starting LBA not
// exceeding lba. The track's end is not checked, so an lba past it
// still resolves to that track
func (disk *CdromDisk) trackForPosition(lba uint32) *CdromTrack {
	var best *CdromTrack
	for _, t := range disk.Tracks {
		if t.StartLba > lba {
			continue
		}
		if best == nil || t.StartLba > best.StartLba {
			best = t
		}
	}
	return best
}

// Read serves the sector at the given physical position. Track-1 data
// reads apply the physical-to-logical lead-in correction before
// locating the track-relative frame. Reading with no tracks loaded
// returns an empty buffer and logs a warning; reading past a track's
// end returns zeros
func (disk *CdromDisk) Read(pos CdromPosition) (*Sector, error) {
	if len(disk.Tracks) == 0 {
		disk.Log.Printf("cdrom: read at %s with no tracks loaded", pos)
		return newSector(), nil
	}

	logical := pos
	lba := pos.ToLba()
	if t := disk.trackForPosition(lba); t != nil && t.Number == 1 && t.Type == TRACK_DATA {
		logical = pos.PhysicalToLogical()
	}

	lba = logical.ToLba()
	track := disk.trackForPosition(lba)
	if track == nil {
		return nil, &CdromError{Reason: "no track covers position", Pos: pos}
	}

	sector, err := track.readAt(lba - track.StartLba)
	if err != nil {
		return nil, err
	}

	if err := sector.Validate(track.Type); err != nil {
		disk.Log.Printf("cdrom: %v", err)
	}
	return sector, nil
}

// Close releases every track's file handle
func (disk *CdromDisk) Close() error {
	var firstErr error
	for _, t := range disk.Tracks {
		if t.file == nil {
			continue
		}
		if err := t.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cdrom: closing %q: %w", t.Filepath, err)
		}
	}
	return firstErr
}
