package emulator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestBin(t *testing.T, sectors [][SECTOR_SIZE]byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test-*.bin")
	assert.NoError(t, err)
	defer f.Close()

	for _, s := range sectors {
		_, err := f.Write(s[:])
		assert.NoError(t, err)
	}
	return f.Name()
}

// a Mode 1 data sector stamped at physical MSF 00:02:00 (the track's
// first frame, logical LBA 0)
func dataSector() [SECTOR_SIZE]byte {
	var s [SECTOR_SIZE]byte
	copy(s[0:12], syncPattern[:])
	s[12], s[13], s[14] = 0x00, 0x02, 0x00
	s[15] = 1 // Mode 1
	s[16] = 0xaa
	s[17] = 0xbb
	return s
}

// scenario 5: single-sector BIN read at the track's opening physical
// position resolves to logical frame 0 via the lead-in correction
func TestCdromDiskReadAppliesLeadInCorrection(t *testing.T) {
	path := writeTestBin(t, [][SECTOR_SIZE]byte{dataSector()})

	disk := NewCdromDisk(nil)
	assert.NoError(t, disk.InitFromBin(path))
	defer disk.Close()

	pos := CdromPositionFromBcd(0x00, 0x02, 0x00) // physical LBA 150
	sector, err := disk.Read(pos)
	assert.NoError(t, err)
	assert.NoError(t, sector.Validate(TRACK_DATA))
	assert.Equal(t, byte(0xaa), sector.Data[16])
	assert.Equal(t, byte(0xbb), sector.Data[17])
}

func TestCdromDiskReadPastTrackEndYieldsZeroedSector(t *testing.T) {
	path := writeTestBin(t, [][SECTOR_SIZE]byte{dataSector()})

	disk := NewCdromDisk(nil)
	assert.NoError(t, disk.InitFromBin(path))
	defer disk.Close()

	// one frame past the end of a single-sector track, at its
	// corresponding physical position
	pos := CdromPositionFromLba(151)
	sector, err := disk.Read(pos)
	assert.NoError(t, err)
	for _, b := range sector.Data {
		assert.Equal(t, byte(0), b)
	}
}

func TestCdromDiskReadWithNoTracksReturnsEmptySector(t *testing.T) {
	disk := NewCdromDisk(nil)
	sector, err := disk.Read(NewCdromPosition())
	assert.NoError(t, err)
	assert.Equal(t, &Sector{}, sector)
}

func TestCdromDiskEmptyBinYieldsNoTracks(t *testing.T) {
	path := writeTestBin(t, nil)

	disk := NewCdromDisk(nil)
	assert.NoError(t, disk.InitFromBin(path))
	assert.Empty(t, disk.Tracks)
}
