package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCdromPositionToLba(t *testing.T) {
	// 00:02:00 is the standard 150-frame (2 second) lead-in
	pos := CdromPositionFromBcd(0x00, 0x02, 0x00)
	assert.Equal(t, uint32(150), pos.ToLba())
}

func TestCdromPositionFromLbaRoundTrip(t *testing.T) {
	for _, lba := range []uint32{0, 1, 74, 75, 149, 150, 4499, 356999} {
		pos := CdromPositionFromLba(lba)
		assert.Equal(t, lba, pos.ToLba(), "lba %d", lba)
	}
}

// the 2-second lead-in means physical 00:02:00 is logical frame 0
func TestCdromPositionPhysicalToLogical(t *testing.T) {
	phys := CdromPositionFromBcd(0x00, 0x02, 0x00)
	logical := phys.PhysicalToLogical()
	assert.Equal(t, uint32(0), logical.ToLba())

	phys = CdromPositionFromBcd(0x00, 0x02, 0x01)
	logical = phys.PhysicalToLogical()
	assert.Equal(t, uint32(1), logical.ToLba())
}

func TestCdromPositionNextCarries(t *testing.T) {
	pos := CdromPositionFromBcd(0x00, 0x00, 0x74)
	pos = pos.Next()
	assert.Equal(t, CdromPositionFromBcd(0x00, 0x01, 0x00), pos)

	pos = CdromPositionFromBcd(0x00, 0x59, 0x74)
	pos = pos.Next()
	assert.Equal(t, CdromPositionFromBcd(0x01, 0x00, 0x00), pos)
}

func TestCdromPositionFromBcdRejectsInvalidDigits(t *testing.T) {
	assert.Panics(t, func() { CdromPositionFromBcd(0x0a, 0x00, 0x00) })
	assert.Panics(t, func() { CdromPositionFromBcd(0x00, 0x60, 0x00) })
	assert.Panics(t, func() { CdromPositionFromBcd(0x00, 0x00, 0x75) })
}
