package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGpu() *Gpu {
	gpu := NewGpu()
	gpu.GP0DrawingAreaTopLeft(0)
	gpu.GP0DrawingAreaBottomRight(uint32(1023) | uint32(511)<<10)
	return gpu
}

func posWord(x, y int16) uint32 {
	return uint32(uint16(x)&0x7ff) | uint32(uint16(y)&0x7ff)<<16
}

// scenario 4: flat untextured triangle
func TestRasterizerFlatTriangleTopLeftRule(t *testing.T) {
	gpu := newTestGpu()

	header := uint32(0x20)<<24 | 0x0000ff // flat, opaque triangle, color (255,0,0)
	assert.NoError(t, gpu.PushGP0(header))
	assert.NoError(t, gpu.PushGP0(posWord(0, 0)))
	assert.NoError(t, gpu.PushGP0(posWord(2, 0)))
	assert.NoError(t, gpu.PushGP0(posWord(0, 2)))

	assert.Equal(t, uint16(0x001f), gpu.Vram.Read16(0, 0))
	assert.Equal(t, uint16(0x001f), gpu.Vram.Read16(1, 0))
	assert.Equal(t, uint16(0x001f), gpu.Vram.Read16(0, 1))
	assert.Equal(t, uint16(0x0000), gpu.Vram.Read16(1, 1))
}

// two triangles sharing an edge must not double-cover or leave gaps:
// a quad split along its diagonal should fill every pixel exactly once
func TestRasterizerQuadNoDoubleCoverage(t *testing.T) {
	gpu := newTestGpu()

	// GP0(0xe1): semi-transparency operator B+F, so a pixel written
	// twice accumulates a brighter value than one written once
	assert.NoError(t, gpu.PushGP0(uint32(0xe1)<<24|1<<5))

	header := uint32(0x2a)<<24 | 0x004000 // flat, semi-transparent quad, color (0,64,0)
	assert.NoError(t, gpu.PushGP0(header))
	assert.NoError(t, gpu.PushGP0(posWord(0, 0)))
	assert.NoError(t, gpu.PushGP0(posWord(3, 0)))
	assert.NoError(t, gpu.PushGP0(posWord(0, 3)))
	assert.NoError(t, gpu.PushGP0(posWord(3, 3)))

	// one write over zeroed VRAM gives G=64 (0x0100); two would give 0x0200
	for y := int16(0); y < 3; y++ {
		for x := int16(0); x < 3; x++ {
			assert.Equal(t, uint16(0x0100), gpu.Vram.Read16(uint32(x), uint32(y)),
				"pixel (%d,%d) not covered exactly once", x, y)
		}
	}
}

// a zero-area triangle degenerates to nothing and must not write VRAM
func TestRasterizerDegenerateTriangleSkipped(t *testing.T) {
	gpu := newTestGpu()

	header := uint32(0x20)<<24 | 0x0000ff
	assert.NoError(t, gpu.PushGP0(header))
	assert.NoError(t, gpu.PushGP0(posWord(5, 5)))
	assert.NoError(t, gpu.PushGP0(posWord(10, 5)))
	assert.NoError(t, gpu.PushGP0(posWord(15, 5))) // collinear, area == 0

	assert.Equal(t, uint16(0), gpu.Vram.Read16(7, 5))
	assert.Equal(t, uint16(0), gpu.Vram.Read16(10, 5))
}

// a textured pixel sampled as 0x0000 leaves the destination unchanged
func TestRasterizerTransparentTexelLeavesVramUnchanged(t *testing.T) {
	gpu := newTestGpu()

	gpu.Vram.Write16(11, 11, 0x7fff) // pre-existing VRAM content, untouched by the CLUT

	// GP0(0xe1): texture page at (0,0), 4-bit depth
	assert.NoError(t, gpu.PushGP0(uint32(0xe1)<<24))

	header := uint32(0x24)<<24 | 0x808080 // textured, blended, opaque triangle
	assert.NoError(t, gpu.PushGP0(header))
	// vertex 0: pos (10,10), palette word (palette at VRAM (0,0)), uv (0,0)
	assert.NoError(t, gpu.PushGP0(posWord(10, 10)))
	assert.NoError(t, gpu.PushGP0(0))
	// vertex 1: pos (14,10), page word, uv (2,0)
	assert.NoError(t, gpu.PushGP0(posWord(14, 10)))
	assert.NoError(t, gpu.PushGP0(2))
	// vertex 2: pos (10,14), uv (0,2)
	assert.NoError(t, gpu.PushGP0(posWord(10, 14)))
	assert.NoError(t, gpu.PushGP0(uint32(2) << 8))

	// the whole texture page is still zeroed VRAM, so every texel this
	// triangle samples reads 0x0000 and the pre-existing pixel survives
	assert.Equal(t, uint16(0x7fff), gpu.Vram.Read16(11, 11))
}

// a vertex position plus a draw offset that overflows the signed
// 11-bit range must wrap mod 2048, not grow to 12 bits
func TestPositionAddWrapsTo11Bits(t *testing.T) {
	pos := Position{X: 1023, Y: 1023}
	offset := Position{X: 100, Y: 100}
	assert.Equal(t, Position{X: -925, Y: -925}, pos.Add(offset))

	assert.Equal(t, Position{X: 0, Y: 0}, Position{X: -1, Y: -1}.Add(Position{X: 1, Y: 1}))
}

func TestIsTopLeftEdge(t *testing.T) {
	// top edge: horizontal, running rightward
	assert.True(t, isTopLeftEdge(Position{X: 0, Y: 0}, Position{X: 2, Y: 0}))
	// left edge: descends (dy < 0 in this traversal direction)
	assert.True(t, isTopLeftEdge(Position{X: 0, Y: 2}, Position{X: 0, Y: 0}))
	// the remaining (outer/hypotenuse) edge of the same triangle is
	// neither, and must exclude pixels that fall exactly on it
	assert.False(t, isTopLeftEdge(Position{X: 2, Y: 0}, Position{X: 0, Y: 2}))
}
