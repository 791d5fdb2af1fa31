package emulator

// Position is a drawing-primitive vertex coordinate: signed 11-bit,
// sign-extended from bit 10
type Position struct {
	X, Y int16
}

func PositionFromGp0(cmd uint32) Position {
	return Position{
		X: signExtend11(uint16(cmd & 0x7ff)),
		Y: signExtend11(uint16((cmd >> 16) & 0x7ff)),
	}
}

func signExtend11(v uint16) int16 {
	return int16(v<<5) >> 5
}

// Add sums p and o and wraps the result back into the signed 11-bit
// range, matching hardware's behavior when a vertex position is offset
// by the GPU's draw offset
func (p Position) Add(o Position) Position {
	return Position{
		X: signExtend11(uint16(p.X+o.X) & 0x7ff),
		Y: signExtend11(uint16(p.Y+o.Y) & 0x7ff),
	}
}

// Size is a fill/rectangle width-height pair
type Size struct {
	Width, Height int16
}

// SizeFromGp0Fill decodes the size word of GP0(0x02), Fill Rectangle
// in VRAM: width is rounded up to the next multiple of 16
func SizeFromGp0Fill(cmd uint32) Size {
	w := int16(cmd&0x3ff) + 0xf
	w &^= 0xf
	return Size{Width: w, Height: int16((cmd >> 16) & 0x1ff)}
}

// Color is an 8-bit R/G/B triple, either a flat primitive color or one
// Gouraud-shaded vertex color
type Color struct {
	R, G, B uint8
}

func ColorFromGp0(cmd uint32) Color {
	return Color{R: uint8(cmd), G: uint8(cmd >> 8), B: uint8(cmd >> 16)}
}

// Texcoord is an unsigned 8-bit (u,v) texture coordinate
type Texcoord struct {
	X, Y int16
}

func TexcoordFromGp0(cmd uint32) Texcoord {
	return Texcoord{X: int16(cmd & 0xff), Y: int16((cmd >> 8) & 0xff)}
}

func (t Texcoord) Add(o Texcoord) Texcoord {
	return Texcoord{X: t.X + o.X, Y: t.Y + o.Y}
}

// Palette is a VRAM coordinate (x*16, y) naming a CLUT's location
type Palette struct {
	X, Y uint16
}

func PaletteFromGp0(cmd uint32) Palette {
	word := (cmd >> 16) & 0xffff
	return Palette{X: uint16(word&0x3f) * 16, Y: uint16((word >> 6) & 0x1ff)}
}

// TexturePage encodes a texture page's base VRAM coordinates and
// color depth, taken from the high half of a polygon's second
// texture-mapped word
type TexturePage struct {
	BaseX, BaseY uint16
	Depth        TextureDepth
}

func TexturePageFromGp0(word uint16) TexturePage {
	return TexturePage{
		BaseX: uint16(word&0xf) * 64,
		BaseY: uint16((word>>4)&1) * 256,
		Depth: TextureDepth((word >> 7) & 3),
	}
}

// QuadTriangleIndex selects which 3 of a textured quad's 4 UVs are
// active for the triangle currently being rasterized
type QuadTriangleIndex int

const (
	QUAD_TRIANGLE_FIRST QuadTriangleIndex = iota
	QUAD_TRIANGLE_SECOND
)

// TextureInfo carries everything the rasterizer needs to sample a
// textured primitive
type TextureInfo struct {
	Uv        [4]Texcoord
	UvActive  [3]Texcoord
	Palette   Palette
	Page      TexturePage
	ModColor  Color
	IsTexture bool
}

func (tex *TextureInfo) SelectTriangle(which QuadTriangleIndex) {
	switch which {
	case QUAD_TRIANGLE_FIRST:
		tex.UvActive = [3]Texcoord{tex.Uv[0], tex.Uv[1], tex.Uv[2]}
	case QUAD_TRIANGLE_SECOND:
		tex.UvActive = [3]Texcoord{tex.Uv[1], tex.Uv[2], tex.Uv[3]}
	}
}

// TextureMode selects whether a textured primitive's color modulates
// the sampled texel or is ignored (raw)
type TextureMode uint8

const (
	TEXTURE_MODE_BLENDED TextureMode = 0
	TEXTURE_MODE_RAW     TextureMode = 1
)

// Shading distinguishes a flat-colored primitive from a Gouraud one
type Shading uint8

const (
	SHADING_FLAT    Shading = 0
	SHADING_GOURAUD Shading = 1
)

// RectSize selects a rectangle primitive's fixed size, or that it
// carries an explicit size word
type RectSize uint8

const (
	RECT_SIZE_VARIABLE RectSize = 0
	RECT_SIZE_1X1      RectSize = 1
	RECT_SIZE_8X8      RectSize = 2
	RECT_SIZE_16X16    RectSize = 3
)

// PrimitiveType is the GP0 command header's top-level kind, decoded
// from the opcode byte's upper three bits
type PrimitiveType uint8

const (
	PRIMITIVE_POLYGON   PrimitiveType = 1
	PRIMITIVE_LINE      PrimitiveType = 2
	PRIMITIVE_RECTANGLE PrimitiveType = 3
)

// DrawCommand is the header word of a GP0 drawing primitive packet:
// an opcode in bits [24:32] and a flat/modulation color in bits
// [0:24). It's decoded as one of three overlays plus a common Flags
// view; rather than subclassing, each overlay is a method set on the
// same underlying word
type DrawCommand struct {
	Word uint32
}

func (cmd DrawCommand) Opcode() uint8 {
	return uint8(cmd.Word >> 24)
}

func (cmd DrawCommand) Type() PrimitiveType {
	return PrimitiveType((cmd.Opcode() >> 5) & 7)
}

func (cmd DrawCommand) Flags() Flags {
	op := cmd.Opcode()
	return Flags{
		TextureMode:     TextureMode((op >> 0) & 1),
		SemiTransparent: (op>>1)&1 != 0,
		TextureMapped:   (op>>2)&1 != 0,
		Shading:         Shading((op >> 4) & 1),
	}
}

// HeaderColor is the flat/modulation color packed into the header
// word's low 24 bits
func (cmd DrawCommand) HeaderColor() Color {
	return ColorFromGp0(cmd.Word)
}

// Flags is the set of bits shared by Polygon, Line, and Rectangle
// command headers
type Flags struct {
	TextureMode     TextureMode
	SemiTransparent bool
	TextureMapped   bool
	Shading         Shading
}

func (cmd DrawCommand) Polygon() PolygonCommand {
	return PolygonCommand{DrawCommand: cmd}
}

type PolygonCommand struct {
	DrawCommand
}

func (p PolygonCommand) IsQuad() bool {
	return (p.Opcode()>>3)&1 != 0
}

func (p PolygonCommand) VertexCount() int {
	if p.IsQuad() {
		return 4
	}
	return 3
}

// ArgCount is the number of 32-bit words, after the command header
// itself, the GP0 ingress must accumulate before dispatching
func (p PolygonCommand) ArgCount() int {
	n := p.VertexCount()
	flags := p.Flags()
	if flags.TextureMapped {
		n *= 2
	}
	if flags.Shading == SHADING_GOURAUD {
		n += p.VertexCount() - 1
	}
	return n
}

func (cmd DrawCommand) Rectangle() RectangleCommand {
	return RectangleCommand{DrawCommand: cmd}
}

type RectangleCommand struct {
	DrawCommand
}

func (r RectangleCommand) Size() RectSize {
	return RectSize((r.Opcode() >> 3) & 3)
}

func (r RectangleCommand) IsVariableSized() bool {
	return r.Size() == RECT_SIZE_VARIABLE
}

func (r RectangleCommand) StaticSize() Size {
	switch r.Size() {
	case RECT_SIZE_1X1:
		return Size{1, 1}
	case RECT_SIZE_8X8:
		return Size{8, 8}
	case RECT_SIZE_16X16:
		return Size{16, 16}
	}
	return Size{}
}

func (r RectangleCommand) ArgCount() int {
	n := 1
	if r.IsVariableSized() {
		n++
	}
	if r.Flags().TextureMapped {
		n++
	}
	return n
}
