package emulator

// TextureDepth is the color depth of a texture page's pixel data
type TextureDepth uint8

const (
	TEXTURE_DEPTH_4BIT  TextureDepth = 0 // 4 bits per pixel
	TEXTURE_DEPTH_8BIT  TextureDepth = 1 // 8 bits per pixel
	TEXTURE_DEPTH_15BIT TextureDepth = 2 // 15 bits per pixel
)

// Interlaced output splits each frame in two fields
type Field uint8

const (
	FIELD_TOP    Field = 1 // Top field (odd lines)
	FIELD_BOTTOM Field = 0 // Bottom field (even lines)
)

// Video output horizontal resolution
type HorizontalRes uint8

// HResFromFields builds a HorizontalRes from the 2-bit field hr1 and
// the 1-bit field hr2
func HResFromFields(hr1, hr2 uint8) HorizontalRes {
	hr := (hr2 & 1) | ((hr1 & 3) << 1)
	return HorizontalRes(hr)
}

// IntoStatus returns the value of status register bits [18:16]
func (hr HorizontalRes) IntoStatus() uint32 {
	return uint32(hr) << 16
}

// Video output vertical resolution
type VerticalRes uint8

const (
	VRES_240_LINES VerticalRes = 0 // 240 lines
	VRES_480_LINES VerticalRes = 1 // 480 lines (only available for interlaced output)
)

// VMode is the video standard: NTSC or PAL
type VMode uint8

const (
	VMODE_NTSC VMode = 0 // NTSC: 480i60Hz
	VMODE_PAL  VMode = 1 // PAL: 576i50Hz
)

// Display area color depth
type DisplayDepth uint8

const (
	DISPLAY_DEPTH_15BITS DisplayDepth = 0 // 15 bits per pixel
	DISPLAY_DEPTH_24BITS DisplayDepth = 1 // 24 bits per pixel
)

// DmaDirection is the requested GPU DMA direction
type DmaDirection uint8

const (
	DD_DMA_OFF     DmaDirection = 0
	DD_DMA_FIFO    DmaDirection = 1
	DD_CPU_TO_GP0  DmaDirection = 2
	DD_VRAM_TO_CPU DmaDirection = 3
)

// vramTransfer tracks an in-progress CPU<->VRAM rectangle copy started
// by GP0(0xA0) or GP0(0xC0); words arriving while one is active are
// consumed as pixel payload instead of being queued as a new command
type vramTransfer struct {
	x, y   uint32 // rectangle origin
	w, h   uint32 // rectangle size
	curX   uint32 // next column to touch, relative to x
	curY   uint32 // next row to touch, relative to y
	toCpu  bool   // false: streaming into VRAM; true: draining out to the CPU
	pixels []uint16
}

func (t *vramTransfer) done() bool {
	return uint32(t.curY) >= t.h
}

func (t *vramTransfer) advance() {
	t.curX++
	if t.curX >= t.w {
		t.curX = 0
		t.curY++
	}
}

// Gpu implements the GP0/GP1 command registers, the drawing pipeline
// (via Rasterizer) and the VRAM store the rest of the machine observes
// through the Bus's GPUREAD/GPUSTAT ports
type Gpu struct {
	PageBaseX            uint8 // Texture page base X coordinate (4 bits, 64 byte increment)
	PageBaseY            uint8 // Texture page base Y coordinate (1 bit, 256 line increment)
	SemiTransparency     uint8 // Blend mode selector for semi-transparent draws
	TextureDepth         TextureDepth
	Dithering            bool
	DrawToDisplay        bool
	ForceSetMaskBit      bool // Force the mask bit to 1 on every write to VRAM
	PreserveMaskedPixels bool // Skip writes to pixels that already have the mask bit set
	Field                Field
	TextureDisable       bool
	VRes                 VerticalRes
	HRes                 HorizontalRes
	VMode                VMode
	DisplayDepth         DisplayDepth
	Interlaced           bool
	DisplayDisabled      bool
	Interrupt            bool
	DmaDirection         DmaDirection
	RectangleTextureXFlip bool
	RectangleTextureYFlip bool
	TextureWindowXMask   uint8
	TextureWindowYMask   uint8
	TextureWindowXOffset uint8
	TextureWindowYOffset uint8
	DrawingAreaLeft      uint16
	DrawingAreaTop       uint16
	DrawingAreaRight     uint16
	DrawingAreaBottom    uint16
	DrawingXOffset       int16
	DrawingYOffset       int16
	DisplayVRamXStart    uint16
	DisplayVRamYStart    uint16
	DisplayHorizStart    uint16
	DisplayHorizEnd      uint16
	DisplayLineStart     uint16
	DisplayLineEnd       uint16

	GP0Command          CommandBuffer
	GP0CommandRemaining uint32
	GP0CommandMethod    func()

	Vram *Vram

	transfer *vramTransfer
}

func NewGpu() *Gpu {
	gpu := &Gpu{
		TextureDepth:    TEXTURE_DEPTH_4BIT,
		Field:           FIELD_TOP,
		HRes:            HResFromFields(0, 0),
		VRes:            VRES_240_LINES,
		VMode:           VMODE_NTSC,
		DisplayDepth:    DISPLAY_DEPTH_15BITS,
		DisplayDisabled: true,
		DmaDirection:    DD_DMA_OFF,
		Vram:            NewVram(),
	}
	return gpu
}

// DrawArea returns the current drawing area clip rectangle
func (gpu *Gpu) DrawArea() (left, top, right, bottom uint16) {
	return gpu.DrawingAreaLeft, gpu.DrawingAreaTop, gpu.DrawingAreaRight, gpu.DrawingAreaBottom
}

// DrawOffset returns the signed offset applied to every vertex
func (gpu *Gpu) DrawOffset() (int16, int16) {
	return gpu.DrawingXOffset, gpu.DrawingYOffset
}

// texPage returns the texture page currently latched by GP0(0xE1),
// used by rectangle draws (which carry no page word of their own)
func (gpu *Gpu) texPage() TexturePage {
	return TexturePage{
		BaseX: uint16(gpu.PageBaseX) * 64,
		BaseY: uint16(gpu.PageBaseY) * 256,
		Depth: gpu.TextureDepth,
	}
}

// PushGP0 feeds one word into the GP0 command stream: a word starting
// a new command is decoded for its argument count, words completing
// an in-flight VRAM transfer are written straight to VRAM, and a word
// completing a command's argument list dispatches it
func (gpu *Gpu) PushGP0(val uint32) error {
	if gpu.transfer != nil {
		gpu.consumeTransferWord(val)
		return nil
	}

	if gpu.GP0CommandRemaining == 0 {
		gpu.GP0Command.Clear()
		gpu.GP0Command.PushWord(val)
		return gpu.beginGP0Command(val)
	}

	gpu.GP0Command.PushWord(val)
	gpu.GP0CommandRemaining--
	if gpu.GP0CommandRemaining == 0 {
		method := gpu.GP0CommandMethod
		gpu.GP0CommandMethod = nil
		if method != nil {
			method()
		}
	}
	return nil
}

func (gpu *Gpu) beginGP0Command(val uint32) error {
	opcode := uint8(val >> 24)

	switch {
	case opcode == 0x00:
		// NOP
	case opcode == 0x01:
		// Clear cache: no caching model implemented, nothing to do
	case opcode == 0x02:
		gpu.GP0CommandRemaining = 2
		gpu.GP0CommandMethod = gpu.execFillRect
	case opcode >= 0x20 && opcode <= 0x3f:
		cmd := DrawCommand{Word: val}.Polygon()
		gpu.GP0CommandRemaining = uint32(cmd.ArgCount())
		gpu.GP0CommandMethod = func() { gpu.execPolygon(cmd) }
	case opcode >= 0x40 && opcode <= 0x5f:
		// Poly-lines carry a variable, terminator-delimited vertex count;
		// line rendering is out of scope, so the command is consumed and
		// dropped rather than mis-parsed
		gpu.GP0CommandRemaining = 0
	case opcode >= 0x60 && opcode <= 0x7f:
		cmd := DrawCommand{Word: val}.Rectangle()
		gpu.GP0CommandRemaining = uint32(cmd.ArgCount())
		gpu.GP0CommandMethod = func() { gpu.execRectangle(cmd) }
	case opcode == 0x80:
		gpu.GP0CommandRemaining = 3
		gpu.GP0CommandMethod = gpu.execVramToVramCopy
	case opcode == 0xa0:
		gpu.GP0CommandRemaining = 2
		gpu.GP0CommandMethod = gpu.beginCpuToVramCopy
	case opcode == 0xc0:
		gpu.GP0CommandRemaining = 2
		gpu.GP0CommandMethod = gpu.beginVramToCpuCopy
	case opcode == 0xe1:
		gpu.GP0DrawMode(val)
	case opcode == 0xe2:
		gpu.GP0TextureWindow(val)
	case opcode == 0xe3:
		gpu.GP0DrawingAreaTopLeft(val)
	case opcode == 0xe4:
		gpu.GP0DrawingAreaBottomRight(val)
	case opcode == 0xe5:
		gpu.GP0DrawingOffset(val)
	case opcode == 0xe6:
		gpu.GP0MaskBitSetting(val)
	default:
		// reserved/unrecognized opcodes are consumed as a bare,
		// argument-less NOP rather than faulted: real hardware
		// tolerates them the same way, and GpuDecodeError is
		// reserved for a recognized command with a malformed
		// argument count
	}
	return nil
}

// GP0 is the Bus's entry point for GP0 register writes
func (gpu *Gpu) GP0(val uint32) error {
	return gpu.PushGP0(val)
}

// GP0(0xE1) command
func (gpu *Gpu) GP0DrawMode(val uint32) {
	gpu.PageBaseX = uint8(val & 0xf)
	gpu.PageBaseY = uint8((val >> 4) & 1)
	gpu.SemiTransparency = uint8((val >> 5) & 3)

	switch (val >> 7) & 3 {
	case 0:
		gpu.TextureDepth = TEXTURE_DEPTH_4BIT
	case 1:
		gpu.TextureDepth = TEXTURE_DEPTH_8BIT
	default:
		gpu.TextureDepth = TEXTURE_DEPTH_15BIT
	}

	gpu.Dithering = ((val >> 9) & 1) != 0
	gpu.DrawToDisplay = ((val >> 10) & 1) != 0
	gpu.TextureDisable = ((val >> 11) & 1) != 0
	gpu.RectangleTextureXFlip = ((val >> 12) & 1) != 0
	gpu.RectangleTextureYFlip = ((val >> 13) & 1) != 0
}

// GP0(0xE3): Set Drawing Area Top Left
func (gpu *Gpu) GP0DrawingAreaTopLeft(val uint32) {
	gpu.DrawingAreaTop = uint16((val >> 10) & 0x3ff)
	gpu.DrawingAreaLeft = uint16(val & 0x3ff)
}

// GP0(0xE4): Set Drawing Area BottomRight
func (gpu *Gpu) GP0DrawingAreaBottomRight(val uint32) {
	gpu.DrawingAreaBottom = uint16((val >> 10) & 0x3ff)
	gpu.DrawingAreaRight = uint16(val & 0x3ff)
}

// GP0(0xE5): Set Drawing Offset
func (gpu *Gpu) GP0DrawingOffset(val uint32) {
	x := uint16(val & 0x7ff)
	y := uint16((val >> 11) & 0x7ff)

	gpu.DrawingXOffset = (int16(x << 5)) >> 5
	gpu.DrawingYOffset = (int16(y << 5)) >> 5
}

// GP0(0xE2): Set Texture Window
func (gpu *Gpu) GP0TextureWindow(val uint32) {
	gpu.TextureWindowXMask = uint8(val & 0x1f)
	gpu.TextureWindowYMask = uint8((val >> 5) & 0x1f)
	gpu.TextureWindowXOffset = uint8((val >> 10) & 0x1f)
	gpu.TextureWindowYOffset = uint8((val >> 15) & 0x1f)
}

// GP0(0xE6): Set Mask Bit Setting
func (gpu *Gpu) GP0MaskBitSetting(val uint32) {
	gpu.ForceSetMaskBit = (val & 1) != 0
	gpu.PreserveMaskedPixels = (val & 2) != 0
}

func (gpu *Gpu) execPolygon(cmd PolygonCommand) {
	args := gpu.GP0Command.Buffer[1:gpu.GP0Command.Len]
	Rasterizer{}.DrawPolygon(gpu, cmd, args)
}

func (gpu *Gpu) execRectangle(cmd RectangleCommand) {
	args := gpu.GP0Command.Buffer[1:gpu.GP0Command.Len]
	Rasterizer{}.DrawRectangle(gpu, cmd, args)
}

// GP0(0x02): Fill Rectangle in VRAM, a flat solid fill that ignores
// the drawing area clip and the mask bit
func (gpu *Gpu) execFillRect() {
	color := DrawCommand{Word: gpu.GP0Command.Get(0)}.HeaderColor()
	topLeft := PositionFromGp0(gpu.GP0Command.Get(1))
	size := SizeFromGp0Fill(gpu.GP0Command.Get(2))

	val := RGB16(color.R, color.G, color.B, false)
	for dy := int16(0); dy < size.Height; dy++ {
		for dx := int16(0); dx < size.Width; dx++ {
			x := uint32(topLeft.X+dx) & 0x3ff
			y := uint32(topLeft.Y+dy) & 0x1ff
			gpu.Vram.Write16(x, y, val)
		}
	}
}

func rectFromGp0(posWord, sizeWord uint32) (x, y, w, h uint32) {
	x = posWord & 0x3ff
	y = (posWord >> 16) & 0x1ff
	w = sizeWord & 0x3ff
	if w == 0 {
		w = 0x400
	}
	h = (sizeWord >> 16) & 0x1ff
	if h == 0 {
		h = 0x200
	}
	return
}

// GP0(0x80): VRAM to VRAM copy, performed eagerly since both endpoints
// are already resident
func (gpu *Gpu) execVramToVramCopy() {
	srcX, srcY, w, h := rectFromGp0(gpu.GP0Command.Get(1), gpu.GP0Command.Get(3))
	dstX, dstY, _, _ := rectFromGp0(gpu.GP0Command.Get(2), gpu.GP0Command.Get(3))

	for row := uint32(0); row < h; row++ {
		for col := uint32(0); col < w; col++ {
			val := gpu.Vram.Read16(srcX+col, srcY+row)
			gpu.Vram.Write16(dstX+col, dstY+row, val)
		}
	}
}

// GP0(0xA0): CPU to VRAM copy. The header and rectangle words are
// already in the command buffer; subsequent words are pixel payload
// and arrive outside the normal command-accumulation path
func (gpu *Gpu) beginCpuToVramCopy() {
	x, y, w, h := rectFromGp0(gpu.GP0Command.Get(1), gpu.GP0Command.Get(2))
	gpu.transfer = &vramTransfer{x: x, y: y, w: w, h: h}
}

// GP0(0xC0): VRAM to CPU copy. Pixels are read out eagerly into a
// buffer that GPUREAD then drains
func (gpu *Gpu) beginVramToCpuCopy() {
	x, y, w, h := rectFromGp0(gpu.GP0Command.Get(1), gpu.GP0Command.Get(2))
	pixels := make([]uint16, 0, w*h)
	for row := uint32(0); row < h; row++ {
		for col := uint32(0); col < w; col++ {
			pixels = append(pixels, gpu.Vram.Read16(x+col, y+row))
		}
	}
	gpu.transfer = &vramTransfer{x: x, y: y, w: w, h: h, toCpu: true, pixels: pixels}
}

// consumeTransferWord writes (or, for a VRAM->CPU copy, discards) one
// word's worth of pixel payload during an active GP0(0xA0) transfer
func (gpu *Gpu) consumeTransferWord(val uint32) {
	t := gpu.transfer
	if t.toCpu {
		return
	}
	for _, px := range [2]uint16{uint16(val), uint16(val >> 16)} {
		if t.done() {
			break
		}
		x := (t.x + t.curX) & 0x3ff
		y := (t.y + t.curY) & 0x1ff
		gpu.Vram.Write16(x, y, px)
		t.advance()
	}
	if t.done() {
		gpu.transfer = nil
	}
}

// Handle writes to the GP1 command register
func (gpu *Gpu) GP1(val uint32) error {
	opcode := (val >> 24) & 0xff

	switch opcode {
	case 0x00:
		gpu.GP1Reset()
	case 0x04:
		gpu.GP1DmaDirection(val)
	case 0x05:
		gpu.GP1DisplayVRAMStart(val)
	case 0x06:
		gpu.GP1DisplayHorizontalRange(val)
	case 0x07:
		gpu.GP1DisplayVerticalRange(val)
	case 0x08:
		gpu.GP1DisplayMode(val)
	default:
		return &GpuDecodeError{Opcode: uint8(opcode), Reason: "unhandled GP1 command"}
	}
	return nil
}

// GP1(0x00): soft reset
func (gpu *Gpu) GP1Reset() {
	gpu.Interrupt = false
	gpu.PageBaseX = 0
	gpu.PageBaseY = 0
	gpu.SemiTransparency = 0
	gpu.TextureDepth = TEXTURE_DEPTH_4BIT
	gpu.TextureWindowXMask = 0
	gpu.TextureWindowYMask = 0
	gpu.TextureWindowXOffset = 0
	gpu.TextureWindowYOffset = 0
	gpu.Dithering = false
	gpu.DrawToDisplay = false
	gpu.TextureDisable = false
	gpu.RectangleTextureXFlip = false
	gpu.RectangleTextureYFlip = false
	gpu.DrawingAreaLeft = 0
	gpu.DrawingAreaTop = 0
	gpu.DrawingAreaRight = 0
	gpu.DrawingAreaBottom = 0
	gpu.DrawingXOffset = 0
	gpu.DrawingYOffset = 0
	gpu.ForceSetMaskBit = false
	gpu.PreserveMaskedPixels = false
	gpu.DmaDirection = DD_DMA_OFF
	gpu.DisplayDisabled = true
	gpu.DisplayVRamXStart = 0
	gpu.DisplayVRamYStart = 0
	gpu.HRes = HResFromFields(0, 0)
	gpu.VRes = VRES_240_LINES
	gpu.VMode = VMODE_NTSC
	gpu.Interlaced = true
	gpu.DisplayHorizStart = 0x200
	gpu.DisplayHorizEnd = 0xc00
	gpu.DisplayLineStart = 0x10
	gpu.DisplayLineEnd = 0x100
	gpu.DisplayDepth = DISPLAY_DEPTH_15BITS
	gpu.GP0Command.Clear()
	gpu.GP0CommandRemaining = 0
	gpu.GP0CommandMethod = nil
	gpu.transfer = nil
}

// GP1(0x08): display mode
func (gpu *Gpu) GP1DisplayMode(val uint32) {
	hr1 := uint8(val & 3)
	hr2 := uint8((val >> 6) & 1)

	gpu.HRes = HResFromFields(hr1, hr2)

	if val&0x4 != 0 {
		gpu.VRes = VRES_480_LINES
	} else {
		gpu.VRes = VRES_240_LINES
	}

	if val&0x8 != 0 {
		gpu.VMode = VMODE_PAL
	} else {
		gpu.VMode = VMODE_NTSC
	}

	gpu.DisplayDepth = DISPLAY_DEPTH_15BITS
	gpu.Interlaced = val&0x20 != 0
}

// GP1(0x04): DMA direction
func (gpu *Gpu) GP1DmaDirection(val uint32) {
	switch val & 3 {
	case 0:
		gpu.DmaDirection = DD_DMA_OFF
	case 1:
		gpu.DmaDirection = DD_DMA_FIFO
	case 2:
		gpu.DmaDirection = DD_CPU_TO_GP0
	case 3:
		gpu.DmaDirection = DD_VRAM_TO_CPU
	}
}

// GP1(0x05): Display VRAM Start
func (gpu *Gpu) GP1DisplayVRAMStart(val uint32) {
	gpu.DisplayVRamXStart = uint16(val & 0x3fe)
	gpu.DisplayVRamYStart = uint16((val >> 10) & 0x1ff)
}

// GP1(0x06): Display Horizontal Range
func (gpu *Gpu) GP1DisplayHorizontalRange(val uint32) {
	gpu.DisplayHorizStart = uint16(val & 0xfff)
	gpu.DisplayHorizEnd = uint16((val >> 12) & 0xfff)
}

// GP1(0x07): Display Vertical Range
func (gpu *Gpu) GP1DisplayVerticalRange(val uint32) {
	gpu.DisplayLineStart = uint16(val & 0x3ff)
	gpu.DisplayLineEnd = uint16((val >> 10) & 0x3ff)
}

// Status returns the value of the GPUSTAT register
func (gpu *Gpu) Status() uint32 {
	var r uint32

	r |= uint32(gpu.PageBaseX) << 0
	r |= uint32(gpu.PageBaseY) << 4
	r |= uint32(gpu.SemiTransparency) << 5
	r |= uint32(gpu.TextureDepth) << 7
	r |= oneIfTrue(gpu.Dithering) << 9
	r |= oneIfTrue(gpu.DrawToDisplay) << 10
	r |= oneIfTrue(gpu.ForceSetMaskBit) << 11
	r |= oneIfTrue(gpu.PreserveMaskedPixels) << 12
	r |= uint32(gpu.Field) << 13
	r |= oneIfTrue(gpu.TextureDisable) << 15
	r |= gpu.HRes.IntoStatus()
	r |= uint32(gpu.VRes) << 19
	r |= uint32(gpu.VMode) << 20
	r |= uint32(gpu.DisplayDepth) << 21
	r |= oneIfTrue(gpu.Interlaced) << 22
	r |= oneIfTrue(gpu.DisplayDisabled) << 23
	r |= oneIfTrue(gpu.Interrupt) << 24

	r |= 1 << 26 // ready to receive command
	r |= 1 << 27 // ready to send VRAM to CPU
	r |= 1 << 28 // ready to receive DMA block

	r |= uint32(gpu.DmaDirection) << 29

	var dmaRequest uint32
	switch gpu.DmaDirection {
	case DD_DMA_OFF:
		dmaRequest = 0
	case DD_DMA_FIFO:
		dmaRequest = 1
	case DD_CPU_TO_GP0:
		dmaRequest = (r >> 28) & 1
	case DD_VRAM_TO_CPU:
		dmaRequest = (r >> 27) & 1
	}
	r |= dmaRequest << 25

	return r
}

// Read returns the value of the GPUREAD register: the next pixel pair
// of an in-progress GP0(0xC0) VRAM-to-CPU transfer, or 0 otherwise
func (gpu *Gpu) Read() uint32 {
	t := gpu.transfer
	if t == nil || !t.toCpu {
		return 0
	}

	idx := t.curY*t.w + t.curX
	var lo, hi uint16
	if idx < uint32(len(t.pixels)) {
		lo = t.pixels[idx]
	}
	t.advance()
	if !t.done() {
		idx2 := t.curY*t.w + t.curX
		if idx2 < uint32(len(t.pixels)) {
			hi = t.pixels[idx2]
		}
		t.advance()
	}
	if t.done() {
		gpu.transfer = nil
	}
	return uint32(lo) | uint32(hi)<<16
}
