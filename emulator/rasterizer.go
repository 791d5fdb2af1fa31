package emulator

// RenderType selects which monomorphized pixel-shading function a
// triangle is drawn with. Chosen once per triangle; the inner pixel
// loop never branches on it
type RenderType int

const (
	RENDER_SHADED RenderType = iota
	RENDER_TEX_P4
	RENDER_TEX_P8
	RENDER_TEX_D16
)

// BarycentricCoords are the three edge-function weights for a pixel
// inside a triangle, in the same units as Area
type BarycentricCoords struct {
	A, B, C int32
}

type texelPos struct {
	X, Y int32
}

// Rasterizer decodes GP0 draw commands into VRAM writes. It carries no
// state of its own; every operation borrows the Gpu it's drawing into
type Rasterizer struct{}

// edge is the half-space function used both to compute a triangle's
// signed area (edge(p0,p1,p2)) and each pixel's barycentric weight
func edge(a, b, p Position) int32 {
	return int32(b.X-a.X)*int32(p.Y-a.Y) - int32(b.Y-a.Y)*int32(p.X-a.X)
}

// isTopLeftEdge classifies an edge a->b (in the triangle's v0->v1->v2
// cyclic order, after the winding fixup in drawTriangle) as a top or
// left edge for the fill rule: a left edge descends in VRAM row order
// (dy < 0, since rows increase downward and this traversal direction
// runs against that), a top edge is horizontal and runs rightward
func isTopLeftEdge(a, b Position) bool {
	dx := int32(b.X - a.X)
	dy := int32(b.Y - a.Y)
	return dy < 0 || (dy == 0 && dx > 0)
}

// DrawPolygon rasterizes a decoded Polygon command's assembled word
// vector into one or two triangles
func (Rasterizer) DrawPolygon(gpu *Gpu, cmd PolygonCommand, args []uint32) {
	positions, colors, tex := extractDrawDataPolygon(gpu, cmd, args)

	flags := cmd.Flags()
	renderType := selectRenderType(flags, &tex)

	if cmd.IsQuad() {
		tex.SelectTriangle(QUAD_TRIANGLE_FIRST)
		Rasterizer{}.drawTriangle(gpu,
			[3]Position{positions[0], positions[1], positions[2]},
			[3]Color{colors[0], colors[1], colors[2]},
			&tex, flags, renderType)

		tex.SelectTriangle(QUAD_TRIANGLE_SECOND)
		Rasterizer{}.drawTriangle(gpu,
			[3]Position{positions[1], positions[2], positions[3]},
			[3]Color{colors[1], colors[2], colors[3]},
			&tex, flags, renderType)
		return
	}

	tex.SelectTriangle(QUAD_TRIANGLE_FIRST)
	Rasterizer{}.drawTriangle(gpu,
		[3]Position{positions[0], positions[1], positions[2]},
		[3]Color{colors[0], colors[1], colors[2]},
		&tex, flags, renderType)
}

// extractDrawDataPolygon walks a polygon command's argument words,
// consuming 1 word per vertex for position, 1 more per vertex when
// texture-mapped (word-1 carrying the palette, word-2 the texture
// page, both in their high half), and 1 per vertex after the first
// when Gouraud-shaded. Flat shading reuses the header's own color
func extractDrawDataPolygon(gpu *Gpu, cmd PolygonCommand, args []uint32) ([4]Position, [4]Color, TextureInfo) {
	flags := cmd.Flags()
	n := cmd.VertexCount()

	var positions [4]Position
	var colors [4]Color
	var tex TextureInfo
	tex.IsTexture = flags.TextureMapped

	dx, dy := gpu.DrawOffset()
	i := 0
	for v := 0; v < n; v++ {
		if flags.Shading == SHADING_GOURAUD {
			if v == 0 {
				colors[v] = cmd.HeaderColor()
			} else {
				colors[v] = ColorFromGp0(args[i])
				i++
			}
		} else {
			colors[v] = cmd.HeaderColor()
		}

		pos := PositionFromGp0(args[i])
		i++
		positions[v] = pos.Add(Position{X: dx, Y: dy})

		if flags.TextureMapped {
			word := args[i]
			i++
			tex.Uv[v] = TexcoordFromGp0(word)
			switch v {
			case 0:
				tex.Palette = PaletteFromGp0(word)
			case 1:
				tex.Page = TexturePageFromGp0(uint16(word >> 16))
			}
		}
	}
	tex.ModColor = cmd.HeaderColor()
	return positions, colors, tex
}

// DrawRectangle rasterizes a rectangle as two triangles; UVs increment
// pixel-wise from the base UV and only flat modulation applies
func (Rasterizer) DrawRectangle(gpu *Gpu, cmd RectangleCommand, args []uint32) {
	flags := cmd.Flags()
	dx, dy := gpu.DrawOffset()

	i := 0
	base := PositionFromGp0(args[i])
	i++
	base = base.Add(Position{X: dx, Y: dy})

	var tex TextureInfo
	tex.IsTexture = flags.TextureMapped
	tex.ModColor = cmd.HeaderColor()
	var baseUv Texcoord
	if flags.TextureMapped {
		word := args[i]
		i++
		baseUv = TexcoordFromGp0(word)
		tex.Palette = PaletteFromGp0(word)
		tex.Page = gpu.texPage()
	}

	size := cmd.StaticSize()
	if cmd.IsVariableSized() {
		size = sizeFromGp0(args[i])
		i++
	}

	p0 := base
	p1 := Position{X: base.X + size.Width, Y: base.Y}
	p2 := Position{X: base.X, Y: base.Y + size.Height}
	p3 := Position{X: base.X + size.Width, Y: base.Y + size.Height}

	tex.Uv[0] = baseUv
	tex.Uv[1] = Texcoord{X: baseUv.X + size.Width, Y: baseUv.Y}
	tex.Uv[2] = Texcoord{X: baseUv.X, Y: baseUv.Y + size.Height}
	tex.Uv[3] = Texcoord{X: baseUv.X + size.Width, Y: baseUv.Y + size.Height}

	renderType := selectRenderType(flags, &tex)

	tex.SelectTriangle(QUAD_TRIANGLE_FIRST)
	colors := [3]Color{tex.ModColor, tex.ModColor, tex.ModColor}
	Rasterizer{}.drawTriangle(gpu, [3]Position{p0, p1, p2}, colors, &tex, flags, renderType)

	tex.SelectTriangle(QUAD_TRIANGLE_SECOND)
	Rasterizer{}.drawTriangle(gpu, [3]Position{p1, p2, p3}, colors, &tex, flags, renderType)
}

func sizeFromGp0(cmd uint32) Size {
	return Size{Width: int16(cmd & 0x3ff), Height: int16((cmd >> 16) & 0x1ff)}
}

func selectRenderType(flags Flags, tex *TextureInfo) RenderType {
	if !flags.TextureMapped {
		return RENDER_SHADED
	}
	switch tex.Page.Depth {
	case TEXTURE_DEPTH_4BIT:
		return RENDER_TEX_P4
	case TEXTURE_DEPTH_8BIT:
		return RENDER_TEX_P8
	default:
		return RENDER_TEX_D16
	}
}

// drawTriangle implements the half-space edge-function fill with the
// top-left rule, clipped to the Gpu's active drawing area
func (Rasterizer) drawTriangle(gpu *Gpu, pos [3]Position, col [3]Color, tex *TextureInfo, flags Flags, renderType RenderType) {
	p0, p1, p2 := pos[0], pos[1], pos[2]

	area := edge(p0, p1, p2)
	if area == 0 {
		return
	}
	if area < 0 {
		p1, p2 = p2, p1
		col[1], col[2] = col[2], col[1]
		area = -area
	}

	minX, minY, maxX, maxY := gpu.DrawArea()

	boxMinX := min3(p0.X, p1.X, p2.X)
	boxMinY := min3(p0.Y, p1.Y, p2.Y)
	boxMaxX := max3(p0.X, p1.X, p2.X)
	boxMaxY := max3(p0.Y, p1.Y, p2.Y)

	if int32(boxMinX) < int32(minX) {
		boxMinX = int16(minX)
	}
	if int32(boxMinY) < int32(minY) {
		boxMinY = int16(minY)
	}
	if int32(boxMaxX) > int32(maxX) {
		boxMaxX = int16(maxX)
	}
	if int32(boxMaxY) > int32(maxY) {
		boxMaxY = int16(maxY)
	}

	biasW0 := isTopLeftEdge(p1, p2)
	biasW1 := isTopLeftEdge(p2, p0)
	biasW2 := isTopLeftEdge(p0, p1)

	pixelFn := selectPixelFunc(renderType)

	for y := boxMinY; y <= boxMaxY; y++ {
		for x := boxMinX; x <= boxMaxX; x++ {
			p := Position{X: x, Y: y}
			w0 := edge(p1, p2, p)
			w1 := edge(p2, p0, p)
			w2 := edge(p0, p1, p)

			if !insideTopLeft(w0, biasW0) || !insideTopLeft(w1, biasW1) || !insideTopLeft(w2, biasW2) {
				continue
			}

			bar := BarycentricCoords{A: w0, B: w1, C: w2}
			pixelFn(gpu, col, tex, bar, area, flags, uint32(x), uint32(y))
		}
	}
}

func insideTopLeft(w int32, isTopLeft bool) bool {
	if w > 0 {
		return true
	}
	return w == 0 && isTopLeft
}

func min3(a, b, c int16) int16 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int16) int16 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

type pixelFunc func(gpu *Gpu, col [3]Color, tex *TextureInfo, bar BarycentricCoords, area int32, flags Flags, x, y uint32)

func selectPixelFunc(renderType RenderType) pixelFunc {
	switch renderType {
	case RENDER_TEX_P4:
		return drawPixelTexP4
	case RENDER_TEX_P8:
		return drawPixelTexP8
	case RENDER_TEX_D16:
		return drawPixelTexD16
	default:
		return drawPixelShaded
	}
}

func interpolate(a0, a1, a2, w0, w1, w2, area int32) int32 {
	return (a0*w0 + a1*w1 + a2*w2) / area
}

func drawPixelShaded(gpu *Gpu, col [3]Color, _ *TextureInfo, bar BarycentricCoords, area int32, flags Flags, x, y uint32) {
	r := uint8(interpolate(int32(col[0].R), int32(col[1].R), int32(col[2].R), bar.A, bar.B, bar.C, area))
	g := uint8(interpolate(int32(col[0].G), int32(col[1].G), int32(col[2].G), bar.A, bar.B, bar.C, area))
	b := uint8(interpolate(int32(col[0].B), int32(col[1].B), int32(col[2].B), bar.A, bar.B, bar.C, area))

	val := RGB16(r, g, b, gpu.ForceSetMaskBit)
	// untextured primitives have no sampled word to gate on, so the
	// primitive's own semi-transparent flag is the only condition
	writePixel(gpu, x, y, val, true, flags)
}

func calculateTexel(tex *TextureInfo, bar BarycentricCoords, area int32) texelPos {
	uv := tex.UvActive
	u := interpolate(int32(uv[0].X), int32(uv[1].X), int32(uv[2].X), bar.A, bar.B, bar.C, area)
	v := interpolate(int32(uv[0].Y), int32(uv[1].Y), int32(uv[2].Y), bar.A, bar.B, bar.C, area)
	return texelPos{X: u, Y: v}
}

func drawPixelTexP4(gpu *Gpu, _ [3]Color, tex *TextureInfo, bar BarycentricCoords, area int32, flags Flags, x, y uint32) {
	texel := calculateTexel(tex, bar, area)
	word := gpu.Vram.Read16(uint32(tex.Page.BaseX)+uint32(texel.X)/4, uint32(tex.Page.BaseY)+uint32(texel.Y))
	shift := (uint32(texel.X) & 3) * 4
	index := (word >> shift) & 0xf
	sample := gpu.Vram.Read16(uint32(tex.Palette.X)+uint32(index), uint32(tex.Palette.Y))
	drawSampledTexel(gpu, tex, sample, flags, x, y)
}

func drawPixelTexP8(gpu *Gpu, _ [3]Color, tex *TextureInfo, bar BarycentricCoords, area int32, flags Flags, x, y uint32) {
	texel := calculateTexel(tex, bar, area)
	word := gpu.Vram.Read16(uint32(tex.Page.BaseX)+uint32(texel.X)/2, uint32(tex.Page.BaseY)+uint32(texel.Y))
	var index uint16
	if texel.X&1 != 0 {
		index = (word >> 8) & 0xff
	} else {
		index = word & 0xff
	}
	sample := gpu.Vram.Read16(uint32(tex.Palette.X)+uint32(index), uint32(tex.Palette.Y))
	drawSampledTexel(gpu, tex, sample, flags, x, y)
}

func drawPixelTexD16(gpu *Gpu, _ [3]Color, tex *TextureInfo, bar BarycentricCoords, area int32, flags Flags, x, y uint32) {
	texel := calculateTexel(tex, bar, area)
	sample := gpu.Vram.Read16(uint32(tex.Page.BaseX)+uint32(texel.X), uint32(tex.Page.BaseY)+uint32(texel.Y))
	drawSampledTexel(gpu, tex, sample, flags, x, y)
}

// drawSampledTexel applies the transparent-zero rule, blended
// modulation, and semi-transparency before committing a textured pixel
func drawSampledTexel(gpu *Gpu, tex *TextureInfo, sample uint16, flags Flags, x, y uint32) {
	if sample == 0x0000 {
		return
	}

	val := sample
	if flags.TextureMode == TEXTURE_MODE_BLENDED {
		r, g, b := rgb16Channels(sample)
		mr := modulate(r, tex.ModColor.R)
		mg := modulate(g, tex.ModColor.G)
		mb := modulate(b, tex.ModColor.B)
		val = RGB16(mr, mg, mb, sample&0x8000 != 0)
	}

	semiTransparent := flags.SemiTransparent && sample&0x8000 != 0
	writePixel(gpu, x, y, val, semiTransparent, flags)
}

func modulate(tex, mod uint8) uint8 {
	v := (int32(tex) * int32(mod)) >> 7
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// writePixel commits a final RGB16 value to VRAM, blending against the
// current contents when semi-transparency applies
func writePixel(gpu *Gpu, x, y uint32, val uint16, semiTransparentSample bool, flags Flags) {
	if flags.SemiTransparent && semiTransparentSample {
		back := gpu.Vram.Read16(x, y)
		val = blendSemiTransparent(back, val, gpu.SemiTransparency)
	}
	gpu.Vram.Write16(x, y, val)
}

// blendSemiTransparent applies the GPU's current semi-transparency
// operator: B/2+F/2, B+F, B-F, or B+F/4
func blendSemiTransparent(back, front uint16, operator uint8) uint16 {
	br, bg, bb := rgb16Channels(back)
	fr, fg, fb := rgb16Channels(front)

	blend := func(b, f uint8) uint8 {
		var v int32
		switch operator {
		case 0:
			v = (int32(b) + int32(f)) / 2
		case 1:
			v = int32(b) + int32(f)
		case 2:
			v = int32(b) - int32(f)
		case 3:
			v = int32(b) + int32(f)/4
		}
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}

	return RGB16(blend(br, fr), blend(bg, fg), blend(bb, fb), front&0x8000 != 0)
}
