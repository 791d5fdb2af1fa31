// Command psxview blits a Console's VRAM framebuffer to a window. It
// is a presentation collaborator only: it reads already-rasterized
// pixels and never touches drawing logic itself.
package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/retrowave/psxcore/emulator"
)

const (
	displayWidth  = 1024
	displayHeight = 512
)

// viewer implements ebiten.Game, redrawing the console's VRAM every
// frame. It never advances emulation itself (there is no CPU loop in
// this core); it only observes whatever the last GP0 commands drew
type viewer struct {
	console *emulator.Console
	pixels  []byte // RGBA8888, refreshed every Draw
}

func newViewer(console *emulator.Console) *viewer {
	return &viewer{
		console: console,
		pixels:  make([]byte, displayWidth*displayHeight*4),
	}
}

func (v *viewer) Update() error { return nil }

func (v *viewer) Draw(screen *ebiten.Image) {
	for y := 0; y < displayHeight; y++ {
		for x := 0; x < displayWidth; x++ {
			px := v.console.Gpu.Vram.Read16(uint32(x), uint32(y))
			r, g, b := rgb555ToRgb888(px)
			i := (y*displayWidth + x) * 4
			v.pixels[i+0] = r
			v.pixels[i+1] = g
			v.pixels[i+2] = b
			v.pixels[i+3] = 0xff
		}
	}
	screen.WritePixels(v.pixels)
	ebitenutil.DebugPrint(screen, "psxview: VRAM framebuffer")
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return displayWidth, displayHeight
}

func rgb555ToRgb888(px uint16) (r, g, b byte) {
	r = byte((px & 0x1f) << 3)
	g = byte(((px >> 5) & 0x1f) << 3)
	b = byte(((px >> 10) & 0x1f) << 3)
	return
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: psxview <bios-path> [bin-path]")
		os.Exit(2)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	bios, err := emulator.LoadBios(f)
	f.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}

	var disk *emulator.CdromDisk
	if len(os.Args) >= 3 {
		disk = emulator.NewCdromDisk(nil)
		if err := disk.InitFromBin(os.Args[2]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	console := emulator.NewConsole(bios, disk, nil)
	defer console.Close()

	ebiten.SetWindowSize(displayWidth, displayHeight)
	ebiten.SetWindowTitle("psxview")
	if err := ebiten.RunGame(newViewer(console)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
