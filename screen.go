package main

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/massung/chip8-vm/chip8"
)

const (
	WindowWidth  = 550
	WindowHeight = 298

	// ScreenshotScale is how many image pixels a CHIP-8 pixel becomes.
	ScreenshotScale = 8
)

var (
	Screen *sdl.Texture

	// dirty is set when the texture needs to be rebuilt.
	dirty = true

	// RGBA32 pixels for the texture.
	pixels = make([]byte, chip8.Width*chip8.Height*4)
)

/// InitScreen creates the streaming texture for the CHIP-8 video memory.
///
func InitScreen() error {
	var err error

	// create a texture the size of the display
	Screen, err = Renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA32), sdl.TEXTUREACCESS_STREAMING, chip8.Width, chip8.Height)
	if err != nil {
		return fmt.Errorf("creating screen texture: %w", err)
	}

	return nil
}

/// RefreshScreen with the CHIP-8 video memory.
///
func RefreshScreen() {
	if !dirty {
		return
	}
	dirty = false

	fb := VM.Framebuffer()

	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			r, g, b, _ := chip8.Palette[fb.Pixel(x, y)].RGBA()
			i := (y*chip8.Width + x) * 4

			pixels[i+0] = byte(r >> 8)
			pixels[i+1] = byte(g >> 8)
			pixels[i+2] = byte(b >> 8)
			pixels[i+3] = 255
		}
	}

	if err := Screen.Update(nil, pixels, chip8.Width*4); err != nil {
		AppLogger.WithError(err).Error("screen update failed")
	}
}

/// CopyScreen to the renderer, stretched by scale.
///
func CopyScreen(x, y, scale int32) {
	dst := sdl.Rect{
		X: x,
		Y: y,
		W: chip8.Width * scale,
		H: chip8.Height * scale,
	}

	_ = Renderer.Copy(Screen, nil, &dst)
}

/// Screenshot saves the display to a BMP file in the working directory.
///
func Screenshot() {
	fb := VM.Framebuffer()
	src := fb.Image(1)

	// nearest neighbor keeps the pixels square
	dst := image.NewRGBA(image.Rect(0, 0, chip8.Width*ScreenshotScale, chip8.Height*ScreenshotScale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	name := fmt.Sprintf("chip8-%s.bmp", time.Now().Format("20060102-150405"))

	if err := writeBMP(name, dst); err != nil {
		AppLogger.WithError(err).Error("screenshot failed")
		return
	}

	AppLogger.WithField("file", name).Info("screenshot saved")
}

func writeBMP(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := bmp.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
