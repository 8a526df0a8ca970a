package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/san-kum/musclesim/internal/sim"
)

type GIFOptions struct {
	Width, Height int // canvas cells
	Stride        int // samples per frame
	Delay         int // per frame, hundredths of a second
	DotSize       int // image pixels per braille dot
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Width: 60, Height: 20, Stride: 5, Delay: 5, DotSize: 3}
}

var gifPalette = color.Palette{color.Black, color.RGBA{0, 255, 255, 255}}

// captureFrame rasterises the canvas, one DotSize square per braille dot.
func captureFrame(c *Canvas, dot int) *image.Paletted {
	cw, ch := c.PixelSize()
	img := image.NewPaletted(image.Rect(0, 0, cw*dot, ch*dot), gifPalette)
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	return img
}

// WriteGIF encodes every Stride-th sample of history, plus the last one, as
// an animation that loops forever.
func WriteGIF(w io.Writer, history sim.TimeHistory, scene *Scene, opts GIFOptions) error {
	if len(history) == 0 {
		return errors.New("viz: empty history")
	}
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	if opts.DotSize < 1 {
		opts.DotSize = 1
	}

	canvas := NewCanvas(opts.Width, opts.Height)
	anim := gif.GIF{LoopCount: 0}

	addFrame := func(theta float64) {
		scene.Draw(canvas, theta)
		anim.Image = append(anim.Image, captureFrame(canvas, opts.DotSize))
		anim.Delay = append(anim.Delay, opts.Delay)
	}

	last := len(history) - 1
	for i := 0; i < last; i += opts.Stride {
		addFrame(history[i].Theta)
	}
	addFrame(history[last].Theta)

	return gif.EncodeAll(w, &anim)
}
