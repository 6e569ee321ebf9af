package piano

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/pshvedko/smfnotes/midi"
)

var palette = [][3]float64{
	{0.20, 0.40, 0.80},
	{0.80, 0.30, 0.20},
	{0.20, 0.60, 0.30},
	{0.60, 0.30, 0.70},
	{0.85, 0.60, 0.10},
	{0.10, 0.60, 0.65},
}

const (
	MaxWidth  = 16384
	MaxHeight = 4096
)

// Roll draws decoded tracks as a piano roll: time runs left to right at
// Scale pixels per quarter note, each pitch is a row Height pixels tall.
// Both shrink so the image fits in MaxWidth by MaxHeight pixels.
type Roll struct {
	Scale     float64
	Height    float64
	MaxWidth  int
	MaxHeight int
}

type draw struct {
	*gg.Context
}

func bounds(f *midi.File) (low, high byte, end float64, ok bool) {
	low = 127
	for _, t := range f.Tracks {
		for _, n := range t {
			ok = true
			if n.Pitch < low {
				low = n.Pitch
			}
			if n.Pitch > high {
				high = n.Pitch
			}
			if n.End() > end {
				end = n.End()
			}
		}
	}
	return
}

func (r Roll) Draw(f *midi.File) image.Image {
	if r.Scale <= 0 {
		r.Scale = 32
	}
	if r.Height <= 0 {
		r.Height = 4
	}
	if r.MaxWidth <= 0 {
		r.MaxWidth = MaxWidth
	}
	if r.MaxHeight <= 0 {
		r.MaxHeight = MaxHeight
	}
	low, high, end, ok := bounds(f)
	if !ok {
		return gg.NewContext(1, 1).Image()
	}
	rows := float64(high-low) + 1
	if rows*r.Height > float64(r.MaxHeight) {
		r.Height = math.Max(1, math.Floor(float64(r.MaxHeight)/rows))
	}
	if end*r.Scale > float64(r.MaxWidth)-r.Height {
		r.Scale = (float64(r.MaxWidth) - r.Height) / end
	}
	w := int(math.Ceil(end*r.Scale)) + int(r.Height)
	if w > r.MaxWidth {
		w = r.MaxWidth
	}
	h := int(math.Ceil(rows * r.Height))
	if h > r.MaxHeight {
		h = r.MaxHeight
	}
	p := draw{gg.NewContext(w, h)}
	p.SetRGB(1, 1, 1)
	p.Clear()
	p.SetLineWidth(1)
	for q := 0.0; q <= end && r.Scale >= 2; q++ {
		if int(q)%4 == 0 {
			p.SetRGBA(0, 0, 0, .25)
		} else {
			p.SetRGBA(0, 0, 0, .08)
		}
		p.DrawLine(q*r.Scale, 0, q*r.Scale, float64(h))
		p.Stroke()
	}
	for i, t := range f.Tracks {
		c := palette[i%len(palette)]
		for _, n := range t {
			a := .25 + .75*float64(n.Velocity)/127
			p.SetRGBA(c[0], c[1], c[2], a)
			y := float64(high-n.Pitch) * r.Height
			if n.Open() {
				p.DrawCircle(n.Start*r.Scale+r.Height/2, y+r.Height/2, r.Height/2)
				p.Stroke()
				continue
			}
			p.DrawRectangle(n.Start*r.Scale, y, math.Max(1, n.Duration*r.Scale), r.Height)
			p.Fill()
		}
	}
	return p.Image()
}

func (r Roll) WritePNG(w io.Writer, f *midi.File) error {
	return gg.NewContextForImage(r.Draw(f)).EncodePNG(w)
}
