package imageutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// DrawLabel draws text in the top-left corner of img on a black backing
// box. The point size shrinks to fit narrow images; nothing is drawn when
// the image is too small to hold a legible line.
func DrawLabel(img *RGBAImage, text string, size float64) error {
	f, err := loadLabelFont()
	if err != nil {
		return fmt.Errorf("failed to parse label font: %w", err)
	}

	const margin = 2
	for ; size >= 6; size-- {
		face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72})
		width := font.MeasureString(face, text).Ceil()
		metrics := face.Metrics()
		face.Close()
		height := (metrics.Ascent + metrics.Descent).Ceil()
		if width+2*margin > img.Width() || height+2*margin > img.Height() {
			continue
		}

		origin := img.Bounds().Min
		box := image.Rect(0, 0, width+2*margin, height+2*margin).Add(origin)
		draw.Draw(img.RGBA, box, image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)

		c := freetype.NewContext()
		c.SetDPI(72)
		c.SetFont(f)
		c.SetFontSize(size)
		c.SetClip(box)
		c.SetDst(img.RGBA)
		c.SetSrc(image.White)
		c.SetHinting(font.HintingFull)

		pt := freetype.Pt(origin.X+margin, origin.Y+margin+metrics.Ascent.Ceil())
		if _, err := c.DrawString(text, pt); err != nil {
			return fmt.Errorf("failed to draw label: %w", err)
		}
		return nil
	}
	return nil
}
