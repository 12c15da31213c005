// Package falsecolor pseudocolors images. Each pixel is reduced to a gray
// intensity, rescaled against a threshold and pushed through a fixed helix
// shaped color formula whose chroma amplitude is set by a saturation value.
package falsecolor

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/wbrown/falsecolor/imageutil"
)

const (
	// MaxSaturation is the top of the recommended saturation range.
	// Larger values are accepted and clip harder.
	MaxSaturation = 140

	// MinThreshold and MaxThreshold bound the threshold Render accepts
	// in practice. Values above MaxThreshold never saturate a pixel.
	MinThreshold = 1
	MaxThreshold = 255
)

var (
	// ErrInvalidArgument is returned for a threshold below 1 or an empty
	// image.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Rotation of the synthetic basis into RGB.
const (
	rot707 = 0.7071067811
	rot577 = 0.5773502691
	rot408 = 0.4082482904
	rot816 = 0.8164965809
)

// MapColor converts one intensity in [0, 255] into an RGB color. The
// intensity runs up the gray diagonal while a sine envelope scaled by
// saturation swings the chroma around it, vanishing at both ends.
//
// Intermediates are truncated toward zero exactly like the integer
// arithmetic the output files were first produced with, so results match
// them bit for bit. Every input is valid; channels are clamped to [0, 255].
func MapColor(value, saturation int) imageutil.RGB {
	v := float64(value)
	s := float64(saturation)
	envelope := math.Sin(math.Pi / 255.0 * v)

	tr := int(s * envelope * math.Sin(2.0*math.Pi/255*v))
	tg := int(v * math.Sqrt(3.0))
	tb := int(s * envelope * math.Cos(2.0*math.Pi/255*v))

	r := int(-rot707*float64(tb) + rot577*float64(tg) + rot408*float64(tr))
	b := int(rot707*float64(tb) + rot577*float64(tg) + rot408*float64(tr))
	g := int(rot577*float64(tg) + rot816*float64(tr))

	return imageutil.RGB{
		R: clampChannel(r),
		G: clampChannel(g),
		B: clampChannel(b),
	}
}

func clampChannel(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

// Render pseudocolors img and returns a new image of the same size; img is
// not modified. Stages run over every pixel in order:
//
//  1. gray reduction to the unweighted mean (R+G+B)/3
//  2. intensities above threshold become 255, the rest are stretched by
//     255/threshold
//  3. MapColor at the given saturation
//
// Render fails with ErrInvalidArgument when threshold < 1 or img has no
// pixels, before any pixel is touched.
func Render(img *imageutil.RGBAImage, saturation, threshold int) (*imageutil.RGBAImage, error) {
	if threshold < MinThreshold {
		return nil, fmt.Errorf("%w: threshold must be at least %d, got %d",
			ErrInvalidArgument, MinThreshold, threshold)
	}
	if img.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidArgument)
	}

	gray := imageutil.ToGrayscaleAverage(img)
	rescaleThreshold(gray, threshold)

	palette := paletteFor(saturation)
	width, height := gray.Width(), gray.Height()
	out := imageutil.NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x, v := range row {
			out.SetRGB(x, y, palette[v])
		}
	}
	return out, nil
}

// RenderImage is Render for any image.Image.
func RenderImage(img image.Image, saturation, threshold int) (*imageutil.RGBAImage, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	return Render(imageutil.RGBAImageFromImage(img), saturation, threshold)
}

// rescaleThreshold applies the threshold stage in place.
func rescaleThreshold(gray *imageutil.GrayImage, threshold int) {
	var table [256]uint8
	for v := range table {
		if v > threshold {
			table[v] = 255
		} else {
			table[v] = uint8(float64(v) * 255.0 / float64(threshold))
		}
	}
	for i, v := range gray.Pix {
		gray.Pix[i] = table[v]
	}
}

// paletteFor tabulates MapColor over every 8-bit intensity. Each pixel
// looks its color up instead of recomputing the trigonometry.
func paletteFor(saturation int) *[256]imageutil.RGB {
	var palette [256]imageutil.RGB
	for v := range palette {
		palette[v] = MapColor(v, saturation)
	}
	return &palette
}
