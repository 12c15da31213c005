// Package imageutil holds the pixel containers and file plumbing used by
// the false color pipeline: 8-bit RGB and grayscale buffers, resizing,
// decode/encode and caption drawing.
package imageutil

import (
	"image"
	"image/color"
)

// RGB is one pixel with 8-bit red, green and blue channels. Channels are
// always stored in visual order; backends that keep BGR storage convert
// at their boundary.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to an opaque color.RGBA.
func (rgb RGB) ToColor() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// Average returns the unweighted integer mean of the three channels.
func (rgb RGB) Average() uint8 {
	return uint8((uint(rgb.R) + uint(rgb.G) + uint(rgb.B)) / 3)
}

// RGBFromColor converts a color.Color to RGB, dropping alpha. Stored
// channels are kept as is rather than premultiplied, so a transparent
// pixel keeps its color.
func RGBFromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// RGBAImage wraps image.RGBA with pixel accessors in RGB terms. Alpha is
// kept at 255.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates an opaque black image of the given size.
func NewRGBAImage(width, height int) *RGBAImage {
	img := &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// RGBAImageFromImage copies any image.Image into a zero-origin RGBAImage.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	if rgba, ok := img.(*RGBAImage); ok {
		return rgba.Clone()
	}
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.SetRGB(x-bounds.Min.X, y-bounds.Min.Y, RGBFromColor(img.At(x, y)))
		}
	}
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// Empty reports whether the image has no pixels.
func (img *RGBAImage) Empty() bool {
	return img == nil || img.RGBA == nil || img.Width() == 0 || img.Height() == 0
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, c.ToColor())
}

// Clone creates a zero-origin deep copy of the image. Sub-images are
// copied row by row.
func (img *RGBAImage) Clone() *RGBAImage {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	clone := &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	for y := 0; y < height; y++ {
		src := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(clone.Pix[y*clone.Stride:y*clone.Stride+4*width], img.Pix[src:src+4*width])
	}
	return clone
}

// GrayImage wraps image.Gray. The pipeline keeps intermediate intensities
// in one.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}

// GetGray returns the grayscale value at (x, y).
func (img *GrayImage) GetGray(x, y int) uint8 {
	return img.GrayAt(x, y).Y
}

// SetGrayValue sets the grayscale value at (x, y).
func (img *GrayImage) SetGrayValue(x, y int, v uint8) {
	img.Gray.SetGray(x, y, color.Gray{Y: v})
}
