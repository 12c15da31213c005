package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationLinear uses bilinear interpolation.
	// Equivalent to OpenCV's INTER_LINEAR.
	InterpolationLinear Interpolation = iota

	// InterpolationArea uses Catmull-Rom, the closest match to INTER_AREA
	// for downscaling.
	InterpolationArea

	// InterpolationNearest uses nearest-neighbor interpolation.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationArea:
		return draw.CatmullRom
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.BiLinear
	}
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	interp.scaler().Scale(dst.RGBA, dst.Bounds(), img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// Scale resizes an image by factor in both dimensions. Each side is kept
// at one pixel or more so tiny inputs still produce a preview.
func Scale(img *RGBAImage, factor float64, interp Interpolation) *RGBAImage {
	width := int(float64(img.Width()) * factor)
	height := int(float64(img.Height()) * factor)
	return Resize(img, max(width, 1), max(height, 1), interp)
}

// Fit resizes an image to the largest size that fits inside maxWidth x
// maxHeight while keeping the aspect ratio. img itself is returned when it
// already has that size.
func Fit(img *RGBAImage, maxWidth, maxHeight int, interp Interpolation) *RGBAImage {
	size := FitSize(image.Pt(img.Width(), img.Height()), maxWidth, maxHeight)
	if size.X == img.Width() && size.Y == img.Height() {
		return img
	}
	return Resize(img, size.X, size.Y, interp)
}

// FitSize returns the dimensions Fit would produce.
func FitSize(src image.Point, maxWidth, maxHeight int) image.Point {
	if src.X <= 0 || src.Y <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return image.Pt(max(maxWidth, 1), max(maxHeight, 1))
	}
	aspectRatio := float64(src.X) / float64(src.Y)
	width := maxWidth
	height := int(float64(width) / aspectRatio)
	if height > maxHeight {
		height = maxHeight
		width = int(float64(height) * aspectRatio)
	}
	return image.Pt(max(width, 1), max(height, 1))
}
