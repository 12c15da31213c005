package imageutil

// ToGrayscaleAverage reduces an RGBA image to one intensity per pixel using
// the unweighted integer mean (R+G+B)/3. Unlike a BT.601 luminance
// conversion every channel counts equally.
func ToGrayscaleAverage(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)
	origin := img.Bounds().Min

	for y := 0; y < height; y++ {
		src := img.Pix[img.PixOffset(origin.X, origin.Y+y):]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < width; x++ {
			i := x * 4
			dst[x] = RGB{R: src[i], G: src[i+1], B: src[i+2]}.Average()
		}
	}

	return gray
}
