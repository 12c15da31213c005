// Package cvview connects the false color pipeline to OpenCV through gocv:
// a HighGUI window that serves as a session display, and IMRead/IMWrite
// based file codecs.
//
// OpenCV stores pixels as BGR. Conversion happens here so that the rest of
// the module only ever sees visual RGB order.
package cvview

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/wbrown/falsecolor/imageutil"
)

// MatToRGBA converts an 8-bit BGR Mat into an RGBAImage.
func MatToRGBA(mat gocv.Mat) (*imageutil.RGBAImage, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("unsupported mat type %v, want CV_8UC3", mat.Type())
	}

	height, width := mat.Rows(), mat.Cols()
	img := imageutil.NewRGBAImage(width, height)
	data := mat.ToBytes()
	step := width * 3
	if len(data) < step*height {
		return nil, fmt.Errorf("short mat buffer: %d bytes for %dx%d", len(data), width, height)
	}

	for y := 0; y < height; y++ {
		row := data[y*step : (y+1)*step]
		for x := 0; x < width; x++ {
			i := x * 3
			img.SetRGB(x, y, imageutil.RGB{R: row[i+2], G: row[i+1], B: row[i]})
		}
	}
	return img, nil
}

// RGBAToMat converts an RGBAImage into a new 8-bit BGR Mat. The caller
// must Close it.
func RGBAToMat(img *imageutil.RGBAImage) (gocv.Mat, error) {
	width, height := img.Width(), img.Height()
	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.GetRGB(x, y)
			i := (y*width + x) * 3
			data[i], data[i+1], data[i+2] = c.B, c.G, c.R
		}
	}
	return gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
}

// LoadImage reads a file with OpenCV, accepting any bit depth. 16-bit
// images are scaled down to 8 bits.
func LoadImage(path string) (*imageutil.RGBAImage, error) {
	mat := gocv.IMRead(path, gocv.IMReadAnyDepth|gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: could not read image from %s", imageutil.ErrDecode, path)
	}
	defer mat.Close()

	if mat.Type() == gocv.MatTypeCV16UC3 {
		converted := gocv.NewMat()
		defer converted.Close()
		mat.ConvertToWithParams(&converted, gocv.MatTypeCV8UC3, 1.0/257, 0)
		return decodeMat(converted, path)
	}
	return decodeMat(mat, path)
}

func decodeMat(mat gocv.Mat, path string) (*imageutil.RGBAImage, error) {
	img, err := MatToRGBA(mat)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", imageutil.ErrDecode, path, err)
	}
	return img, nil
}

// SaveImage writes img with OpenCV; the format follows the extension. It
// has the shape of falsecolor.EncoderFunc.
func SaveImage(img image.Image, path string) error {
	rgba, ok := img.(*imageutil.RGBAImage)
	if !ok {
		rgba = imageutil.RGBAImageFromImage(img)
	}
	mat, err := RGBAToMat(rgba)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", imageutil.ErrEncode, path, err)
	}
	defer mat.Close()

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("%w: could not write image to %s", imageutil.ErrEncode, path)
	}
	return nil
}
