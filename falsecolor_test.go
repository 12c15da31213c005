package falsecolor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/wbrown/falsecolor/imageutil"
)

func TestMapColorReference(t *testing.T) {
	t.Parallel()

	// Pinned values; every intermediate is truncated to int.
	tests := []struct {
		value, saturation int
		want              imageutil.RGB
	}{
		{0, 70, imageutil.RGB{R: 0, G: 0, B: 0}},
		{255, 70, imageutil.RGB{R: 254, G: 254, B: 254}},
		{128, 70, imageutil.RGB{R: 176, G: 127, B: 78}},
		{64, 70, imageutil.RGB{R: 83, G: 103, B: 83}},
		{192, 70, imageutil.RGB{R: 171, G: 151, B: 171}},
		{100, 140, imageutil.RGB{R: 205, G: 166, B: 61}},
		{30, 140, imageutil.RGB{R: 17, G: 57, B: 69}},
		{200, 140, imageutil.RGB{R: 152, G: 130, B: 177}},
		{200, 0, imageutil.RGB{R: 199, G: 199, B: 199}},
		{229, 40, imageutil.RGB{R: 218, G: 222, B: 232}},
		{50, 1000, imageutil.RGB{R: 135, G: 255, B: 255}},
		{50, -1000, imageutil.RGB{R: 0, G: 0, B: 0}},
	}
	for _, tt := range tests {
		if got := MapColor(tt.value, tt.saturation); got != tt.want {
			t.Errorf("MapColor(%d, %d) = %v, want %v", tt.value, tt.saturation, got, tt.want)
		}
	}
}

func TestMapColorZeroIsBlack(t *testing.T) {
	t.Parallel()
	for s := -500; s <= 500; s += 7 {
		if got := MapColor(0, s); got != (imageutil.RGB{}) {
			t.Errorf("MapColor(0, %d) = %v, want black", s, got)
		}
	}
}

func TestMapColorZeroSaturationIsGray(t *testing.T) {
	t.Parallel()
	for v := 0; v <= 255; v++ {
		c := MapColor(v, 0)
		if c.R != c.G || c.G != c.B {
			t.Errorf("MapColor(%d, 0) = %v, want a gray", v, c)
		}
	}
}

// Channels are uint8 so they cannot leave [0, 255]; what can go wrong is
// wrap-around instead of clamping.
func TestMapColorClampsInsteadOfWrapping(t *testing.T) {
	t.Parallel()
	// A huge saturation swings chroma far past the range.
	if got := MapColor(50, 1000000); got != (imageutil.RGB{R: 255, G: 255, B: 255}) {
		t.Errorf("MapColor(50, 1e6) = %v, want {255 255 255}", got)
	}
	// Out-of-range intensities are still total.
	if got := MapColor(1000, 70); got.G != 255 {
		t.Errorf("MapColor(1000, 70) = %v, want green clamped to 255", got)
	}
	if got := MapColor(-1000, 70); got != (imageutil.RGB{}) {
		t.Errorf("MapColor(-1000, 70) = %v, want black", got)
	}
}

func onePixel(c imageutil.RGB) *imageutil.RGBAImage {
	return imageutil.CreateSolidImage(1, 1, c)
}

func TestRenderBlackPixel(t *testing.T) {
	t.Parallel()
	out, err := Render(onePixel(imageutil.RGB{}), 70, 128)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := out.GetRGB(0, 0); got != (imageutil.RGB{}) {
		t.Errorf("Expected black, got %v", got)
	}
}

func TestRenderWhitePixel(t *testing.T) {
	t.Parallel()
	out, err := Render(onePixel(imageutil.RGB{R: 255, G: 255, B: 255}), 70, 128)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := imageutil.RGB{R: 254, G: 254, B: 254}
	if got := out.GetRGB(0, 0); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRenderPipeline(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                  string
		in                    imageutil.RGB
		saturation, threshold int
		want                  imageutil.RGB
	}{
		// avg 20, 20*255/128 = 39
		{"below threshold", imageutil.RGB{R: 10, G: 20, B: 30}, 70, 128, MapColor(39, 70)},
		// avg 150 > 128 saturates to 255
		{"above threshold", imageutil.RGB{R: 100, G: 150, B: 200}, 70, 128, imageutil.RGB{R: 254, G: 254, B: 254}},
		// avg 90, 90*255/100 = 229
		{"rescaled", imageutil.RGB{R: 90, G: 90, B: 90}, 40, 100, imageutil.RGB{R: 218, G: 222, B: 232}},
		// equal to threshold is not above it: 128*255/128 = 255
		{"at threshold", imageutil.RGB{R: 128, G: 128, B: 128}, 70, 128, MapColor(255, 70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(onePixel(tt.in), tt.saturation, tt.threshold)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if got := out.GetRGB(0, 0); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRenderVisualChannelOrder(t *testing.T) {
	t.Parallel()
	// 128 at threshold 255 rescales to 128, where red and blue differ.
	out, err := Render(onePixel(imageutil.RGB{R: 128, G: 128, B: 128}), 70, 255)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	c := out.RGBAAt(0, 0)
	if c.R != 176 || c.G != 127 || c.B != 78 || c.A != 255 {
		t.Errorf("Expected RGBA{176 127 78 255}, got %v", c)
	}
}

func TestRenderThreshold255NeverSaturates(t *testing.T) {
	t.Parallel()
	img := imageutil.CreateGradientImage(256, 2)
	out, err := Render(img, 70, 255)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for x := 0; x < 256; x++ {
		v := int(img.GetRGB(x, 0).Average())
		// v*255/255 == v, so every pixel maps its own intensity.
		if got, want := out.GetRGB(x, 1), MapColor(v, 70); got != want {
			t.Fatalf("x=%d: expected %v, got %v", x, want, got)
		}
	}
}

func TestRenderInvalidArguments(t *testing.T) {
	t.Parallel()
	img := imageutil.CreateGradientImage(4, 4)

	for _, threshold := range []int{0, -1} {
		if _, err := Render(img, 70, threshold); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("threshold %d: expected ErrInvalidArgument, got %v", threshold, err)
		}
	}
	if _, err := Render(imageutil.NewRGBAImage(0, 3), 70, 100); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero width: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Render(imageutil.NewRGBAImage(3, 0), 70, 100); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero height: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Render(nil, 70, 100); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil image: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := RenderImage(nil, 70, 100); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil image.Image: expected ErrInvalidArgument, got %v", err)
	}
}

func TestRenderKeepsDimensionsAndInput(t *testing.T) {
	t.Parallel()
	img := imageutil.CreateColorBarsImage(37, 11)
	orig := img.Clone()

	for _, threshold := range []int{1, 10, 128, 254, 255, 300} {
		out, err := Render(img, 70, threshold)
		if err != nil {
			t.Fatalf("threshold %d: Render failed: %v", threshold, err)
		}
		if out.Width() != 37 || out.Height() != 11 {
			t.Errorf("threshold %d: expected 37x11, got %dx%d",
				threshold, out.Width(), out.Height())
		}
	}
	if !bytes.Equal(img.Pix, orig.Pix) {
		t.Error("Render must not modify its input")
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()
	img := imageutil.CreateGradientImage(64, 16)

	a, err := Render(img, 90, 77)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(img, 90, 77)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Render should be byte-identical for identical arguments")
	}
}

func TestRenderImageOffsetBounds(t *testing.T) {
	t.Parallel()
	src := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}

	out, err := RenderImage(src, 40, 100)
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	if out.Width() != 3 || out.Height() != 2 {
		t.Fatalf("Expected 3x2, got %dx%d", out.Width(), out.Height())
	}
	want := imageutil.RGB{R: 218, G: 222, B: 232}
	if got := out.GetRGB(2, 1); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRenderImageSubImageMatchesRender(t *testing.T) {
	t.Parallel()
	parent := imageutil.NewRGBAImage(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			parent.SetRGB(x, y, imageutil.RGB{R: uint8(30 * x), G: uint8(30 * y), B: uint8(x + y)})
		}
	}
	sub := &imageutil.RGBAImage{RGBA: parent.SubImage(image.Rect(2, 2, 5, 5)).(*image.RGBA)}

	viaRender, err := Render(sub, 70, 200)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	viaImage, err := RenderImage(sub, 70, 200)
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	if diff := imageutil.CalculateMaxDiff(viaRender, viaImage); diff != 0 {
		t.Errorf("Render and RenderImage disagree on a sub-image, max diff %d", diff)
	}
	gray := uint8((30*2 + 30*3 + 5) / 3)
	want := MapColor(int(gray)*255/200, 70)
	if got := viaImage.GetRGB(0, 1); got != want {
		t.Errorf("Expected %v at (0,1), got %v", want, got)
	}
}
