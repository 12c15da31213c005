package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/wbrown/falsecolor"
	"github.com/wbrown/falsecolor/cvview"
	"github.com/wbrown/falsecolor/imageutil"
	"github.com/wbrown/falsecolor/termview"
)

type codec struct {
	load func(path string) (*imageutil.RGBAImage, error)
	save falsecolor.EncoderFunc
}

var codecs = map[string]codec{
	"std":    {load: imageutil.LoadImage, save: imageutil.SaveImage},
	"opencv": {load: cvview.LoadImage, save: cvview.SaveImage},
}

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "out.png",
		"Path to save the pseudocolored image")
	saturation := flag.Int("saturation", 70,
		"Color saturation, 0 to 140")
	threshold := flag.Int("threshold", 0,
		"Threshold, 1 to 255 (0 = choose interactively)")
	rangeMode := flag.Bool("range", false,
		"Render every threshold from 1 to 254 into -outdir")
	outDir := flag.String("outdir", "output_set",
		"Output directory for -range")
	workers := flag.Int("workers", runtime.NumCPU(),
		"Parallel renders for -range")
	displayName := flag.String("display", "terminal",
		"Preview display for interactive mode: terminal or opencv")
	codecName := flag.String("codec", "std",
		"Image codec: std (Go image packages) or opencv")
	previewScale := flag.Float64("preview", 0.1,
		"Preview scale factor for interactive mode")
	verbose := flag.Bool("v", false,
		"Verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *saturation < 0 || *saturation > falsecolor.MaxSaturation {
		logger.Warn("saturation outside the recommended range",
			"saturation", *saturation, "max", falsecolor.MaxSaturation)
	}

	c, ok := codecs[strings.ToLower(*codecName)]
	if !ok {
		fmt.Println("Invalid codec, options are std or opencv")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	begin := time.Now()
	img, err := c.load(*inputFile)
	if err != nil {
		logger.Error("failed to load image", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded image", "path", *inputFile,
		"width", img.Width(), "height", img.Height())

	if *rangeMode {
		failed := runRange(ctx, logger, img, c, *saturation, *outDir, *workers)
		logger.Info("range complete", "elapsed", time.Since(begin), "failed", failed)
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	var out *imageutil.RGBAImage
	chosen := *threshold
	if chosen > 0 {
		out, err = falsecolor.Render(img, *saturation, chosen)
	} else {
		out, chosen, err = runInteractive(ctx, logger, img, *saturation,
			strings.ToLower(*displayName), *previewScale)
	}
	if errors.Is(err, falsecolor.ErrCancelled) {
		logger.Info("cancelled, nothing written")
		return
	}
	if err != nil {
		logger.Error("failed to render", "error", err)
		os.Exit(1)
	}

	if err := c.save(out, *outputFile); err != nil {
		logger.Error("failed to save", "error", err)
		os.Exit(1)
	}
	logger.Info("output written", "path", *outputFile,
		"threshold", chosen, "saturation", *saturation, "elapsed", time.Since(begin))
}

func runInteractive(
	ctx context.Context,
	logger *slog.Logger,
	img *imageutil.RGBAImage,
	saturation int,
	displayName string,
	previewScale float64,
) (*imageutil.RGBAImage, int, error) {
	opts := []falsecolor.SessionOption{falsecolor.WithPreviewScale(previewScale)}

	var display falsecolor.Display
	switch displayName {
	case "terminal":
		// The terminal belongs to the preview until the session ends.
		view, err := termview.Open()
		if err != nil {
			return nil, 0, err
		}
		display = view
	case "opencv":
		display = cvview.NewWindow(cvview.DefaultTitle)
		opts = append(opts, falsecolor.WithSessionLogger(logger))
	default:
		return nil, 0, fmt.Errorf("invalid display %q, options are terminal or opencv", displayName)
	}

	return falsecolor.RenderInteractive(ctx, img, saturation, display, opts...)
}

func runRange(
	ctx context.Context,
	logger *slog.Logger,
	img *imageutil.RGBAImage,
	c codec,
	saturation int,
	outDir string,
	workers int,
) int {
	b := falsecolor.NewBatchRenderer(
		falsecolor.WithEncoder(c.save),
		falsecolor.WithWorkers(workers),
		falsecolor.WithBatchLogger(logger),
	)
	results, err := b.Render(ctx, img, saturation, outDir)
	if err != nil && len(results) == 0 {
		logger.Error("range failed", "error", err)
		return 1
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if err != nil {
		logger.Error("range interrupted", "error", err)
	}
	return failed
}
