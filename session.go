package falsecolor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/wbrown/falsecolor/imageutil"
)

// Key is a raw key code delivered by a Display. Printable keys use their
// ASCII value.
type Key int

const (
	// KeyNone stands for any event that is not a key press, such as a
	// terminal resize. It only causes a redraw.
	KeyNone  Key = -1
	KeyEnter Key = 13
	KeyPlus  Key = 43
	KeyMinus Key = 45
)

var (
	// ErrCancelled is returned by a Display when the user abandons the
	// session instead of confirming a threshold.
	ErrCancelled = errors.New("session cancelled")

	// ErrPollTimeout is returned by Display.PollKey when no key arrived
	// in time. The session treats it like any other non-key event.
	ErrPollTimeout = errors.New("poll timed out")

	errSessionFinished = errors.New("session already finished")
)

// Display is the surface a Session draws previews on and reads keys from.
// A Session owns its Display and closes it when the session ends.
type Display interface {
	Show(img *imageutil.RGBAImage) error
	PollKey(ctx context.Context) (Key, error)
	Close() error
}

// Session picks a threshold interactively. It renders a downscaled preview
// at the current threshold, waits for one key, and adjusts: '+' raises
// the threshold, '-' lowers it, Enter accepts it.
type Session struct {
	// Configuration options
	Saturation       int
	PreviewScale     float64
	MinThreshold     int
	MaxThreshold     int
	InitialThreshold int
	Label            bool

	logger    *slog.Logger
	preview   *imageutil.RGBAImage
	display   Display
	threshold int
	finished  bool
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*Session)

// WithSaturation sets the saturation used for previews.
func WithSaturation(saturation int) SessionOption {
	return func(s *Session) {
		s.Saturation = saturation
	}
}

// WithPreviewScale sets the factor the preview is downscaled by.
func WithPreviewScale(scale float64) SessionOption {
	return func(s *Session) {
		s.PreviewScale = scale
	}
}

// WithThresholdLimits sets the range '+' and '-' move within.
func WithThresholdLimits(lo, hi int) SessionOption {
	return func(s *Session) {
		s.MinThreshold = lo
		s.MaxThreshold = hi
	}
}

// WithInitialThreshold sets the threshold shown first.
func WithInitialThreshold(threshold int) SessionOption {
	return func(s *Session) {
		s.InitialThreshold = threshold
	}
}

// WithLabel toggles the threshold caption drawn on the preview.
func WithLabel(label bool) SessionOption {
	return func(s *Session) {
		s.Label = label
	}
}

// WithSessionLogger sets the logger key events are reported to.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession prepares a session over img drawing on display.
// Defaults: threshold starts at 10 and moves within [10, 255], the preview
// is 0.1 of the source size, saturation 70, caption on.
func NewSession(img *imageutil.RGBAImage, display Display, opts ...SessionOption) (*Session, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidArgument)
	}
	if display == nil {
		return nil, fmt.Errorf("%w: nil display", ErrInvalidArgument)
	}

	s := &Session{
		Saturation:       70,
		PreviewScale:     0.1,
		MinThreshold:     10,
		MaxThreshold:     MaxThreshold,
		InitialThreshold: 10,
		Label:            true,

		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		display: display,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.MinThreshold < MinThreshold || s.MinThreshold > s.MaxThreshold {
		return nil, fmt.Errorf("%w: threshold limits [%d, %d]",
			ErrInvalidArgument, s.MinThreshold, s.MaxThreshold)
	}
	if s.PreviewScale <= 0 {
		return nil, fmt.Errorf("%w: preview scale %v", ErrInvalidArgument, s.PreviewScale)
	}
	s.threshold = max(s.MinThreshold, min(s.MaxThreshold, s.InitialThreshold))

	if s.PreviewScale == 1 {
		s.preview = img.Clone()
	} else {
		s.preview = imageutil.Scale(img, s.PreviewScale, imageutil.InterpolationLinear)
	}
	return s, nil
}

// Threshold returns the current threshold.
func (s *Session) Threshold() int {
	return s.threshold
}

// Preview returns the downscaled image previews are rendered from.
func (s *Session) Preview() *imageutil.RGBAImage {
	return s.preview
}

// HandleKey applies one key to the threshold and reports whether the
// session is complete.
func (s *Session) HandleKey(key Key) bool {
	switch key {
	case KeyPlus:
		if s.threshold < s.MaxThreshold {
			s.threshold++
		}
	case KeyMinus:
		if s.threshold > s.MinThreshold {
			s.threshold--
		}
	case KeyEnter:
		return true
	}
	return false
}

// Frame renders the preview at the current threshold, captioned when
// Label is set.
func (s *Session) Frame() (*imageutil.RGBAImage, error) {
	frame, err := Render(s.preview, s.Saturation, s.threshold)
	if err != nil {
		return nil, err
	}
	if s.Label {
		caption := fmt.Sprintf("threshold %d", s.threshold)
		if err := imageutil.DrawLabel(frame, caption, 14); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// Run loops until the threshold is confirmed, the display reports an
// error, or ctx is done. The display is closed on return. On failure the
// threshold reached so far is returned with the error.
func (s *Session) Run(ctx context.Context) (threshold int, err error) {
	if s.finished {
		return s.threshold, errSessionFinished
	}
	s.finished = true
	defer func() {
		if cerr := s.display.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close display: %w", cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return s.threshold, err
		}

		frame, err := s.Frame()
		if err != nil {
			return s.threshold, err
		}
		if err := s.display.Show(frame); err != nil {
			return s.threshold, fmt.Errorf("failed to show preview: %w", err)
		}

		key, err := s.display.PollKey(ctx)
		if errors.Is(err, ErrPollTimeout) {
			key = KeyNone
		} else if err != nil {
			return s.threshold, err
		}

		if s.HandleKey(key) {
			s.logger.Info("threshold chosen", "threshold", s.threshold)
			return s.threshold, nil
		}
		s.logger.Debug("key pressed", "key", int(key), "threshold", s.threshold)
	}
}

// RunInteractiveSession lets the user pick a threshold for img on display
// and returns it. display is closed in every case.
func RunInteractiveSession(ctx context.Context, img *imageutil.RGBAImage, saturation int, display Display, opts ...SessionOption) (int, error) {
	opts = append([]SessionOption{WithSaturation(saturation)}, opts...)
	s, err := NewSession(img, display, opts...)
	if err != nil {
		if display != nil {
			display.Close()
		}
		return 0, err
	}
	return s.Run(ctx)
}

// RenderInteractive picks a threshold on a preview of img, then renders
// the full-size image at that threshold.
func RenderInteractive(ctx context.Context, img *imageutil.RGBAImage, saturation int, display Display, opts ...SessionOption) (*imageutil.RGBAImage, int, error) {
	threshold, err := RunInteractiveSession(ctx, img, saturation, display, opts...)
	if err != nil {
		return nil, threshold, err
	}
	out, err := Render(img, saturation, threshold)
	return out, threshold, err
}
