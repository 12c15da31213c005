package cvview

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/wbrown/falsecolor"
	"github.com/wbrown/falsecolor/imageutil"
)

// DefaultTitle is the title of the preview window.
const DefaultTitle = "Choose threshold."

const keyEscape = 27

// Window is a falsecolor.Display on an OpenCV HighGUI window. It exists
// for the lifetime of one session and is destroyed by Close.
type Window struct {
	// Configuration options
	PollInterval time.Duration
	Timeout      time.Duration

	title  string
	window *gocv.Window
	closed bool
}

// WindowOption is a functional option for configuring a Window.
type WindowOption func(*Window)

// WithPollInterval sets how long each WaitKey call blocks. Context
// cancellation is noticed between calls.
func WithPollInterval(d time.Duration) WindowOption {
	return func(w *Window) {
		w.PollInterval = d
	}
}

// WithTimeout makes PollKey give up with falsecolor.ErrPollTimeout after
// d without a key. Zero waits indefinitely.
func WithTimeout(d time.Duration) WindowOption {
	return func(w *Window) {
		w.Timeout = d
	}
}

// NewWindow opens a resizable window with the given title.
func NewWindow(title string, opts ...WindowOption) *Window {
	if title == "" {
		title = DefaultTitle
	}
	w := &Window{
		PollInterval: 50 * time.Millisecond,
		title:        title,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.window = gocv.NewWindow(title)
	return w
}

// Show displays img in the window.
func (w *Window) Show(img *imageutil.RGBAImage) error {
	if w.closed {
		return fmt.Errorf("window %q is closed", w.title)
	}
	mat, err := RGBAToMat(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	w.window.IMShow(mat)
	return nil
}

// PollKey waits for a key in the window. Esc or closing the window cancels
// the session.
func (w *Window) PollKey(ctx context.Context) (falsecolor.Key, error) {
	interval := max(int(w.PollInterval/time.Millisecond), 1)
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return falsecolor.KeyNone, err
		}
		if !w.window.IsOpen() {
			return falsecolor.KeyNone, falsecolor.ErrCancelled
		}

		key := w.window.WaitKey(interval)
		if key >= 0 {
			key &= 0xFF
			if key == keyEscape {
				return falsecolor.KeyNone, falsecolor.ErrCancelled
			}
			return falsecolor.Key(key), nil
		}

		if w.Timeout > 0 && time.Since(start) >= w.Timeout {
			return falsecolor.KeyNone, falsecolor.ErrPollTimeout
		}
	}
}

// Close destroys the window.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.window.Close()
}
