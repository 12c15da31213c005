// Package termview shows threshold previews in a terminal using tcell.
// Each character cell carries two pixels: the upper half block is drawn in
// the top pixel's color over a background of the bottom pixel's color.
package termview

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/wbrown/falsecolor"
	"github.com/wbrown/falsecolor/imageutil"
)

const upperHalfBlock = '▀'

// View is a falsecolor.Display backed by a tcell screen. The bottom row is
// kept for a status line.
type View struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
	once   sync.Once
}

// Open initializes the controlling terminal and returns a View on it.
func Open() (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	return New(screen), nil
}

// New wraps an initialized screen. The View takes ownership and finalizes
// the screen on Close.
func New(screen tcell.Screen) *View {
	v := &View{
		screen: screen,
		events: make(chan tcell.Event, 16),
		quit:   make(chan struct{}),
	}
	go v.pump()
	return v
}

func (v *View) pump() {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case v.events <- ev:
		case <-v.quit:
			return
		}
	}
}

// Show fits img into the screen and draws it with a status line.
func (v *View) Show(img *imageutil.RGBAImage) error {
	cols, rows := v.screen.Size()
	v.screen.Clear()
	if cols <= 0 || rows <= 1 {
		v.screen.Show()
		return nil
	}

	fitted := imageutil.Fit(img, cols, (rows-1)*2, imageutil.InterpolationArea)
	for y := 0; y < fitted.Height(); y += 2 {
		for x := 0; x < fitted.Width(); x++ {
			top := fitted.GetRGB(x, y)
			style := tcell.StyleDefault.Foreground(toColor(top))
			if y+1 < fitted.Height() {
				style = style.Background(toColor(fitted.GetRGB(x, y+1)))
			}
			v.screen.SetContent(x, y/2, upperHalfBlock, nil, style)
		}
	}

	status := "+/- threshold, enter to accept, esc to quit"
	for i, r := range []rune(status) {
		if i >= cols {
			break
		}
		v.screen.SetContent(i, rows-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
	return nil
}

// PollKey waits for the next event. '+', '-' and Enter map to the session
// keys, other runes to their code point, Esc and Ctrl-C to
// falsecolor.ErrCancelled, and non-key events to falsecolor.KeyNone.
func (v *View) PollKey(ctx context.Context) (falsecolor.Key, error) {
	select {
	case <-ctx.Done():
		return falsecolor.KeyNone, ctx.Err()
	case ev := <-v.events:
		return translate(ev)
	}
}

func translate(ev tcell.Event) (falsecolor.Key, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return falsecolor.KeyNone, falsecolor.ErrCancelled
		case tcell.KeyEnter:
			return falsecolor.KeyEnter, nil
		case tcell.KeyRune:
			return falsecolor.Key(ev.Rune()), nil
		}
		return falsecolor.Key(ev.Key()), nil
	case *tcell.EventResize:
		return falsecolor.KeyNone, nil
	}
	return falsecolor.KeyNone, nil
}

// Close restores the terminal.
func (v *View) Close() error {
	v.once.Do(func() {
		close(v.quit)
		v.screen.Fini()
	})
	return nil
}

func toColor(c imageutil.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
