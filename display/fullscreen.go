// Package display switches the terminal between the normal view and a
// fullscreen tcell screen.
package display

import (
	"sync"

	"callroom/metric"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
)

// ScreenFunc creates the screen used for fullscreen mode.
type ScreenFunc func() (tcell.Screen, error)

// Fullscreen owns the fullscreen state of the terminal.
type Fullscreen struct {
	mu        sync.Mutex
	newScreen ScreenFunc
	banner    func() string
	screen    tcell.Screen
	metric    *metric.Metrics
}

// New creates a Fullscreen that builds screens with newScreen. banner is
// drawn on the top line when entering fullscreen; it may be nil.
func New(newScreen ScreenFunc, banner func() string, m *metric.Metrics) *Fullscreen {
	return &Fullscreen{
		newScreen: newScreen,
		banner:    banner,
		metric:    m,
	}
}

// NewTerminal creates a Fullscreen over the process terminal.
func NewTerminal(banner func() string, m *metric.Metrics) *Fullscreen {
	return New(tcell.NewScreen, banner, m)
}

// IsEnabled reports whether the terminal is in fullscreen mode.
func (f *Fullscreen) IsEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen != nil
}

// All enters fullscreen over the whole terminal.
func (f *Fullscreen) All() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.screen != nil {
		return
	}

	s, err := f.newScreen()
	if err != nil {
		log.Warn().Str("module", "display").Err(err).Msg("fullscreen unsupported")
		return
	}
	if err := s.Init(); err != nil {
		log.Warn().Str("module", "display").Err(err).Msg("failed to enter fullscreen")
		return
	}
	f.screen = s
	f.draw(s)
	f.metric.SetFullscreen(true)
	go f.watch(s)
}

// Cancel leaves fullscreen.
func (f *Fullscreen) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancel(nil)
}

// cancel finalizes the current screen. When only is set, the screen is
// finalized only if it is still the current one.
func (f *Fullscreen) cancel(only tcell.Screen) {
	if f.screen == nil || (only != nil && f.screen != only) {
		return
	}
	s := f.screen
	f.screen = nil
	s.Fini()
	f.metric.SetFullscreen(false)
}

func (f *Fullscreen) draw(s tcell.Screen) {
	s.Clear()
	line := "fullscreen (Esc to exit)"
	if f.banner != nil {
		line = f.banner() + " - " + line
	}
	style := tcell.StyleDefault.Reverse(true)
	for i, r := range line {
		s.SetContent(i, 0, r, nil, style)
	}
	s.Show()
}

// watch handles screen events until the screen is finalized. Escape leaves
// fullscreen and a resize redraws.
func (f *Fullscreen) watch(s tcell.Screen) {
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				f.mu.Lock()
				f.cancel(s)
				f.mu.Unlock()
				return
			}
		case *tcell.EventResize:
			f.mu.Lock()
			if f.screen == s {
				s.Sync()
				f.draw(s)
			}
			f.mu.Unlock()
		}
	}
}
