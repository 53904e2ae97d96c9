package display_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"callroom/display"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// screens hands out simulation screens and remembers them.
type screens struct {
	mu   sync.Mutex
	made []tcell.SimulationScreen
	err  error
}

func (s *screens) new() (tcell.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	s.made = append(s.made, screen)
	return screen, nil
}

func (s *screens) last() tcell.SimulationScreen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.made[len(s.made)-1]
}

func (s *screens) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.made)
}

func TestFullscreen(t *testing.T) {
	t.Run("given normal mode when entering and cancelling then the state follows", func(t *testing.T) {
		sc := &screens{}
		f := display.New(sc.new, nil, nil)
		assert.False(t, f.IsEnabled())

		f.All()
		assert.True(t, f.IsEnabled())

		f.Cancel()
		assert.False(t, f.IsEnabled())
	})

	t.Run("given fullscreen when entering again then no second screen is made", func(t *testing.T) {
		sc := &screens{}
		f := display.New(sc.new, nil, nil)
		f.All()
		f.All()
		assert.Equal(t, 1, sc.count())
		f.Cancel()
		f.Cancel()
		assert.False(t, f.IsEnabled())
	})

	t.Run("given an unsupported terminal when entering then the mode stays normal", func(t *testing.T) {
		sc := &screens{err: errors.New("no tty")}
		f := display.New(sc.new, nil, nil)
		assert.NotPanics(t, f.All)
		assert.False(t, f.IsEnabled())
	})

	t.Run("given fullscreen when escape is pressed then the mode returns to normal", func(t *testing.T) {
		sc := &screens{}
		f := display.New(sc.new, nil, nil)
		f.All()
		require.True(t, f.IsEnabled())

		sc.last().InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
		assert.Eventually(t, func() bool { return !f.IsEnabled() }, 2*time.Second, 10*time.Millisecond)

		f.All()
		assert.True(t, f.IsEnabled())
		assert.Equal(t, 2, sc.count())
		f.Cancel()
	})

	t.Run("given a banner when entering then it is drawn on the first line", func(t *testing.T) {
		sc := &screens{}
		f := display.New(sc.new, func() string { return "room42" }, nil)
		f.All()
		defer f.Cancel()

		cells, width, _ := sc.last().GetContents()
		want := "room42"
		require.GreaterOrEqual(t, width, len(want))
		var got []rune
		for i := range want {
			got = append(got, cells[i].Runes...)
		}
		assert.Equal(t, want, string(got))
	})
}
