package host_test

import (
	"os"
	"syscall"
	"testing"
	"time"

	"callroom/host"

	"github.com/stretchr/testify/assert"
)

func TestUnload(t *testing.T) {
	t.Run("given handlers when unloaded twice then each runs once in order", func(t *testing.T) {
		h := host.New()
		var calls []string
		h.OnUnload(func() { calls = append(calls, "first") })
		h.OnUnload(func() { calls = append(calls, "second") })

		h.Unload()
		h.Unload()

		assert.Equal(t, []string{"first", "second"}, calls)
		select {
		case <-h.Done():
		default:
			t.Fatal("done not closed after unload")
		}
	})

	t.Run("given a deregistered handler when unloaded then it does not run", func(t *testing.T) {
		h := host.New()
		var calls []string
		deregister := h.OnUnload(func() { calls = append(calls, "gone") })
		h.OnUnload(func() { calls = append(calls, "kept") })

		deregister()
		deregister()
		assert.Equal(t, 1, h.Handlers())

		h.Unload()
		assert.Equal(t, []string{"kept"}, calls)
	})

	t.Run("given two controllers registered when one leaves then only the other is unloaded", func(t *testing.T) {
		h := host.New()
		first, second := 0, 0
		deregister := h.OnUnload(func() { first++ })
		h.OnUnload(func() { second++ })
		deregister()

		h.Unload()
		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)
		assert.Equal(t, 0, h.Handlers())
	})
}

func TestLateRegistration(t *testing.T) {
	t.Run("given an unload in progress when a handler registers then it runs right away", func(t *testing.T) {
		h := host.New()
		var calls []string
		h.OnUnload(func() {
			calls = append(calls, "first")
			h.OnUnload(func() { calls = append(calls, "late") })
			calls = append(calls, "first done")
		})

		h.Unload()
		assert.Equal(t, []string{"first", "late", "first done"}, calls)
	})

	t.Run("given an unloaded host when a handler registers then it runs and is not kept", func(t *testing.T) {
		h := host.New()
		h.Unload()

		ran := 0
		deregister := h.OnUnload(func() { ran++ })
		assert.Equal(t, 1, ran)
		assert.Equal(t, 0, h.Handlers())
		assert.NotPanics(t, deregister)

		h.Unload()
		assert.Equal(t, 1, ran)
	})
}

func TestWatch(t *testing.T) {
	h := host.New()
	unloaded := make(chan struct{})
	h.OnUnload(func() { close(unloaded) })
	h.Watch(syscall.SIGUSR1)
	defer h.Stop()

	proc, err := os.FindProcess(os.Getpid())
	assert.NoError(t, err)
	assert.NoError(t, proc.Signal(syscall.SIGUSR1))

	select {
	case <-unloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("signal did not unload the host")
	}
	<-h.Done()
}

func TestStop(t *testing.T) {
	h := host.New()
	h.Stop()
	h.Watch(syscall.SIGUSR2)
	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
		t.Fatal("stopped host unloaded")
	default:
	}
}
