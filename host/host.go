// Package host delivers the unload event of the application: the last
// notice before the process goes away.
package host

import (
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog/log"
)

// Host runs unload handlers at most once.
type Host struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func()
	order    []int
	unloaded bool

	once    sync.Once
	done    chan struct{}
	signals chan os.Signal
	stop    chan struct{}
}

// New creates a Host that only unloads when Unload is called.
func New() *Host {
	return &Host{
		handlers: make(map[int]func()),
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}
}

// OnUnload registers fn to run on unload. The returned function removes it;
// calling it more than once is harmless. Once unload has started fn runs
// right away on the calling goroutine.
func (h *Host) OnUnload(fn func()) (deregister func()) {
	h.mu.Lock()
	if h.unloaded {
		h.mu.Unlock()
		fn()
		return func() {}
	}
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.handlers[id] = fn
	h.order = append(h.order, id)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.handlers[id]; !ok {
			return
		}
		delete(h.handlers, id)
		for i, v := range h.order {
			if v == id {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
}

// Handlers returns the number of registered handlers.
func (h *Host) Handlers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

// Unload runs the registered handlers in registration order on the calling
// goroutine. Only the first call does anything.
func (h *Host) Unload() {
	h.once.Do(func() {
		h.mu.Lock()
		h.unloaded = true
		var fns []func()
		for _, id := range h.order {
			if fn, ok := h.handlers[id]; ok {
				fns = append(fns, fn)
			}
		}
		h.handlers = make(map[int]func())
		h.order = nil
		h.mu.Unlock()

		log.Info().Str("module", "host").Int("handlers", len(fns)).Msg("unloading")
		for _, fn := range fns {
			fn()
		}
		close(h.done)
	})
}

// Done is closed after the unload handlers have run.
func (h *Host) Done() <-chan struct{} {
	return h.done
}

// Watch unloads when one of sigs is received.
func (h *Host) Watch(sigs ...os.Signal) {
	h.mu.Lock()
	if h.signals != nil {
		h.mu.Unlock()
		return
	}
	h.signals = make(chan os.Signal, 1)
	h.mu.Unlock()

	signal.Notify(h.signals, sigs...)
	go func() {
		select {
		case sig := <-h.signals:
			log.Info().Str("module", "host").Str("signal", sig.String()).Msg("signal received")
			h.Unload()
		case <-h.stop:
		case <-h.done:
		}
	}()
}

// Stop stops watching signals.
func (h *Host) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.signals == nil {
		return
	}
	signal.Stop(h.signals)
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
}
