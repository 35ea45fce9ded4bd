// Package exithook keeps a list of cleanup functions that run exactly once
// when the process leaves through Exit or a watched signal.
package exithook

import (
	"os"
	"os/signal"
	"sync"

	"github.com/pkg/errors"
)

var ErrClosed = errors.New("exit hooks already ran")

type Registry struct {
	mu    sync.Mutex
	hooks []func()
	ran   bool
	exit  func(int)
}

var std = New(nil)

// Default returns the process-wide registry.
func Default() *Registry {
	return std
}

// New returns an empty registry. A nil exit function means os.Exit.
func New(exit func(int)) *Registry {
	if exit == nil {
		exit = os.Exit
	}
	return &Registry{exit: exit}
}

func (r *Registry) Register(fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ran {
		return ErrClosed
	}
	r.hooks = append(r.hooks, fn)
	return nil
}

// Run calls the hooks in reverse registration order. Only the first call
// does anything.
func (r *Registry) Run() {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return
	}
	r.ran = true
	hooks := r.hooks
	r.hooks = nil
	r.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

func (r *Registry) Exit(code int) {
	r.Run()
	r.exit(code)
}

// Watch runs the hooks when the first of sigs arrives, then restores the
// default disposition and re-raises the signal. Signals the process inherited
// as ignored stay ignored. The returned func stops watching.
func (r *Registry) Watch(sigs ...os.Signal) (stop func()) {
	var watched []os.Signal
	for _, sig := range sigs {
		if !signal.Ignored(sig) {
			watched = append(watched, sig)
		}
	}
	if len(watched) == 0 {
		return func() {}
	}

	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, watched...)

	go func() {
		select {
		case <-done:
		case sig := <-ch:
			signal.Stop(ch)
			r.Run()
			r.raise(sig)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

func (r *Registry) raise(sig os.Signal) {
	signal.Reset(sig)
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		r.exit(1)
		return
	}
	if err := p.Signal(sig); err != nil {
		r.exit(1)
	}
}
