package exithook

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRunOrder(t *testing.T) {
	r := New(func(int) {})
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		assert.NoError(t, r.Register(func() { order = append(order, i) }))
	}

	r.Run()
	r.Run()
	assert.Equal(t, []int{2, 1, 0}, order)
}

func TestRegisterAfterRun(t *testing.T) {
	r := New(func(int) {})
	r.Run()

	err := r.Register(func() {})
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestExit(t *testing.T) {
	code := -1
	r := New(func(c int) { code = c })

	calls := 0
	assert.NoError(t, r.Register(func() { calls++ }))

	r.Exit(1)
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, calls)

	r.Exit(0)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, calls, "hooks must run once")
}

func TestWatchNoSignals(t *testing.T) {
	r := New(func(int) {})
	stop := r.Watch()
	stop()
	assert.NoError(t, r.Register(func() {}))
}

func TestWatchSkipsIgnored(t *testing.T) {
	signal.Ignore(syscall.SIGHUP)
	defer signal.Reset(syscall.SIGHUP)

	code := -1
	r := New(func(c int) { code = c })
	ran := false
	assert.NoError(t, r.Register(func() { ran = true }))

	stop := r.Watch(syscall.SIGHUP)
	defer stop()

	p, err := os.FindProcess(os.Getpid())
	assert.NoError(t, err)
	assert.NoError(t, p.Signal(syscall.SIGHUP))
	time.Sleep(100 * time.Millisecond)

	assert.True(t, signal.Ignored(syscall.SIGHUP))
	assert.NoError(t, r.Register(func() {}), "hooks must not run for an ignored signal")
	assert.False(t, ran)
	assert.Equal(t, -1, code)
}

func TestWatchStop(t *testing.T) {
	r := New(func(int) {})
	stop := r.Watch(syscall.SIGUSR2)
	stop()
	stop()
	assert.NoError(t, r.Register(func() {}))
}
