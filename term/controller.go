//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package term

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gni.dev/rawtty/exithook"
)

type Config struct {
	// SuppressInterrupt keeps SIGINT from terminating the process while raw
	// mode is active; Ctrl-C is read from the terminal as the byte 0x03.
	SuppressInterrupt bool

	Logger logrus.FieldLogger
	Stderr io.Writer
	// Hooks receives the terminal reset. Defaults to exithook.Default(),
	// which Exit runs.
	Hooks *exithook.Registry
}

// Controller owns a terminal switched into raw mode and the settings needed
// to put it back.
type Controller struct {
	fd         int
	saved      *State
	cfg        Config
	log        logrus.FieldLogger
	interrupts chan os.Signal
	stopWatch  func()

	getState func(fd int) (*State, error)
	setRaw   func(st *State, suppressInterrupt bool) error
}

// ActivateRawMode switches standard input into raw mode and registers an exit
// hook that restores it. Any failure is fatal.
//
// Go does not run exit hooks when main returns or os.Exit is called, so
// callers leave through Exit or defer Reset.
func ActivateRawMode(cfg Config) *Controller {
	c := newController(int(os.Stdin.Fd()), cfg)
	if err := c.activate(); err != nil {
		c.fail(err)
	}
	return c
}

func newController(fd int, cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Hooks == nil {
		cfg.Hooks = exithook.Default()
	}
	return &Controller{
		fd:       fd,
		cfg:      cfg,
		getState: GetState,
		setRaw:   (*State).applyRaw,
		log: cfg.Logger.WithFields(logrus.Fields{
			"fd":                 fd,
			"suppress_interrupt": cfg.SuppressInterrupt,
		}),
	}
}

func (c *Controller) activate() error {
	if c.cfg.SuppressInterrupt {
		// Never drained: having a receiver is enough to stop SIGINT from
		// killing the process.
		c.interrupts = make(chan os.Signal, 1)
		signal.Notify(c.interrupts, os.Interrupt)
	}

	if !IsTerminal(c.fd) {
		return &SetupError{Step: ErrNotTerminal}
	}

	st, err := c.getState(c.fd)
	if err != nil {
		return &SetupError{Step: ErrGetSettings, Err: err}
	}
	c.saved = st

	if err := c.cfg.Hooks.Register(func() { _ = c.Reset() }); err != nil {
		return &SetupError{Step: ErrRegisterReset, Err: err}
	}
	c.stopWatch = c.cfg.Hooks.Watch(c.exitSignals()...)

	if err := c.setRaw(st, c.cfg.SuppressInterrupt); err != nil {
		return &SetupError{Step: ErrSetRaw, Err: err}
	}
	c.log.Debug("terminal in raw mode")
	return nil
}

func (c *Controller) exitSignals() []os.Signal {
	sigs := []os.Signal{syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}
	if !c.cfg.SuppressInterrupt {
		sigs = append(sigs, os.Interrupt)
	}
	return sigs
}

// Reset puts back the settings captured at activation. It is safe to call
// more than once.
func (c *Controller) Reset() error {
	if c.saved == nil {
		return ErrNotActive
	}
	if c.interrupts != nil {
		signal.Stop(c.interrupts)
	}
	if c.stopWatch != nil {
		c.stopWatch()
	}
	if err := c.saved.Restore(); err != nil {
		c.log.WithError(err).Warn("failed to reset terminal")
		return errors.Wrap(err, "can't reset tty")
	}
	c.log.Debug("terminal reset")
	return nil
}

// Saved returns the settings captured at activation, or nil.
func (c *Controller) Saved() *State {
	return c.saved
}

func (c *Controller) fail(err error) {
	reason := err.Error()
	var se *SetupError
	if errors.As(err, &se) {
		reason = se.Step.Error()
	}
	c.log.WithError(err).Debug("raw mode activation failed")
	c.FailFatal(reason)
}

// FailFatal reports message on the controller's stderr and exits with status
// 1 through its hook registry.
func (c *Controller) FailFatal(message string) {
	failFatal(c.cfg.Stderr, c.cfg.Hooks, message)
}

// FailFatal reports message on standard error and exits with status 1,
// running the hooks of exithook.Default() on the way out. Controllers built
// with their own Config.Hooks need (*Controller).FailFatal.
func FailFatal(message string) {
	failFatal(os.Stderr, exithook.Default(), message)
}

// Exit runs the hooks of exithook.Default(), restoring any terminal left in
// raw mode by ActivateRawMode, and exits with code.
func Exit(code int) {
	exithook.Default().Exit(code)
}

func failFatal(w io.Writer, hooks *exithook.Registry, message string) {
	fmt.Fprintf(w, "fatal error: %s\n", message)
	hooks.Exit(1)
}
