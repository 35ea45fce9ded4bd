//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package term

import (
	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// Read timing applied in raw mode: a read returns as soon as one byte is
// available, or with nothing after 0.8s.
const (
	readMin     = 0
	readTimeout = 8
)

// State is a snapshot of a terminal's line discipline settings.
type State struct {
	t  unix.Termios
	fd int
}

func IsTerminal(fd int) bool {
	return xterm.IsTerminal(fd)
}

// GetState captures the current settings of fd.
func GetState(fd int) (*State, error) {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	return &State{t: *t, fd: fd}, nil
}

// MakeRaw puts fd into raw mode and returns the settings it had before.
func MakeRaw(fd int, suppressInterrupt bool) (*State, error) {
	st, err := GetState(fd)
	if err != nil {
		return nil, err
	}
	if err := st.applyRaw(suppressInterrupt); err != nil {
		return nil, err
	}
	return st, nil
}

// Restore applies the snapshot back to its terminal, discarding pending
// input and output first.
func (s *State) Restore() error {
	t := s.t
	return setTermios(s.fd, &t)
}

// Termios returns a copy of the captured settings.
func (s *State) Termios() unix.Termios {
	return s.t
}

func (s *State) applyRaw(suppressInterrupt bool) error {
	t := s.t
	setRawMode(&t, suppressInterrupt)
	return setTermios(s.fd, &t)
}

func setRawMode(t *unix.Termios, suppressInterrupt bool) {
	t.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Cflag |= unix.CS8
	t.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN
	if suppressInterrupt {
		t.Lflag &^= unix.ISIG
	}
	t.Cc[unix.VMIN] = readMin
	t.Cc[unix.VTIME] = readTimeout
}

func setTermios(fd int, t *unix.Termios) error {
	return unix.IoctlSetTermios(fd, ioctlSetTermios, t)
}
