package term

import "golang.org/x/sys/unix"

// TCSETSF is tcsetattr(TCSAFLUSH).
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETSF
)
