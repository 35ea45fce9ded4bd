package term

import "github.com/pkg/errors"

// Activation steps that can fail. The text of each is the reason printed by
// ActivateRawMode before exiting.
var (
	ErrNotTerminal   = errors.New("not on a tty")
	ErrGetSettings   = errors.New("can't get tty settings")
	ErrRegisterReset = errors.New("atexit: can't register tty reset")
	ErrSetRaw        = errors.New("can't set raw mode")
)

var ErrNotActive = errors.New("raw mode was never activated")

// SetupError reports which activation step failed and why.
type SetupError struct {
	Step error
	Err  error
}

func (e *SetupError) Error() string {
	if e.Err == nil {
		return e.Step.Error()
	}
	return e.Step.Error() + ": " + e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func (e *SetupError) Is(target error) bool {
	return target == e.Step
}
