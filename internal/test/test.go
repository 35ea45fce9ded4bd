package test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/pkg/errors"
)

const helperEnv = "RAWTTY_TEST_HELPER"

// Run runs the package tests, or a single helper when the binary was started
// by Helper.
func Run(m *testing.M, helpers map[string]func()) int {
	name := os.Getenv(helperEnv)
	if name == "" {
		return m.Run()
	}

	fn, ok := helpers[name]
	if !ok {
		fmt.Fprintln(os.Stderr, "unknown helper:", name)
		return 2
	}
	fn()
	return 0
}

type Result struct {
	Stdout string
	Stderr string
	// Code is -1 when the helper was killed by a signal.
	Code int
}

// Helper re-executes the test binary as the named helper with stdin attached
// and waits for it to exit.
func Helper(t *testing.T, name string, stdin *os.File) Result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), helperEnv+"="+name)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.Code = exitErr.ExitCode()
	default:
		t.Fatalf("failed to run helper %s: %v", name, err)
	}
	if ctx.Err() != nil {
		t.Fatalf("helper %s timed out", name)
	}
	return res
}
