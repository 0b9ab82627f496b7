package main

import (
	"errors"
	"fmt"
	"os"

	"albumus/internal/faults"
	"albumus/internal/media/ffmpeg"
)

func main() {
	cmd := newRootCommand()
	err := cmd.Execute()
	if code := exitCode(err); code != 0 {
		var silent *exitError
		if !errors.As(err, &silent) || silent.message != "" {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.message
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}
	if errors.Is(err, faults.ErrInterrupted) {
		return ffmpeg.ExitInterrupted
	}
	return 1
}
