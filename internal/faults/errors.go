package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigParse      = errors.New("config parse error")
	ErrMetadata         = errors.New("metadata error")
	ErrProbeUnavailable = errors.New("probe unavailable")
	ErrEncode           = errors.New("encode failure")
	ErrTagWrite         = errors.New("tag write error")
	ErrInterrupted      = errors.New("interrupted")
	ErrTimeout          = errors.New("timeout")
	ErrPreflight        = errors.New("preflight failed")
	ErrLocked           = errors.New("project locked")
)

// Job statuses recorded in reports and the history ledger.
const (
	StatusOK          = "ok"
	StatusEncodeFail  = "encode_failed"
	StatusTagFail     = "tag_failed"
	StatusInterrupted = "interrupted"
	StatusTimeout     = "timeout"
	StatusFailed      = "failed"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrEncode
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Status maps a job error to the status string persisted for that job. Check
// order matters: an interrupted encode is also an encode failure.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInterrupted):
		return StatusInterrupted
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrEncode):
		return StatusEncodeFail
	case errors.Is(err, ErrTagWrite):
		return StatusTagFail
	default:
		return StatusFailed
	}
}

// IsFatal reports whether err must end the whole run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfigParse) || errors.Is(err, ErrPreflight) || errors.Is(err, ErrLocked)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
