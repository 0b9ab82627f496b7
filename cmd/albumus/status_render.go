package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"albumus/internal/faults"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColors(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

// statusKindFor maps job and run status strings onto display kinds.
func statusKindFor(status string) statusKind {
	switch status {
	case faults.StatusOK:
		return statusOK
	case faults.StatusInterrupted, faults.StatusTagFail:
		return statusWarn
	case "":
		return statusInfo
	default:
		return statusError
	}
}

func colorKind(kind statusKind, colorize bool) string {
	label := statusKindLabel(kind)
	if !colorize {
		return label
	}
	return statusKindColors(kind).Sprint(label)
}

func colorStatus(status string, colorize bool) string {
	if !colorize {
		return status
	}
	return statusKindColors(statusKindFor(status)).Sprint(status)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
