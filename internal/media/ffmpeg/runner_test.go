package ffmpeg

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"albumus/internal/faults"
	"albumus/internal/testsupport"
)

type fakeExecutor struct {
	lines []string
	err   error
	block bool
	args  []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	f.args = append([]string{binary}, args...)
	for _, line := range f.lines {
		onLine(line)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func TestRunSuccessStreamsLines(t *testing.T) {
	exec := &fakeExecutor{lines: []string{"size=1kB", "size=2kB"}}
	runner := New("", 0, WithExecutor(exec))
	var got []string
	code, err := runner.Run(context.Background(), []string{"-i", "a.wav"}, func(line string) { got = append(got, line) })
	if err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	if !reflect.DeepEqual(got, exec.lines) {
		t.Fatalf("lines = %v", got)
	}
	if exec.args[0] != "ffmpeg" {
		t.Fatalf("expected default binary, got %q", exec.args[0])
	}
}

func TestRunMapsExitCode(t *testing.T) {
	runner := New("ffmpeg", 0, WithExecutor(&fakeExecutor{err: &ExitError{Code: 69}}))
	code, err := runner.Run(context.Background(), nil, nil)
	if code != 69 {
		t.Fatalf("code = %d", code)
	}
	if !errors.Is(err, faults.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestRunStartFailure(t *testing.T) {
	runner := New("ffmpeg", 0, WithExecutor(&fakeExecutor{err: errors.New("exec: not found")}))
	code, err := runner.Run(context.Background(), nil, nil)
	if code != ExitStartFailure || !errors.Is(err, faults.ErrEncode) {
		t.Fatalf("Run = %d, %v", code, err)
	}
}

func TestRunCancellationIsInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := &fakeExecutor{block: true}
	runner := New("ffmpeg", 0, WithExecutor(exec))
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	code, err := runner.Run(ctx, nil, nil)
	if code != ExitInterrupted {
		t.Fatalf("code = %d", code)
	}
	if !errors.Is(err, faults.ErrInterrupted) || !errors.Is(err, faults.ErrEncode) {
		t.Fatalf("expected interrupted encode failure, got %v", err)
	}
	if faults.Status(err) != faults.StatusInterrupted {
		t.Fatalf("status = %q", faults.Status(err))
	}
}

func TestRunTimeout(t *testing.T) {
	runner := New("ffmpeg", 0, WithExecutor(&fakeExecutor{block: true}))
	runner.timeout = 20 * time.Millisecond
	code, err := runner.Run(context.Background(), nil, nil)
	if code != ExitTimeout || !errors.Is(err, faults.ErrTimeout) {
		t.Fatalf("Run = %d, %v", code, err)
	}
}

func TestCommandExecutorMergesStreams(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	testsupport.WriteScript(t, stub, `echo "to stdout"
echo "to stderr" 1>&2
printf 'frame=1\rframe=2\rdone\n'
exit 0
`)
	runner := New(stub, 0)
	var got []string
	code, err := runner.Run(context.Background(), nil, func(line string) { got = append(got, line) })
	if err != nil || code != 0 {
		t.Fatalf("Run = %d, %v", code, err)
	}
	want := []string{"to stdout", "to stderr", "frame=1", "frame=2", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestCommandExecutorNonZeroExit(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	testsupport.WriteScript(t, stub, "echo boom 1>&2\nexit 3\n")
	code, err := New(stub, 0).Run(context.Background(), nil, nil)
	if code != 3 || !errors.Is(err, faults.ErrEncode) {
		t.Fatalf("Run = %d, %v", code, err)
	}
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	code, err := New(filepath.Join(t.TempDir(), "absent"), 0).Run(context.Background(), nil, nil)
	if code != ExitStartFailure || !errors.Is(err, faults.ErrEncode) {
		t.Fatalf("Run = %d, %v", code, err)
	}
}

func TestScanLines(t *testing.T) {
	input := "a\r\nb\rc\n\nd"
	var got []string
	data := []byte(input)
	for len(data) > 0 {
		advance, token, err := scanLines(data, true)
		if err != nil {
			t.Fatalf("scanLines: %v", err)
		}
		got = append(got, string(token))
		data = data[advance:]
	}
	if strings.Join(got, "|") != "a|b|c||d" {
		t.Fatalf("tokens = %q", got)
	}
}
