package console

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestStandardWiresStdoutAndStdin(t *testing.T) {
	out := &bytes.Buffer{}
	in := strings.NewReader("hello")
	s := &Standard{Out: out, In: in}

	if s.Stdout() != out {
		t.Error("Stdout() did not return the configured writer")
	}
	if s.Stdin() != in {
		t.Error("Stdin() did not return the configured reader")
	}
}

func TestMIDILogsWithoutPanickingWhenLogIsNil(t *testing.T) {
	s := &Standard{}
	s.MIDI(9)
}

func TestMIDILogsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := &Standard{Log: log}
	s.MIDI(5)
	if !strings.Contains(buf.String(), "midi") {
		t.Errorf("log output = %q, want it to mention midi", buf.String())
	}
}
