package logging

import (
	"strings"
	"testing"
)

func TestLineFormatting(t *testing.T) {
	line := Line(42, 3, "vote", "epoch 7")
	if !strings.Contains(line, "42") || !strings.Contains(line, "vote") || !strings.Contains(line, "epoch 7") {
		t.Fatalf("expected rendered line to contain time, event, and detail, got %q", line)
	}
}

func TestMultiLoggerFansOutToEveryLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, b)

	m.Header()
	m.Log(1, 0, "tick", "detail")

	if !a.headerCalled || !b.headerCalled {
		t.Fatalf("expected Header to fan out to every logger")
	}
	if len(a.lines) != 1 || len(b.lines) != 1 {
		t.Fatalf("expected Log to fan out to every logger")
	}
}

type recordingLogger struct {
	headerCalled bool
	lines        []string
}

func (r *recordingLogger) Header() { r.headerCalled = true }
func (r *recordingLogger) Log(now int64, nodeID int, event, detail string) {
	r.lines = append(r.lines, Line(now, nodeID, event, detail))
}
