package demo

import (
	"testing"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/logging"
)

// TestRunStraightLineProducesConvergentSummary exercises the full
// kernel/netsim/streamlet wiring end to end: every honest node should
// converge on the same tip and record no safety violations.
func TestRunStraightLineProducesConvergentSummary(t *testing.T) {
	result := RunStraightLine(4, 5, 1, logging.NullLogger{})

	if len(result.Summary.Nodes) != 4 {
		t.Fatalf("expected 4 node statuses, got %d", len(result.Summary.Nodes))
	}
	if len(result.Summary.SafetyViolations) != 0 {
		t.Fatalf("expected no safety violations in an honest run, got %v", result.Summary.SafetyViolations)
	}

	first := result.Summary.Nodes[0]
	for _, n := range result.Summary.Nodes[1:] {
		if n.TipEpoch != first.TipEpoch || n.TipLength != first.TipLength {
			t.Fatalf("expected all nodes to converge on the same tip, got %+v vs %+v", first, n)
		}
	}
	if first.TipEpoch != 5 {
		t.Fatalf("expected tip at epoch 5, got %d", first.TipEpoch)
	}
}

// TestRunEquivocatingForkRecordsSafetyViolation checks that feeding two
// rival notarized chains directly to a node records exactly one safety
// violation.
func TestRunEquivocatingForkRecordsSafetyViolation(t *testing.T) {
	result := RunEquivocatingFork(4, logging.NullLogger{})

	total := 0
	for _, v := range result.Summary.SafetyViolations {
		_ = v
		total++
	}
	if total != 1 {
		t.Fatalf("expected exactly one safety violation, got %d", total)
	}
}

// TestRunLedgerConservesValue exercises the bc wiring end to end and
// checks the resulting summary's total issuance and note count, and the
// number of blocks built.
func TestRunLedgerConservesValue(t *testing.T) {
	result := RunLedger()

	if result.Summary.TotalIssuance != 25 {
		t.Fatalf("expected total issuance 25, got %d", result.Summary.TotalIssuance)
	}
	if result.Summary.LedgerNoteCount != 2 {
		t.Fatalf("expected 2 committed notes, got %d", result.Summary.LedgerNoteCount)
	}
	if len(result.Blocks) != 4 {
		t.Fatalf("expected 4 blocks (genesis + 3), got %d", len(result.Blocks))
	}
}
