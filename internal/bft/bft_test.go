package bft

import "testing"

// Grounded on bft/chain.py's TestPermissionedBFT.test_basic: two rounds of
// proposal -> signatures -> notarized block, each block's LastFinal still
// the genesis (Block.LastFinal's default walk-to-root behavior). With n=3
// the threshold is TwoThirdsThreshold(3) = 2, so two signers notarize.
func TestBasicChainExtension(t *testing.T) {
	genesis := NewGenesis(3)
	if genesis.LastFinal() != Link(genesis) {
		t.Fatalf("genesis.LastFinal() should be itself")
	}

	var current Link = genesis
	for i := 0; i < 2; i++ {
		proposal := NewProposal(current, nil)
		proposal.AssertValid()
		if !proposal.IsValid() {
			t.Fatalf("round %d: expected proposal to be valid", i)
		}
		if proposal.IsNotarized() {
			t.Fatalf("round %d: expected proposal not yet notarized", i)
		}

		proposal.AddSignature(0)
		if proposal.IsNotarized() {
			t.Fatalf("round %d: one signature should not notarize (t=%d)", i, proposal.T())
		}

		proposal.AddSignature(0) // same index again
		if proposal.IsNotarized() {
			t.Fatalf("round %d: repeat signature should not notarize", i)
		}

		proposal.AddSignature(1)
		proposal.AssertNotarized()
		if !proposal.IsNotarized() {
			t.Fatalf("round %d: expected proposal notarized with two signers", i)
		}

		block := NewBlock(proposal)
		if block.LastFinal() != Link(genesis) {
			t.Fatalf("round %d: expected LastFinal to walk back to genesis", i)
		}
		current = block
	}
}

// Grounded on bft/chain.py's TestPermissionedBFT.test_assertions: building
// a Block from a non-notarized proposal must panic, and succeeds once the
// threshold (here t=2 for n=2) is reached.
func TestBlockFromUnnotarizedProposalPanics(t *testing.T) {
	genesis := NewGenesis(2)
	proposal := NewProposal(genesis, nil)

	assertPanics(t, func() { NewBlock(proposal) })

	proposal.AddSignature(0)
	assertPanics(t, func() { NewBlock(proposal) })

	proposal.AddSignature(1)
	_ = NewBlock(proposal)
}

func TestTwoThirdsThreshold(t *testing.T) {
	cases := map[int]int{5: 4, 3: 2, 4: 3, 1: 1, 6: 4}
	for n, want := range cases {
		if got := TwoThirdsThreshold(n); got != want {
			t.Fatalf("TwoThirdsThreshold(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestAddSignatureBeyondParticipantCountPanics(t *testing.T) {
	genesis := NewGenesis(2)
	proposal := NewProposal(genesis, nil)
	proposal.AddSignature(0)
	proposal.AddSignature(1)
	assertPanics(t, func() { proposal.AddSignature(2) })
}

func TestProposalValidateHook(t *testing.T) {
	genesis := NewGenesis(3)
	failing := NewProposal(genesis, func() error { return errBoom })
	if failing.IsValid() {
		t.Fatalf("expected validate hook to fail the proposal")
	}
	if failing.IsNotarized() {
		t.Fatalf("an invalid proposal can never be notarized")
	}
}

var errBoom = simpleErr("boom")

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic")
		}
	}()
	fn()
}
