package bc

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
)

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic")
		}
	}()
	fn()
}

// TestBasicLedgerScenario replays bc/chain.py's TestBC.test_basic: a
// coinbase-only genesis, a transparent spend, a shielding transaction, and
// a shielded spend plus a deshielding spend anchored to an earlier
// snapshot.
func TestBasicLedgerScenario(t *testing.T) {
	ctx := NewContext()

	coinbaseTx0 := New(nil, []btcutil.Amount{10}, nil, nil, 0, nil, 10)
	if !ctx.AddIfValid(coinbaseTx0) {
		t.Fatalf("expected genesis coinbase to be valid")
	}
	genesis := NewBlock(nil, 1, []*Transaction{coinbaseTx0}, false)
	if genesis.Score != 1 {
		t.Fatalf("expected genesis score 1, got %d", genesis.Score)
	}

	coinbaseTx1 := New(nil, []btcutil.Amount{6}, nil, nil, -1, nil, 5)
	spendTx := New([]TXO{coinbaseTx0.TransparentOutput(0)}, []btcutil.Amount{9}, nil, nil, 1, nil, 0)
	if !ctx.AddIfValid(coinbaseTx1) {
		t.Fatalf("expected coinbaseTx1 to be valid")
	}
	if !ctx.AddIfValid(spendTx) {
		t.Fatalf("expected spendTx to be valid")
	}
	block1 := NewBlock(genesis, 1, []*Transaction{coinbaseTx1, spendTx}, false)
	if block1.Score != 2 {
		t.Fatalf("expected block1 score 2, got %d", block1.Score)
	}

	// The spent output must no longer be in the UTXO set.
	if ctx.IsValid(New([]TXO{coinbaseTx0.TransparentOutput(0)}, []btcutil.Amount{1}, nil, nil, 9, nil, 0)) {
		t.Fatalf("expected double-spend to be invalid")
	}

	coinbaseTx2 := New(nil, []btcutil.Amount{6}, nil, nil, -1, nil, 5)
	shieldingTx := New(
		[]TXO{coinbaseTx1.TransparentOutput(0), spendTx.TransparentOutput(0)},
		nil, nil, []btcutil.Amount{8, 6}, 1, nil, 0,
	)
	if !ctx.AddIfValid(coinbaseTx2) {
		t.Fatalf("expected coinbaseTx2 to be valid")
	}
	if !ctx.AddIfValid(shieldingTx) {
		t.Fatalf("expected shieldingTx to be valid")
	}
	NewBlock(block1, 1, []*Transaction{coinbaseTx2, shieldingTx}, false)
	anchor := ctx.Copy()

	coinbaseTx3 := New(nil, []btcutil.Amount{7}, nil, nil, -2, nil, 5)
	shieldedTx := New(nil, nil, []*Note{shieldingTx.ShieldedOutput(0)}, []btcutil.Amount{7}, 1, anchor, 0)
	deshieldingTx := New(nil, []btcutil.Amount{5}, []*Note{shieldingTx.ShieldedOutput(1)}, nil, 1, anchor, 0)
	if !ctx.AddIfValid(coinbaseTx3) {
		t.Fatalf("expected coinbaseTx3 to be valid")
	}
	if !ctx.AddIfValid(shieldedTx) {
		t.Fatalf("expected shieldedTx to be valid")
	}
	if !ctx.AddIfValid(deshieldingTx) {
		t.Fatalf("expected deshieldingTx to be valid")
	}

	if ctx.TotalIssuance != 25 {
		t.Fatalf("expected total issuance 25, got %d", ctx.TotalIssuance)
	}
	notes := ctx.CommittedNotes()
	if len(notes) != 2 {
		t.Fatalf("expected 2 committed notes, got %d", len(notes))
	}
	if notes[0].Spentness != Spent || notes[1].Spentness != Spent {
		t.Fatalf("expected both notes to be spent, got %v", notes)
	}
}

// TestConservationViolationPanics checks that New panics when a
// transaction does not conserve value.
func TestConservationViolationPanics(t *testing.T) {
	assertPanics(t, func() {
		New(nil, []btcutil.Amount{10}, nil, nil, 0, nil, 9) // issuance < output
	})
}

func TestNegativeIssuancePanics(t *testing.T) {
	assertPanics(t, func() {
		New(nil, nil, nil, nil, 0, nil, -1)
	})
}

func TestNonCoinbaseNegativeFeePanics(t *testing.T) {
	tx0 := New(nil, []btcutil.Amount{10}, nil, nil, 0, nil, 10)
	assertPanics(t, func() {
		New([]TXO{tx0.TransparentOutput(0)}, []btcutil.Amount{11}, nil, nil, -1, nil, 0)
	})
}

func TestAnchorRequiredForShieldedInputs(t *testing.T) {
	tx0 := New(nil, nil, nil, []btcutil.Amount{5}, 0, nil, 5)
	assertPanics(t, func() {
		New(nil, nil, []*Note{tx0.ShieldedOutput(0)}, nil, 5, nil, 0)
	})
}

func TestAnchorForbiddenWithoutShieldedInputs(t *testing.T) {
	ctx := NewContext()
	assertPanics(t, func() {
		New(nil, []btcutil.Amount{1}, nil, nil, 0, ctx, 1)
	})
}

// TestBlockFirstTransactionMustBeCoinbase checks the non-contextual block
// invariant that the first transaction must be (and only the first may
// be) a coinbase transaction.
func TestBlockFirstTransactionMustBeCoinbase(t *testing.T) {
	coinbase := New(nil, []btcutil.Amount{10}, nil, nil, 0, nil, 10)
	spend := New([]TXO{coinbase.TransparentOutput(0)}, []btcutil.Amount{10}, nil, nil, 0, nil, 0)

	assertPanics(t, func() {
		NewBlock(nil, 1, []*Transaction{spend, coinbase}, false)
	})
}

func TestBlockFeesMustSumToZero(t *testing.T) {
	coinbase := New(nil, []btcutil.Amount{10}, nil, nil, -1, nil, 9)
	spend := New([]TXO{coinbase.TransparentOutput(0)}, []btcutil.Amount{9}, nil, nil, 1, nil, 0)

	assertPanics(t, func() {
		// coinbase alone has a non-zero net fee (-1), so a block of just
		// the coinbase does not balance.
		NewBlock(nil, 1, []*Transaction{coinbase}, false)
	})

	// Including the fee-paying spend balances the block.
	NewBlock(nil, 1, []*Transaction{coinbase, spend}, false)
}
