package demo

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/bc"
	"github.com/Electric-Coin-Company/simtfl-sim/pkg/models"
)

// LedgerResult bundles the raw ledger state produced by RunLedger.
type LedgerResult struct {
	Summary models.RunSummary
	Context *bc.Context
	Blocks  []*bc.Block
}

// RunLedger replays the canonical best-chain scenario (grounded
// precisely on bc/chain.py's TestBC.test_basic): a genesis coinbase, a
// transparent spend, a shielding transaction, a shielded spend and a
// deshielding spend anchored to an earlier context snapshot. Conservation
// of value and block validity are enforced by the bc constructors, which
// panic on a violation; AddIfValid results and block scores are not
// checked here.
func RunLedger() LedgerResult {
	ctx := bc.NewContext()

	coinbaseTx0 := bc.New(nil, []btcutil.Amount{10}, nil, nil, 0, nil, 10)
	ctx.AddIfValid(coinbaseTx0)
	genesis := bc.NewBlock(nil, 1, []*bc.Transaction{coinbaseTx0}, false)

	coinbaseTx1 := bc.New(nil, []btcutil.Amount{6}, nil, nil, -1, nil, 5)
	spendTx := bc.New([]bc.TXO{coinbaseTx0.TransparentOutput(0)}, []btcutil.Amount{9}, nil, nil, 1, nil, 0)
	ctx.AddIfValid(coinbaseTx1)
	ctx.AddIfValid(spendTx)
	block1 := bc.NewBlock(genesis, 1, []*bc.Transaction{coinbaseTx1, spendTx}, false)

	coinbaseTx2 := bc.New(nil, []btcutil.Amount{6}, nil, nil, -1, nil, 5)
	shieldingTx := bc.New(
		[]bc.TXO{coinbaseTx1.TransparentOutput(0), spendTx.TransparentOutput(0)},
		nil, nil, []btcutil.Amount{8, 6}, 1, nil, 0,
	)
	ctx.AddIfValid(coinbaseTx2)
	ctx.AddIfValid(shieldingTx)
	block2 := bc.NewBlock(block1, 2, []*bc.Transaction{coinbaseTx2, shieldingTx}, false)
	block2Anchor := ctx.Copy()

	coinbaseTx3 := bc.New(nil, []btcutil.Amount{7}, nil, nil, -2, nil, 5)
	shieldedTx := bc.New(nil, nil, []*bc.Note{shieldingTx.ShieldedOutput(0)}, []btcutil.Amount{7}, 1, block2Anchor, 0)
	deshieldingTx := bc.New(nil, []btcutil.Amount{5}, []*bc.Note{shieldingTx.ShieldedOutput(1)}, nil, 1, block2Anchor, 0)
	ctx.AddIfValid(coinbaseTx3)
	ctx.AddIfValid(shieldedTx)
	ctx.AddIfValid(deshieldingTx)
	block3 := bc.NewBlock(block2, 3, []*bc.Transaction{coinbaseTx3, shieldedTx, deshieldingTx}, false)

	summary := models.RunSummary{
		Scenario:        "best-chain-ledger",
		NumNodes:        1,
		VirtualDuration: 0,
		LedgerUTXOCount: ctx.UTXOCount(),
		LedgerNoteCount: len(ctx.CommittedNotes()),
		TotalIssuance:   int64(ctx.TotalIssuance),
	}

	return LedgerResult{
		Summary: summary,
		Context: ctx,
		Blocks:  []*bc.Block{genesis, block1, block2, block3},
	}
}
