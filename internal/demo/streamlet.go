// Package demo wires the kernel, netsim, bc, and streamlet packages
// together into runnable scenarios, grounded on original_source's
// demo.py (Ping/Pong network wiring) and bc/demo.py.
package demo

import (
	"fmt"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/kernel"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/logging"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/netsim"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/streamlet"
	"github.com/Electric-Coin-Company/simtfl-sim/pkg/models"
)

// StreamletResult bundles the raw per-node state produced by a run, for
// callers (tests, the HTTP layer) that want more than the JSON-ready
// RunSummary.
type StreamletResult struct {
	Summary models.RunSummary
	Nodes   []*streamlet.Node
	Genesis *streamlet.Genesis
}

// RunStraightLine runs numNodes honest Streamlet nodes for the given
// number of epochs, with the designated proposer for each epoch
// extending the previous epoch's settled tip, and returns the resulting
// per-node state. With no Byzantine behavior, every node converges on
// the same chain and no safety violation is ever recorded.
func RunStraightLine(numNodes, epochs int, delay int64, logger logging.Logger) StreamletResult {
	sched := kernel.NewScheduler()
	net := netsim.NewNetwork(sched, delay, logger)
	genesis := streamlet.NewGenesis(numNodes)

	nodes := make([]*streamlet.Node, numNodes)
	for i := 0; i < numNodes; i++ {
		nd := streamlet.NewNode(genesis)
		ident := net.AddNode(nd)
		nd.Initialize(ident, net)
		nodes[i] = nd
	}

	sched.Spawn(func(p *kernel.Process) {
		var parent streamlet.Link = genesis
		for epoch := 1; epoch <= epochs; epoch++ {
			proposer := genesis.ProposerForEpoch(epoch)
			proposal := streamlet.NewProposal(parent, epoch)
			nodes[proposer].Propose(proposal)
			p.Timeout(delay * 4)
			parent = nodes[0].Tip()
		}
	})

	net.RunAll()
	return StreamletResult{
		Summary: summarize("straight-line", numNodes, sched.Now(), nodes),
		Nodes:   nodes,
		Genesis: genesis,
	}
}

// RunEquivocatingFork constructs two rival notarized chains of epochs
// 1-2-3 that share a common genesis ancestor but diverge at epoch 1, so
// that each chain finalizes its own epoch-2 block, and feeds both
// directly to node 0 to force the safety-violation code path. This models a Byzantine proposer equivocating combined with a
// network partition large enough to notarize both branches (impossible
// for an honest quorum in a real deployment, but useful here to exercise
// Node.ObserveBlock and the Preceq-based violation check deterministically).
func RunEquivocatingFork(numNodes int, logger logging.Logger) StreamletResult {
	genesis := streamlet.NewGenesis(numNodes)
	t := genesis.T()

	buildChain := func(epochs []int) *streamlet.Block {
		var parent streamlet.Link = genesis
		var block *streamlet.Block
		for _, epoch := range epochs {
			proposal := streamlet.NewProposal(parent, epoch)
			for voter := 0; voter < t; voter++ {
				proposal.AddSignature(voter)
			}
			block = streamlet.NewBlock(proposal)
			parent = block
		}
		return block
	}

	chainA := buildChain([]int{1, 2, 3})
	chainB := buildChain([]int{1, 2, 3})

	net := netsim.NewNetwork(kernel.NewScheduler(), 1, logger)
	nodes := make([]*streamlet.Node, numNodes)
	for i := 0; i < numNodes; i++ {
		nd := streamlet.NewNode(genesis)
		ident := net.AddNode(nd)
		nd.Initialize(ident, net)
		nodes[i] = nd
	}

	nodes[0].ObserveBlock(0, chainA)
	nodes[0].ObserveBlock(0, chainB)

	return StreamletResult{
		Summary: summarize("equivocating-fork", numNodes, 0, nodes),
		Nodes:   nodes,
		Genesis: genesis,
	}
}

func summarize(scenario string, numNodes int, duration int64, nodes []*streamlet.Node) models.RunSummary {
	summary := models.RunSummary{
		Scenario:        scenario,
		NumNodes:        numNodes,
		VirtualDuration: duration,
	}
	for _, nd := range nodes {
		final := nd.FinalBlock()
		summary.Nodes = append(summary.Nodes, models.NodeStatusView{
			NodeID:     nd.Ident(),
			TipEpoch:   nd.Tip().Epoch(),
			TipLength:  nd.Tip().Length(),
			FinalEpoch: final.Epoch(),
			VotedEpoch: nd.VotedEpoch(),
		})
		for _, v := range nd.SafetyViolations() {
			summary.SafetyViolations = append(summary.SafetyViolations, models.SafetyViolationView{
				NodeID: nd.Ident(),
				BlockA: fmt.Sprintf("epoch=%d length=%d", v.A.Epoch(), v.A.Length()),
				BlockB: fmt.Sprintf("epoch=%d length=%d", v.B.Epoch(), v.B.Length()),
			})
		}
	}
	return summary
}
