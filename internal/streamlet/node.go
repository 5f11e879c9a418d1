package streamlet

import (
	"fmt"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/kernel"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/netsim"
)

// SafetyViolation records a rejected block (A) and the node's tip at the
// time (B) whose last-final blocks diverge — neither last-final block is
// an ancestor of the other. This should never happen if fewer than t nodes are Byzantine;
// observing it indicates an adversarial or misconfigured run.
type SafetyViolation struct {
	A Link
	B Link
}

// Node is an adapted-Streamlet participant: a SequentialNode whose
// mailbox drives a simple vote/notarize/extend state machine.
type Node struct {
	netsim.SequentialNode

	genesis    *Genesis
	votedEpoch int
	tip        Link

	// proposal is this node's own in-flight proposal, set by Propose and
	// cleared once it is either notarized or superseded by a different
	// proposal this node votes for. Only the current epoch's proposer
	// ever has a non-nil proposal; handleBallot uses it to decide whether
	// an incoming Ballot is for a proposal this node is tracking votes
	// for at all.
	proposal *Proposal

	safetyViolations map[[2]Link]SafetyViolation
}

// NewNode constructs a Streamlet node rooted at genesis. Call Initialize
// before adding it to a Network.
func NewNode(genesis *Genesis) *Node {
	return &Node{
		genesis:          genesis,
		tip:              genesis,
		safetyViolations: make(map[[2]Link]SafetyViolation),
	}
}

// Initialize binds the node's identity and network.
func (n *Node) Initialize(ident int, net *netsim.Network) {
	n.SequentialNode.Initialize(ident, net, n)
}

// Tip returns the node's current best chain tip.
func (n *Node) Tip() Link { return n.tip }

// VotedEpoch returns the highest epoch this node has voted in.
func (n *Node) VotedEpoch() int { return n.votedEpoch }

// FinalBlock returns the last final block known to this node.
func (n *Node) FinalBlock() Link { return n.tip.LastFinal() }

// SafetyViolations returns every safety violation observed so far.
func (n *Node) SafetyViolations() []SafetyViolation {
	out := make([]SafetyViolation, 0, len(n.safetyViolations))
	for _, v := range n.safetyViolations {
		out = append(out, v)
	}
	return out
}

// Propose broadcasts proposal to every other node. The caller is
// responsible for only calling this when this node is the proposer for
// proposal's epoch (genesis.ProposerForEpoch(epoch) == this node's
// identity).
func (n *Node) Propose(proposal *Proposal) {
	n.proposal = proposal
	n.Broadcast(ProposalMsg{Payload[*Proposal]{Value: proposal}}, -1)
}

// Handle implements netsim.MessageHandler. A message received wrapped in
// Echo is dispatched directly; any other message is first rebroadcast
// wrapped in a fresh Echo (exactly once) and then dispatched, which
// guarantees every honest node eventually sees every message without the
// echo traffic growing without bound.
func (n *Node) Handle(proc *kernel.Process, sender int, message netsim.Message) {
	if echo, ok := message.(Echo); ok {
		n.dispatch(proc, sender, echo.Value)
		return
	}
	n.Broadcast(Echo{Payload[netsim.Message]{Value: message}}, -1)
	n.dispatch(proc, sender, message)
}

func (n *Node) dispatch(proc *kernel.Process, sender int, message netsim.Message) {
	switch m := message.(type) {
	case ProposalMsg:
		n.handleProposal(proc, sender, m.Value)
	case Ballot:
		n.handleBallot(proc, sender, m)
	case BlockMsg:
		n.handleBlock(proc, sender, m.Value)
	}
}

func (n *Node) handleProposal(proc *kernel.Process, sender int, proposal *Proposal) {
	logger := n.Network().Logger()
	if proposal.Epoch() <= n.votedEpoch {
		logger.Log(proc.Now(), n.Ident(), "stale-proposal",
			fmt.Sprintf("epoch %d <= voted epoch %d", proposal.Epoch(), n.votedEpoch))
		return
	}
	logger.Log(proc.Now(), n.Ident(), "vote", fmt.Sprintf("epoch %d", proposal.Epoch()))
	// For now we just forget our own in-flight proposal if we vote for a
	// different valid one from another node. We can and should still vote
	// for our own proposal, when proposal == n.proposal.
	if proposal != n.proposal {
		n.proposal = nil
	}
	n.votedEpoch = proposal.Epoch()
	n.Broadcast(Ballot{Payload: Payload[*Proposal]{Value: proposal}, Voter: n.Ident()}, -1)
}

func (n *Node) handleBallot(proc *kernel.Process, sender int, ballot Ballot) {
	proposal := ballot.Value
	if proposal != n.proposal {
		return
	}
	logger := n.Network().Logger()
	logger.Log(proc.Now(), n.Ident(), "count",
		fmt.Sprintf("%d voted for our proposal in epoch %d", ballot.Voter, proposal.Epoch()))
	proposal.AddSignature(ballot.Voter)
	if !proposal.IsNotarized() {
		return
	}
	block := NewBlock(proposal)
	logger.Log(proc.Now(), n.Ident(), "notarized",
		fmt.Sprintf("epoch %d length %d", block.Epoch(), block.Length()))
	n.Broadcast(BlockMsg{Payload[*Block]{Value: block}}, -1)
	// It's fine to forget that we made the proposal now.
	n.proposal = nil
	n.considerBlock(proc.Now(), block)
}

func (n *Node) handleBlock(proc *kernel.Process, sender int, block *Block) {
	n.considerBlock(proc.Now(), block)
}

// ObserveBlock feeds block through the same safety-check/tip-update
// logic as a block arriving over the network, without requiring a
// running kernel.Process. Exported for demo/test harnesses that want to
// exercise safety-violation detection directly.
func (n *Node) ObserveBlock(now int64, block *Block) {
	n.considerBlock(now, block)
}

func (n *Node) considerBlock(now int64, block *Block) {
	logger := n.Network().Logger()

	var bl Link = block
	tipFinal, blockFinal := n.tip.LastFinal(), block.LastFinal()
	if !Preceq(tipFinal, blockFinal) {
		if !Preceq(blockFinal, tipFinal) {
			key := [2]Link{bl, n.tip}
			if _, seen := n.safetyViolations[key]; !seen {
				n.safetyViolations[key] = SafetyViolation{A: bl, B: n.tip}
				logger.Log(now, n.Ident(), "safety-violation",
					fmt.Sprintf("block at (length=%d,epoch=%d) conflicts with tip at (length=%d,epoch=%d)",
						block.Length(), block.Epoch(), n.tip.Length(), n.tip.Epoch()))
			}
		}
		logger.Log(now, n.Ident(), "not-updating-tip",
			fmt.Sprintf("length %d epoch %d", block.Length(), block.Epoch()))
		return
	}

	better := block.Length() > n.tip.Length() ||
		(block.Length() == n.tip.Length() && block.Epoch() > n.tip.Epoch())
	if better {
		n.tip = bl
		logger.Log(now, n.Ident(), "new-tip",
			fmt.Sprintf("length %d epoch %d", block.Length(), block.Epoch()))
	} else {
		logger.Log(now, n.Ident(), "not-updating-tip",
			fmt.Sprintf("length %d epoch %d", block.Length(), block.Epoch()))
	}
}
