package streamlet

import "github.com/Electric-Coin-Company/simtfl-sim/internal/netsim"

// Payload is a generic envelope for a typed message body, the tagged-
// variant rendering of simtfl's PayloadMessage dataclass. Each concrete
// message type below embeds a Payload[T] and supplies its own
// MessageType tag.
type Payload[T any] struct {
	Value T
}

// ProposalMsg carries a candidate proposal to be voted on.
type ProposalMsg struct {
	Payload[*Proposal]
}

func (ProposalMsg) MessageType() string { return "proposal" }

// Ballot carries one node's vote (signature) for a proposal.
type Ballot struct {
	Payload[*Proposal]
	Voter int
}

func (Ballot) MessageType() string { return "ballot" }

// BlockMsg carries a notarized block.
type BlockMsg struct {
	Payload[*Block]
}

func (BlockMsg) MessageType() string { return "block" }

// Echo wraps any other message for one round of gossip amplification.
// A node that receives a non-Echo message rebroadcasts it wrapped in
// Echo exactly once; a node that receives an Echo never re-wraps it, so
// the number of messages sent stays finite.
type Echo struct {
	Payload[netsim.Message]
}

func (Echo) MessageType() string { return "echo" }
