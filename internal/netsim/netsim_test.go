package netsim

import (
	"testing"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/kernel"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/logging"
)

type pingMsg struct{ n int }

func (pingMsg) MessageType() string { return "ping" }

// recordingNode counts the messages it receives and the order they
// arrived in, distinguishing PassiveNode's concurrent handling from
// SequentialNode's strictly ordered handling.
type recordingNode struct {
	received []int
}

func (r *recordingNode) Handle(proc *kernel.Process, sender int, message Message) {
	r.received = append(r.received, message.(pingMsg).n)
}

type passiveRecorder struct {
	PassiveNode
	recordingNode
}

func (p *passiveRecorder) Handle(proc *kernel.Process, sender int, message Message) {
	p.recordingNode.Handle(proc, sender, message)
}

type sequentialRecorder struct {
	SequentialNode
	recordingNode
}

func (s *sequentialRecorder) Handle(proc *kernel.Process, sender int, message Message) {
	s.recordingNode.Handle(proc, sender, message)
}

// TestSequentialNodeHandlesInArrivalOrder checks that a SequentialNode
// dequeues mailbox items strictly in arrival order even when messages are
// delivered with different delays and thus complete out of send order.
func TestSequentialNodeHandlesInArrivalOrder(t *testing.T) {
	sched := kernel.NewScheduler()
	net := NewNetwork(sched, 1, logging.NullLogger{})

	receiver := &sequentialRecorder{}
	receiverIdent := net.AddNode(receiver)
	receiver.Initialize(receiverIdent, net, receiver)

	sched.Spawn(func(p *kernel.Process) {
		net.Send(-1, receiverIdent, pingMsg{1}, 5)
		net.Send(-1, receiverIdent, pingMsg{2}, 1)
	})

	net.RunAll()

	if len(receiver.received) != 2 {
		t.Fatalf("expected 2 messages received, got %d", len(receiver.received))
	}
	// Message 2 arrives first (delay 1 < delay 5), so it is handled first.
	if receiver.received[0] != 2 || receiver.received[1] != 1 {
		t.Fatalf("expected arrival order [2 1], got %v", receiver.received)
	}
}

// TestBroadcastReachesEveryOtherNode checks that Broadcast delivers to
// every node except the sender.
func TestBroadcastReachesEveryOtherNode(t *testing.T) {
	sched := kernel.NewScheduler()
	net := NewNetwork(sched, 1, logging.NullLogger{})

	nodes := make([]*sequentialRecorder, 3)
	for i := range nodes {
		nodes[i] = &sequentialRecorder{}
		ident := net.AddNode(nodes[i])
		nodes[i].Initialize(ident, net, nodes[i])
	}

	sched.Spawn(func(p *kernel.Process) {
		net.Broadcast(0, pingMsg{42}, 1)
	})

	net.RunAll()

	if len(nodes[0].received) != 0 {
		t.Fatalf("expected sender to receive nothing, got %v", nodes[0].received)
	}
	for i := 1; i < len(nodes); i++ {
		if len(nodes[i].received) != 1 || nodes[i].received[0] != 42 {
			t.Fatalf("expected node %d to receive [42], got %v", i, nodes[i].received)
		}
	}
}

// TestPassiveNodeHandlesConcurrently checks that a PassiveNode, which
// spawns a fresh process per message and has no driving loop, handles
// every delivered message: both handlers complete by the time the network
// drains, regardless of which message physically arrives first.
func TestPassiveNodeHandlesConcurrently(t *testing.T) {
	sched := kernel.NewScheduler()
	net := NewNetwork(sched, 1, logging.NullLogger{})

	receiver := &passiveRecorder{}
	receiverIdent := net.AddNode(receiver)
	receiver.Initialize(receiverIdent, net, receiver)

	sched.Spawn(func(p *kernel.Process) {
		net.Send(-1, receiverIdent, pingMsg{1}, 3)
		net.Send(-1, receiverIdent, pingMsg{2}, 1)
	})

	net.RunAll()

	if len(receiver.received) != 2 {
		t.Fatalf("expected 2 messages handled, got %d", len(receiver.received))
	}
}
