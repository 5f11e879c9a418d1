// Package netsim implements the simulated network and node disciplines
// (passive and sequential) that BFT node implementations run on top of.
package netsim

import (
	"fmt"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/kernel"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/logging"
)

// Node is the interface every participant in a Network must satisfy.
type Node interface {
	Ident() int
	Receive(proc *kernel.Process, sender int, message Message)
	Run(proc *kernel.Process)
}

// Network delivers messages between nodes after a delay, and drives
// every node's Run method as its own process.
type Network struct {
	sched        *kernel.Scheduler
	nodes        []Node
	defaultDelay int64
	logger       logging.Logger

	// Done is set once RunAll's scheduler has drained its event queue.
	Done bool
}

// NewNetwork constructs an empty network with the given default message
// delay and logger, and calls the logger's Header. A nil logger is
// replaced with logging.NullLogger.
func NewNetwork(sched *kernel.Scheduler, defaultDelay int64, logger logging.Logger) *Network {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	logger.Header()
	return &Network{sched: sched, defaultDelay: defaultDelay, logger: logger}
}

// Scheduler returns the kernel scheduler driving this network.
func (net *Network) Scheduler() *kernel.Scheduler { return net.sched }

// Logger returns the network's logger.
func (net *Network) Logger() logging.Logger { return net.logger }

// NumNodes returns the number of nodes added so far.
func (net *Network) NumNodes() int { return len(net.nodes) }

// NodeAt returns the node with the given identity.
func (net *Network) NodeAt(ident int) Node { return net.nodes[ident] }

// AddNode appends n to the network and returns its assigned identity.
func (net *Network) AddNode(n Node) int {
	ident := len(net.nodes)
	net.nodes = append(net.nodes, n)
	return ident
}

// StartAll spawns every node's Run method as its own kernel process.
func (net *Network) StartAll() {
	for _, n := range net.nodes {
		node := n
		net.logger.Log(net.sched.Now(), node.Ident(), "start",
			fmt.Sprintf("starting node %d", node.Ident()))
		net.sched.Spawn(func(p *kernel.Process) {
			node.Run(p)
		})
	}
}

// Send delivers message from sender to target after delay virtual-time
// units. A negative delay uses the network's default delay.
func (net *Network) Send(sender, target int, message Message, delay int64) {
	d := net.defaultDelay
	if delay >= 0 {
		d = delay
	}
	net.logger.Log(net.sched.Now(), sender, "send",
		fmt.Sprintf("%s -> %d delay %d", message.MessageType(), target, d))
	net.sched.Spawn(func(p *kernel.Process) {
		p.Timeout(d)
		net.logger.Log(p.Now(), target, "receive",
			fmt.Sprintf("%s from %d", message.MessageType(), sender))
		net.nodes[target].Receive(p, sender, message)
	})
}

// Broadcast sends message from sender to every other node in the
// network.
func (net *Network) Broadcast(sender int, message Message, delay int64) {
	net.logger.Log(net.sched.Now(), sender, "broadcast",
		fmt.Sprintf("%s -> %d peers", message.MessageType(), len(net.nodes)-1))
	for target := range net.nodes {
		if target != sender {
			net.Send(sender, target, message, delay)
		}
	}
}

// RunAll starts every node and drains the scheduler's event queue to
// completion, then marks the network Done.
func (net *Network) RunAll() {
	net.StartAll()
	net.sched.Run()
	net.Done = true
}
