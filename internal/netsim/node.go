package netsim

import (
	"fmt"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/kernel"
)

// MessageHandler is implemented by the concrete node type embedding
// PassiveNode or SequentialNode. The base types hold a MessageHandler
// reference (set at Initialize time) so that Handle dispatches to the
// outer type's override, the idiomatic Go substitute for the virtual
// method call the Python base classes rely on.
type MessageHandler interface {
	Handle(proc *kernel.Process, sender int, message Message)
}

// PassiveNode handles every incoming message in its own freshly spawned
// process, so messages may be handled concurrently (interleaved) with
// each other and with any in-flight handling. It has no driving loop of
// its own.
type PassiveNode struct {
	ident int
	net   *Network
	self  MessageHandler
}

// Initialize binds the node's identity, network, and the concrete
// message handler that Receive should dispatch to.
func (n *PassiveNode) Initialize(ident int, net *Network, self MessageHandler) {
	n.ident = ident
	n.net = net
	n.self = self
}

func (n *PassiveNode) Ident() int      { return n.ident }
func (n *PassiveNode) Network() *Network { return n.net }

// Send relays message to target via the owning network.
func (n *PassiveNode) Send(target int, message Message, delay int64) {
	n.net.Send(n.ident, target, message, delay)
}

// Broadcast relays message to every other node via the owning network.
func (n *PassiveNode) Broadcast(message Message, delay int64) {
	n.net.Broadcast(n.ident, message, delay)
}

// Receive spawns a new process to handle the incoming message.
func (n *PassiveNode) Receive(proc *kernel.Process, sender int, message Message) {
	proc.Spawn(func(p *kernel.Process) {
		n.self.Handle(p, sender, message)
	})
}

// Run is a no-op: a passive node has no process of its own beyond the
// handlers spawned by Receive.
func (n *PassiveNode) Run(proc *kernel.Process) {}

// SequentialNode queues incoming messages in a mailbox and handles them
// one at a time, in arrival order, on its own single driving process.
// Unlike PassiveNode, handling one message fully completes (including any
// time it takes) before the next is handled.
type SequentialNode struct {
	ident   int
	net     *Network
	self    MessageHandler
	mailbox []mailItem
	wakeup  *kernel.Event
}

type mailItem struct {
	sender  int
	message Message
}

// Initialize binds the node's identity, network, and message handler.
func (n *SequentialNode) Initialize(ident int, net *Network, self MessageHandler) {
	n.ident = ident
	n.net = net
	n.self = self
	n.wakeup = kernel.NewEvent(net.Scheduler())
}

func (n *SequentialNode) Ident() int        { return n.ident }
func (n *SequentialNode) Network() *Network { return n.net }

// Send relays message to target via the owning network.
func (n *SequentialNode) Send(target int, message Message, delay int64) {
	n.net.Send(n.ident, target, message, delay)
}

// Broadcast relays message to every other node via the owning network.
func (n *SequentialNode) Broadcast(message Message, delay int64) {
	n.net.Broadcast(n.ident, message, delay)
}

// Receive appends the message to the mailbox and wakes the driving
// process if it is currently waiting on an empty mailbox.
func (n *SequentialNode) Receive(proc *kernel.Process, sender int, message Message) {
	n.mailbox = append(n.mailbox, mailItem{sender, message})
	_ = n.wakeup.Succeed()
}

// Run is the node's single driving process: it dequeues mailbox items in
// arrival order and hands each to the registered handler, waiting on the
// mailbox's wakeup event whenever the mailbox is empty.
func (n *SequentialNode) Run(proc *kernel.Process) {
	for {
		if len(n.mailbox) == 0 {
			n.wakeup = kernel.NewEvent(n.net.Scheduler())
			proc.Wait(n.wakeup)
			continue
		}
		item := n.mailbox[0]
		n.mailbox = n.mailbox[1:]
		n.net.Logger().Log(proc.Now(), n.ident, "handle",
			fmt.Sprintf("%s from %d", item.message.MessageType(), item.sender))
		n.self.Handle(proc, item.sender, item.message)
	}
}
