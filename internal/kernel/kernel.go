// Package kernel implements a single-threaded, deterministic discrete-event
// scheduler over a virtual clock. Processes are plain goroutines; the
// scheduler hands exactly one goroutine the "baton" at a time via an
// unbuffered channel, so despite using real goroutines the execution
// order is exactly as deterministic as a single-threaded cooperative
// scheduler (simpy's generator-based processes, translated to Go).
package kernel

import (
	"container/heap"
	"errors"
)

// ErrAlreadySucceeded is returned by Event.Succeed when the event has
// already fired once. Callers that don't care whether they were first to
// succeed an event should discard this error.
var ErrAlreadySucceeded = errors.New("kernel: event already succeeded")

type scheduled struct {
	time   int64
	seq    uint64
	resume chan struct{}
}

type eventHeap []scheduled

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(scheduled)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Scheduler owns the virtual clock and the event queue. It is not safe
// for concurrent use from more than one goroutine at a time; the baton
// discipline enforced by Process guarantees that never happens.
type Scheduler struct {
	now     int64
	seq     uint64
	queue   eventHeap
	yielded chan struct{}
}

// NewScheduler constructs a scheduler with the virtual clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{yielded: make(chan struct{})}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() int64 { return s.now }

func (s *Scheduler) schedule(t int64, resume chan struct{}) {
	s.seq++
	heap.Push(&s.queue, scheduled{time: t, seq: s.seq, resume: resume})
}

// Spawn starts fn on a new goroutine, scheduled to begin running at the
// current virtual time. Spawn does not block the caller; the new process
// begins once the caller next yields (via Timeout or Wait) or returns.
func (s *Scheduler) Spawn(fn func(*Process)) *Process {
	child := &Process{sched: s, wake: make(chan struct{})}
	s.schedule(s.now, child.wake)
	go func() {
		<-child.wake
		fn(child)
		s.yielded <- struct{}{}
	}()
	return child
}

// Run drains the event queue until it is empty.
func (s *Scheduler) Run() {
	s.RunUntil(-1)
}

// RunUntil drains the event queue until it is empty or the next pending
// event's time exceeds limit. A negative limit means no limit.
func (s *Scheduler) RunUntil(limit int64) {
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if limit >= 0 && next.time > limit {
			return
		}
		heap.Pop(&s.queue)
		s.now = next.time
		next.resume <- struct{}{}
		<-s.yielded
	}
}

// Process is the handle a spawned function uses to interact with virtual
// time: advancing the clock, waiting on an Event, or spawning children.
type Process struct {
	sched *Scheduler
	wake  chan struct{}
}

// Now returns the current virtual time.
func (p *Process) Now() int64 { return p.sched.Now() }

// Scheduler returns the underlying scheduler, for constructing Events.
func (p *Process) Scheduler() *Scheduler { return p.sched }

// Timeout suspends the calling process until d units of virtual time
// have elapsed.
func (p *Process) Timeout(d int64) {
	p.sched.schedule(p.sched.now+d, p.wake)
	p.sched.yielded <- struct{}{}
	<-p.wake
}

// Wait suspends the calling process until ev is succeeded. If ev has
// already been succeeded, Wait returns immediately.
func (p *Process) Wait(ev *Event) {
	if ev.succeeded {
		return
	}
	ev.addWaiter(p.wake)
	p.sched.yielded <- struct{}{}
	<-p.wake
}

// Spawn starts a child process at the current virtual time without
// suspending the caller.
func (p *Process) Spawn(fn func(*Process)) *Process {
	return p.sched.Spawn(fn)
}

// Event is a one-shot trigger that processes can Wait on. It models
// simpy's explicit events, used by SequentialNode's mailbox wakeup.
type Event struct {
	sched     *Scheduler
	succeeded bool
	waiters   []chan struct{}
}

// NewEvent constructs an unfired event bound to sched.
func NewEvent(sched *Scheduler) *Event {
	return &Event{sched: sched}
}

func (e *Event) addWaiter(w chan struct{}) {
	e.waiters = append(e.waiters, w)
}

// Succeed fires the event, waking every waiter at the current virtual
// time in the order they started waiting. Calling Succeed on an
// already-succeeded event returns ErrAlreadySucceeded and has no other
// effect.
func (e *Event) Succeed() error {
	if e.succeeded {
		return ErrAlreadySucceeded
	}
	e.succeeded = true
	for _, w := range e.waiters {
		e.sched.schedule(e.sched.now, w)
	}
	e.waiters = nil
	return nil
}

// Succeeded reports whether Succeed has already been called.
func (e *Event) Succeeded() bool { return e.succeeded }
