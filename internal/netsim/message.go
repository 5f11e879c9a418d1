package netsim

// Message is the marker interface for anything that can be carried over
// the simulated network. Concrete message types (in package streamlet,
// or demo message types) implement it with a short tag used for logging.
type Message interface {
	MessageType() string
}
