package providers

// ConnectivityObserver reports whether the network is currently
// reachable. It overlays the result view; it never drives state
// transitions on its own.
type ConnectivityObserver interface {
	Online() bool
}
