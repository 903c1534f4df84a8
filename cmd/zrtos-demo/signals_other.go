//go:build !unix

package main

import "os"

func shutdownSignals() []os.Signal {
	// Best effort: at least support os.Interrupt.
	return []os.Signal{os.Interrupt}
}
