package safego

// Tag is a lightweight key/value pair carried by panic reports.
// Tags are kept as a slice to preserve insertion order for stable output.
type Tag struct {
	Key   string
	Value string
}

// PanicHandler is called when a function panics (subject to policy).
type PanicHandler func(info PanicInfo)

// PanicInfo describes a recovered panic.
type PanicInfo struct {
	Name  string
	Tags  []Tag
	Value any
	Stack []byte
}

// PanicPolicy controls how panics are handled.
type PanicPolicy int

const (
	// RecoverAndReport recovers the panic and reports it via PanicHandler (or the logger).
	RecoverAndReport PanicPolicy = iota
	// RecoverOnly recovers the panic without reporting it.
	RecoverOnly
	// RepanicAfterReport recovers the panic, reports it, then panics again with the same value.
	RepanicAfterReport
)
