package driven

// AccessMode declares how a plugin tolerates concurrent invocation.
// It is decided at registration time, not by the plugin implementation,
// because only the registering host knows the constraints of the wrapped
// runtime (e.g. a callback into a single-threaded interpreter).
type AccessMode int

const (
	// ConcurrentSafe plugins may be invoked from multiple pipeline
	// workers at once.
	ConcurrentSafe AccessMode = iota

	// ExclusiveAccess plugins have every invocation serialised through a
	// per-plugin lock.
	ExclusiveAccess
)

// String returns the registration-manifest spelling of the mode.
func (m AccessMode) String() string {
	if m == ExclusiveAccess {
		return "exclusive"
	}
	return "concurrent"
}

// Plugin is the base contract shared by every plugin category.
//
// Init is called once during registration; an Init error rejects the
// registration. Close is called when the plugin is unregistered or its
// category is cleared. Close errors are logged, not propagated.
type Plugin interface {
	// Name returns the unique name within the plugin's category.
	// Names are lowercase with hyphens and contain no whitespace.
	Name() string

	// Version returns the plugin semantic version.
	Version() string

	// Init prepares the plugin for use.
	Init() error

	// Close releases plugin resources.
	Close() error
}
