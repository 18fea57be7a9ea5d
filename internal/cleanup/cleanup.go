package cleanup

import "sync"

var (
	mu    sync.Mutex
	funcs []func()
	ran   bool
)

// Registers a function to run when the process exits.
//
// Functions run in reverse registration order. Registration after Run has
// fired executes the function immediately, so late registrations can never
// leak their resources.
func Register(fn func()) {
	mu.Lock()
	if ran {
		mu.Unlock()
		fn()
		return
	}
	funcs = append(funcs, fn)
	mu.Unlock()
}

// Runs every registered function exactly once, most recent first.
//
// Safe to call from both the normal exit path and a signal handler;
// whichever fires first wins and the other is a no-op.
func Run() {
	mu.Lock()
	if ran {
		mu.Unlock()
		return
	}
	ran = true
	pending := funcs
	funcs = nil
	mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		pending[i]()
	}
}
