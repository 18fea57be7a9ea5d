package cleanup

import "testing"

// The registry is process-global; tests reset it to keep each case
// independent.
func reset() {
	mu.Lock()
	funcs = nil
	ran = false
	mu.Unlock()
}

func TestRunReverseOrder(t *testing.T) {
	reset()

	var order []int
	Register(func() { order = append(order, 1) })
	Register(func() { order = append(order, 2) })

	Run()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("order = %v, want [2 1]", order)
	}
}

func TestRunIdempotent(t *testing.T) {
	reset()

	count := 0
	Register(func() { count++ })

	Run()
	Run()
	Run()

	if count != 1 {
		t.Fatalf("cleanup ran %d times, want 1", count)
	}
}

func TestRegisterAfterRun(t *testing.T) {
	reset()

	Run()

	fired := false
	Register(func() { fired = true })

	if !fired {
		t.Fatal("late registration did not execute immediately")
	}
}
