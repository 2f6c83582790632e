// Package leaktest reports goroutines that outlive the code under test.
package leaktest

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

const (
	// DefaultSettle is how long Check waits for stragglers to exit
	DefaultSettle = 2 * time.Second
	pollInterval  = 10 * time.Millisecond
	stackBufSize  = 1 << 20
)

// GoroutineChecker compares the goroutine count against a baseline taken
// when it was created
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker records the current goroutine count. Create it after
// long-lived fixtures (ledgers, caches with janitors) so those are part of
// the baseline.
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	runtime.Gosched()
	return &GoroutineChecker{
		before: runtime.NumGoroutine(),
		t:      t,
	}
}

// Check fails the test when more than tolerance goroutines remain above the
// baseline after DefaultSettle
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()
	g.CheckWithin(tolerance, DefaultSettle)
}

// CheckWithin polls until the count is within tolerance or settle elapses.
// On failure the live goroutine stacks are logged.
func (g *GoroutineChecker) CheckWithin(tolerance int, settle time.Duration) {
	g.t.Helper()

	target := g.before + tolerance
	if current, ok := waitFor(target, settle); !ok {
		g.t.Errorf("goroutine leak: before=%d after=%d leaked=%d (tolerance=%d)\n%s",
			g.before, current, current-g.before, tolerance, liveStacks())
	}
}

// WaitForGoroutines waits until at most target goroutines are running
func WaitForGoroutines(t testing.TB, target int, timeout time.Duration) {
	t.Helper()
	if current, ok := waitFor(target, timeout); !ok {
		t.Errorf("timeout waiting for goroutines: current=%d target=%d", current, target)
	}
}

func waitFor(target int, timeout time.Duration) (int, bool) {
	deadline := time.Now().Add(timeout)
	for {
		runtime.Gosched()
		current := runtime.NumGoroutine()
		if current <= target {
			return current, true
		}
		if time.Now().After(deadline) {
			return current, false
		}
		time.Sleep(pollInterval)
	}
}

// liveStacks dumps every goroutine except the testing framework's own
func liveStacks() string {
	buf := make([]byte, stackBufSize)
	n := runtime.Stack(buf, true)

	var out []string
	for _, g := range strings.Split(string(buf[:n]), "\n\n") {
		if strings.Contains(g, "testing.tRunner") || strings.Contains(g, "testing.(*T).Run") {
			continue
		}
		out = append(out, g)
	}
	return strings.Join(out, "\n\n")
}
