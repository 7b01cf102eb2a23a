package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into one
// execution. Settlement uses it so racing triggers for the same result
// join the in-flight run instead of grading twice.
type SingleFlight struct {
	mu       sync.Mutex
	inFlight map[string]*flight
}

type flight struct {
	done  sync.WaitGroup
	value any
	err   error
}

// Do runs fn once per key at a time. Callers that arrive while a flight
// for key is active block until it finishes and receive its value, error
// and shared=true. Results are not cached: once the flight lands, the
// next call starts a fresh one.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.inFlight == nil {
		g.inFlight = make(map[string]*flight)
	}
	if f, ok := g.inFlight[key]; ok {
		g.mu.Unlock()
		f.done.Wait()
		return f.value, f.err, true
	}

	f := &flight{}
	f.done.Add(1)
	g.inFlight[key] = f
	g.mu.Unlock()

	f.value, f.err = fn()

	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
	f.done.Done()

	return f.value, f.err, false
}
