package kernel

import (
	"sync"
	"time"
)

// fakeSocket is an in-memory Socket: Send appends to a buffer a test can
// inspect, Close just flips a flag. No real I/O, so tests don't need a
// listening port.
type fakeSocket struct {
	remote string

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func newFakeSocket(remote string) *fakeSocket {
	return &fakeSocket{remote: remote}
}

func (f *fakeSocket) Remote() string { return f.remote }

func (f *fakeSocket) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	f.writes = append(f.writes, buf)
	return nil
}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSocket) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	for i, w := range f.writes {
		out[i] = string(w)
	}
	return out
}

func (f *fakeSocket) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// waitFor polls cond until it returns true or the deadline passes,
// standing in for a real synchronization point since delivery happens on
// the OutQueue's own writer goroutine, asynchronously from the caller.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func newTestKernel() *Kernel {
	return New(Config{
		ServerName:  "test.local",
		NetworkName: "TestNet",
		Numeric:     1,
		SelfToken:   '0',
	})
}

func runTestKernel(k *Kernel) (stop chan struct{}) {
	stop = make(chan struct{})
	go k.Run(stop)
	return stop
}
