// Package kernel implements the ircd server kernel: the entity tables for
// clients, channels, and peer servers, the broadcast fan-out engine, the
// peer-link state machine (including netburst), and the idle/timeout
// reaper. Everything in this package runs on a single event-loop goroutine
// (Kernel.Run); table mutation is never guarded by locks because it never
// happens concurrently.
//
// Line tokenization, command dispatch past the handful of verbs the kernel
// itself must react to, TLS, services, and persistent configuration storage
// are out of scope — see the transport, wire, and config packages for the
// minimal external collaborators this kernel is built against.
package kernel
