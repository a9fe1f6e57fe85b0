// Package audit provides the asynchronous event dispatcher and sink
// implementations used by walletsec.
//
// Every failure path in the engine emits an event; sinks decide whether it
// becomes a user-visible alert, a log line, or a channel message. Dispatch is
// buffered and never blocks engine operations unless DropIfFull is disabled
// and the buffer is saturated.
package audit
