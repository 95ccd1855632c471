// Package blocking runs synchronous, I/O-bound calls off the calling
// goroutine.
//
// A Pool bounds how many calls run at once with a weighted semaphore and
// can throttle admission with a token bucket. Callers submit a function
// and wait for its result or for their context to end, whichever comes
// first. A call that has started always runs to completion; if the caller
// stops waiting, the result is discarded.
package blocking
