// Package awaiter implements the wait/notify registry used by workers that
// pause for a human-supplied result.
//
// A Registry keeps one slot per request identity. A worker marks the identity
// pending and calls Wait, which parks the goroutine on the slot's one-shot
// signal until Deliver resolves it or the per-call timer fires. Nothing polls:
// an idle waiter costs a parked goroutine and a timer.
//
// Deliver may run before Wait (the slot is created already resolved and the
// waiter returns immediately), any number of goroutines may wait on the same
// identity, and the first outcome for a slot wins: later deliveries are
// discarded. Remove never cancels an in-flight wait; it only hides the slot
// from future lookups. Sweep and Janitor reclaim slots nobody cleaned up.
package awaiter
