// Package idgen generates identifiers for lifecycle events and queue
// messages. Request identities are never generated here: callers own them.
package idgen
