// Package policy decides whether a pending plan may be settled without a
// human, for unattended runs where nobody is around to answer.
package policy
