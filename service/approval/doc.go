// Package approval pauses plan execution until a human approves or rejects
// the plan. A decision that does not arrive within the wait timeout counts as
// a rejection.
package approval
