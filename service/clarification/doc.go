// Package clarification pauses a worker until a human answers a question
// about the task at hand. When no answer arrives in time the worker receives
// a fallback text telling it to proceed on its own judgment.
package clarification
