// Package service implements the offline-first dual-mode core.
//
// A [Service] owns an in-memory buffer, a mode latch, and the two
// delivery paths (remote sink, local spill store). The mode is
// decided by a single connectivity probe at construction and the only
// later transition is the permanent remote-to-local downgrade after a
// failed send. [Registry] provides process-wide named instances.
package service
