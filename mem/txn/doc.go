// Package txn defines the memory transaction that travels through the
// fabric, its result codes, and the sideband metadata attached to it.
package txn
