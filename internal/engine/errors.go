// Package engine implements the seat reservation core: the per-project
// seat map and its invariants, deterministic seat labeling, ticket number
// sequencing, TTL-bound exclusive seat locks with expiry reconciliation,
// and the orchestration that persists and broadcasts every accepted
// mutation.  These sentinel values let the routing layer distinguish
// failure scenarios without string matching; the seat map stays
// internally consistent no matter which of them is returned.
package engine

import "errors"

// ErrProjectNotFound is returned when the referenced project does not
// exist.  Handlers should translate this into an HTTP 404 response.
var ErrProjectNotFound = errors.New("project not found")

// ErrSeatNotFound is returned when the (row, col) coordinates fall
// outside the project grid.  Handlers should translate this into an
// HTTP 404 response.
var ErrSeatNotFound = errors.New("seat not found")

// ErrInvalidState is returned when an operation is not valid for the
// seat's current status, such as locking a SOLD seat, releasing an
// issued one, or force-regenerating sequence numbers while sold seats
// exist.  Handlers should translate this into an HTTP 409 response.
var ErrInvalidState = errors.New("invalid seat state")

// ErrHeldByOther is returned when a lock is requested on a seat already
// locked by a different holder.  Handlers should translate this into an
// HTTP 409 response.
var ErrHeldByOther = errors.New("seat held by another holder")

// ErrNotHolder is returned when a release or issuance is attempted by a
// connection that does not hold the seat's lock.  Handlers should
// translate this into an HTTP 403 response.
var ErrNotHolder = errors.New("not the lock holder")

// ErrTicketMismatch is returned when the ticket number presented on
// issuance does not equal the seat's current ticket number.  The check
// guarantees the client actually observed the seat it is buying.
var ErrTicketMismatch = errors.New("ticket number mismatch")

// ErrSequenceExhausted is returned when the next sequence value would
// exceed the template's maximum.  The cursor is left unchanged.
var ErrSequenceExhausted = errors.New("ticket sequence exhausted")

// ErrCapacityExceeded is returned when a bulk assignment needs more
// sequence values than remain.  No ticket number is assigned at all.
var ErrCapacityExceeded = errors.New("ticket sequence capacity exceeded")

// ErrInvalidTemplate is returned when a sequence template has no
// placeholder run or the start value does not render to exactly the
// template's width.
var ErrInvalidTemplate = errors.New("invalid sequence template")

// ErrPersistence wraps durable-store write failures.  The in-memory
// mutation is kept; the next successful save will include it.
var ErrPersistence = errors.New("persistence failure")
