package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so the gateway can translate them into coded domain errors.
//
// These represent factual states about stored records, not policy outcomes:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a concurrent writer won; the write was not applied
// - ErrInvalidState: compare-and-write precondition failed (record moved on)
// - ErrUnavailable: store temporarily unreachable; safe to retry writes
//
// Authorization denials never pass through here; denial is a policy Decision
// value, not an infrastructure error.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
