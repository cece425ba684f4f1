package services

import "errors"

// Sentinel errors for the checkout/reconciliation pipeline. Handlers match
// them with errors.Is to pick status codes; services wrap them with context
// via fmt.Errorf("...: %w", ...).
var (
	// ErrValidation covers malformed or incomplete checkout input, including
	// a guest checkout with no usable shipping contact.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers state conflicts: a subscription not in the expected
	// state, a cancel attempt by a non-owner, an illegal status transition.
	ErrConflict = errors.New("conflict")

	// ErrGateway covers payment gateway failures during initiation:
	// signature build, transport, or a provider decline.
	ErrGateway = errors.New("payment gateway error")

	// ErrReconciliationHazard marks the one failure that must never be
	// swallowed: the gateway reported a captured payment but order
	// materialization failed, so money exists with no order.
	ErrReconciliationHazard = errors.New("reconciliation hazard")

	// ErrShipmentRetryable marks a shipping collaborator failure the caller
	// should retry; it is never masked with fabricated tracking data.
	ErrShipmentRetryable = errors.New("shipment creation failed, retry")
)
