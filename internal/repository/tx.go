package repository

import "context"

// Stores bundles the transaction-scoped repositories handed to a TxRunner
// callback. Every repository in a Stores value operates on the same
// transaction.
type Stores struct {
	Shuttles     ShuttleRepository
	Locations    LocationRepository
	Trips        TripRepository
	Requests     RouteRequestRepository
	ActiveRoutes ActiveRouteRepository
}

// TxRunner executes a function inside a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise;
// no partial write is ever visible.
type TxRunner interface {
	// RunInTx runs fn inside a transaction with default isolation.
	RunInTx(ctx context.Context, fn func(s Stores) error) error

	// RunSerializable runs fn inside a serializable transaction. Used for
	// compound multi-row invariants that a read-then-write could violate
	// under interleaving.
	RunSerializable(ctx context.Context, fn func(s Stores) error) error
}
