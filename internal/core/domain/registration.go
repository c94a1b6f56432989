package domain

import "time"

// StoreRegistration binds a user-chosen label to a source collection and
// the vector-store provider's store handle. A label maps to exactly one
// collection and one store; a collection may be re-registered under a new
// label as an independent store.
type StoreRegistration struct {
	// ID is the unique identifier for the registration.
	ID string

	// Label is the user-chosen short name, unique across the registry.
	Label string

	// CollectionID is the opaque identifier of the source collection,
	// typically extracted from a URL.
	CollectionID string

	// StoreHandle is the provider-side store identifier returned at
	// creation time (e.g., "fileSearchStores/xxx").
	StoreHandle string

	// CreatedAt is when the registration was created.
	CreatedAt time.Time
}
