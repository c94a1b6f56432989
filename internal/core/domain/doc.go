// Package domain defines the core business entities for Pagesync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - StoreRegistration: A label bound to a source collection and remote store
//   - SourceDocumentRef / PageContent: Documents as seen by the source provider
//   - RemoteDocument: An uploaded artifact as seen by the vector-store provider
//   - CostRecord: One immutable entry of metered API spend
//   - BillingSummary: Aggregated spend per category and time bucket
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
