// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceProvider: Lists and fetches documents from the source collection
//   - VectorStore: Remote store management, uploads, and RAG queries
//   - RegistryStore: Label registration persistence
//   - CostLedger: Append-only cost record persistence
//
// # Optional Interfaces
//
//   - VisionService: Image description. Without it, image blocks are
//     indexed as captions only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
