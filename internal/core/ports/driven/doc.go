// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentSource: Fetches raw content payloads by path
//   - DirectoryLister: Lists the items of a content group
//   - MetadataStore: JSON key/value metadata persistence
//   - EntityStore: Typed entity tables replaced wholesale per resource
//   - IndexStore: The serialised search index slot
//   - Normaliser: Flattens entities into search documents
//   - IndexEngine: Builds, encodes and decodes search indexes
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EventPublisher: Notified when persisted content changes
//   - SchedulerStore: Only needed when background checks are enabled
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
