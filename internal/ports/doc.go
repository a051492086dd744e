// Package ports defines the interfaces (ports) that connect the
// offramp core to infrastructure adapters.
//
// Ports are the boundaries between the service core and the outside
// world. They define what the core needs from external systems
// without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Sink]: Sends batches of items to the remote backend
//   - [Store]: Spills and drains batches on local storage
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The service core (internal/service) depends only on these
// interfaces. Infrastructure adapters (internal/adapters) implement
// them with concrete bindings (file system, HTTP, zerolog).
// Embedding applications may supply their own Sink to bind the core
// to whatever transport their backend speaks.
package ports
