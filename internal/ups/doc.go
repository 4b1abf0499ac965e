// Package ups is the provider layer of the unified platform services.
//
// A Provider owns an event bus, the integration service and the feature
// flags of one workspace session. Mount resolves the current project and
// user, connects the real-time channel when enabled and starts a health
// loop; Unmount tears all of that down again. Everything a feature needs
// is reachable from the Provider or from one of its narrow views
// (Comments, AI, Collaboration, Notifications, Filters, Export, Health).
//
// Lifecycle:
//
//	Uninitialized -> Initializing -> Ready <-> Degraded -> TornDown
//
// Ready and Degraded only describe health. Neither blocks any action.
//
// Errors from domain operations are captured: they are recorded on the
// integration service, published as system.error and shown as a toast.
// The only panic is MustFromContext, which guards against using the
// provider where none was installed.
package ups
