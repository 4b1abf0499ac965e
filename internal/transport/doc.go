// Package transport carries cross-app broadcasts outside the provider.
//
// The provider hands every NotifyApp and BroadcastToSuite call to a
// Transport as an Envelope. Implementations deliver in process (Memory),
// over NATS subjects, or over a Redis pub/sub channel. Decorators add a
// circuit breaker and a rate limit so a failing or slow peer never backs
// up into the bus.
//
// Delivery is best effort. A Transport never retries.
package transport
