// Package realtime manages the workspace's live collaboration channel.
//
// A Connector opens and closes the channel and reports its status. The
// integration service drives it from Connect and Disconnect and turns every
// status change into a connection.status event.
//
// Simulated stands in for a real channel in tests and offline mode.
// NATSConnector keeps a NATS connection to the configured endpoint and
// reports disconnects and reconnects as they happen.
package realtime
