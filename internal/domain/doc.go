// Package domain holds the in-memory records shared by the integration
// service, the event payloads and the export encoders.
//
// Records are plain values. Nothing here enforces referential integrity
// beyond id matching; the integration service owns all mutation.
package domain
