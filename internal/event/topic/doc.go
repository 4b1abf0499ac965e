// Package topic provides the dotted event type names used by the UPS bus and
// the trie used to match subscribed patterns against published types.
//
// # Topic Format
//
// Event types are dotted namespaces, family first:
//
//	comment.created
//	notification.read_all
//	system.error
//	app.broadcast
//
// # Wildcards
//
// Subscriptions may use two wildcards:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// Examples:
//
//	comment.*        matches comment.created, comment.deleted
//	system.**        matches system.error, system.health.changed
//	*.created        matches comment.created, notification.created
//	**               matches everything
//
// # Usage
//
//	m := topic.NewMatcher()
//	m.Add("comment.*")
//	m.Add("comment.created")
//
//	patterns := m.Match("comment.created") // both patterns
package topic
