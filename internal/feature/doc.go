// Package feature holds the provider's feature flags.
//
// A Set is a mutable set of enabled feature names. Known features have a
// static Config describing what they gate; unknown names may still be
// toggled so that experiments do not need a code change.
package feature
