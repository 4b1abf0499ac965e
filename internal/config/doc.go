// Package config loads the upsd configuration.
//
// A file is read by extension (TOML, YAML or JSON) on top of Default, then
// UPS_* environment variables override individual settings. Watcher
// reloads the file when it changes so enabled features can be switched
// without a restart.
package config
