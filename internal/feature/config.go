package feature

import (
	"maps"
	"sort"
)

// Known feature names.
const (
	Comments      = "comments"
	AI            = "ai"
	Collaboration = "collaboration"
	Notifications = "notifications"
	Filters       = "filters"
	Export        = "export"
	Analytics     = "analytics"
	RealTime      = "realtime"
)

// Config is the static description of a known feature.
type Config struct {
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DefaultOn   bool           `json:"default_on"`
	Requires    []string       `json:"requires,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

var registry = map[string]Config{
	Comments: {
		Name:        Comments,
		Title:       "Comments",
		Description: "Threaded feedback anchored on reviewed assets",
		DefaultOn:   true,
		Settings:    map[string]any{"max_length": 5000, "allow_voice": true, "allow_drawing": true},
	},
	AI: {
		Name:        AI,
		Title:       "AI assistant",
		Description: "Suggested replies and summaries for comments",
		Requires:    []string{Comments},
		Settings:    map[string]any{"max_tokens": 512, "temperature": 0.3},
	},
	Collaboration: {
		Name:        Collaboration,
		Title:       "Live collaboration",
		Description: "Presence and live updates between reviewers",
		Requires:    []string{RealTime},
		Settings:    map[string]any{"presence_timeout_seconds": 60},
	},
	Notifications: {
		Name:        Notifications,
		Title:       "Notification center",
		Description: "In-app notifications and toasts",
		DefaultOn:   true,
		Settings:    map[string]any{"max_items": 100},
	},
	Filters: {
		Name:        Filters,
		Title:       "Filters and search",
		Description: "Filter and search the comment feed",
		DefaultOn:   true,
	},
	Export: {
		Name:        Export,
		Title:       "Export",
		Description: "Export comments as JSON, CSV or Markdown",
		DefaultOn:   true,
		Settings:    map[string]any{"formats": []string{"json", "csv", "markdown"}},
	},
	Analytics: {
		Name:        Analytics,
		Title:       "Analytics",
		Description: "Usage tracking events",
	},
	RealTime: {
		Name:        RealTime,
		Title:       "Real-time channel",
		Description: "Connection to the live update channel",
		Settings:    map[string]any{"reconnect_wait_seconds": 2},
	},
}

// Lookup returns the static configuration of a known feature. The Settings
// map is a copy.
func Lookup(name string) (Config, bool) {
	c, ok := registry[normalize(name)]
	if !ok {
		return Config{}, false
	}
	c.Settings = maps.Clone(c.Settings)
	return c, true
}

// Known returns every known feature name, sorted.
func Known() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DefaultEnabled returns the known features that are on by default.
func DefaultEnabled() []string {
	var out []string
	for _, name := range Known() {
		if registry[name].DefaultOn {
			out = append(out, name)
		}
	}
	return out
}

// IsKnown reports whether name has a static configuration.
func IsKnown(name string) bool {
	_, ok := registry[normalize(name)]
	return ok
}
