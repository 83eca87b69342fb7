package driven

import "time"

// Notifier delivers user-visible notices to the presentation layer.
// A zero duration means the notice persists until replaced.
type Notifier interface {
	Notify(message string, duration time.Duration)
}
