// Package notifications pushes acquisition and export outcomes to ntfy.
//
// NewService returns an ntfy-backed Service when notifications.ntfy_topic is
// set and a no-op otherwise, so callers publish unconditionally. Each Event
// maps to a fixed title, tag set, and priority; the Payload supplies the
// variable parts of the message.
package notifications
