// Package notifications pushes operator alerts to ntfy.
//
// Fetch failures and server starts are published to the topic configured under
// [notifications]; without a topic the service degrades to a no-op so callers
// never branch on whether alerts are enabled.
package notifications
