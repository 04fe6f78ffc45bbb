// Package events implements the notification fan-out between the session
// core and the process boundary.
//
// Two typed buses carry lifecycle notifications, one per entity kind
// (workspace, tab). Delivery is at-most-once, synchronous, to whatever
// subscribers are attached at publish time; with no subscriber attached the
// notification is dropped. There is no buffering and no replay.
package events
