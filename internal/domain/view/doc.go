// Package view implements the view pool: at most one live rendering
// resource per open tab, keyed by tab id.
//
// Views are ephemeral and never persisted. Each one owns a Surface created
// through an injected factory and scoped to the owning workspace's storage
// partition. Creation begins loading the tab's URL; destruction detaches the
// surface from the display before removing the entry from the pool.
//
// Faults arrive asynchronously from the surface. A crash publishes a tab
// error event and reloads the same view once, immediately; repeated crash
// loops are not suppressed and notify every time. A navigation load failure
// publishes the error event and takes no recovery action.
package view
