// Package notify carries collection change notifications from the database
// to the viewports observing it.
//
// The database publishes an [Event] on a [Hub] after each committed
// mutation and after releasing its own lock, so subscribers may read the
// collection from their callbacks. Viewports subscribe to invalidate only
// the pipeline stages that depend on what changed.
package notify
