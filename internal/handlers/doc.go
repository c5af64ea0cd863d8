// Package handlers provides the HTTP API of the video library.
//
// Clients open viewport sessions and drive them by changing one parameter
// at a time:
//   - Sources: flag tuples selecting videos
//   - Groups and classifier path: how videos are bucketed
//   - Group: which bucket is shown
//   - Search and sort
//
// Every change answers with the session's current view. Deleting a video
// updates every open session in place.
package handlers
