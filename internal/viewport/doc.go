// Package viewport materializes the ordered list of videos a user currently
// sees from the whole library.
//
// A Viewport owns a Pipeline of six stages run in order:
//
//	source -> grouping -> classifier -> group -> search -> sort
//
//   - source selects videos by flag tuples (OR of ANDs) and builds the term
//     index over the selection
//   - grouping buckets videos by a field or property value (GroupDef)
//   - classifier drills down into a multi-valued property grouping
//   - group picks one group by position
//   - search filters the group by text (and, or, exact, id)
//   - sort orders the result (VideoSorting)
//
// Every stage caches its output and carries a dirty flag. Setters only mark
// the owning stage dirty; reads pull the pipeline, recomputing each dirty
// stage and feeding its output to the next one. A clean stage followed only
// by clean stages stops the traversal.
//
// Deleting a video does not recompute anything: each stage removes the video
// from its cached output in place. The group stage re-evaluates its selection
// when the selected group emptied or moved, and an active classifier
// recomputes from its already updated input.
//
// A Viewport is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access.
package viewport
