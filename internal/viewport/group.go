package viewport

import "video-library/internal/video"

// groupLayer selects one group by position.
type groupLayer struct {
	groupID int
}

func (l *groupLayer) reset() {
	l.groupID = 0
}

// clamp bounds the stored group id to the available groups.
func (l *groupLayer) clamp(ga *GroupArray) int {
	n := ga.Len()
	switch {
	case n == 0 || l.groupID < 0:
		return 0
	case l.groupID >= n:
		return n - 1
	default:
		return l.groupID
	}
}

func (l *groupLayer) filter(_ *Pipeline, input any) (any, error) {
	ga, _ := input.(*GroupArray)
	if ga.Len() == 0 {
		return newGroup(nil), nil
	}
	return ga.Groups.At(l.clamp(ga)), nil
}

// removeFromCache leaves the video to the stage that owns the group. The
// selection is redone when the group emptied or is no longer at the
// selected position.
func (l *groupLayer) removeFromCache(_ *Pipeline, input, output any, _ *video.Video) bool {
	ga, _ := input.(*GroupArray)
	g := output.(*Group)
	if g.Len() == 0 || ga.Len() == 0 {
		return true
	}
	return ga.Groups.At(l.clamp(ga)) != g
}
