package notify

import (
	"testing"

	"video-library/internal/video"
)

func TestPublishOrderAndUnsubscribe(t *testing.T) {
	hub := NewHub()
	var got []string

	unsubA := hub.Subscribe(func(ev Event) { got = append(got, "a:"+ev.Name()) })
	hub.Subscribe(func(ev Event) { got = append(got, "b:"+ev.Name()) })

	hub.Publish(VideoDeleted{Video: &video.Video{ID: 1}})
	unsubA()
	unsubA()
	hub.Publish(FieldsModified{Fields: []string{"date"}})

	expected := []string{"a:video_deleted", "b:video_deleted", "b:fields_modified"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Event %d: expected %q, got %q", i, expected[i], got[i])
		}
	}
	if hub.Len() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", hub.Len())
	}
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	hub := NewHub()
	calls := 0
	var unsub func()
	unsub = hub.Subscribe(func(Event) {
		calls++
		unsub()
	})

	hub.Publish(VideosAdded{})
	hub.Publish(VideosAdded{})

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestEventNames(t *testing.T) {
	tests := []struct {
		ev       Event
		expected string
	}{
		{VideoDeleted{}, "video_deleted"},
		{VideosAdded{}, "videos_added"},
		{FieldsModified{}, "fields_modified"},
		{PropertiesModified{}, "properties_modified"},
	}
	for _, tt := range tests {
		if tt.ev.Name() != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, tt.ev.Name())
		}
	}
}
