package track

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tr := New("Song", "https://www.youtube.com/watch?v=abc", 3*time.Minute+7*time.Second, "thumb", "")
	if tr.Duration != "3:07" {
		t.Errorf("expected 3:07, got %s", tr.Duration)
	}

	withUser := tr.WithRequester("user#0001")
	if withUser.RequestedBy != "user#0001" {
		t.Errorf("expected requester to be set, got %q", withUser.RequestedBy)
	}
	if tr.RequestedBy != "" {
		t.Error("WithRequester must not modify the original")
	}
}
