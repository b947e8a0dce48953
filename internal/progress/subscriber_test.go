package progress

import (
	"testing"

	"github.com/clonewatch/clonewatch/pkg/clone"
)

func TestSubscriberTicksOnMatchAndSkip(t *testing.T) {
	sub := NewSubscriber("scanning", 3)
	sub.OnMatchSource(clone.Event{Name: clone.EventMatchSource, SourceID: "a.go"})
	sub.OnSkippedSource(clone.Event{Name: clone.EventSkippedSource, SourceID: "b.xyz"})
	sub.OnMatchSource(clone.Event{Name: clone.EventMatchSource, SourceID: "c.go"})

	if err := sub.WaitForCompletion(); err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}
}

func TestSubscriberImplementsCloneInterfaces(t *testing.T) {
	var _ clone.Subscriber = (*Subscriber)(nil)
	var _ clone.WaitForCompletion = (*Subscriber)(nil)
}
