package progress

import "github.com/clonewatch/clonewatch/pkg/clone"

// Subscriber drives a Tracker from a detector's lifecycle events: one tick
// per MATCH_SOURCE (a file has been picked up for processing), finishing
// the bar once every file has reported in.
type Subscriber struct {
	clone.BaseSubscriber
	tracker *Tracker
	done    chan struct{}
}

// NewSubscriber builds a progress bar for a run over total files and wraps
// it as a clone.Subscriber.
func NewSubscriber(label string, total int) *Subscriber {
	return &Subscriber{tracker: NewTracker(label, total), done: make(chan struct{})}
}

func (s *Subscriber) OnMatchSource(clone.Event) {
	s.tracker.Tick()
}

func (s *Subscriber) OnSkippedSource(clone.Event) {
	s.tracker.Tick()
}

func (s *Subscriber) OnEnd(clone.Event) {
	// END fires once per file processed, not once per run, so it does not
	// tick or finish the bar; WaitForCompletion below finishes it, and the
	// driver calls that only after every file has been handled.
}

// WaitForCompletion clears the bar once the driver's Run has returned.
// cmd/clonewatch calls this indirectly by registering the subscriber with
// the driver, which invokes it after every file has completed.
func (s *Subscriber) WaitForCompletion() error {
	s.tracker.FinishSuccess()
	return nil
}
