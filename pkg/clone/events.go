package clone

// EventName identifies one of the lifecycle events a Detector or Driver
// dispatches synchronously to its subscribers (§9 "Event dispatch without
// a runtime-specific event emitter"). Dispatch is a plain ordered walk of
// the subscriber list invoking by name; there is no dynamic registration
// beyond that lookup.
type EventName string

const (
	EventMatchSource    EventName = "MATCH_SOURCE"
	EventStartDetection EventName = "START_DETECTION"
	EventCloneFound     EventName = "CLONE_FOUND"
	EventEnd            EventName = "END"
	EventSkippedSource  EventName = "SKIPPED_SOURCE"
	EventStoreError     EventName = "STORE_ERROR"
)

// Event is the payload dispatched for a single lifecycle occurrence.
// Only the fields relevant to Name are populated; the others are zero.
type Event struct {
	Name        EventName
	SourceID    string
	Format      Format
	Clone       Clone
	Err         error
	Stat        *Statistic
	TokensCount int
}

// Subscriber receives lifecycle events. A subscriber that does not care
// about a given event simply leaves the corresponding method a no-op;
// all methods are mandatory so dispatch never needs a type switch or a
// map of optional handlers.
type Subscriber interface {
	OnMatchSource(Event)
	OnStartDetection(Event)
	OnCloneFound(Event)
	OnEnd(Event)
	OnSkippedSource(Event)
	OnStoreError(Event)
}

// dispatch walks subs in order, calling the method matching e.Name.
func dispatch(subs []Subscriber, e Event) {
	for _, s := range subs {
		switch e.Name {
		case EventMatchSource:
			s.OnMatchSource(e)
		case EventStartDetection:
			s.OnStartDetection(e)
		case EventCloneFound:
			s.OnCloneFound(e)
		case EventEnd:
			s.OnEnd(e)
		case EventSkippedSource:
			s.OnSkippedSource(e)
		case EventStoreError:
			s.OnStoreError(e)
		}
	}
}

// BaseSubscriber is embeddable so a Subscriber implementation only needs
// to override the events it cares about.
type BaseSubscriber struct{}

func (BaseSubscriber) OnMatchSource(Event)    {}
func (BaseSubscriber) OnStartDetection(Event) {}
func (BaseSubscriber) OnCloneFound(Event)     {}
func (BaseSubscriber) OnEnd(Event)            {}
func (BaseSubscriber) OnSkippedSource(Event)  {}
func (BaseSubscriber) OnStoreError(Event)     {}

// WaitForCompletion is implemented by subscribers (typically external
// reporters) that buffer work and need a chance to flush before the
// driver returns (§6 "Outputs to the reporter collaborator").
type WaitForCompletion interface {
	WaitForCompletion() error
}
