package voice

import "sync"

// Bus is a typed publish-subscribe surface for the normalized call events.
// Multiple subscribers are allowed per event kind; each subscription returns
// an unsubscribe handle. Publication is synchronous and happens from the
// adapter's single read loop, so handlers for one event always complete
// before the next event is dispatched.
type Bus struct {
	mu     sync.Mutex
	nextID int

	callStarted   map[int]func(CallStartedEvent)
	callEnded     map[int]func(CallEndedEvent)
	speechStarted map[int]func(SpeechStartedEvent)
	speechEnded   map[int]func(SpeechEndedEvent)
	transcript    map[int]func(TranscriptEvent)
	callError     map[int]func(ErrorEvent)
}

// NewBus returns an empty event bus.
func NewBus() *Bus {
	return &Bus{
		callStarted:   make(map[int]func(CallStartedEvent)),
		callEnded:     make(map[int]func(CallEndedEvent)),
		speechStarted: make(map[int]func(SpeechStartedEvent)),
		speechEnded:   make(map[int]func(SpeechEndedEvent)),
		transcript:    make(map[int]func(TranscriptEvent)),
		callError:     make(map[int]func(ErrorEvent)),
	}
}

func (b *Bus) register() int {
	b.nextID++
	return b.nextID
}

// OnCallStarted subscribes to call-started events.
func (b *Bus) OnCallStarted(fn func(CallStartedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.register()
	b.callStarted[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.callStarted, id)
	}
}

// OnCallEnded subscribes to call-ended events.
func (b *Bus) OnCallEnded(fn func(CallEndedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.register()
	b.callEnded[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.callEnded, id)
	}
}

// OnSpeechStarted subscribes to speech-started events.
func (b *Bus) OnSpeechStarted(fn func(SpeechStartedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.register()
	b.speechStarted[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.speechStarted, id)
	}
}

// OnSpeechEnded subscribes to speech-ended events.
func (b *Bus) OnSpeechEnded(fn func(SpeechEndedEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.register()
	b.speechEnded[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.speechEnded, id)
	}
}

// OnTranscript subscribes to transcript fragments.
func (b *Bus) OnTranscript(fn func(TranscriptEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.register()
	b.transcript[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.transcript, id)
	}
}

// OnError subscribes to provider error events.
func (b *Bus) OnError(fn func(ErrorEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.register()
	b.callError[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.callError, id)
	}
}

// Publish dispatches one normalized event to its subscribers.
func (b *Bus) Publish(event Event) {
	switch e := event.(type) {
	case CallStartedEvent:
		for _, fn := range b.snapshotCallStarted() {
			fn(e)
		}
	case CallEndedEvent:
		for _, fn := range b.snapshotCallEnded() {
			fn(e)
		}
	case SpeechStartedEvent:
		for _, fn := range b.snapshotSpeechStarted() {
			fn(e)
		}
	case SpeechEndedEvent:
		for _, fn := range b.snapshotSpeechEnded() {
			fn(e)
		}
	case TranscriptEvent:
		for _, fn := range b.snapshotTranscript() {
			fn(e)
		}
	case ErrorEvent:
		for _, fn := range b.snapshotError() {
			fn(e)
		}
	}
}

func (b *Bus) snapshotCallStarted() []func(CallStartedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(CallStartedEvent), 0, len(b.callStarted))
	for _, fn := range b.callStarted {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotCallEnded() []func(CallEndedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(CallEndedEvent), 0, len(b.callEnded))
	for _, fn := range b.callEnded {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotSpeechStarted() []func(SpeechStartedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(SpeechStartedEvent), 0, len(b.speechStarted))
	for _, fn := range b.speechStarted {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotSpeechEnded() []func(SpeechEndedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(SpeechEndedEvent), 0, len(b.speechEnded))
	for _, fn := range b.speechEnded {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotTranscript() []func(TranscriptEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(TranscriptEvent), 0, len(b.transcript))
	for _, fn := range b.transcript {
		out = append(out, fn)
	}
	return out
}

func (b *Bus) snapshotError() []func(ErrorEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(ErrorEvent), 0, len(b.callError))
	for _, fn := range b.callError {
		out = append(out, fn)
	}
	return out
}
