package session

import (
	"strings"
	"sync"
	"time"

	"github.com/prepworks/interviewd/pkg/voice"
)

// Entry is one attributed utterance in the conversation log. Entries are
// immutable once appended; one provider fragment is one entry. Merging
// adjacent fragments is a presentation concern, and collapsing them here
// would lose the per-fragment timing.
type Entry struct {
	Speaker   voice.Speaker `json:"speaker"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
}

// Reconciler turns the adapter's fragment stream into an ordered transcript
// log and a single accumulating answer buffer for the question being
// answered. It is safe for concurrent use.
type Reconciler struct {
	mu     sync.Mutex
	log    []Entry
	answer []string
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// OnFragment appends one transcript entry. Empty and whitespace-only
// fragments are transport noise and are dropped. USER fragments additionally
// accumulate into the live answer buffer.
func (r *Reconciler) OnFragment(speaker voice.Speaker, text string, ts time.Time) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, Entry{Speaker: speaker, Text: text, Timestamp: ts})
	if speaker == voice.SpeakerUser {
		r.answer = append(r.answer, trimmed)
	}
}

// FlushAnswer returns the accumulated answer text, space-joined and trimmed,
// and resets the buffer for the next question. Draining is idempotent: a
// second consecutive flush with no intervening user speech returns "".
func (r *Reconciler) FlushAnswer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	text := strings.TrimSpace(strings.Join(r.answer, " "))
	r.answer = nil
	return text
}

// Transcript returns a copy of the ordered conversation log.
func (r *Reconciler) Transcript() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.log))
	copy(out, r.log)
	return out
}

// ResetTranscript clears the log. Used between questions when the provider
// model is one call per question; deployments with a single session-long
// call never invoke it.
func (r *Reconciler) ResetTranscript() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = nil
}
