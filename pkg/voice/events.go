package voice

import "time"

// Speaker attributes a transcript fragment to one side of the call.
type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerInterviewer Speaker = "interviewer"
)

// NormalizeRole maps the provider's role vocabulary onto Speaker. Anything
// unrecognized is attributed to the interviewer: misattributing the AI's
// speech as the candidate's corrupts scoring far worse than the reverse.
func NormalizeRole(role string) Speaker {
	switch role {
	case "user", "customer", "human":
		return SpeakerUser
	default:
		return SpeakerInterviewer
	}
}

// Event is one of the five normalized events emitted by the adapter.
type Event interface {
	voiceEventType() string
}

// CallStartedEvent fires once the provider confirms the call is live.
type CallStartedEvent struct {
	CallID string
}

func (CallStartedEvent) voiceEventType() string { return "call-started" }

// CallEndedEvent fires when the call closes, whether requested, hung up,
// or dropped by the transport.
type CallEndedEvent struct {
	Reason string
}

func (CallEndedEvent) voiceEventType() string { return "call-ended" }

// SpeechStartedEvent fires when the remote party begins vocalizing.
type SpeechStartedEvent struct {
	Speaker Speaker
}

func (SpeechStartedEvent) voiceEventType() string { return "speech-started" }

// SpeechEndedEvent fires when the remote party stops vocalizing.
type SpeechEndedEvent struct {
	Speaker Speaker
}

func (SpeechEndedEvent) voiceEventType() string { return "speech-ended" }

// TranscriptEvent carries one final transcript fragment.
type TranscriptEvent struct {
	Speaker   Speaker
	Text      string
	Timestamp time.Time
}

func (TranscriptEvent) voiceEventType() string { return "transcript" }

// ErrorEvent surfaces a provider-level failure. Errors are recoverable state,
// not terminal: the adapter stays usable for a subsequent StartCall.
type ErrorEvent struct {
	Err *CallError
}

func (ErrorEvent) voiceEventType() string { return "error" }
