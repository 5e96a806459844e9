package voice

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Provider wire frames. The provider speaks JSON text frames over one
// websocket connection; unknown frame types and unrecognized fields are
// dropped at this boundary and never propagate past the adapter.

type wireAssistant struct {
	SystemPrompt string `json:"systemPrompt,omitempty"`
	FirstMessage string `json:"firstMessage,omitempty"`
	VoiceID      string `json:"voiceId,omitempty"`
	Language     string `json:"language,omitempty"`
}

type clientStartFrame struct {
	Type        string         `json:"type"`
	APIKey      string         `json:"apiKey"`
	AssistantID string         `json:"assistantId,omitempty"`
	Assistant   *wireAssistant `json:"assistant,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type clientStopFrame struct {
	Type string `json:"type"`
}

type serverFrame struct {
	Type string `json:"type"`

	// call-started
	Call struct {
		ID string `json:"id"`
	} `json:"call"`

	// call-ended
	Reason string `json:"endedReason"`

	// speech-update
	Status string `json:"status"`

	// speech-update, transcript
	Role string `json:"role"`

	// transcript
	Transcript     string `json:"transcript"`
	TranscriptType string `json:"transcriptType"`

	// error
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeServerFrame translates one provider frame into a normalized event.
// A nil event with nil error means the frame was recognized but carries
// nothing for subscribers (partial transcripts, unknown types, keepalives).
func decodeServerFrame(data []byte, now func() time.Time) (Event, error) {
	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("decode provider frame: %w", err)
	}

	switch strings.TrimSpace(frame.Type) {
	case "call-started":
		return CallStartedEvent{CallID: frame.Call.ID}, nil
	case "call-ended":
		return CallEndedEvent{Reason: frame.Reason}, nil
	case "speech-update":
		speaker := NormalizeRole(frame.Role)
		switch frame.Status {
		case "started":
			return SpeechStartedEvent{Speaker: speaker}, nil
		case "stopped":
			return SpeechEndedEvent{Speaker: speaker}, nil
		}
		return nil, nil
	case "transcript":
		if frame.TranscriptType != "" && frame.TranscriptType != "final" {
			return nil, nil
		}
		return TranscriptEvent{
			Speaker:   NormalizeRole(frame.Role),
			Text:      frame.Transcript,
			Timestamp: now(),
		}, nil
	case "error":
		callErr := &CallError{Message: "provider error"}
		if frame.Error != nil {
			callErr = &CallError{Code: frame.Error.Code, Message: frame.Error.Message}
		}
		return ErrorEvent{Err: callErr}, nil
	default:
		return nil, nil
	}
}
