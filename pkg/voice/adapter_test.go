package voice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// newProviderServer runs handle on each websocket connection and returns the
// ws:// endpoint.
func newProviderServer(t *testing.T, handle func(conn *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readStartFrame(t *testing.T, conn *websocket.Conn) clientStartFrame {
	t.Helper()
	var frame clientStartFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Errorf("read start frame: %v", err)
		return frame
	}
	if frame.Type != "start" {
		t.Errorf("first frame type=%q, want start", frame.Type)
	}
	return frame
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}

func inlineConfig() CallConfig {
	return CallConfig{
		APIKey: "test-key",
		Assistant: &Assistant{
			SystemPrompt: "You are an interviewer.",
			FirstMessage: "Hello!",
			VoiceID:      "nova",
			Language:     "en",
		},
	}
}

func TestStartCall_MissingAPIKey(t *testing.T) {
	a := NewAdapter("ws://unused", nil)
	err := a.StartCall(context.Background(), CallConfig{AssistantID: "asst-1"})
	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Code != CodeNotConfigured {
		t.Fatalf("err=%v", err)
	}
}

func TestStartCall_MissingAssistant(t *testing.T) {
	a := NewAdapter("ws://unused", nil)
	err := a.StartCall(context.Background(), CallConfig{APIKey: "k"})
	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Code != CodeNotConfigured {
		t.Fatalf("err=%v", err)
	}
}

func TestStartCall_HandshakeAndCallStarted(t *testing.T) {
	frames := make(chan clientStartFrame, 1)
	url := newProviderServer(t, func(conn *websocket.Conn) {
		frames <- readStartFrame(t, conn)
		_ = conn.WriteJSON(map[string]any{"type": "call-started", "call": map[string]string{"id": "call-7"}})
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	started := make(chan CallStartedEvent, 1)
	a.Bus().OnCallStarted(func(e CallStartedEvent) { started <- e })

	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.EndCall()

	frame := waitFor(t, frames, "start frame")
	if frame.APIKey != "test-key" {
		t.Fatalf("apiKey=%q", frame.APIKey)
	}
	if frame.Assistant == nil || frame.Assistant.SystemPrompt != "You are an interviewer." {
		t.Fatalf("assistant=%+v", frame.Assistant)
	}

	e := waitFor(t, started, "call-started event")
	if e.CallID != "call-7" {
		t.Fatalf("callID=%q", e.CallID)
	}
	if s := a.Session(); !s.Active {
		t.Fatal("session should be active")
	}
}

func TestStartCall_AssistantIDTakesPrecedence(t *testing.T) {
	frames := make(chan clientStartFrame, 1)
	url := newProviderServer(t, func(conn *websocket.Conn) {
		frames <- readStartFrame(t, conn)
	})

	a := NewAdapter(url, nil)
	cfg := inlineConfig()
	cfg.AssistantID = "asst-42"
	if err := a.StartCall(context.Background(), cfg); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.EndCall()

	frame := waitFor(t, frames, "start frame")
	if frame.AssistantID != "asst-42" || frame.Assistant != nil {
		t.Fatalf("frame=%+v", frame)
	}
}

func TestStartCall_SecondCallAlreadyActive(t *testing.T) {
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.EndCall()

	err := a.StartCall(context.Background(), inlineConfig())
	var adapterErr *AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Code != CodeAlreadyActive {
		t.Fatalf("err=%v", err)
	}
}

func TestAdapter_TranscriptFramesReachBus(t *testing.T) {
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
		_ = conn.WriteJSON(map[string]any{"type": "call-started", "call": map[string]string{"id": "c"}})
		_ = conn.WriteJSON(map[string]any{"type": "transcript", "role": "user", "transcript": "part", "transcriptType": "partial"})
		_ = conn.WriteJSON(map[string]any{"type": "transcript", "role": "user", "transcript": "the answer", "transcriptType": "final"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	transcripts := make(chan TranscriptEvent, 4)
	a.Bus().OnTranscript(func(e TranscriptEvent) { transcripts <- e })

	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.EndCall()

	e := waitFor(t, transcripts, "transcript event")
	if e.Speaker != SpeakerUser || e.Text != "the answer" {
		t.Fatalf("event=%+v (partials must be dropped)", e)
	}
}

func TestEndCall_SendsStopAndPublishesCallEnded(t *testing.T) {
	stops := make(chan string, 1)
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
		_ = conn.WriteJSON(map[string]any{"type": "call-started", "call": map[string]string{"id": "c"}})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(data, &frame) == nil && frame.Type == "stop" {
				stops <- frame.Type
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	started := make(chan CallStartedEvent, 1)
	ended := make(chan CallEndedEvent, 1)
	a.Bus().OnCallStarted(func(e CallStartedEvent) { started <- e })
	a.Bus().OnCallEnded(func(e CallEndedEvent) { ended <- e })

	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, started, "call-started event")

	if err := a.EndCall(); err != nil {
		t.Fatalf("end: %v", err)
	}
	waitFor(t, stops, "stop frame")
	waitFor(t, ended, "call-ended event")

	if s := a.Session(); s.Active {
		t.Fatal("session still active after end")
	}
}

func TestEndCall_NoActiveCallIsNoop(t *testing.T) {
	a := NewAdapter("ws://unused", nil)
	if err := a.EndCall(); err != nil {
		t.Fatalf("end: %v", err)
	}
}

func TestEndCall_ReturnsIdleSoImmediateRestartIsAccepted(t *testing.T) {
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
		_ = conn.WriteJSON(map[string]any{"type": "call-started", "call": map[string]string{"id": "c"}})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	started := make(chan CallStartedEvent, 8)
	a.Bus().OnCallStarted(func(e CallStartedEvent) { started <- e })

	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, started, "call-started event")

	// Each cycle rearms with no pause between EndCall and StartCall, the way
	// a per-question advance does.
	for i := 0; i < 5; i++ {
		if err := a.EndCall(); err != nil {
			t.Fatalf("cycle %d end: %v", i, err)
		}
		if s := a.Session(); s.Active {
			t.Fatalf("cycle %d: session active after EndCall returned", i)
		}
		if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
			t.Fatalf("cycle %d restart: %v", i, err)
		}
		waitFor(t, started, "call-started event")
	}
	_ = a.EndCall()
}

func TestAdapter_DialFailurePublishesErrorAndStaysUsable(t *testing.T) {
	a := NewAdapter("ws://127.0.0.1:1", nil)
	errs := make(chan ErrorEvent, 1)
	a.Bus().OnError(func(e ErrorEvent) { errs <- e })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.StartCall(ctx, inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}

	e := waitFor(t, errs, "error event")
	if e.Err == nil || e.Err.Code != "connection_failed" {
		t.Fatalf("event=%+v", e)
	}

	// The failed open released the slot; a new StartCall is accepted.
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
	})
	a.url = url
	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer a.EndCall()
}

func TestAdapter_ProviderErrorEndsCall(t *testing.T) {
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
		_ = conn.WriteJSON(map[string]any{"type": "call-started", "call": map[string]string{"id": "c"}})
		_ = conn.WriteJSON(map[string]any{"type": "error", "error": map[string]string{"code": "quota", "message": "limit"}})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	errs := make(chan ErrorEvent, 1)
	ended := make(chan CallEndedEvent, 1)
	a.Bus().OnError(func(e ErrorEvent) { errs <- e })
	a.Bus().OnCallEnded(func(e CallEndedEvent) { ended <- e })

	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}

	e := waitFor(t, errs, "error event")
	if e.Err.Code != "quota" {
		t.Fatalf("event=%+v", e)
	}
	end := waitFor(t, ended, "call-ended event")
	if end.Reason != "provider-error" {
		t.Fatalf("reason=%q", end.Reason)
	}
	if s := a.Session(); s.Active || s.LastError == nil {
		t.Fatalf("session=%+v", s)
	}
}

func TestAdapter_SpeakingTracksInterviewerSpeech(t *testing.T) {
	proceed := make(chan struct{})
	url := newProviderServer(t, func(conn *websocket.Conn) {
		readStartFrame(t, conn)
		_ = conn.WriteJSON(map[string]any{"type": "call-started", "call": map[string]string{"id": "c"}})
		_ = conn.WriteJSON(map[string]any{"type": "speech-update", "status": "started", "role": "assistant"})
		<-proceed
		_ = conn.WriteJSON(map[string]any{"type": "speech-update", "status": "stopped", "role": "assistant"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	a := NewAdapter(url, nil)
	speechStarted := make(chan SpeechStartedEvent, 1)
	speechEnded := make(chan SpeechEndedEvent, 1)
	a.Bus().OnSpeechStarted(func(e SpeechStartedEvent) { speechStarted <- e })
	a.Bus().OnSpeechEnded(func(e SpeechEndedEvent) { speechEnded <- e })

	if err := a.StartCall(context.Background(), inlineConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.EndCall()

	waitFor(t, speechStarted, "speech-started event")
	if s := a.Session(); !s.Speaking {
		t.Fatal("speaking should be true")
	}
	close(proceed)
	waitFor(t, speechEnded, "speech-ended event")
	if s := a.Session(); s.Speaking {
		t.Fatal("speaking should be false")
	}
}
