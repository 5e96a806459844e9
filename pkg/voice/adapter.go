package voice

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultDialTimeout = 15 * time.Second

// Assistant describes inline assistant behavior, used when no pre-registered
// assistant identifier is supplied.
type Assistant struct {
	SystemPrompt string
	FirstMessage string
	VoiceID      string
	Language     string
}

// CallConfig carries the credentials and identity for one call.
type CallConfig struct {
	APIKey      string
	AssistantID string
	Assistant   *Assistant
	Metadata    map[string]any
}

func (c CallConfig) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return newNotConfiguredError("provider api key")
	}
	if strings.TrimSpace(c.AssistantID) == "" && c.Assistant == nil {
		return newNotConfiguredError("assistant id or inline assistant")
	}
	return nil
}

// CallSession is a snapshot of the adapter's call state. Speaking is only
// true while Active is true.
type CallSession struct {
	Active    bool
	Speaking  bool
	LastError *CallError
}

type activeCall struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// retired is closed when the adapter has fully detached from this call,
	// so EndCall can wait for the idle state instead of racing the read loop.
	retired chan struct{}
}

func (c *activeCall) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *activeCall) close() {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(2*time.Second))
	c.writeMu.Unlock()
	_ = c.conn.Close()
}

// Adapter is the single point of contact with the provider's duplex voice
// channel. It enforces at most one concurrent call and translates provider
// frames into the normalized event stream on Bus(). All normalized events
// are published from one read loop, in arrival order.
type Adapter struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
	bus    *Bus
	now    func() time.Time

	mu           sync.Mutex
	cur          *activeCall
	opening      bool
	active       bool
	speaking     bool
	lastErr      *CallError
	cancelOnOpen bool
}

// NewAdapter creates an adapter for the provider endpoint at url
// (ws:// or wss://).
func NewAdapter(url string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger,
		bus:    NewBus(),
		now:    time.Now,
	}
}

// Bus exposes the normalized event stream for subscription.
func (a *Adapter) Bus() *Bus {
	return a.bus
}

// Session returns a snapshot of the current call state.
func (a *Adapter) Session() CallSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return CallSession{Active: a.active, Speaking: a.speaking, LastError: a.lastErr}
}

// StartCall requests a new call. It fails synchronously with a not_configured
// AdapterError when credentials are missing and already_active when a call is
// open or opening. On success the session becomes active asynchronously, when
// the provider confirms; transport failures surface through ErrorEvent.
func (a *Adapter) StartCall(ctx context.Context, cfg CallConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	a.mu.Lock()
	if a.opening || a.active || a.cur != nil {
		a.mu.Unlock()
		return newAlreadyActiveError()
	}
	a.opening = true
	a.cancelOnOpen = false
	a.lastErr = nil
	a.mu.Unlock()

	go a.open(ctx, cfg)
	return nil
}

// EndCall requests closure of the active call and returns once the adapter
// is idle again, so a StartCall issued right after EndCall cannot fail with
// already_active against the outgoing call. It is idempotent: with no call
// open it is a no-op success, so stop controls are safely invocable at any
// time. Invoked while a call is opening, the open is treated as cancelled and
// closed as soon as it completes.
func (a *Adapter) EndCall() error {
	a.mu.Lock()
	if a.opening && a.cur == nil {
		a.cancelOnOpen = true
		a.mu.Unlock()
		return nil
	}
	c := a.cur
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	_ = c.writeJSON(clientStopFrame{Type: "stop"})
	c.close()
	// Closing the connection unblocks the read loop, which retires the call.
	<-c.retired
	return nil
}

func (a *Adapter) open(ctx context.Context, cfg CallConfig) {
	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, defaultDialTimeout)
		defer cancel()
	}

	conn, _, err := a.dialer.DialContext(dialCtx, a.url, nil)
	if err != nil {
		a.failOpen(&CallError{Code: "connection_failed", Message: err.Error()})
		return
	}

	start := clientStartFrame{
		Type:     "start",
		APIKey:   cfg.APIKey,
		Metadata: cfg.Metadata,
	}
	if id := strings.TrimSpace(cfg.AssistantID); id != "" {
		start.AssistantID = id
	} else {
		start.Assistant = &wireAssistant{
			SystemPrompt: cfg.Assistant.SystemPrompt,
			FirstMessage: cfg.Assistant.FirstMessage,
			VoiceID:      cfg.Assistant.VoiceID,
			Language:     cfg.Assistant.Language,
		}
	}

	c := &activeCall{conn: conn, retired: make(chan struct{})}
	if err := c.writeJSON(start); err != nil {
		_ = conn.Close()
		a.failOpen(&CallError{Code: "start_failed", Message: err.Error()})
		return
	}

	a.mu.Lock()
	a.cur = c
	cancelled := a.cancelOnOpen
	a.mu.Unlock()

	if cancelled {
		_ = c.writeJSON(clientStopFrame{Type: "stop"})
		c.close()
	}
	a.readLoop(c)
}

// failOpen records an open failure and returns the adapter to an idle,
// reusable state. No call-ended event is published: the call never existed.
func (a *Adapter) failOpen(callErr *CallError) {
	a.mu.Lock()
	a.opening = false
	a.cancelOnOpen = false
	a.lastErr = callErr
	a.mu.Unlock()
	a.bus.Publish(ErrorEvent{Err: callErr})
}

func (a *Adapter) readLoop(c *activeCall) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			a.finishCall(c, err)
			return
		}

		event, decErr := decodeServerFrame(data, a.now)
		if decErr != nil {
			a.logger.Warn("dropping malformed provider frame", "err", decErr)
			continue
		}
		if event == nil {
			continue
		}

		switch e := event.(type) {
		case CallStartedEvent:
			a.mu.Lock()
			cancelled := a.cancelOnOpen
			a.cancelOnOpen = false
			if !cancelled {
				a.opening = false
				a.active = true
			}
			a.mu.Unlock()
			if cancelled {
				_ = c.writeJSON(clientStopFrame{Type: "stop"})
				c.close()
				continue
			}
			a.bus.Publish(e)
		case CallEndedEvent:
			c.close()
			a.reset(c)
			a.bus.Publish(e)
			return
		case SpeechStartedEvent:
			if e.Speaker == SpeakerInterviewer {
				a.mu.Lock()
				if a.active {
					a.speaking = true
				}
				a.mu.Unlock()
			}
			a.bus.Publish(e)
		case SpeechEndedEvent:
			if e.Speaker == SpeakerInterviewer {
				a.mu.Lock()
				a.speaking = false
				a.mu.Unlock()
			}
			a.bus.Publish(e)
		case TranscriptEvent:
			a.bus.Publish(e)
		case ErrorEvent:
			// Provider errors end the call but not the adapter: it stays
			// usable for a subsequent StartCall.
			a.mu.Lock()
			a.lastErr = e.Err
			wasActive := a.active
			a.mu.Unlock()
			c.close()
			a.reset(c)
			a.bus.Publish(e)
			if wasActive {
				a.bus.Publish(CallEndedEvent{Reason: "provider-error"})
			}
			return
		}
	}
}

// finishCall handles transport-level termination: requested closes, hangups,
// and network drops all funnel through here.
func (a *Adapter) finishCall(c *activeCall, readErr error) {
	normal := websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway)

	a.mu.Lock()
	wasActive := a.active
	a.mu.Unlock()

	_ = c.conn.Close()
	a.reset(c)

	if !normal && wasActive {
		callErr := &CallError{Code: "connection_lost", Message: readErr.Error()}
		a.mu.Lock()
		a.lastErr = callErr
		a.mu.Unlock()
		a.bus.Publish(ErrorEvent{Err: callErr})
	}
	if wasActive {
		reason := "connection-closed"
		if !normal {
			reason = "connection-lost"
		}
		a.bus.Publish(CallEndedEvent{Reason: reason})
	}
}

func (a *Adapter) reset(c *activeCall) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cur != c {
		return
	}
	a.cur = nil
	a.opening = false
	a.active = false
	a.speaking = false
	a.cancelOnOpen = false
	close(c.retired)
}
