// Command interview-live runs a mock interview from the terminal. It starts
// a session against the gateway, opens a voice call through the provider
// adapter, prints the live transcript, and drives the question lifecycle
// from stdin commands.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prepworks/interviewd/internal/dotenv"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/session"
	"github.com/prepworks/interviewd/pkg/voice"
)

type options struct {
	gateway        string
	gatewayAPIKey  string
	providerURL    string
	providerAPIKey string

	interviewType string
	difficulty    string
	duration      int
	company       string

	newCallPerQuestion bool
	keepTranscript     bool
	debug              bool
}

func parseOptions() options {
	var opt options
	flag.StringVar(&opt.gateway, "gateway", "http://localhost:8720", "Gateway base URL")
	flag.StringVar(&opt.gatewayAPIKey, "gateway-api-key", strings.TrimSpace(os.Getenv("INTERVIEWD_API_KEY")), "Gateway API key (optional; also reads INTERVIEWD_API_KEY)")
	flag.StringVar(&opt.providerURL, "provider-url", strings.TrimSpace(os.Getenv("INTERVIEWD_PROVIDER_URL")), "Voice provider websocket URL (required; also reads INTERVIEWD_PROVIDER_URL)")
	flag.StringVar(&opt.providerAPIKey, "provider-api-key", strings.TrimSpace(os.Getenv("INTERVIEWD_PROVIDER_API_KEY")), "Voice provider API key (required; also reads INTERVIEWD_PROVIDER_API_KEY)")
	flag.StringVar(&opt.interviewType, "type", "technical_software", "Interview type (technical_software, behavioral)")
	flag.StringVar(&opt.difficulty, "difficulty", "medium", "Question difficulty")
	flag.IntVar(&opt.duration, "duration", 30, "Interview duration in minutes")
	flag.StringVar(&opt.company, "company", "", "Target company (optional)")
	flag.BoolVar(&opt.newCallPerQuestion, "new-call-per-question", false, "Open a fresh provider call for each question")
	flag.BoolVar(&opt.keepTranscript, "keep-transcript", true, "Keep the transcript across questions")
	flag.BoolVar(&opt.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return opt
}

func main() {
	if err := dotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "interview-live: %v\n", err)
		os.Exit(1)
	}
	opt := parseOptions()

	level := slog.LevelWarn
	if opt.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), opt, logger); err != nil {
		fmt.Fprintf(os.Stderr, "interview-live: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opt options, logger *slog.Logger) error {
	if opt.providerURL == "" {
		return fmt.Errorf("provider websocket URL is required (--provider-url)")
	}
	if opt.providerAPIKey == "" {
		return fmt.Errorf("provider API key is required (--provider-api-key)")
	}

	var clientOpts []api.Option
	if opt.gatewayAPIKey != "" {
		clientOpts = append(clientOpts, api.WithAPIKey(opt.gatewayAPIKey))
	}
	client := api.NewClient(opt.gateway, clientOpts...)

	started, err := client.StartInterview(ctx, &api.StartInterviewRequest{
		InterviewType:   opt.interviewType,
		Difficulty:      opt.difficulty,
		DurationMinutes: opt.duration,
		Company:         opt.company,
	})
	if err != nil {
		return fmt.Errorf("start interview: %w", err)
	}

	questions := make([]session.Question, len(started.Questions))
	for i, q := range started.Questions {
		questions[i] = session.Question{
			ID:               q.ID,
			Text:             q.Text,
			Category:         q.Category,
			Difficulty:       q.Difficulty,
			ExpectedKeywords: q.ExpectedKeywords,
		}
	}

	adapter := voice.NewAdapter(opt.providerURL, logger)

	var coord *session.Coordinator
	dispatcher := session.NewScoringDispatcher(client, func(questionIndex int, result *session.ScoreResult, errMsg string) {
		coord.CompleteScoring(questionIndex, result, errMsg)
	}, 0, logger)

	coord = session.NewCoordinator(adapter, dispatcher, session.Config{
		SessionID: started.SessionID,
		Call: voice.CallConfig{
			APIKey: opt.providerAPIKey,
			Assistant: &voice.Assistant{
				SystemPrompt: started.Assistant.Model.SystemMessage,
				FirstMessage: started.Assistant.FirstMessage,
				VoiceID:      started.Assistant.Voice.VoiceID,
				Language:     started.Assistant.Transcriber.Language,
			},
			Metadata: map[string]any{"sessionId": started.SessionID},
		},
		NewCallPerQuestion:         opt.newCallPerQuestion,
		ResetTranscriptPerQuestion: !opt.keepTranscript,
	}, logger)
	defer coord.Close()

	unsubs := []func(){
		adapter.Bus().OnCallStarted(func(e voice.CallStartedEvent) {
			fmt.Printf("\n[call started %s]\n", e.CallID)
			printQuestion(coord)
		}),
		adapter.Bus().OnCallEnded(func(e voice.CallEndedEvent) {
			fmt.Printf("\n[call ended: %s]\n", e.Reason)
		}),
		adapter.Bus().OnTranscript(func(e voice.TranscriptEvent) {
			fmt.Printf("%-11s %s\n", string(e.Speaker)+":", e.Text)
		}),
		adapter.Bus().OnError(func(e voice.ErrorEvent) {
			fmt.Printf("\n[call error: %v] (type 'restart' to retry)\n", e.Err)
		}),
	}
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	fmt.Printf("session %s: %d questions (%s, %s)\n",
		started.SessionID, len(questions), opt.interviewType, opt.difficulty)
	fmt.Println("commands: next, end, restart, status, quit")

	if err := coord.Start(ctx, questions); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	startedAt := time.Now()
	done := make(chan struct{})
	go elapsedTicker(startedAt, time.Duration(opt.duration)*time.Minute, done)
	defer close(done)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "", "help":
			fmt.Println("commands: next, end, restart, status, quit")
		case "next", "advance":
			if err := coord.Advance(ctx); err != nil {
				fmt.Printf("[%v]\n", err)
				continue
			}
			if coord.Snapshot().Status == session.StatusCompleted {
				return finish(coord, dispatcher, client, started.SessionID)
			}
			printQuestion(coord)
		case "end", "quit", "exit":
			if err := coord.End(); err != nil {
				fmt.Printf("[%v]\n", err)
				continue
			}
			return finish(coord, dispatcher, client, started.SessionID)
		case "restart":
			if err := coord.RestartCall(ctx); err != nil {
				fmt.Printf("[%v]\n", err)
			}
		case "status":
			printStatus(coord, startedAt)
		default:
			fmt.Println("unknown command; commands: next, end, restart, status, quit")
		}
	}
	return scanner.Err()
}

func printQuestion(coord *session.Coordinator) {
	if q, ok := coord.CurrentQuestion(); ok {
		snap := coord.Snapshot()
		fmt.Printf("\n--- question %d/%d [%s] ---\n%s\n\n",
			snap.CurrentQuestionIndex+1, len(snap.Questions), q.Category, q.Text)
	}
}

func printStatus(coord *session.Coordinator, startedAt time.Time) {
	snap := coord.Snapshot()
	fmt.Printf("status=%s question=%d/%d answered=%d elapsed=%s\n",
		snap.Status, snap.CurrentQuestionIndex+1, len(snap.Questions),
		len(snap.Responses), time.Since(startedAt).Round(time.Second))
	for _, r := range snap.Responses {
		line := fmt.Sprintf("  q%d: %s", r.QuestionIndex+1, r.AnalysisState)
		if r.Analysis != nil {
			line += fmt.Sprintf(" %.2f (%s)", r.Analysis.OverallScore, r.Analysis.Rating)
		}
		if r.AnalysisError != "" {
			line += " " + r.AnalysisError
		}
		fmt.Println(line)
	}
	if snap.LastError != "" {
		fmt.Printf("  last error: %s\n", snap.LastError)
	}
}

// elapsedTicker prints the running time once a minute. The interview clock
// is informational only; questions never auto-advance on time.
func elapsedTicker(startedAt time.Time, planned time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			elapsed := time.Since(startedAt).Round(time.Minute)
			fmt.Printf("[elapsed %s of %s]\n", elapsed, planned)
		}
	}
}

func finish(coord *session.Coordinator, dispatcher *session.ScoringDispatcher, client *api.Client, sessionID string) error {
	fmt.Println("\ninterview complete, waiting for scoring...")
	dispatcher.Wait()
	printStatus(coord, time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	report, err := client.EndInterview(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("fetch final report: %w", err)
	}

	fmt.Printf("\n=== final report ===\noverall: %.2f (%s)\n", report.OverallScore, report.OverallRating)
	for _, s := range report.Strengths {
		fmt.Println("  + " + s)
	}
	for _, s := range report.Improvements {
		fmt.Println("  - " + s)
	}
	for _, q := range report.QuestionBreakdown {
		fmt.Printf("  q%d: %.2f (%s)\n", q.QuestionNumber, q.Score, q.Rating)
	}
	return nil
}
