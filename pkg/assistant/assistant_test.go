package assistant

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuild_SystemPromptListsQuestionsInOrder(t *testing.T) {
	b := NewBuilder("https://gw.example.com/api/provider/webhook", "secret")
	questions := []string{"What is a goroutine?", "Explain channels.", "Describe the scheduler."}

	cfg := b.Build("sess-1", "technical_software", questions)

	prompt := cfg.Model.SystemMessage
	lastIdx := -1
	for i, q := range questions {
		numbered := fmt.Sprintf("%d. %s", i+1, q)
		idx := strings.Index(prompt, numbered)
		if idx < 0 {
			t.Fatalf("prompt missing %q", numbered)
		}
		if idx < lastIdx {
			t.Fatalf("question %d out of order", i+1)
		}
		lastIdx = idx
	}
}

func TestBuild_TechnicalGuidanceBlock(t *testing.T) {
	b := NewBuilder("", "")
	cfg := b.Build("sess-1", "technical_software", []string{"Q"})
	if !strings.Contains(cfg.Model.SystemMessage, "TECHNICAL INTERVIEW GUIDANCE") {
		t.Fatal("missing technical guidance")
	}
	if strings.Contains(cfg.Model.SystemMessage, "BEHAVIORAL INTERVIEW GUIDANCE") {
		t.Fatal("behavioral guidance leaked into technical prompt")
	}
}

func TestBuild_BehavioralGuidanceBlock(t *testing.T) {
	b := NewBuilder("", "")
	cfg := b.Build("sess-1", "behavioral", []string{"Q"})
	if !strings.Contains(cfg.Model.SystemMessage, "BEHAVIORAL INTERVIEW GUIDANCE") {
		t.Fatal("missing behavioral guidance")
	}
	if !strings.Contains(cfg.Model.SystemMessage, "STAR method") {
		t.Fatal("missing STAR guidance")
	}
}

func TestBuild_FirstMessageByType(t *testing.T) {
	b := NewBuilder("", "")
	cases := []struct {
		interviewType string
		want          string
	}{
		{"technical_software", "technical software engineering"},
		{"behavioral", "behavioral mock interview"},
		{"system_design", "system design mock interview"},
		{"something_else", "mock interview"},
	}
	for _, tc := range cases {
		cfg := b.Build("s", tc.interviewType, nil)
		if !strings.Contains(cfg.FirstMessage, tc.want) {
			t.Errorf("%s: firstMessage=%q", tc.interviewType, cfg.FirstMessage)
		}
	}
}

func TestBuild_WiresWebhook(t *testing.T) {
	b := NewBuilder("https://gw.example.com/api/provider/webhook", "secret")
	cfg := b.Build("sess-1", "behavioral", []string{"Q"})
	if cfg.ServerURL != "https://gw.example.com/api/provider/webhook" || cfg.ServerSecret != "secret" {
		t.Fatalf("cfg=%+v", cfg)
	}

	noHook := NewBuilder("", "").Build("sess-1", "behavioral", []string{"Q"})
	if noHook.ServerURL != "" || noHook.ServerSecret != "" {
		t.Fatalf("cfg=%+v", noHook)
	}
}

func TestBuild_ToolDefinitions(t *testing.T) {
	cfg := NewBuilder("", "").Build("sess-1", "behavioral", []string{"Q"})
	if len(cfg.Functions) != 2 {
		t.Fatalf("functions=%d", len(cfg.Functions))
	}
	names := map[string]bool{}
	for _, fn := range cfg.Functions {
		names[fn.Name] = true
		if fn.Parameters["type"] != "object" {
			t.Fatalf("%s parameters=%v", fn.Name, fn.Parameters)
		}
	}
	if !names["analyze_response"] || !names["end_interview"] {
		t.Fatalf("names=%v", names)
	}
}

func TestBuild_ProviderDefaults(t *testing.T) {
	cfg := NewBuilder("", "").Build("sess-1", "behavioral", []string{"Q"})
	if cfg.Model.Provider != "openai" || cfg.Voice.Provider != "11labs" || cfg.Transcriber.Provider != "deepgram" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.MaxDurationSec != 3600 || cfg.SilenceTimeout != 30 {
		t.Fatalf("cfg=%+v", cfg)
	}
}
