// Package assistant builds the voice-provider assistant configuration for an
// interview session: the interviewer system prompt, the opening line, voice
// and transcriber selection, and the tool definitions the assistant may call
// back through the webhook.
package assistant

import (
	"fmt"
	"strings"
)

// Config is the provider-side assistant definition for one session.
type Config struct {
	Model          ModelConfig       `json:"model"`
	Voice          VoiceConfig       `json:"voice"`
	FirstMessage   string            `json:"firstMessage"`
	Transcriber    TranscriberConfig `json:"transcriber"`
	ServerURL      string            `json:"serverUrl,omitempty"`
	ServerSecret   string            `json:"serverUrlSecret,omitempty"`
	EndCallMessage string            `json:"endCallMessage"`
	MaxDurationSec int               `json:"maxDurationSeconds"`
	SilenceTimeout int               `json:"silenceTimeoutSeconds"`
	Functions      []Function        `json:"functions"`
}

type ModelConfig struct {
	Provider      string  `json:"provider"`
	Model         string  `json:"model"`
	Temperature   float64 `json:"temperature"`
	SystemMessage string  `json:"systemMessage"`
}

type VoiceConfig struct {
	Provider        string  `json:"provider"`
	VoiceID         string  `json:"voiceId"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarityBoost"`
}

type TranscriberConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// Function is a tool the assistant may invoke via the webhook.
type Function struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Builder produces assistant configs bound to one deployment's webhook.
type Builder struct {
	webhookURL    string
	webhookSecret string
}

// NewBuilder creates a builder. webhookURL and webhookSecret may be empty,
// which disables server-side tool callbacks.
func NewBuilder(webhookURL, webhookSecret string) *Builder {
	return &Builder{webhookURL: webhookURL, webhookSecret: webhookSecret}
}

// Build assembles the assistant config for one interview session.
func (b *Builder) Build(sessionID, interviewType string, questions []string) *Config {
	return &Config{
		Model: ModelConfig{
			Provider:      "openai",
			Model:         "gpt-3.5-turbo",
			Temperature:   0.7,
			SystemMessage: systemPrompt(interviewType, questions),
		},
		Voice: VoiceConfig{
			Provider:        "11labs",
			VoiceID:         "21m00Tcm4TlvDq8ikWAM",
			Stability:       0.5,
			SimilarityBoost: 0.8,
		},
		FirstMessage: firstMessage(interviewType),
		Transcriber: TranscriberConfig{
			Provider: "deepgram",
			Model:    "nova-2",
			Language: "en-US",
		},
		ServerURL:      b.webhookURL,
		ServerSecret:   b.webhookSecret,
		EndCallMessage: "Thank you for completing the mock interview. Your responses have been analyzed and feedback will be available shortly.",
		MaxDurationSec: 3600,
		SilenceTimeout: 30,
		Functions:      toolDefinitions(),
	}
}

func systemPrompt(interviewType string, questions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a professional interviewer conducting a %s mock interview. Your role is to create a supportive yet professional interview environment.

INSTRUCTIONS:
1. Ask questions one at a time from the provided list in order
2. Wait for complete answers before moving to the next question
3. Provide brief, encouraging acknowledgments between questions ("Thank you", "I see", "Interesting point")
4. If an answer is unclear or too brief, ask ONE follow-up question for clarification
5. Do NOT provide correct answers or extensive feedback during the interview
6. Keep the conversation flowing naturally and professionally
7. After each response, call the analyze_response function to process the answer
8. After all questions are completed, call the end_interview function

QUESTIONS TO ASK (in order):
`, strings.ReplaceAll(interviewType, "_", " "))
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString(`
CONVERSATION FLOW:
- Start with a warm greeting and brief explanation
- Ask Question 1 and wait for response
- Give brief acknowledgment and ask Question 2
- Continue until all questions are asked
- Thank the candidate and end professionally

TONE: Professional, encouraging, and supportive. Make the candidate feel comfortable while maintaining interview standards.`)

	if strings.Contains(interviewType, "technical") {
		b.WriteString(`

TECHNICAL INTERVIEW GUIDANCE:
- Listen for technical terminology, algorithms, and system design concepts
- If a candidate mentions code, ask them to explain their thinking process
- For system design questions, encourage them to think about scalability and trade-offs
- Don't correct technical mistakes during the interview`)
	} else if strings.Contains(interviewType, "behavioral") {
		b.WriteString(`

BEHAVIORAL INTERVIEW GUIDANCE:
- Listen for specific examples following the STAR method (Situation, Task, Action, Result)
- If answers are too vague, ask for more specific details about their role and actions
- Encourage quantifiable results where applicable
- Look for leadership, problem-solving, and teamwork examples`)
	}
	return b.String()
}

func firstMessage(interviewType string) string {
	switch interviewType {
	case "technical_software":
		return "Hello! Welcome to your technical software engineering mock interview. I'll be asking you several questions to assess your technical knowledge and problem-solving skills. Please answer as thoroughly as you can, and feel free to think out loud. Are you ready to begin?"
	case "behavioral":
		return "Hello! Welcome to your behavioral mock interview. I'll be asking you questions about your past experiences and how you handle various workplace situations. Please provide specific examples and details about your role and the outcomes. Are you ready to start?"
	case "system_design":
		return "Hello! Welcome to your system design mock interview. I'll be presenting you with design challenges where you should think about scalability, trade-offs, and system architecture. Please explain your thought process as you work through each problem. Ready to begin?"
	default:
		return "Hello! Welcome to your mock interview. I'll be asking you a series of questions to assess your skills and experience. Please answer thoughtfully and provide specific examples where possible. Are you ready to get started?"
	}
}

func toolDefinitions() []Function {
	return []Function{
		{
			Name:        "analyze_response",
			Description: "Analyze the candidate's response to a question",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The interview session ID",
					},
					"question_number": map[string]any{
						"type":        "integer",
						"description": "The current question number",
					},
					"response_text": map[string]any{
						"type":        "string",
						"description": "The candidate's response text",
					},
				},
				"required": []string{"session_id", "question_number", "response_text"},
			},
		},
		{
			Name:        "end_interview",
			Description: "End the interview session",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": map[string]any{
						"type":        "string",
						"description": "The interview session ID",
					},
				},
				"required": []string{"session_id"},
			},
		},
	}
}
