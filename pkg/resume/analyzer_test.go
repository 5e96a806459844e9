package resume

import (
	"strings"
	"testing"
)

const strongResume = `Jane Doe
jane@example.com

Summary
Backend engineer with six years of experience building distributed systems.

Experience
- Reduced API latency by 40% by introducing request coalescing
- Led migration of billing storage to Postgres, saving $200k annually
- Improved deploy cadence from weekly to daily across 12 services
- Designed a streaming pipeline handling 5M events per day

Education
B.S. Computer Science, State University, 2017

Skills
Go, Postgres, Kubernetes, Kafka, Terraform
`

func TestAnalyze_EmptyResume(t *testing.T) {
	report := Analyze("   ", "", "")
	if report.Rating != "N/A" || report.ATSScore != 0 {
		t.Fatalf("report=%+v", report)
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("missing recommendation")
	}
}

func TestAnalyze_StrongResumeScoresWell(t *testing.T) {
	report := Analyze(strongResume, "", "")
	if report.ATSScore < 75 {
		t.Fatalf("atsScore=%v, want >= 75", report.ATSScore)
	}
	if len(report.CriticalIssues) != 0 {
		t.Fatalf("issues=%v", report.CriticalIssues)
	}
	if report.ScoreBreakdown.EssentialSections != 100 {
		t.Fatalf("sections=%v", report.ScoreBreakdown.EssentialSections)
	}
	if report.Summary == "" || report.Rating == "" {
		t.Fatalf("report=%+v", report)
	}
}

func TestAnalyze_MissingSectionsFlagged(t *testing.T) {
	report := Analyze(strings.Repeat("I once did various things at various places. ", 10), "", "")
	if len(report.CriticalIssues) < 2 {
		t.Fatalf("issues=%v, want missing experience and education", report.CriticalIssues)
	}
	joined := strings.Join(report.CriticalIssues, "; ")
	if !strings.Contains(joined, "experience") || !strings.Contains(joined, "education") {
		t.Fatalf("issues=%v", report.CriticalIssues)
	}
}

func TestAnalyze_KeywordsAgainstJobDescription(t *testing.T) {
	report := Analyze(strongResume,
		"Seeking an engineer with Kubernetes, Postgres, and GraphQL experience", "Backend Engineer")

	found := strings.Join(report.KeywordAnalysis.FoundKeywords, " ")
	if !strings.Contains(found, "kubernetes") || !strings.Contains(found, "postgres") {
		t.Fatalf("found=%v", report.KeywordAnalysis.FoundKeywords)
	}
	missing := strings.Join(report.KeywordAnalysis.MissingKeywords, " ")
	if !strings.Contains(missing, "graphql") {
		t.Fatalf("missing=%v", report.KeywordAnalysis.MissingKeywords)
	}
	if report.KeywordAnalysis.KeywordDensity == "" {
		t.Fatal("missing density")
	}
}

func TestAnalyze_NoJobDescriptionYieldsNoKeywords(t *testing.T) {
	report := Analyze(strongResume, "", "")
	if len(report.KeywordAnalysis.FoundKeywords) != 0 || len(report.KeywordAnalysis.MissingKeywords) != 0 {
		t.Fatalf("keywords=%+v", report.KeywordAnalysis)
	}
	if report.KeywordAnalysis.KeywordDensity != "low" {
		t.Fatalf("density=%q", report.KeywordAnalysis.KeywordDensity)
	}
}

func TestAnalyze_UnquantifiedBulletsGetRecommendation(t *testing.T) {
	text := `Summary
Engineer.

Experience
- Worked on backend services
- Helped with deployments
- Attended design meetings
- Contributed bug patches

Education
B.S., 2017

Skills
Go
` + strings.Repeat("More context about the role and responsibilities here. ", 5)
	report := Analyze(text, "", "")
	joined := strings.Join(report.Recommendations, " ")
	if !strings.Contains(joined, "Quantify") {
		t.Fatalf("recs=%v", report.Recommendations)
	}
}

func TestScoreToRating_Bands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, "Excellent"},
		{90, "Excellent"},
		{80, "Good"},
		{65, "Average"},
		{50, "Needs Improvement"},
		{20, "Poor"},
	}
	for _, tc := range cases {
		if got := scoreToRating(tc.score); got != tc.want {
			t.Errorf("scoreToRating(%v)=%q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAnalyze_TabularLayoutPenalized(t *testing.T) {
	var b strings.Builder
	b.WriteString("Summary\nEngineer.\n\nExperience\n")
	for i := 0; i < 6; i++ {
		b.WriteString("Acme Corp\t\tSan Francisco\t\t2020-2024\n")
	}
	b.WriteString("\nEducation\nB.S., 2017\n\nSkills\nGo\n")
	report := Analyze(b.String(), "", "")

	if report.ScoreBreakdown.ParseRate > 75 {
		t.Fatalf("parseRate=%v, want penalty for tab layout", report.ScoreBreakdown.ParseRate)
	}
	joined := strings.Join(report.CriticalIssues, " ")
	if !strings.Contains(joined, "columns or tables") {
		t.Fatalf("issues=%v", report.CriticalIssues)
	}
}
