package resume

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Score weights, matching the ATS rubric: parse rate 30%, quantified impact
// 25%, repetition control 15%, spelling and grammar 15%, essential sections
// 10%, design 5%.
const (
	weightParseRate  = 0.30
	weightImpact     = 0.25
	weightRepetition = 0.15
	weightGrammar    = 0.15
	weightSections   = 0.10
	weightDesign     = 0.05
)

// Breakdown holds the rubric-level scores, each 0..100.
type Breakdown struct {
	ParseRate         float64 `json:"atsParseRate"`
	QuantifiedImpact  float64 `json:"quantifiedImpact"`
	RepetitionControl float64 `json:"repetitionControl"`
	SpellingGrammar   float64 `json:"spellingGrammar"`
	EssentialSections float64 `json:"essentialSections"`
	DesignATSSafe     float64 `json:"designAtsSafe"`
}

// CategoryScores is the reporting view of the breakdown.
type CategoryScores struct {
	Formatting  float64 `json:"formatting"`
	Keywords    float64 `json:"keywords"`
	Structure   float64 `json:"structure"`
	Impact      float64 `json:"impact"`
	Readability float64 `json:"readability"`
}

// KeywordAnalysis compares the resume against the job description.
type KeywordAnalysis struct {
	FoundKeywords   []string `json:"foundKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	KeywordDensity  string   `json:"keywordDensity"`
}

// Report is the full ATS analysis of one resume.
type Report struct {
	ATSScore        float64         `json:"atsScore"`
	Rating          string          `json:"rating"`
	CategoryScores  CategoryScores  `json:"categoryScores"`
	ScoreBreakdown  Breakdown       `json:"scoreBreakdown"`
	KeywordAnalysis KeywordAnalysis `json:"keywordAnalysis"`
	CriticalIssues  []string        `json:"criticalIssues"`
	Recommendations []string        `json:"recommendations"`
	Summary         string          `json:"summary"`
}

var (
	sectionHeadings = map[string][]string{
		"summary":    {"summary", "professional summary", "profile", "objective", "about"},
		"experience": {"experience", "professional experience", "work experience", "employment", "work history"},
		"education":  {"education", "academic background", "qualifications"},
		"skills":     {"skills", "technical skills", "core competencies"},
	}

	metricPattern = regexp.MustCompile(`\d+%|\$\d|\b\d+[kKmM]?\b|percent|reduced|increased|improved|grew|saved`)
	bulletPrefix  = regexp.MustCompile(`^\s*[-•*▪◦]`)
)

// Analyze scores resumeText against the ATS rubric. jobDescription and
// targetRole are optional and sharpen the keyword analysis.
func Analyze(resumeText, jobDescription, targetRole string) *Report {
	text := strings.TrimSpace(resumeText)
	if text == "" {
		return &Report{
			Rating:          "N/A",
			Recommendations: []string{"Please provide a valid resume to analyze."},
			Summary:         "No resume provided.",
			KeywordAnalysis: KeywordAnalysis{KeywordDensity: "low"},
		}
	}

	lines := strings.Split(text, "\n")
	lower := strings.ToLower(text)

	var issues, recs []string

	sections := detectSections(lines)
	sectionScore := scoreSections(sections, &issues, &recs)
	parseScore := scoreParseRate(lines, &issues, &recs)
	impactScore := scoreImpact(lines, &recs)
	repetitionScore := scoreRepetition(lines, &recs)
	grammarScore := scoreReadability(text)
	designScore := scoreDesign(lines)

	breakdown := Breakdown{
		ParseRate:         parseScore,
		QuantifiedImpact:  impactScore,
		RepetitionControl: repetitionScore,
		SpellingGrammar:   grammarScore,
		EssentialSections: sectionScore,
		DesignATSSafe:     designScore,
	}

	total := parseScore*weightParseRate +
		impactScore*weightImpact +
		repetitionScore*weightRepetition +
		grammarScore*weightGrammar +
		sectionScore*weightSections +
		designScore*weightDesign
	total = math.Round(total*10) / 10

	keywords := analyzeKeywords(lower, jobDescription, targetRole)
	if len(keywords.MissingKeywords) > 0 {
		recs = append(recs, fmt.Sprintf("Add role-relevant keywords missing from your resume: %s.",
			strings.Join(keywords.MissingKeywords, ", ")))
	}
	if len(recs) == 0 {
		recs = append(recs, "Your resume is in good shape. Tailor keywords per application for best results.")
	}

	return &Report{
		ATSScore: total,
		Rating:   scoreToRating(total),
		CategoryScores: CategoryScores{
			Formatting:  parseScore,
			Keywords:    impactScore,
			Structure:   sectionScore,
			Impact:      impactScore,
			Readability: grammarScore,
		},
		ScoreBreakdown:  breakdown,
		KeywordAnalysis: keywords,
		CriticalIssues:  issues,
		Recommendations: recs,
		Summary:         fmt.Sprintf("ATS Score: %.0f/100 (%s).", total, scoreToRating(total)),
	}
}

func scoreToRating(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 60:
		return "Average"
	case score >= 40:
		return "Needs Improvement"
	default:
		return "Poor"
	}
}

func detectSections(lines []string) map[string]bool {
	found := make(map[string]bool)
	for _, line := range lines {
		heading := strings.ToLower(strings.TrimSpace(strings.TrimRight(line, ":")))
		if heading == "" || len(heading) > 40 {
			continue
		}
		for section, aliases := range sectionHeadings {
			for _, alias := range aliases {
				if heading == alias {
					found[section] = true
				}
			}
		}
	}
	return found
}

func scoreSections(sections map[string]bool, issues, recs *[]string) float64 {
	score := 100.0
	if !sections["experience"] {
		score -= 40
		*issues = append(*issues, "No recognizable experience section")
		*recs = append(*recs, "Add a \"Professional Experience\" section in reverse chronological order.")
	}
	if !sections["education"] {
		score -= 25
		*issues = append(*issues, "No recognizable education section")
		*recs = append(*recs, "Add an \"Education\" section with degree, institution, and year.")
	}
	if !sections["summary"] {
		score -= 20
		*recs = append(*recs, "Open with a 2-3 line keyword-rich professional summary.")
	}
	if !sections["skills"] {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	return score
}

// scoreParseRate penalizes layout hazards that confuse ATS parsers: tab
// stops and wide gaps (multi-column layouts), and decorative glyphs.
func scoreParseRate(lines []string, issues, recs *[]string) float64 {
	score := 100.0
	tabs, gaps, glyphs := 0, 0, 0
	for _, line := range lines {
		if strings.Contains(line, "\t") {
			tabs++
		}
		if strings.Contains(strings.TrimSpace(line), "    ") {
			gaps++
		}
		for _, r := range line {
			if r > 0x2500 && r < 0x3000 || r >= 0x1F000 {
				glyphs++
			}
		}
	}
	if tabs > 2 || gaps > 5 {
		score -= 25
		*issues = append(*issues, "Layout appears to use columns or tables")
		*recs = append(*recs, "Use a single-column, left-aligned layout; ATS parsers misread tables and columns.")
	}
	if glyphs > 3 {
		score -= 15
		*recs = append(*recs, "Replace decorative icons and glyphs with plain text.")
	}
	if score < 0 {
		score = 0
	}
	return score
}

// scoreImpact rewards quantified results in experience bullets.
func scoreImpact(lines []string, recs *[]string) float64 {
	bullets, quantified := 0, 0
	for _, line := range lines {
		if !bulletPrefix.MatchString(line) {
			continue
		}
		bullets++
		if metricPattern.MatchString(strings.ToLower(line)) {
			quantified++
		}
	}
	if bullets == 0 {
		*recs = append(*recs, "Convert experience descriptions into bullet points with measurable results.")
		return 40
	}
	ratio := float64(quantified) / float64(bullets)
	if ratio < 0.3 {
		*recs = append(*recs, "Quantify more achievements: percentages, revenue, scale, or time saved.")
	}
	return math.Round(math.Min(1, ratio/0.6) * 100)
}

// scoreRepetition measures action-verb diversity across bullets.
func scoreRepetition(lines []string, recs *[]string) float64 {
	var verbs []string
	for _, line := range lines {
		if !bulletPrefix.MatchString(line) {
			continue
		}
		fields := strings.Fields(bulletPrefix.ReplaceAllString(line, ""))
		if len(fields) > 0 {
			verbs = append(verbs, strings.ToLower(fields[0]))
		}
	}
	if len(verbs) < 2 {
		return 80
	}
	unique := make(map[string]bool, len(verbs))
	for _, v := range verbs {
		unique[v] = true
	}
	diversity := float64(len(unique)) / float64(len(verbs))
	if diversity < 0.5 {
		*recs = append(*recs, "Vary your action verbs; repeated openers read as keyword stuffing.")
	}
	return math.Round(diversity * 100)
}

// scoreReadability is a light proxy for language quality: sentence length
// range and consistent capitalization.
func scoreReadability(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	score := 100.0
	if len(words) < 100 {
		score -= 20
	}
	if len(words) > 1200 {
		score -= 15
	}
	longRun := 0
	for _, w := range words {
		if len(w) > 25 {
			longRun++
		}
	}
	if longRun > 3 {
		score -= 15
	}
	if score < 0 {
		score = 0
	}
	return score
}

func scoreDesign(lines []string) float64 {
	nonEmpty := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonEmpty++
		}
	}
	if len(lines) == 0 || nonEmpty == 0 {
		return 0
	}
	whitespaceRatio := 1 - float64(nonEmpty)/float64(len(lines))
	if whitespaceRatio >= 0.1 && whitespaceRatio <= 0.45 {
		return 100
	}
	return 70
}

func analyzeKeywords(resumeLower, jobDescription, targetRole string) KeywordAnalysis {
	source := strings.ToLower(jobDescription + " " + targetRole)
	terms := significantTerms(source)
	if len(terms) == 0 {
		return KeywordAnalysis{KeywordDensity: "low"}
	}
	var found, missing []string
	for _, term := range terms {
		if strings.Contains(resumeLower, term) {
			found = append(found, term)
		} else {
			missing = append(missing, term)
		}
	}
	density := "low"
	ratio := float64(len(found)) / float64(len(terms))
	switch {
	case ratio >= 0.7:
		density = "high"
	case ratio >= 0.4:
		density = "medium"
	}
	return KeywordAnalysis{FoundKeywords: found, MissingKeywords: missing, KeywordDensity: density}
}

// significantTerms picks distinctive words from the job description: longer
// than four characters, deduplicated, capped at twenty.
func significantTerms(source string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, w := range strings.Fields(source) {
		w = strings.Trim(w, ".,;:()[]\"'")
		if len(w) <= 4 || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, w)
		if len(terms) == 20 {
			break
		}
	}
	return terms
}
