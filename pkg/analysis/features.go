// Package analysis scores interview answers. The scorer is rule-based:
// lexical features extracted from the answer text feed four component
// scores which combine into an overall score and rating. An optional
// LLM rater can replace the canned feedback phrasing while the numeric
// scoring stays deterministic.
package analysis

import (
	"strings"
	"unicode"
)

// Features are the lexical measurements taken from one answer.
type Features struct {
	WordCount         int
	SentenceCount     int
	CharacterCount    int
	AvgWordLength     float64
	AvgSentenceLength float64
	UniqueWordRatio   float64

	FillerWordCount int
	FillerWordRatio float64

	TechnicalTermCount int
	TechnicalTermRatio float64

	ConfidencePositive int
	ConfidenceNegative int

	StructureIndicators    int
	StructureRatio         float64
	HasIntroduction        bool
	HasConclusion          bool
	HasExamples            bool
	HasOverallStructure    bool
	HasQuantifiableResults bool
	StructureScore         float64

	RelevanceScore      float64
	KeywordOverlapRatio float64
}

var fillerWords = []string{
	"um", "uh", "like", "you know", "so", "well", "actually", "basically",
	"literally", "totally", "obviously", "i mean", "sort of", "kind of",
}

var technicalTerms = map[string][]string{
	"technical_software": {
		"algorithm", "data structure", "api", "database", "framework", "library",
		"object-oriented", "functional", "recursion", "iteration", "complexity",
		"optimization", "debugging", "testing", "deployment", "version control",
		"git", "sql", "nosql", "rest", "json", "xml", "http", "https",
		"javascript", "python", "java", "c++", "react", "node", "docker",
		"kubernetes", "aws", "cloud", "microservices", "authentication",
		"authorization", "encryption", "security", "performance", "scalability",
	},
	"behavioral": {
		"leadership", "teamwork", "communication", "collaboration", "problem-solving",
		"decision-making", "conflict resolution", "time management", "priority",
		"deadline", "responsibility", "accountability", "initiative", "motivation",
		"adaptability", "flexibility", "learning", "growth", "feedback",
		"improvement", "challenge", "success", "failure", "lesson", "experience",
	},
}

var confidencePositive = []string{
	"definitely", "certainly", "absolutely", "confident", "sure", "positive",
	"know", "believe", "understand", "clear", "obvious", "simple", "straightforward",
}

var confidenceNegative = []string{
	"maybe", "perhaps", "possibly", "might", "could", "unsure", "uncertain",
	"confused", "difficult", "complicated", "not sure", "i think", "i guess",
	"probably", "hopefully", "i believe",
}

var structureWords = []string{
	"first", "second", "third", "finally", "next", "then", "after", "before",
	"initially", "subsequently", "furthermore", "moreover", "however", "therefore",
	"in conclusion", "to summarize", "overall", "specifically", "for example",
}

var introWords = []string{"first", "initially", "to begin"}
var conclusionWords = []string{"finally", "in conclusion", "overall"}
var exampleWords = []string{"for example", "such as", "like when"}

// stopWords is a compact English stop list used for keyword overlap.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"if": true, "of": true, "at": true, "by": true, "for": true, "with": true,
	"about": true, "to": true, "from": true, "in": true, "on": true, "into": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"am": true, "do": true, "does": true, "did": true, "have": true, "has": true,
	"had": true, "it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "i": true, "you": true, "he": true, "she": true, "we": true,
	"they": true, "me": true, "my": true, "your": true, "our": true,
	"what": true, "which": true, "who": true, "how": true, "when": true,
	"where": true, "why": true, "can": true, "will": true, "would": true,
	"should": true, "not": true, "no": true, "as": true, "so": true, "than": true,
	"too": true, "very": true, "just": true, "there": true, "here": true,
}

// ExtractFeatures measures the answer against its question. An empty or
// whitespace-only answer yields zero features.
func ExtractFeatures(answerText, questionText, interviewType string) Features {
	if strings.TrimSpace(answerText) == "" {
		return Features{}
	}

	tokens := tokenize(answerText)
	wordCount := len(tokens)
	sentenceCount := countSentences(answerText)

	var f Features
	f.WordCount = wordCount
	f.SentenceCount = sentenceCount
	f.CharacterCount = len(answerText)

	if wordCount > 0 {
		totalLen := 0
		unique := make(map[string]bool, wordCount)
		for _, w := range tokens {
			totalLen += len(w)
			unique[w] = true
		}
		f.AvgWordLength = float64(totalLen) / float64(wordCount)
		f.UniqueWordRatio = float64(len(unique)) / float64(wordCount)
	}
	if sentenceCount > 0 {
		f.AvgSentenceLength = float64(wordCount) / float64(sentenceCount)
	}

	f.FillerWordCount = countTerms(tokens, fillerWords)
	if wordCount > 0 {
		f.FillerWordRatio = float64(f.FillerWordCount) / float64(wordCount)
	}

	f.TechnicalTermCount = countTerms(tokens, technicalTerms[interviewType])
	if wordCount > 0 {
		f.TechnicalTermRatio = float64(f.TechnicalTermCount) / float64(wordCount)
	}

	f.ConfidencePositive = countTerms(tokens, confidencePositive)
	f.ConfidenceNegative = countTerms(tokens, confidenceNegative)

	f.StructureIndicators = countTerms(tokens, structureWords)
	if sentenceCount > 0 {
		f.StructureRatio = float64(f.StructureIndicators) / float64(sentenceCount)
	}
	f.HasIntroduction = countTerms(tokens, introWords) > 0
	f.HasConclusion = countTerms(tokens, conclusionWords) > 0
	f.HasExamples = countTerms(tokens, exampleWords) > 0
	f.HasOverallStructure = f.HasIntroduction && f.HasConclusion
	f.HasQuantifiableResults = hasQuantifiableResults(answerText)
	f.StructureScore = (f.StructureRatio + boolToFloat(f.HasIntroduction) +
		boolToFloat(f.HasConclusion) + boolToFloat(f.HasExamples)) / 4

	f.RelevanceScore, f.KeywordOverlapRatio = relevance(tokens, questionText)
	return f
}

// tokenize lowercases and splits on non-word runes, keeping hyphens and
// pluses inside words so terms like "object-oriented" and "c++" survive.
func tokenize(text string) []string {
	isWordRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '+' || r == '\''
	}
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	out := fields[:0]
	for _, w := range fields {
		w = strings.Trim(w, "-+'")
		if w == "" {
			continue
		}
		hasLetter := false
		for _, r := range w {
			if unicode.IsLetter(r) {
				hasLetter = true
				break
			}
		}
		if hasLetter {
			out = append(out, w)
		}
	}
	return out
}

func countSentences(text string) int {
	n := 0
	prevTerminator := false
	for _, r := range text {
		terminator := r == '.' || r == '!' || r == '?'
		if terminator && !prevTerminator {
			n++
		}
		prevTerminator = terminator
	}
	if n == 0 && strings.TrimSpace(text) != "" {
		n = 1
	}
	return n
}

// countTerms counts occurrences of each term in the token stream. Multi-word
// terms match consecutive tokens.
func countTerms(tokens []string, terms []string) int {
	total := 0
	for _, term := range terms {
		parts := strings.Fields(term)
		if len(parts) == 0 {
			continue
		}
		for i := 0; i+len(parts) <= len(tokens); i++ {
			match := true
			for j, p := range parts {
				if tokens[i+j] != p {
					match = false
					break
				}
			}
			if match {
				total++
			}
		}
	}
	return total
}

func hasQuantifiableResults(text string) bool {
	if strings.ContainsRune(text, '%') {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range []string{"percent", " times ", "x faster", "reduced", "increased", "improved by"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, r := range text {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// relevance scores keyword overlap between answer and question, ignoring
// stop words. The final score is the overlap ratio doubled and capped at 1.
func relevance(answerTokens []string, questionText string) (score, overlap float64) {
	if strings.TrimSpace(questionText) == "" {
		return 0.5, 0
	}
	answerSet := make(map[string]bool)
	for _, w := range answerTokens {
		if !stopWords[w] {
			answerSet[w] = true
		}
	}
	questionSet := make(map[string]bool)
	for _, w := range tokenize(questionText) {
		if !stopWords[w] {
			questionSet[w] = true
		}
	}
	if len(questionSet) == 0 {
		return 0.5, 0
	}
	shared := 0
	for w := range questionSet {
		if answerSet[w] {
			shared++
		}
	}
	overlap = float64(shared) / float64(len(questionSet))
	score = overlap * 2
	if score > 1 {
		score = 1
	}
	return score, overlap
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
