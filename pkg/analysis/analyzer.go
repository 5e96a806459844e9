package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Component weights for the overall score.
const (
	weightContentQuality    = 0.35
	weightCommunication     = 0.25
	weightConfidence        = 0.20
	weightTechnicalAccuracy = 0.20
)

// Rating bands.
const (
	RatingExcellent        = "excellent"
	RatingGood             = "good"
	RatingAverage          = "average"
	RatingNeedsImprovement = "needs_improvement"
)

// ComponentScores are the four scored dimensions, each 0..10.
type ComponentScores struct {
	ContentQuality    float64
	Communication     float64
	Confidence        float64
	TechnicalAccuracy float64
}

// Result is the full scoring outcome for one answer.
type Result struct {
	OverallScore  float64
	Rating        string
	Scores        ComponentScores
	Features      Features
	Strengths     []string
	Improvements  []string
	InterviewType string
}

// Analyzer scores answers with the rule engine, optionally delegating the
// feedback prose to a Rater.
type Analyzer struct {
	rater Rater
}

// Rater rewrites the feedback lists for a scored answer. Implementations
// must not change the numeric scores.
type Rater interface {
	Rate(result *Result, questionText, answerText string) (strengths, improvements []string, err error)
}

// NewAnalyzer creates a rule-based analyzer. rater may be nil.
func NewAnalyzer(rater Rater) *Analyzer {
	return &Analyzer{rater: rater}
}

// ScoreAnswer analyzes one answer against its question. interviewType
// selects the technical-term vocabulary ("technical_software" or
// "behavioral"); unknown types score zero technical terms.
func (a *Analyzer) ScoreAnswer(answerText, questionText, interviewType string) *Result {
	f := ExtractFeatures(answerText, questionText, interviewType)
	scores := componentScores(f, interviewType)

	overall := scores.ContentQuality*weightContentQuality +
		scores.Communication*weightCommunication +
		scores.Confidence*weightConfidence +
		scores.TechnicalAccuracy*weightTechnicalAccuracy

	r := &Result{
		OverallScore:  math.Round(overall*100) / 100,
		Rating:        ScoreToRating(overall),
		Scores:        scores,
		Features:      f,
		InterviewType: interviewType,
	}
	r.Strengths, r.Improvements = feedbackSuggestions(r)

	if a.rater != nil {
		if strengths, improvements, err := a.rater.Rate(r, questionText, answerText); err == nil {
			r.Strengths, r.Improvements = strengths, improvements
		}
	}
	return r
}

// ScoreToRating maps an overall score to its rating band.
func ScoreToRating(score float64) string {
	switch {
	case score >= 8.5:
		return RatingExcellent
	case score >= 7.0:
		return RatingGood
	case score >= 5.0:
		return RatingAverage
	default:
		return RatingNeedsImprovement
	}
}

func componentScores(f Features, interviewType string) ComponentScores {
	var s ComponentScores

	// Content quality: answer length 40%, structure 30%, relevance 30%.
	var lengthScore float64
	switch {
	case f.WordCount >= 80:
		lengthScore = 10
	case f.WordCount >= 50:
		lengthScore = 8
	case f.WordCount >= 30:
		lengthScore = 6
	case f.WordCount >= 15:
		lengthScore = 4
	default:
		lengthScore = 2
	}
	var structureScore float64
	if f.HasOverallStructure {
		structureScore += 3
	}
	if f.HasExamples {
		structureScore += 3
	}
	if f.HasQuantifiableResults {
		structureScore += 2
	}
	if f.StructureScore > 1 {
		structureScore += 2
	}
	s.ContentQuality = clamp10(lengthScore*0.4 + structureScore*0.3 + f.RelevanceScore*10*0.3)

	// Communication: start at 10, penalize fillers, reward readable sentences
	// and vocabulary range.
	communication := 10.0
	switch {
	case f.FillerWordRatio > 0.10:
		communication -= 4
	case f.FillerWordRatio > 0.05:
		communication -= 2
	case f.FillerWordRatio > 0.02:
		communication -= 1
	}
	if f.AvgSentenceLength >= 15 && f.AvgSentenceLength <= 25 {
		communication++
	} else if f.AvgSentenceLength > 0 && (f.AvgSentenceLength < 8 || f.AvgSentenceLength > 35) {
		communication--
	}
	if f.UniqueWordRatio >= 0.7 {
		communication++
	} else if f.UniqueWordRatio > 0 && f.UniqueWordRatio < 0.3 {
		communication--
	}
	s.Communication = clamp10(communication)

	// Confidence: net count of assertive vs hedging markers.
	net := f.ConfidencePositive - f.ConfidenceNegative
	switch {
	case net >= 3:
		s.Confidence = 9
	case net >= 1:
		s.Confidence = 8
	case net >= 0:
		s.Confidence = 7
	case net >= -1:
		s.Confidence = 5
	default:
		s.Confidence = 3
	}

	// Technical accuracy: domain vocabulary for technical interviews,
	// structure and examples for behavioral ones.
	if strings.HasPrefix(interviewType, "technical") {
		switch {
		case f.TechnicalTermCount >= 5 && f.TechnicalTermRatio >= 0.05:
			s.TechnicalAccuracy = 9
		case f.TechnicalTermCount >= 3 && f.TechnicalTermRatio >= 0.03:
			s.TechnicalAccuracy = 7
		case f.TechnicalTermCount >= 1:
			s.TechnicalAccuracy = 5
		default:
			s.TechnicalAccuracy = 3
		}
	} else {
		switch {
		case f.HasExamples && f.HasOverallStructure:
			s.TechnicalAccuracy = 8
		case f.HasExamples || f.HasOverallStructure:
			s.TechnicalAccuracy = 6
		default:
			s.TechnicalAccuracy = 4
		}
	}
	return s
}

// feedbackSuggestions turns the component scores into concrete advice.
func feedbackSuggestions(r *Result) (strengths, improvements []string) {
	f := r.Features

	if r.Scores.ContentQuality < 6 {
		if f.WordCount < 30 {
			improvements = append(improvements,
				"Your response was quite brief. Try to provide more detailed explanations with specific examples and context.")
		}
		if !f.HasExamples {
			improvements = append(improvements,
				"Include specific examples to illustrate your points and make your answer more concrete and memorable.")
		}
	} else {
		strengths = append(strengths,
			"Good job providing detailed and well-structured content in your response.")
	}

	if r.Scores.Communication < 6 {
		if f.FillerWordRatio > 0.05 {
			improvements = append(improvements, fmt.Sprintf(
				"Try to reduce filler words (found %.1f%% of your speech). Practice pausing instead of using \"um\", \"like\", or \"you know\".",
				f.FillerWordRatio*100))
		}
	} else {
		strengths = append(strengths,
			"Clear and articulate communication with minimal filler words.")
	}

	if r.Scores.Confidence < 6 {
		improvements = append(improvements,
			"Use more confident language. Replace uncertain phrases like \"maybe\" and \"I think\" with assertive statements like \"I recommend\" or \"The best approach is\".")
	} else {
		strengths = append(strengths,
			"Confident and assertive delivery that demonstrates your expertise.")
	}

	if r.Scores.TechnicalAccuracy < 6 {
		if strings.HasPrefix(r.InterviewType, "technical") {
			improvements = append(improvements,
				"Include more relevant technical terminology and demonstrate deeper technical knowledge in your response.")
		} else {
			improvements = append(improvements,
				"Structure your behavioral responses using the STAR method (Situation, Task, Action, Result) for better clarity.")
		}
	}
	return strengths, improvements
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
