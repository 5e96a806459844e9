package analysis

import "math"

// OverallFeedback aggregates scoring across a whole session.
type OverallFeedback struct {
	OverallScore  float64
	OverallRating string
	Strengths     []string
	Improvements  []string

	AverageScores      ComponentScores
	TotalResponses     int
	TotalWords         int
	TotalFillerWords   int
	TotalTechTerms     int
	AverageWordLength  float64
	AverageWordCount   float64
	AverageFillerWords float64
	FillerWordRatio    float64
}

// AggregateSession combines per-answer results into session feedback. With no
// scored answers it returns the insufficient-data report.
func AggregateSession(results []*Result) *OverallFeedback {
	if len(results) == 0 {
		return &OverallFeedback{
			OverallRating: "insufficient_data",
			Improvements:  []string{"Complete more questions to get detailed feedback"},
		}
	}

	n := float64(len(results))
	out := &OverallFeedback{TotalResponses: len(results)}
	var sumWordLen float64
	for _, r := range results {
		out.AverageScores.ContentQuality += r.Scores.ContentQuality
		out.AverageScores.Communication += r.Scores.Communication
		out.AverageScores.Confidence += r.Scores.Confidence
		out.AverageScores.TechnicalAccuracy += r.Scores.TechnicalAccuracy
		out.TotalWords += r.Features.WordCount
		out.TotalFillerWords += r.Features.FillerWordCount
		out.TotalTechTerms += r.Features.TechnicalTermCount
		sumWordLen += r.Features.AvgWordLength
	}
	out.AverageScores.ContentQuality = round2(out.AverageScores.ContentQuality / n)
	out.AverageScores.Communication = round2(out.AverageScores.Communication / n)
	out.AverageScores.Confidence = round2(out.AverageScores.Confidence / n)
	out.AverageScores.TechnicalAccuracy = round2(out.AverageScores.TechnicalAccuracy / n)
	out.AverageWordLength = round2(sumWordLen / n)
	out.AverageWordCount = round2(float64(out.TotalWords) / n)
	out.AverageFillerWords = round2(float64(out.TotalFillerWords) / n)
	if out.TotalWords > 0 {
		out.FillerWordRatio = math.Round(float64(out.TotalFillerWords)/float64(out.TotalWords)*10000) / 10000
	}

	avg := out.AverageScores
	out.OverallScore = round2((avg.ContentQuality + avg.Communication + avg.Confidence + avg.TechnicalAccuracy) / 4)
	out.OverallRating = ScoreToRating(out.OverallScore)

	if avg.Communication >= 8.0 {
		out.Strengths = append(out.Strengths, "Excellent communication skills with clear articulation")
	}
	if avg.TechnicalAccuracy >= 8.0 {
		out.Strengths = append(out.Strengths, "Strong technical knowledge and accurate explanations")
	}
	if avg.Confidence >= 8.0 {
		out.Strengths = append(out.Strengths, "Confident and assertive delivery throughout")
	}
	if out.AverageFillerWords <= 2 {
		out.Strengths = append(out.Strengths, "Professional speech with minimal filler words")
	}
	if avg.ContentQuality >= 8.0 {
		out.Strengths = append(out.Strengths, "Well-structured responses with good depth and examples")
	}

	if avg.Communication < 6.0 {
		out.Improvements = append(out.Improvements, "Work on clarity and structure of responses")
	}
	if avg.TechnicalAccuracy < 6.0 {
		out.Improvements = append(out.Improvements, "Deepen technical knowledge in key areas")
	}
	if avg.Confidence < 6.0 {
		out.Improvements = append(out.Improvements, "Practice to build confidence in your delivery")
	}
	if out.AverageFillerWords > 5 {
		out.Improvements = append(out.Improvements, "Reduce filler words through practice and pausing")
	}
	if avg.ContentQuality < 6.0 {
		out.Improvements = append(out.Improvements, "Provide more detailed answers with specific examples")
	}
	if len(out.Improvements) == 0 {
		out.Improvements = append(out.Improvements, "Continue practicing to maintain your strong performance")
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
