package expression

// DefaultMoodScore is returned for expressions without a mapping.
const DefaultMoodScore = 5

// Mood score bounds.
const (
	MinMoodScore = 1
	MaxMoodScore = 10
)

var moodScores = map[Expression]int{
	VeryHappy:   10,
	Happy:       9,
	Content:     7,
	SlightSmile: 6,
	Neutral:     5,
	Tired:       3,
	VeryTired:   2,
	Sad:         1,
}

// MoodScoreFor maps an expression to a 1-10 mood score.
// Unknown expressions map to DefaultMoodScore.
func MoodScoreFor(e Expression) int {
	if score, ok := moodScores[e]; ok {
		return score
	}
	return DefaultMoodScore
}

// MoodLabel names a mood score for display.
func MoodLabel(score int) string {
	switch {
	case score <= 2:
		return "Very Sad"
	case score <= 4:
		return "Sad"
	case score <= 6:
		return "Neutral"
	case score <= 8:
		return "Happy"
	default:
		return "Very Happy"
	}
}

// ValidMoodScore reports whether score is within 1-10.
func ValidMoodScore(score int) bool {
	return score >= MinMoodScore && score <= MaxMoodScore
}
