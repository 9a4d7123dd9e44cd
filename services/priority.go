package services

import "github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

// Weight tables for the questionnaire priority heuristic. Unknown values
// fall back to defaultWeight.
const defaultWeight = 5

var taskTypeWeights = map[string]int{
	"fundraising":     10,
	"mvp_development": 9,
	"marketing":       8,
	"market_research": 7,
	"design":          6,
	"legal":           6,
	"other":           5,
}

var budgetWeights = map[string]int{
	"$50,000+":        10,
	"$25,000-$50,000": 8,
	"$10,000-$25,000": 6,
	"$5,000-$10,000":  4,
	"under_$5,000":    3,
}

var timelineWeights = map[string]int{
	"1-2 weeks":  10,
	"2-4 weeks":  8,
	"1-2 months": 6,
	"2-3 months": 4,
	"flexible":   2,
}

const fullTimeBonus = 5

func lookupWeight(table map[string]int, key string) int {
	if w, ok := table[key]; ok {
		return w
	}
	return defaultWeight
}

// CalculatePriorityScore ranks an approved questionnaire on a 0-100 scale
// from its task type, budget range, timeline urgency and time commitment.
func CalculatePriorityScore(q *models.Questionnaire) int {
	score := 0
	if q.BasicInfo != nil {
		score += lookupWeight(taskTypeWeights, q.BasicInfo.TaskType)
		if q.BasicInfo.TimeCommitment == "full_time" {
			score += fullTimeBonus
		}
	} else {
		score += defaultWeight
	}
	if q.Requirements != nil {
		score += lookupWeight(budgetWeights, q.Requirements.BudgetRange)
		score += lookupWeight(timelineWeights, q.Requirements.Timeline)
	} else {
		score += 2 * defaultWeight
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
