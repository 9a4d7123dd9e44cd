package services

import (
	"testing"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/stretchr/testify/assert"
)

func questionnaireFixture(taskType, budget, timeline, commitment string) *models.Questionnaire {
	return &models.Questionnaire{
		BasicInfo: &models.BasicInfo{
			StartupName:    "Acme",
			TaskType:       taskType,
			TimeCommitment: commitment,
		},
		Requirements: &models.Requirements{
			BudgetRange: budget,
			Timeline:    timeline,
		},
		Selection: &models.ServiceSelection{PackageType: "custom"},
	}
}

func TestCalculatePriorityScore(t *testing.T) {
	tests := []struct {
		name     string
		q        *models.Questionnaire
		expected int
	}{
		{
			name:     "urgent full-time fundraising",
			q:        questionnaireFixture("fundraising", "$50,000+", "1-2 weeks", "full_time"),
			expected: 35, // 10 + 10 + 10 + 5
		},
		{
			name:     "mid-range part-time",
			q:        questionnaireFixture("market_research", "$10,000-$25,000", "1-2 months", "part_time"),
			expected: 19, // 7 + 6 + 6
		},
		{
			name:     "lowest weights",
			q:        questionnaireFixture("other", "under_$5,000", "flexible", "part_time"),
			expected: 10, // 5 + 3 + 2
		},
		{
			name:     "unknown values default to 5",
			q:        questionnaireFixture("gardening", "a sack of potatoes", "whenever", ""),
			expected: 15,
		},
		{
			name:     "missing sections default",
			q:        &models.Questionnaire{},
			expected: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculatePriorityScore(tt.q))
		})
	}
}

func TestCalculatePriorityScoreRange(t *testing.T) {
	taskTypes := []string{"fundraising", "mvp_development", "marketing", "market_research", "design", "legal", "other", "???"}
	budgets := []string{"$50,000+", "$25,000-$50,000", "$10,000-$25,000", "$5,000-$10,000", "under_$5,000", "???"}
	timelines := []string{"1-2 weeks", "2-4 weeks", "1-2 months", "2-3 months", "flexible", "???"}
	commitments := []string{"full_time", "part_time"}

	for _, tt := range taskTypes {
		for _, b := range budgets {
			for _, tl := range timelines {
				for _, c := range commitments {
					score := CalculatePriorityScore(questionnaireFixture(tt, b, tl, c))
					assert.GreaterOrEqual(t, score, 0)
					assert.LessOrEqual(t, score, 100)
				}
			}
		}
	}
}
