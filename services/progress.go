package services

import (
	"math"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
)

// ComputeBoardProgress derives the board completion percentage from the
// non-archived task set. Tasks in archived columns are excluded entirely,
// matching the rendered board. A task counts as done when its column carries
// the done role (or the completed flag). An empty board reads as 100%.
func ComputeBoardProgress(board *models.Board, tasks []*models.Task) int {
	done := 0
	total := 0
	for _, t := range tasks {
		if t.Archived {
			continue
		}
		col := board.FindColumn(t.ColumnID)
		if col != nil && col.Archived {
			continue
		}
		total++
		if col != nil && (col.Role == models.ColumnDone || col.IsCompleted) {
			done++
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
