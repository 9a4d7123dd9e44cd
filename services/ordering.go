package services

import (
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
)

// The functions in this file maintain the dense-ordering invariant: within
// every non-archived column, task positions form a contiguous 0..n-1
// sequence with no gaps or duplicates. They mutate the in-memory task set
// only; the caller persists all changed tasks as one unit under the board
// lock.

// countInColumn returns the number of tasks currently in a column.
func countInColumn(tasks []*models.Task, columnID string) int {
	n := 0
	for _, t := range tasks {
		if t.ColumnID == columnID {
			n++
		}
	}
	return n
}

// nextPosition returns the tail position for a task entering a column.
func nextPosition(tasks []*models.Task, columnID string) int {
	max := -1
	for _, t := range tasks {
		if t.ColumnID == columnID && t.Position > max {
			max = t.Position
		}
	}
	return max + 1
}

// applyMove repositions moved inside the task set and renumbers every
// affected sibling. moved must be an element of tasks.
func applyMove(tasks []*models.Task, moved *models.Task, newColumnID string, newPosition int) error {
	oldColumnID := moved.ColumnID
	oldPosition := moved.Position

	if newPosition < 0 {
		return models.ValidationError("position must not be negative")
	}

	if newColumnID == oldColumnID {
		if newPosition > countInColumn(tasks, oldColumnID)-1 {
			return models.ValidationError("position %d is out of range for the column", newPosition)
		}
		if newPosition == oldPosition {
			return nil
		}
		for _, t := range tasks {
			if t == moved || t.ColumnID != oldColumnID {
				continue
			}
			if newPosition > oldPosition && t.Position > oldPosition && t.Position <= newPosition {
				t.Position--
			} else if newPosition < oldPosition && t.Position >= newPosition && t.Position < oldPosition {
				t.Position++
			}
		}
		moved.Position = newPosition
		return nil
	}

	if newPosition > countInColumn(tasks, newColumnID) {
		return models.ValidationError("position %d is out of range for the target column", newPosition)
	}
	for _, t := range tasks {
		if t == moved {
			continue
		}
		if t.ColumnID == oldColumnID && t.Position > oldPosition {
			t.Position--
		} else if t.ColumnID == newColumnID && t.Position >= newPosition {
			t.Position++
		}
	}
	moved.ColumnID = newColumnID
	moved.Position = newPosition
	return nil
}

// closeGap renumbers the siblings of a task leaving its column (archive).
func closeGap(tasks []*models.Task, columnID string, removedPosition int) {
	for _, t := range tasks {
		if t.ColumnID == columnID && t.Position > removedPosition {
			t.Position--
		}
	}
}
