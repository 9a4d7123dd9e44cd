package services

import (
	"testing"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/stretchr/testify/assert"
)

func boardFixture() *models.Board {
	return &models.Board{
		Columns: []models.Column{
			{ID: "todo", Name: "To Do", Position: 0, Role: models.ColumnTodo},
			{ID: "doing", Name: "In Progress", Position: 1, Role: models.ColumnDoing},
			{ID: "done", Name: "Done", Position: 2, Role: models.ColumnDone, IsCompleted: true},
		},
	}
}

func TestComputeBoardProgress(t *testing.T) {
	board := boardFixture()
	tasks := []*models.Task{
		makeTask("todo", 0),
		makeTask("doing", 0),
		makeTask("done", 0),
		makeTask("done", 1),
	}

	assert.Equal(t, 50, ComputeBoardProgress(board, tasks))
}

func TestComputeBoardProgressRounds(t *testing.T) {
	board := boardFixture()
	tasks := []*models.Task{
		makeTask("todo", 0),
		makeTask("todo", 1),
		makeTask("done", 0),
	}

	// 1/3 rounds to 33.
	assert.Equal(t, 33, ComputeBoardProgress(board, tasks))
}

func TestComputeBoardProgressEmptyBoardReadsFull(t *testing.T) {
	assert.Equal(t, 100, ComputeBoardProgress(boardFixture(), nil))
}

func TestComputeBoardProgressIgnoresArchivedTasks(t *testing.T) {
	board := boardFixture()
	archived := makeTask("todo", 0)
	archived.Archived = true
	tasks := []*models.Task{archived, makeTask("done", 0)}

	assert.Equal(t, 100, ComputeBoardProgress(board, tasks))
}

func TestComputeBoardProgressIgnoresArchivedColumns(t *testing.T) {
	board := boardFixture()
	board.Columns = append(board.Columns, models.Column{
		ID: "old-done", Name: "Done (old)", Position: 3,
		Role: models.ColumnDone, IsCompleted: true, Archived: true,
	})
	tasks := []*models.Task{makeTask("todo", 0), makeTask("old-done", 0)}

	// The task parked in the archived done column neither counts as done nor
	// inflates the total.
	assert.Equal(t, 0, ComputeBoardProgress(board, tasks))

	tasks = append(tasks, makeTask("done", 0))
	assert.Equal(t, 50, ComputeBoardProgress(board, tasks))
}

func TestMilestoneProgress(t *testing.T) {
	assert.Equal(t, 75, MilestoneProgress(3, 4))
	assert.Equal(t, 100, MilestoneProgress(4, 4))
	assert.Equal(t, 0, MilestoneProgress(0, 4))
	assert.Equal(t, 0, MilestoneProgress(0, 0)) // no milestones defined
	assert.Equal(t, 67, MilestoneProgress(2, 3))
}
