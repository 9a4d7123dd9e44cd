package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleForColumnName(t *testing.T) {
	assert.Equal(t, ColumnDone, RoleForColumnName("Done"))
	assert.Equal(t, ColumnDone, RoleForColumnName("Completed"))
	assert.Equal(t, ColumnReview, RoleForColumnName("Code Review"))
	assert.Equal(t, ColumnDoing, RoleForColumnName("In Progress"))
	assert.Equal(t, ColumnDoing, RoleForColumnName("doing"))
	assert.Equal(t, ColumnTodo, RoleForColumnName("Backlog"))
}

func TestTaskStatusForRole(t *testing.T) {
	assert.Equal(t, TaskTodo, TaskStatusForRole(ColumnTodo))
	assert.Equal(t, TaskInProgress, TaskStatusForRole(ColumnDoing))
	assert.Equal(t, TaskReview, TaskStatusForRole(ColumnReview))
	assert.Equal(t, TaskDone, TaskStatusForRole(ColumnDone))
}

func TestDefaultColumnsAreDense(t *testing.T) {
	columns := DefaultColumns()
	require.Len(t, columns, 4)
	for i, col := range columns {
		assert.Equal(t, i, col.Position)
		assert.NotEmpty(t, col.ID)
	}
	assert.True(t, columns[3].IsCompleted)
	assert.Equal(t, ColumnDone, columns[3].Role)
}

func TestFindColumn(t *testing.T) {
	board := &Board{Columns: DefaultColumns()}

	col := board.FindColumn(board.Columns[1].ID)
	require.NotNil(t, col)
	assert.Equal(t, "In Progress", col.Name)

	assert.Nil(t, board.FindColumn("missing"))
}
