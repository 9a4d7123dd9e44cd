package services

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeTask(columnID string, position int) *models.Task {
	return &models.Task{
		ID:       primitive.NewObjectID(),
		ColumnID: columnID,
		Position: position,
	}
}

// requireDense asserts positions in every column form 0..n-1 with no
// duplicates or gaps.
func requireDense(t *testing.T, tasks []*models.Task) {
	t.Helper()
	byColumn := map[string][]int{}
	for _, task := range tasks {
		byColumn[task.ColumnID] = append(byColumn[task.ColumnID], task.Position)
	}
	for columnID, positions := range byColumn {
		sort.Ints(positions)
		for i, p := range positions {
			require.Equal(t, i, p, "column %s has non-dense positions %v", columnID, positions)
		}
	}
}

func TestNextPosition(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 1), makeTask("b", 0)}

	assert.Equal(t, 2, nextPosition(tasks, "a"))
	assert.Equal(t, 1, nextPosition(tasks, "b"))
	assert.Equal(t, 0, nextPosition(tasks, "empty"))
}

func TestApplyMoveWithinColumnDown(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 1), makeTask("a", 2), makeTask("a", 3)}
	moved := tasks[0]

	require.NoError(t, applyMove(tasks, moved, "a", 2))

	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, 0, tasks[1].Position)
	assert.Equal(t, 1, tasks[2].Position)
	assert.Equal(t, 3, tasks[3].Position)
	requireDense(t, tasks)
}

func TestApplyMoveWithinColumnUp(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 1), makeTask("a", 2), makeTask("a", 3)}
	moved := tasks[3]

	require.NoError(t, applyMove(tasks, moved, "a", 1))

	assert.Equal(t, 1, moved.Position)
	assert.Equal(t, 0, tasks[0].Position)
	assert.Equal(t, 2, tasks[1].Position)
	assert.Equal(t, 3, tasks[2].Position)
	requireDense(t, tasks)
}

func TestApplyMoveNoOpLeavesPositionsUnchanged(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 1), makeTask("a", 2)}
	moved := tasks[1]

	require.NoError(t, applyMove(tasks, moved, "a", 1))

	assert.Equal(t, 0, tasks[0].Position)
	assert.Equal(t, 1, tasks[1].Position)
	assert.Equal(t, 2, tasks[2].Position)
}

func TestApplyMoveOnlyTaskToPositionZero(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0)}

	require.NoError(t, applyMove(tasks, tasks[0], "a", 0))
	assert.Equal(t, 0, tasks[0].Position)
}

func TestApplyMoveCrossColumn(t *testing.T) {
	// Board from the workflow: 3 tasks in To Do, Done empty. Moving the
	// task at position 2 to Done position 0 leaves To Do dense at 0,1.
	todo0 := makeTask("todo", 0)
	todo1 := makeTask("todo", 1)
	todo2 := makeTask("todo", 2)
	tasks := []*models.Task{todo0, todo1, todo2}

	require.NoError(t, applyMove(tasks, todo2, "done", 0))

	assert.Equal(t, "done", todo2.ColumnID)
	assert.Equal(t, 0, todo2.Position)
	assert.Equal(t, 0, todo0.Position)
	assert.Equal(t, 1, todo1.Position)
	requireDense(t, tasks)
}

func TestApplyMoveCrossColumnOpensSlot(t *testing.T) {
	a0 := makeTask("a", 0)
	a1 := makeTask("a", 1)
	b0 := makeTask("b", 0)
	b1 := makeTask("b", 1)
	tasks := []*models.Task{a0, a1, b0, b1}

	require.NoError(t, applyMove(tasks, a0, "b", 1))

	assert.Equal(t, "b", a0.ColumnID)
	assert.Equal(t, 1, a0.Position)
	assert.Equal(t, 0, a1.Position)
	assert.Equal(t, 0, b0.Position)
	assert.Equal(t, 2, b1.Position)
	requireDense(t, tasks)
}

func TestApplyMoveOutOfRange(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 1), makeTask("b", 0)}

	err := applyMove(tasks, tasks[0], "a", 2)
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidation, e.Code)

	// Cross-column tail position is valid, one past it is not.
	require.NoError(t, applyMove(tasks, tasks[0], "b", 1))
	err = applyMove(tasks, tasks[1], "b", 4)
	require.Error(t, err)
}

func TestApplyMoveNegativePosition(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 1)}

	err := applyMove(tasks, tasks[0], "a", -1)
	require.Error(t, err)
}

func TestCloseGap(t *testing.T) {
	tasks := []*models.Task{makeTask("a", 0), makeTask("a", 2), makeTask("a", 3), makeTask("b", 0)}

	// Task at position 1 was archived.
	closeGap(tasks, "a", 1)

	assert.Equal(t, 0, tasks[0].Position)
	assert.Equal(t, 1, tasks[1].Position)
	assert.Equal(t, 2, tasks[2].Position)
	assert.Equal(t, 0, tasks[3].Position) // other columns untouched
	requireDense(t, tasks)
}

// TestOrderingInvariantUnderRandomSequence drives a random mix of creates,
// moves and archives and checks density after every step.
func TestOrderingInvariantUnderRandomSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	columns := []string{"todo", "doing", "review", "done"}
	var tasks []*models.Task

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(tasks) == 0:
			col := columns[rng.Intn(len(columns))]
			tasks = append(tasks, makeTask(col, nextPosition(tasks, col)))
		case op == 1:
			moved := tasks[rng.Intn(len(tasks))]
			col := columns[rng.Intn(len(columns))]
			limit := countInColumn(tasks, col)
			if col == moved.ColumnID {
				limit--
			}
			if limit < 0 {
				limit = 0
			}
			pos := 0
			if limit > 0 {
				pos = rng.Intn(limit + 1)
			}
			require.NoError(t, applyMove(tasks, moved, col, pos), fmt.Sprintf("step %d", step))
		default:
			i := rng.Intn(len(tasks))
			archived := tasks[i]
			tasks = append(tasks[:i], tasks[i+1:]...)
			closeGap(tasks, archived.ColumnID, archived.Position)
		}
		requireDense(t, tasks)
	}
}
