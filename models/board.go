package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ColumnRole is the explicit role a column plays on the board. Task status
// is derived from it, never from the display name.
type ColumnRole string

const (
	ColumnTodo   ColumnRole = "todo"
	ColumnDoing  ColumnRole = "doing"
	ColumnReview ColumnRole = "review"
	ColumnDone   ColumnRole = "done"
)

type Column struct {
	ID          string     `bson:"id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Position    int        `bson:"position" json:"position"`
	Role        ColumnRole `bson:"role" json:"role"`
	IsCompleted bool       `bson:"isCompleted" json:"isCompleted"`
	WIPLimit    int        `bson:"wipLimit,omitempty" json:"wipLimit,omitempty"`
	Archived    bool       `bson:"archived" json:"archived"`
}

type BoardMember struct {
	UserID      string    `bson:"userId" json:"userId"`
	Role        ActorRole `bson:"role" json:"role"`
	Permissions []string  `bson:"permissions,omitempty" json:"permissions,omitempty"`
}

type Board struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SprintID  *primitive.ObjectID `bson:"sprintId,omitempty" json:"sprintId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	OwnerID   string              `bson:"ownerId" json:"ownerId"`
	CreatedBy string              `bson:"createdBy" json:"createdBy"`
	Columns   []Column            `bson:"columns" json:"columns"`
	Members   []BoardMember       `bson:"members,omitempty" json:"members,omitempty"`
	Archived  bool                `bson:"archived" json:"archived"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// RoleForColumnName infers a role for columns created without one.
func RoleForColumnName(name string) ColumnRole {
	switch {
	case strings.Contains(strings.ToLower(name), "done"), strings.Contains(strings.ToLower(name), "complete"):
		return ColumnDone
	case strings.Contains(strings.ToLower(name), "review"):
		return ColumnReview
	case strings.Contains(strings.ToLower(name), "progress"), strings.Contains(strings.ToLower(name), "doing"):
		return ColumnDoing
	default:
		return ColumnTodo
	}
}

// TaskStatusForRole maps a column role to the denormalized task status.
func TaskStatusForRole(role ColumnRole) TaskStatus {
	switch role {
	case ColumnDoing:
		return TaskInProgress
	case ColumnReview:
		return TaskReview
	case ColumnDone:
		return TaskDone
	default:
		return TaskTodo
	}
}

// DefaultColumns returns the four columns a sprint board starts with.
func DefaultColumns() []Column {
	return []Column{
		{ID: uuid.New().String(), Name: "To Do", Position: 0, Role: ColumnTodo},
		{ID: uuid.New().String(), Name: "In Progress", Position: 1, Role: ColumnDoing},
		{ID: uuid.New().String(), Name: "Review", Position: 2, Role: ColumnReview},
		{ID: uuid.New().String(), Name: "Done", Position: 3, Role: ColumnDone, IsCompleted: true},
	}
}

// FindColumn returns the column with the given id, or nil.
func (b *Board) FindColumn(columnID string) *Column {
	for i := range b.Columns {
		if b.Columns[i].ID == columnID {
			return &b.Columns[i]
		}
	}
	return nil
}
