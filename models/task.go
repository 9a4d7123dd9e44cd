package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type Comment struct {
	ID        string    `bson:"id" json:"id"`
	AuthorID  string    `bson:"authorId" json:"authorId"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Attachment struct {
	ID         string    `bson:"id" json:"id"`
	FileName   string    `bson:"fileName" json:"fileName"`
	URL        string    `bson:"url" json:"url"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// ActivityEntry is one record of a task's append-only activity log.
type ActivityEntry struct {
	ID           string    `bson:"id" json:"id"`
	Type         string    `bson:"type" json:"type"`
	FromColumnID string    `bson:"fromColumnId,omitempty" json:"fromColumnId,omitempty"`
	ToColumnID   string    `bson:"toColumnId,omitempty" json:"toColumnId,omitempty"`
	FromPosition int       `bson:"fromPosition" json:"fromPosition"`
	ToPosition   int       `bson:"toPosition" json:"toPosition"`
	ActorID      string    `bson:"actorId" json:"actorId"`
	ActorRole    ActorRole `bson:"actorRole" json:"actorRole"`
	Note         string    `bson:"note,omitempty" json:"note,omitempty"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BoardID     primitive.ObjectID `bson:"boardId" json:"boardId"`
	ColumnID    string             `bson:"columnId" json:"columnId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      TaskStatus         `bson:"status" json:"status"`
	Priority    TaskPriority       `bson:"priority,omitempty" json:"priority,omitempty"`
	AssigneeID  string             `bson:"assigneeId,omitempty" json:"assigneeId,omitempty"`
	DueDate     *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Position    int                `bson:"position" json:"position"`
	Watchers    []string           `bson:"watchers,omitempty" json:"watchers,omitempty"`
	Comments    []Comment          `bson:"comments,omitempty" json:"comments,omitempty"`
	Attachments []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ActivityLog []ActivityEntry    `bson:"activityLog" json:"activityLog"`
	Archived    bool               `bson:"archived" json:"archived"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
