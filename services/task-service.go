package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/logging"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/repositories"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskService struct {
	TasksCollection   *mongo.Collection
	BoardsCollection  *mongo.Collection
	SprintsCollection *mongo.Collection
	Events            *repositories.EventRepo
	Mailer            *MailerClient

	// boardLocks serializes position maintenance per board. Two concurrent
	// moves on one board must not interleave their renumbering steps.
	mu         sync.Mutex
	boardLocks map[string]*sync.Mutex
}

func NewTaskService(tasksCollection, boardsCollection, sprintsCollection *mongo.Collection, events *repositories.EventRepo, mailer *MailerClient) *TaskService {
	return &TaskService{
		TasksCollection:   tasksCollection,
		BoardsCollection:  boardsCollection,
		SprintsCollection: sprintsCollection,
		Events:            events,
		Mailer:            mailer,
		boardLocks:        make(map[string]*sync.Mutex),
	}
}

func (s *TaskService) lockBoard(boardID string) func() {
	s.mu.Lock()
	lock, ok := s.boardLocks[boardID]
	if !ok {
		lock = &sync.Mutex{}
		s.boardLocks[boardID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *TaskService) getBoard(ctx context.Context, boardID primitive.ObjectID) (*models.Board, error) {
	var board models.Board
	err := s.BoardsCollection.FindOne(ctx, bson.M{"_id": boardID}).Decode(&board)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("board %s not found", boardID.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch board: %v", err)
	}
	return &board, nil
}

// activeTasks loads all non-archived tasks of a board.
func (s *TaskService) activeTasks(ctx context.Context, boardID primitive.ObjectID) ([]*models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"boardId": boardID, "archived": false})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		tasks = append(tasks, &task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return tasks, nil
}

// publishEvent emits one fan-out event on the board topic. Failures are
// logged and swallowed; they never roll back the task mutation.
func (s *TaskService) publishEvent(boardID, eventType string, payload map[string]interface{}) {
	if s.Events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logging.Logger.Errorf("Event ID: EVENT_MARSHAL_FAILED, Description: Failed to marshal %s event: %v", eventType, err)
		return
	}
	_ = s.Events.Publish(&models.Event{
		Topic:   boardID,
		Type:    eventType,
		Payload: string(body),
	})
}

// recomputeSprintProgress re-derives the linked sprint's percentage after a
// task mutation. Invoked with the board lock held.
func (s *TaskService) recomputeSprintProgress(ctx context.Context, board *models.Board) error {
	if board.SprintID == nil {
		return nil
	}
	tasks, err := s.activeTasks(ctx, board.ID)
	if err != nil {
		return err
	}
	percentage := ComputeBoardProgress(board, tasks)

	update := bson.M{"$set": bson.M{"progress.percentage": percentage, "updatedAt": time.Now()}}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": *board.SprintID}, update); err != nil {
		return fmt.Errorf("failed to update sprint progress: %v", err)
	}
	return nil
}

// CreateTask places a new task at the tail of the target column. Status is
// derived from the column role at creation time.
func (s *TaskService) CreateTask(ctx context.Context, boardID string, actor models.Actor, columnID, title, description string, priority models.TaskPriority, assigneeID string, dueDate *time.Time, tags []string) (*models.Task, error) {
	if title == "" {
		return nil, models.ValidationError("task title is required")
	}
	boardObjectID, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return nil, models.ValidationError("invalid board ID format")
	}

	unlock := s.lockBoard(boardID)
	defer unlock()

	board, err := s.getBoard(ctx, boardObjectID)
	if err != nil {
		return nil, err
	}
	column := board.FindColumn(columnID)
	if column == nil || column.Archived {
		return nil, models.NotFound("column %s not found on board %s", columnID, boardID)
	}

	tasks, err := s.activeTasks(ctx, boardObjectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	position := nextPosition(tasks, columnID)
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		BoardID:     boardObjectID,
		ColumnID:    columnID,
		Title:       title,
		Description: description,
		Status:      models.TaskStatusForRole(column.Role),
		Priority:    priority,
		AssigneeID:  assigneeID,
		DueDate:     dueDate,
		Tags:        tags,
		Position:    position,
		ActivityLog: []models.ActivityEntry{{
			ID:         uuid.New().String(),
			Type:       "created",
			ToColumnID: columnID,
			ToPosition: position,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Timestamp:  now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.TasksCollection.InsertOne(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)

	if err := s.recomputeSprintProgress(ctx, board); err != nil {
		return nil, err
	}

	s.publishEvent(boardID, "task.created", map[string]interface{}{
		"taskId":   task.ID.Hex(),
		"columnId": columnID,
		"position": task.Position,
		"title":    title,
		"actorId":  actor.ID,
	})

	return task, nil
}

// MoveTask moves a task to (newColumnID, newPosition), renumbering every
// affected sibling so both columns stay dense. The whole renumbering is
// applied in memory first and persisted as one bulk write under the board
// lock, so concurrent moves on the same board serialize.
func (s *TaskService) MoveTask(ctx context.Context, taskID string, actor models.Actor, newColumnID string, newPosition int) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.ValidationError("invalid task ID format")
	}

	var probe models.Task
	err = s.TasksCollection.FindOne(ctx, bson.M{"_id": taskObjectID, "archived": false}).Decode(&probe)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("task %s not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	unlock := s.lockBoard(probe.BoardID.Hex())
	defer unlock()

	board, err := s.getBoard(ctx, probe.BoardID)
	if err != nil {
		return nil, err
	}
	column := board.FindColumn(newColumnID)
	if column == nil || column.Archived {
		return nil, models.NotFound("column %s not found on board %s", newColumnID, probe.BoardID.Hex())
	}

	// Re-read the full board task set inside the lock.
	tasks, err := s.activeTasks(ctx, probe.BoardID)
	if err != nil {
		return nil, err
	}
	var moved *models.Task
	for _, t := range tasks {
		if t.ID == taskObjectID {
			moved = t
			break
		}
	}
	if moved == nil {
		return nil, models.NotFound("task %s not found", taskID)
	}

	oldColumnID := moved.ColumnID
	oldPosition := moved.Position
	oldPositions := make(map[primitive.ObjectID]int, len(tasks))
	for _, t := range tasks {
		oldPositions[t.ID] = t.Position
	}

	if err := applyMove(tasks, moved, newColumnID, newPosition); err != nil {
		return nil, err
	}
	moved.Status = models.TaskStatusForRole(column.Role)

	now := time.Now()
	entry := models.ActivityEntry{
		ID:           uuid.New().String(),
		Type:         "moved",
		FromColumnID: oldColumnID,
		ToColumnID:   newColumnID,
		FromPosition: oldPosition,
		ToPosition:   moved.Position,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Timestamp:    now,
	}

	writes := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": moved.ID}).
			SetUpdate(bson.M{
				"$set":  bson.M{"columnId": moved.ColumnID, "position": moved.Position, "status": moved.Status, "updatedAt": now},
				"$push": bson.M{"activityLog": entry},
			}),
	}
	for _, t := range tasks {
		if t.ID == moved.ID || t.Position == oldPositions[t.ID] {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetUpdate(bson.M{"$set": bson.M{"position": t.Position, "updatedAt": now}}))
	}

	if _, err := s.TasksCollection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
		return nil, fmt.Errorf("failed to persist task move: %v", err)
	}

	if err := s.recomputeSprintProgress(ctx, board); err != nil {
		return nil, err
	}

	s.publishEvent(probe.BoardID.Hex(), "task.moved", map[string]interface{}{
		"taskId":       taskID,
		"fromColumnId": oldColumnID,
		"toColumnId":   newColumnID,
		"fromPosition": oldPosition,
		"toPosition":   moved.Position,
		"actorId":      actor.ID,
	})

	if column.Role == models.ColumnReview && oldColumnID != newColumnID {
		s.Mailer.Send(board.OwnerID, "task-in-review", map[string]interface{}{
			"taskId":  taskID,
			"title":   moved.Title,
			"boardId": probe.BoardID.Hex(),
		})
	}

	moved.ActivityLog = append(moved.ActivityLog, entry)
	return moved, nil
}

// ArchiveTask soft-deletes a task and closes the position gap it leaves.
func (s *TaskService) ArchiveTask(ctx context.Context, taskID string, actor models.Actor) error {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.ValidationError("invalid task ID format")
	}

	var probe models.Task
	err = s.TasksCollection.FindOne(ctx, bson.M{"_id": taskObjectID}).Decode(&probe)
	if err == mongo.ErrNoDocuments {
		return models.NotFound("task %s not found", taskID)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch task: %v", err)
	}
	if probe.Archived {
		return models.InvalidStateTransition("task %s is already archived", taskID)
	}

	unlock := s.lockBoard(probe.BoardID.Hex())
	defer unlock()

	board, err := s.getBoard(ctx, probe.BoardID)
	if err != nil {
		return err
	}
	tasks, err := s.activeTasks(ctx, probe.BoardID)
	if err != nil {
		return err
	}

	// Re-resolve column and position inside the lock; a concurrent move may
	// have shifted the task since the probe read.
	var current *models.Task
	for _, t := range tasks {
		if t.ID == taskObjectID {
			current = t
			break
		}
	}
	if current == nil {
		return models.NotFound("task %s not found", taskID)
	}

	now := time.Now()
	entry := models.ActivityEntry{
		ID:           uuid.New().String(),
		Type:         "archived",
		FromColumnID: current.ColumnID,
		FromPosition: current.Position,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Timestamp:    now,
	}

	writes := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": taskObjectID}).
			SetUpdate(bson.M{
				"$set":  bson.M{"archived": true, "updatedAt": now},
				"$push": bson.M{"activityLog": entry},
			}),
	}

	column := current.ColumnID
	position := current.Position
	closeGap(tasks, column, position)
	for _, t := range tasks {
		if t.ID == taskObjectID {
			continue
		}
		if t.ColumnID == column && t.Position >= position {
			writes = append(writes, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": t.ID}).
				SetUpdate(bson.M{"$set": bson.M{"position": t.Position, "updatedAt": now}}))
		}
	}

	if _, err := s.TasksCollection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to archive task: %v", err)
	}

	if err := s.recomputeSprintProgress(ctx, board); err != nil {
		return err
	}

	s.publishEvent(probe.BoardID.Hex(), "task.archived", map[string]interface{}{
		"taskId":   taskID,
		"columnId": column,
		"actorId":  actor.ID,
	})

	return nil
}

// AddComment appends a comment and mirrors it on the board topic, which also
// backs the admin/startup conversation feed.
func (s *TaskService) AddComment(ctx context.Context, taskID string, actor models.Actor, body string) (*models.Comment, error) {
	if body == "" {
		return nil, models.ValidationError("comment body is required")
	}
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.ValidationError("invalid task ID format")
	}

	var task models.Task
	err = s.TasksCollection.FindOne(ctx, bson.M{"_id": taskObjectID, "archived": false}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("task %s not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}

	now := time.Now()
	comment := models.Comment{
		ID:        uuid.New().String(),
		AuthorID:  actor.ID,
		Body:      body,
		CreatedAt: now,
	}
	entry := models.ActivityEntry{
		ID:        uuid.New().String(),
		Type:      "commented",
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Timestamp: now,
	}

	update := bson.M{
		"$push": bson.M{"comments": comment, "activityLog": entry},
		"$set":  bson.M{"updatedAt": now},
	}
	if _, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskObjectID}, update); err != nil {
		return nil, fmt.Errorf("failed to add comment: %v", err)
	}

	s.publishEvent(task.BoardID.Hex(), "task.commented", map[string]interface{}{
		"taskId":   taskID,
		"authorId": actor.ID,
		"body":     body,
	})

	return &comment, nil
}

// GetTasksByBoard lists the non-archived tasks of a board ordered by column
// and position.
func (s *TaskService) GetTasksByBoard(ctx context.Context, boardID string) ([]*models.Task, error) {
	boardObjectID, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return nil, models.ValidationError("invalid board ID format")
	}

	opts := options.Find().SetSort(bson.D{{Key: "columnId", Value: 1}, {Key: "position", Value: 1}})
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"boardId": boardObjectID, "archived": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	for cursor.Next(ctx) {
		var task models.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task: %v", err)
		}
		tasks = append(tasks, &task)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return tasks, nil
}

// GetTaskByID returns one task.
func (s *TaskService) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	taskObjectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.ValidationError("invalid task ID format")
	}

	var task models.Task
	err = s.TasksCollection.FindOne(ctx, bson.M{"_id": taskObjectID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("task %s not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}
	return &task, nil
}
