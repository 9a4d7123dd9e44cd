package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BoardService struct {
	BoardsCollection  *mongo.Collection
	SprintsCollection *mongo.Collection
}

func NewBoardService(boardsCollection, sprintsCollection *mongo.Collection) *BoardService {
	return &BoardService{
		BoardsCollection:  boardsCollection,
		SprintsCollection: sprintsCollection,
	}
}

func defaultPermissions(role models.ActorRole) []string {
	if role == models.RoleAdmin {
		return []string{"view", "comment", "move", "edit", "manage"}
	}
	return []string{"view", "comment", "move"}
}

// checkPaymentGate refuses board access for startups until the sprint's
// selected package has been paid for. Admins pass unconditionally.
func (s *BoardService) checkPaymentGate(ctx context.Context, sprintID primitive.ObjectID, actor models.Actor) error {
	if actor.IsAdmin() {
		return nil
	}

	var sprint models.Sprint
	err := s.SprintsCollection.FindOne(ctx, bson.M{"_id": sprintID}).Decode(&sprint)
	if err == mongo.ErrNoDocuments {
		return models.NotFound("sprint %s not found", sprintID.Hex())
	}
	if err != nil {
		return fmt.Errorf("failed to fetch sprint: %v", err)
	}
	if !sprint.Paid() {
		return models.AccessDenied("board access requires a verified payment for sprint %s", sprintID.Hex())
	}
	return nil
}

// GetOrCreateForSprint returns the sprint's board, creating it with the four
// default columns the first time it is requested.
func (s *BoardService) GetOrCreateForSprint(ctx context.Context, sprintID string, actor models.Actor) (*models.Board, error) {
	sprintObjectID, err := primitive.ObjectIDFromHex(sprintID)
	if err != nil {
		return nil, models.ValidationError("invalid sprint ID format")
	}

	if err := s.checkPaymentGate(ctx, sprintObjectID, actor); err != nil {
		return nil, err
	}

	var board models.Board
	err = s.BoardsCollection.FindOne(ctx, bson.M{"sprintId": sprintObjectID, "archived": false}).Decode(&board)
	if err == nil {
		return &board, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to fetch board: %v", err)
	}

	var sprint models.Sprint
	if err := s.SprintsCollection.FindOne(ctx, bson.M{"_id": sprintObjectID}).Decode(&sprint); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFound("sprint %s not found", sprintID)
		}
		return nil, fmt.Errorf("failed to fetch sprint: %v", err)
	}

	now := time.Now()
	board = models.Board{
		ID:        primitive.NewObjectID(),
		SprintID:  &sprintObjectID,
		Name:      sprint.Name,
		OwnerID:   actor.ID,
		CreatedBy: actor.ID,
		Columns:   models.DefaultColumns(),
		Members: []models.BoardMember{
			{UserID: actor.ID, Role: actor.Role, Permissions: defaultPermissions(actor.Role)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.BoardsCollection.InsertOne(ctx, &board)
	if err != nil {
		// The unique index on sprintId means a concurrent first request won
		// the create; hand back its board.
		if mongo.IsDuplicateKeyError(err) {
			var existing models.Board
			if findErr := s.BoardsCollection.FindOne(ctx, bson.M{"sprintId": sprintObjectID, "archived": false}).Decode(&existing); findErr == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create board: %v", err)
	}
	board.ID = result.InsertedID.(primitive.ObjectID)
	return &board, nil
}

// GetByID returns a board, applying the payment gate for sprint boards.
func (s *BoardService) GetByID(ctx context.Context, boardID string, actor models.Actor) (*models.Board, error) {
	objectID, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return nil, models.ValidationError("invalid board ID format")
	}

	var board models.Board
	err = s.BoardsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&board)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("board %s not found", boardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch board: %v", err)
	}

	if board.SprintID != nil {
		if err := s.checkPaymentGate(ctx, *board.SprintID, actor); err != nil {
			return nil, err
		}
	}
	return &board, nil
}

// AddColumn inserts a column at the given index. Columns at or after the
// index shift right by one; the list stays dense.
func (s *BoardService) AddColumn(ctx context.Context, boardID string, actor models.Actor, name string, role models.ColumnRole, position int) (*models.Board, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can change board columns")
	}
	if name == "" {
		return nil, models.ValidationError("column name is required")
	}

	board, err := s.GetByID(ctx, boardID, actor)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = models.RoleForColumnName(name)
	}
	if position < 0 {
		position = 0
	}
	if position > len(board.Columns) {
		position = len(board.Columns)
	}

	for i := range board.Columns {
		if board.Columns[i].Position >= position {
			board.Columns[i].Position++
		}
	}
	board.Columns = append(board.Columns, models.Column{
		ID:          uuid.New().String(),
		Name:        name,
		Position:    position,
		Role:        role,
		IsCompleted: role == models.ColumnDone,
	})
	sort.Slice(board.Columns, func(i, j int) bool {
		return board.Columns[i].Position < board.Columns[j].Position
	})

	update := bson.M{"$set": bson.M{"columns": board.Columns, "updatedAt": time.Now()}}
	if _, err := s.BoardsCollection.UpdateOne(ctx, bson.M{"_id": board.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to add column: %v", err)
	}
	return board, nil
}

// ArchiveColumn soft-deletes a column. Its position slot is deliberately not
// reclaimed so in-flight moves cannot land in a reused slot.
func (s *BoardService) ArchiveColumn(ctx context.Context, boardID, columnID string, actor models.Actor) (*models.Board, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can change board columns")
	}

	board, err := s.GetByID(ctx, boardID, actor)
	if err != nil {
		return nil, err
	}
	column := board.FindColumn(columnID)
	if column == nil {
		return nil, models.NotFound("column %s not found on board %s", columnID, boardID)
	}
	if column.Archived {
		return nil, models.InvalidStateTransition("column %s is already archived", columnID)
	}
	column.Archived = true

	update := bson.M{"$set": bson.M{"columns": board.Columns, "updatedAt": time.Now()}}
	if _, err := s.BoardsCollection.UpdateOne(ctx, bson.M{"_id": board.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to archive column: %v", err)
	}
	return board, nil
}

// AddMember adds a user to the board. The role implies a default permission
// set unless explicit permissions are given.
func (s *BoardService) AddMember(ctx context.Context, boardID string, actor models.Actor, member models.BoardMember) (*models.Board, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can manage board members")
	}

	board, err := s.GetByID(ctx, boardID, actor)
	if err != nil {
		return nil, err
	}
	for _, m := range board.Members {
		if m.UserID == member.UserID {
			return nil, models.AlreadyExists("user %s is already a member of board %s", member.UserID, boardID)
		}
	}
	if len(member.Permissions) == 0 {
		member.Permissions = defaultPermissions(member.Role)
	}

	update := bson.M{
		"$push": bson.M{"members": member},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := s.BoardsCollection.UpdateOne(ctx, bson.M{"_id": board.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to add board member: %v", err)
	}
	board.Members = append(board.Members, member)
	return board, nil
}

// ArchiveBoard retires a board. Boards are never hard-deleted.
func (s *BoardService) ArchiveBoard(ctx context.Context, boardID string, actor models.Actor) error {
	if !actor.IsAdmin() {
		return models.AccessDenied("only admins can archive boards")
	}

	board, err := s.GetByID(ctx, boardID, actor)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"archived": true, "updatedAt": time.Now()}}
	if _, err := s.BoardsCollection.UpdateOne(ctx, bson.M{"_id": board.ID}, update); err != nil {
		return fmt.Errorf("failed to archive board: %v", err)
	}
	return nil
}
