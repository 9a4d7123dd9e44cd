package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuestionnaireService struct {
	QuestionnairesCollection *mongo.Collection
	Mailer                   *MailerClient
}

func NewQuestionnaireService(questionnairesCollection *mongo.Collection, mailer *MailerClient) *QuestionnaireService {
	return &QuestionnaireService{
		QuestionnairesCollection: questionnairesCollection,
		Mailer:                   mailer,
	}
}

// SubmitQuestionnaire stores a new intake submission. Anonymous submissions
// (no startup id) are issued a temporaryId so they can be linked after
// registration.
func (s *QuestionnaireService) SubmitQuestionnaire(ctx context.Context, q *models.Questionnaire) (*models.Questionnaire, error) {
	if !q.Complete() {
		return nil, models.ValidationError("basic info, requirements and service selection are all required")
	}

	now := time.Now()
	q.ID = primitive.NewObjectID()
	q.Status = models.QuestionnaireSubmitted
	q.SubmittedAt = &now
	q.CreatedAt = now
	q.UpdatedAt = now
	q.Review = nil
	q.PriorityScore = 0
	if q.StartupID == nil {
		q.TemporaryID = uuid.New().String()
	}

	result, err := s.QuestionnairesCollection.InsertOne(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to create questionnaire: %v", err)
	}
	q.ID = result.InsertedID.(primitive.ObjectID)

	s.Mailer.Send("admins", "questionnaire-submitted", map[string]interface{}{
		"questionnaireId": q.ID.Hex(),
		"startupName":     q.BasicInfo.StartupName,
	})

	return q, nil
}

// UpdateContent lets the startup edit content while the questionnaire is in
// draft or revision_requested. Editing re-submits: status goes back to
// submitted and submittedAt is stamped again.
func (s *QuestionnaireService) UpdateContent(ctx context.Context, questionnaireID string, actor models.Actor, basicInfo *models.BasicInfo, requirements *models.Requirements, selection *models.ServiceSelection) (*models.Questionnaire, error) {
	q, err := s.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && (q.StartupID == nil || q.StartupID.Hex() != actor.ID) {
		return nil, models.AccessDenied("questionnaire does not belong to this startup")
	}
	if !q.Status.Editable() {
		return nil, models.InvalidStateTransition("questionnaire in status %s cannot be edited", q.Status)
	}
	if basicInfo == nil || requirements == nil || selection == nil {
		return nil, models.ValidationError("basic info, requirements and service selection are all required")
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"basicInfo":        basicInfo,
		"requirements":     requirements,
		"serviceSelection": selection,
		"status":           models.QuestionnaireSubmitted,
		"submittedAt":      now,
		"updatedAt":        now,
	}}
	if _, err := s.QuestionnairesCollection.UpdateOne(ctx, bson.M{"_id": q.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to update questionnaire: %v", err)
	}

	return s.GetByID(ctx, questionnaireID)
}

// validateReview checks an admin review decision against the current state.
func validateReview(current, requested models.QuestionnaireStatus, rejectionReason string) error {
	if !current.Reviewable() {
		return models.InvalidStateTransition("questionnaire in status %s cannot be reviewed", current)
	}
	if !models.ValidReviewOutcome(requested) {
		return models.ValidationError("%s is not a valid review outcome", requested)
	}
	if requested == models.QuestionnaireRejected && rejectionReason == "" {
		return models.ValidationError("rejectionReason is required when rejecting a questionnaire")
	}
	return nil
}

// Review applies an admin review decision. Approval computes and stores the
// priority score.
func (s *QuestionnaireService) Review(ctx context.Context, questionnaireID string, actor models.Actor, status models.QuestionnaireStatus, notes, rejectionReason string) (*models.Questionnaire, error) {
	q, err := s.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if err := validateReview(q.Status, status, rejectionReason); err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{
		"status": status,
		"review": models.QuestionnaireReview{
			ReviewedBy:      actor.ID,
			ReviewedAt:      now,
			Notes:           notes,
			RejectionReason: rejectionReason,
		},
		"updatedAt": now,
	}
	if status == models.QuestionnaireApproved {
		set["priorityScore"] = CalculatePriorityScore(q)
	}

	if _, err := s.QuestionnairesCollection.UpdateOne(ctx, bson.M{"_id": q.ID}, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("failed to update questionnaire review: %v", err)
	}

	recipient := q.TemporaryID
	if q.StartupID != nil {
		recipient = q.StartupID.Hex()
	}
	s.Mailer.Send(recipient, "questionnaire-reviewed", map[string]interface{}{
		"questionnaireId": q.ID.Hex(),
		"status":          string(status),
		"notes":           notes,
	})

	return s.GetByID(ctx, questionnaireID)
}

// LinkToOwner attaches an anonymous submission to a registered startup and
// burns the temporary id. Linking an already-linked record is rejected.
func (s *QuestionnaireService) LinkToOwner(ctx context.Context, temporaryID, ownerID string) (*models.Questionnaire, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, models.ValidationError("invalid owner ID format")
	}

	var q models.Questionnaire
	err = s.QuestionnairesCollection.FindOne(ctx, bson.M{"temporaryId": temporaryID}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		// A consumed temporary id is indistinguishable from one that never
		// existed; both surface as NotFound.
		return nil, models.NotFound("no questionnaire found for temporary id %s", temporaryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up questionnaire: %v", err)
	}

	if q.StartupID != nil {
		return nil, models.AlreadyLinked("questionnaire %s is already linked to a startup", q.ID.Hex())
	}

	update := bson.M{
		"$set":   bson.M{"startupId": ownerObjectID, "updatedAt": time.Now()},
		"$unset": bson.M{"temporaryId": ""},
	}
	// Filter repeats the unlinked condition so a concurrent link cannot
	// apply twice.
	result, err := s.QuestionnairesCollection.UpdateOne(ctx, bson.M{"_id": q.ID, "startupId": bson.M{"$exists": false}}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to link questionnaire: %v", err)
	}
	if result.ModifiedCount == 0 {
		return nil, models.AlreadyLinked("questionnaire %s is already linked to a startup", q.ID.Hex())
	}

	return s.GetByID(ctx, q.ID.Hex())
}

func (s *QuestionnaireService) GetByID(ctx context.Context, questionnaireID string) (*models.Questionnaire, error) {
	objectID, err := primitive.ObjectIDFromHex(questionnaireID)
	if err != nil {
		return nil, models.ValidationError("invalid questionnaire ID format")
	}

	var q models.Questionnaire
	err = s.QuestionnairesCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("questionnaire %s not found", questionnaireID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questionnaire: %v", err)
	}
	return &q, nil
}

// ListByStatus returns all questionnaires in the given status, or all of
// them when status is empty.
func (s *QuestionnaireService) ListByStatus(ctx context.Context, status models.QuestionnaireStatus) ([]models.Questionnaire, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := s.QuestionnairesCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve questionnaires: %v", err)
	}
	defer cursor.Close(ctx)

	var questionnaires []models.Questionnaire
	if err = cursor.All(ctx, &questionnaires); err != nil {
		return nil, fmt.Errorf("failed to decode questionnaires: %v", err)
	}
	return questionnaires, nil
}

// ListByOwner returns the questionnaires belonging to one startup.
func (s *QuestionnaireService) ListByOwner(ctx context.Context, ownerID string) ([]models.Questionnaire, error) {
	ownerObjectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, models.ValidationError("invalid owner ID format")
	}

	cursor, err := s.QuestionnairesCollection.Find(ctx, bson.M{"startupId": ownerObjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve questionnaires: %v", err)
	}
	defer cursor.Close(ctx)

	var questionnaires []models.Questionnaire
	if err = cursor.All(ctx, &questionnaires); err != nil {
		return nil, fmt.Errorf("failed to decode questionnaires: %v", err)
	}
	return questionnaires, nil
}
