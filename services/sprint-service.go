package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SprintService struct {
	SprintsCollection        *mongo.Collection
	QuestionnairesCollection *mongo.Collection
	Mailer                   *MailerClient
}

func NewSprintService(sprintsCollection, questionnairesCollection *mongo.Collection, mailer *MailerClient) *SprintService {
	return &SprintService{
		SprintsCollection:        sprintsCollection,
		QuestionnairesCollection: questionnairesCollection,
		Mailer:                   mailer,
	}
}

func historyEntry(status models.SprintStatus, actor models.Actor, note string) models.StatusHistoryEntry {
	return models.StatusHistoryEntry{
		ID:        uuid.New().String(),
		Status:    status,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Note:      note,
		Timestamp: time.Now(),
	}
}

// validatePackageOptions checks that every tier carries the required fields.
func validatePackageOptions(options []models.PackageOption) error {
	if len(options) == 0 {
		return models.ValidationError("at least one package option is required")
	}
	for i, opt := range options {
		if opt.Name == "" || opt.Description == "" || opt.Currency == "" || opt.Price <= 0 {
			return models.ValidationError("package option %d is missing name, description, price or currency", i)
		}
	}
	return nil
}

// CreateFromQuestionnaire creates the sprint for an approved questionnaire.
// One sprint per questionnaire; a second create fails with AlreadyExists.
func (s *SprintService) CreateFromQuestionnaire(ctx context.Context, questionnaireID string, actor models.Actor, name, description, sprintType, estimatedDuration string, options []models.PackageOption) (*models.Sprint, error) {
	qObjectID, err := primitive.ObjectIDFromHex(questionnaireID)
	if err != nil {
		return nil, models.ValidationError("invalid questionnaire ID format")
	}

	var q models.Questionnaire
	err = s.QuestionnairesCollection.FindOne(ctx, bson.M{"_id": qObjectID}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("questionnaire %s not found", questionnaireID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questionnaire: %v", err)
	}

	if q.Status != models.QuestionnaireApproved {
		return nil, models.InvalidStateTransition("sprint requires an approved questionnaire, current status is %s", q.Status)
	}
	if err := validatePackageOptions(options); err != nil {
		return nil, err
	}

	count, err := s.SprintsCollection.CountDocuments(ctx, bson.M{"questionnaireId": qObjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing sprints: %v", err)
	}
	if count > 0 {
		return nil, models.AlreadyExists("questionnaire %s already has a sprint", questionnaireID)
	}

	for i := range options {
		if options[i].ID == "" {
			options[i].ID = uuid.New().String()
		}
	}

	totalMilestones := 0
	if q.Requirements != nil {
		totalMilestones = len(q.Requirements.Milestones)
	}

	now := time.Now()
	sprint := &models.Sprint{
		ID:                primitive.NewObjectID(),
		QuestionnaireID:   qObjectID,
		Name:              name,
		Description:       description,
		Type:              sprintType,
		EstimatedDuration: estimatedDuration,
		PackageOptions:    options,
		PaymentStatus:     models.PaymentUnpaid,
		Status:            models.SprintAvailable,
		StatusHistory:     []models.StatusHistoryEntry{historyEntry(models.SprintAvailable, actor, "sprint created from questionnaire")},
		Progress:          models.SprintProgress{TotalMilestones: totalMilestones},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	result, err := s.SprintsCollection.InsertOne(ctx, sprint)
	if err != nil {
		// The unique index on questionnaireId backs up the count check.
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.AlreadyExists("questionnaire %s already has a sprint", questionnaireID)
		}
		return nil, fmt.Errorf("failed to create sprint: %v", err)
	}
	sprint.ID = result.InsertedID.(primitive.ObjectID)

	update := bson.M{"$set": bson.M{"sprintId": sprint.ID, "status": models.QuestionnaireSprintCreated, "updatedAt": now}}
	if _, err := s.QuestionnairesCollection.UpdateOne(ctx, bson.M{"_id": qObjectID}, update); err != nil {
		return nil, fmt.Errorf("failed to link sprint to questionnaire: %v", err)
	}

	return sprint, nil
}

// SelectPackage snapshots the chosen tier onto the sprint. The conditional
// filter lets exactly one concurrent selection win; losers observe
// AlreadySelected.
func (s *SprintService) SelectPackage(ctx context.Context, sprintID string, actor models.Actor, packageID string) (*models.Sprint, error) {
	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	if sprint.SelectedPackage != nil {
		return nil, models.AlreadySelected("sprint %s already has a selected package", sprintID)
	}
	option := sprint.FindPackageOption(packageID)
	if option == nil {
		return nil, models.NotFound("package option %s not found on sprint %s", packageID, sprintID)
	}

	selected := *option // snapshot copy, later edits to packageOptions do not change it
	now := time.Now()
	filter := bson.M{"_id": sprint.ID, "selectedPackage": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{
			"selectedPackage": selected,
			"status":          models.SprintPackageSelected,
			"updatedAt":       now,
		},
		"$push": bson.M{"statusHistory": historyEntry(models.SprintPackageSelected, actor, fmt.Sprintf("package %s selected", selected.Name))},
	}

	result, err := s.SprintsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to select package: %v", err)
	}
	if result.ModifiedCount == 0 {
		return nil, models.AlreadySelected("sprint %s already has a selected package", sprintID)
	}

	s.Mailer.Send("admins", "package-selected", map[string]interface{}{
		"sprintId":    sprintID,
		"packageName": selected.Name,
		"price":       selected.Price,
		"currency":    selected.Currency,
	})

	return s.GetByID(ctx, sprintID)
}

// validateDocumentsSubmission guards the startup-driven workflow step.
// Outside the admin override the lifecycle only moves forward, so a sprint
// past package_selected cannot be regressed by a repeat submission.
func validateDocumentsSubmission(sprint *models.Sprint) error {
	if sprint.SelectedPackage == nil {
		return models.PreconditionFailed("a package must be selected before submitting documents")
	}
	if sprint.Status != models.SprintPackageSelected {
		return models.InvalidStateTransition("documents can only be submitted from %s, current status is %s", models.SprintPackageSelected, sprint.Status)
	}
	return nil
}

// validateMeetingSchedule guards the kickoff-meeting step the same way.
func validateMeetingSchedule(sprint *models.Sprint, url string, when time.Time) error {
	if !sprint.DocumentsDone {
		return models.PreconditionFailed("documents not submitted")
	}
	if sprint.Status != models.SprintDocumentsSubmitted {
		return models.InvalidStateTransition("a meeting can only be scheduled from %s, current status is %s", models.SprintDocumentsSubmitted, sprint.Status)
	}
	if url == "" || when.IsZero() {
		return models.ValidationError("meeting url and time are required")
	}
	return nil
}

// SubmitDocuments marks the startup's documents as submitted. Requires a
// selected package and a sprint still sitting at package_selected.
func (s *SprintService) SubmitDocuments(ctx context.Context, sprintID string, actor models.Actor) (*models.Sprint, error) {
	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if err := validateDocumentsSubmission(sprint); err != nil {
		return nil, err
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"documentsSubmitted":   true,
			"documentsSubmittedAt": now,
			"status":               models.SprintDocumentsSubmitted,
			"updatedAt":            now,
		},
		"$push": bson.M{"statusHistory": historyEntry(models.SprintDocumentsSubmitted, actor, "")},
	}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to submit documents: %v", err)
	}

	return s.GetByID(ctx, sprintID)
}

// ScheduleMeeting records the kickoff meeting. Requires documents submitted.
func (s *SprintService) ScheduleMeeting(ctx context.Context, sprintID string, actor models.Actor, url string, when time.Time, meetingType string) (*models.Sprint, error) {
	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if err := validateMeetingSchedule(sprint, url, when); err != nil {
		return nil, err
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"meeting":   models.Meeting{URL: url, ScheduledFor: when, Type: meetingType},
			"status":    models.SprintMeetingScheduled,
			"updatedAt": now,
		},
		"$push": bson.M{"statusHistory": historyEntry(models.SprintMeetingScheduled, actor, "")},
	}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to schedule meeting: %v", err)
	}

	return s.GetByID(ctx, sprintID)
}

// SetStatus is the admin override: any transition is allowed, but every one
// lands in the append-only history. The first transition into in_progress
// stamps startedAt; the first into completed stamps completedAt and forces
// progress to 100%.
func (s *SprintService) SetStatus(ctx context.Context, sprintID string, actor models.Actor, newStatus models.SprintStatus, note string) (*models.Sprint, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can set sprint status directly")
	}

	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{"status": newStatus, "updatedAt": now}
	if newStatus == models.SprintInProgress && sprint.StartedAt == nil {
		set["startedAt"] = now
	}
	if newStatus == models.SprintCompleted && sprint.CompletedAt == nil {
		set["completedAt"] = now
		set["progress.percentage"] = 100
	}

	historyNote := fmt.Sprintf("status changed from %s to %s", sprint.Status, newStatus)
	if note != "" {
		historyNote = fmt.Sprintf("%s: %s", historyNote, note)
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": historyEntry(newStatus, actor, historyNote)},
	}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to update sprint status: %v", err)
	}

	return s.GetByID(ctx, sprintID)
}

// VerifyPayment opens the payment gate consumed by board access control.
func (s *SprintService) VerifyPayment(ctx context.Context, sprintID string, actor models.Actor) (*models.Sprint, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can verify payments")
	}

	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.SelectedPackage == nil {
		return nil, models.PreconditionFailed("no package selected on sprint %s", sprintID)
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"selectedPackagePaymentStatus": models.PaymentPaid,
		"paymentVerifiedBy":            actor.ID,
		"paymentVerifiedAt":            now,
		"updatedAt":                    now,
	}}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to verify payment: %v", err)
	}

	return s.GetByID(ctx, sprintID)
}

// AssignTeam replaces the admin-side team roster for a sprint.
func (s *SprintService) AssignTeam(ctx context.Context, sprintID string, actor models.Actor, memberIDs []string) (*models.Sprint, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can assign the team")
	}

	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"teamMembers": memberIDs, "updatedAt": time.Now()}}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to assign team: %v", err)
	}

	return s.GetByID(ctx, sprintID)
}

// MilestoneProgress derives the sprint completion percentage from milestone
// counts. A sprint with no milestones reads as 0%.
func MilestoneProgress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// UpdateMilestones sets milestone counts and recomputes the derived
// percentage. Clients never set the percentage directly.
func (s *SprintService) UpdateMilestones(ctx context.Context, sprintID string, actor models.Actor, completed, total int, currentPhase string) (*models.Sprint, error) {
	if !actor.IsAdmin() {
		return nil, models.AccessDenied("only admins can update milestones")
	}
	if completed < 0 || total < 0 || completed > total {
		return nil, models.ValidationError("invalid milestone counts: %d/%d", completed, total)
	}

	sprint, err := s.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"progress.completedMilestones": completed,
		"progress.totalMilestones":     total,
		"progress.percentage":          MilestoneProgress(completed, total),
		"progress.currentPhase":        currentPhase,
		"updatedAt":                    time.Now(),
	}}
	if _, err := s.SprintsCollection.UpdateOne(ctx, bson.M{"_id": sprint.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to update milestones: %v", err)
	}

	return s.GetByID(ctx, sprintID)
}

func (s *SprintService) GetByID(ctx context.Context, sprintID string) (*models.Sprint, error) {
	objectID, err := primitive.ObjectIDFromHex(sprintID)
	if err != nil {
		return nil, models.ValidationError("invalid sprint ID format")
	}

	var sprint models.Sprint
	err = s.SprintsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&sprint)
	if err == mongo.ErrNoDocuments {
		return nil, models.NotFound("sprint %s not found", sprintID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sprint: %v", err)
	}
	return &sprint, nil
}

// ListSprints returns sprints, optionally filtered by status.
func (s *SprintService) ListSprints(ctx context.Context, status models.SprintStatus) ([]models.Sprint, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := s.SprintsCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sprints: %v", err)
	}
	defer cursor.Close(ctx)

	var sprints []models.Sprint
	if err = cursor.All(ctx, &sprints); err != nil {
		return nil, fmt.Errorf("failed to decode sprints: %v", err)
	}
	return sprints, nil
}
