package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionnaireStatus string

const (
	QuestionnaireDraft             QuestionnaireStatus = "draft"
	QuestionnaireSubmitted         QuestionnaireStatus = "submitted"
	QuestionnaireUnderReview       QuestionnaireStatus = "under_review"
	QuestionnaireApproved          QuestionnaireStatus = "approved"
	QuestionnaireRejected          QuestionnaireStatus = "rejected"
	QuestionnaireRevisionRequested QuestionnaireStatus = "revision_requested"
	QuestionnaireMeetingScheduled  QuestionnaireStatus = "meeting_scheduled"
	QuestionnaireProposalCreated   QuestionnaireStatus = "proposal_created"
	QuestionnaireSprintCreated     QuestionnaireStatus = "sprint_created"
)

// BasicInfo is the first questionnaire section.
type BasicInfo struct {
	StartupName    string `bson:"startupName" json:"startupName"`
	TaskType       string `bson:"taskType" json:"taskType"`
	Description    string `bson:"description" json:"description"`
	Stage          string `bson:"stage" json:"stage"`
	Goals          string `bson:"goals" json:"goals"`
	TimeCommitment string `bson:"timeCommitment" json:"timeCommitment"`
}

// Requirements is the second questionnaire section.
type Requirements struct {
	Milestones  []string `bson:"milestones" json:"milestones"`
	Timeline    string   `bson:"timeline" json:"timeline"`
	BudgetRange string   `bson:"budgetRange" json:"budgetRange"`
}

// ServiceSelection is the third questionnaire section.
type ServiceSelection struct {
	PackageType   string `bson:"packageType" json:"packageType"`
	CustomRequest string `bson:"customRequest,omitempty" json:"customRequest,omitempty"`
	Urgency       string `bson:"urgency" json:"urgency"`
}

type QuestionnaireReview struct {
	ReviewedBy      string    `bson:"reviewedBy" json:"reviewedBy"`
	ReviewedAt      time.Time `bson:"reviewedAt" json:"reviewedAt"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RejectionReason string    `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
}

type Questionnaire struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TemporaryID   string               `bson:"temporaryId,omitempty" json:"temporaryId,omitempty"`
	StartupID     *primitive.ObjectID  `bson:"startupId,omitempty" json:"startupId,omitempty"`
	BasicInfo     *BasicInfo           `bson:"basicInfo" json:"basicInfo"`
	Requirements  *Requirements        `bson:"requirements" json:"requirements"`
	Selection     *ServiceSelection    `bson:"serviceSelection" json:"serviceSelection"`
	Status        QuestionnaireStatus  `bson:"status" json:"status"`
	SubmittedAt   *time.Time           `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	Review        *QuestionnaireReview `bson:"review,omitempty" json:"review,omitempty"`
	PriorityScore int                  `bson:"priorityScore,omitempty" json:"priorityScore,omitempty"`
	SprintID      *primitive.ObjectID  `bson:"sprintId,omitempty" json:"sprintId,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// reviewableStates are the states an admin review decision may start from.
var reviewableStates = map[QuestionnaireStatus]bool{
	QuestionnaireSubmitted:         true,
	QuestionnaireUnderReview:       true,
	QuestionnaireRevisionRequested: true,
}

// editableStates are the states in which the startup may still change content.
var editableStates = map[QuestionnaireStatus]bool{
	QuestionnaireDraft:             true,
	QuestionnaireRevisionRequested: true,
}

func (s QuestionnaireStatus) Reviewable() bool {
	return reviewableStates[s]
}

func (s QuestionnaireStatus) Editable() bool {
	return editableStates[s]
}

// ValidReviewOutcome reports whether an admin review may land on the
// given status.
func ValidReviewOutcome(s QuestionnaireStatus) bool {
	switch s {
	case QuestionnaireUnderReview, QuestionnaireApproved, QuestionnaireRejected, QuestionnaireRevisionRequested, QuestionnaireMeetingScheduled:
		return true
	}
	return false
}

// Complete reports whether all three content sections are present.
func (q *Questionnaire) Complete() bool {
	return q.BasicInfo != nil && q.Requirements != nil && q.Selection != nil
}
