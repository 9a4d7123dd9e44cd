package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SprintStatus string

const (
	SprintDraft              SprintStatus = "draft"
	SprintAvailable          SprintStatus = "available"
	SprintPackageSelected    SprintStatus = "package_selected"
	SprintDocumentsSubmitted SprintStatus = "documents_submitted"
	SprintMeetingScheduled   SprintStatus = "meeting_scheduled"
	SprintInProgress         SprintStatus = "in_progress"
	SprintOnHold             SprintStatus = "on_hold"
	SprintCompleted          SprintStatus = "completed"
	SprintCancelled          SprintStatus = "cancelled"
	SprintInactive           SprintStatus = "inactive"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// PackageOption is one priced tier a startup can select for a sprint.
type PackageOption struct {
	ID              string  `bson:"id" json:"id"`
	Name            string  `bson:"name" json:"name"`
	Description     string  `bson:"description" json:"description"`
	Price           float64 `bson:"price" json:"price"`
	Currency        string  `bson:"currency" json:"currency"`
	EngagementHours int     `bson:"engagementHours,omitempty" json:"engagementHours,omitempty"`
	Duration        string  `bson:"duration,omitempty" json:"duration,omitempty"`
	HourlyRate      float64 `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty"`
	Quantity        int     `bson:"quantity,omitempty" json:"quantity,omitempty"`
	DiscountPercent float64 `bson:"discountPercent,omitempty" json:"discountPercent,omitempty"`
}

// StatusHistoryEntry is one record of the append-only sprint audit log.
type StatusHistoryEntry struct {
	ID        string       `bson:"id" json:"id"`
	Status    SprintStatus `bson:"status" json:"status"`
	ActorID   string       `bson:"actorId" json:"actorId"`
	ActorRole ActorRole    `bson:"actorRole" json:"actorRole"`
	Note      string       `bson:"note,omitempty" json:"note,omitempty"`
	Timestamp time.Time    `bson:"timestamp" json:"timestamp"`
}

type Meeting struct {
	URL          string    `bson:"url" json:"url"`
	ScheduledFor time.Time `bson:"scheduledFor" json:"scheduledFor"`
	Type         string    `bson:"type" json:"type"`
}

type SprintProgress struct {
	Percentage          int    `bson:"percentage" json:"percentage"`
	CurrentPhase        string `bson:"currentPhase,omitempty" json:"currentPhase,omitempty"`
	CompletedMilestones int    `bson:"completedMilestones" json:"completedMilestones"`
	TotalMilestones     int    `bson:"totalMilestones" json:"totalMilestones"`
}

type Sprint struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	QuestionnaireID   primitive.ObjectID   `bson:"questionnaireId" json:"questionnaireId"`
	Name              string               `bson:"name" json:"name"`
	Description       string               `bson:"description" json:"description"`
	Type              string               `bson:"type" json:"type"`
	EstimatedDuration string               `bson:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"`
	PackageOptions    []PackageOption      `bson:"packageOptions" json:"packageOptions"`
	SelectedPackage   *PackageOption       `bson:"selectedPackage,omitempty" json:"selectedPackage,omitempty"`
	PaymentStatus     PaymentStatus        `bson:"selectedPackagePaymentStatus" json:"selectedPackagePaymentStatus"`
	PaymentVerifiedBy string               `bson:"paymentVerifiedBy,omitempty" json:"paymentVerifiedBy,omitempty"`
	PaymentVerifiedAt *time.Time           `bson:"paymentVerifiedAt,omitempty" json:"paymentVerifiedAt,omitempty"`
	Status            SprintStatus         `bson:"status" json:"status"`
	StatusHistory     []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	DocumentsDone     bool                 `bson:"documentsSubmitted" json:"documentsSubmitted"`
	DocumentsDoneAt   *time.Time           `bson:"documentsSubmittedAt,omitempty" json:"documentsSubmittedAt,omitempty"`
	Meeting           *Meeting             `bson:"meeting,omitempty" json:"meeting,omitempty"`
	Progress          SprintProgress       `bson:"progress" json:"progress"`
	TeamMembers       []string             `bson:"teamMembers,omitempty" json:"teamMembers,omitempty"`
	StartedAt         *time.Time           `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt       *time.Time           `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// FindPackageOption returns the option with the given id, or nil.
func (s *Sprint) FindPackageOption(id string) *PackageOption {
	for i := range s.PackageOptions {
		if s.PackageOptions[i].ID == id {
			return &s.PackageOptions[i]
		}
	}
	return nil
}

// Paid reports whether the payment gate for board access is open.
func (s *Sprint) Paid() bool {
	return s.PaymentStatus == PaymentPaid
}
