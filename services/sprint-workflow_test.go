package services

import (
	"testing"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sprintFixture(status models.SprintStatus) *models.Sprint {
	return &models.Sprint{
		Status:          status,
		SelectedPackage: &models.PackageOption{ID: "p1", Name: "Starter", Price: 5000, Currency: "USD"},
	}
}

func TestValidateDocumentsSubmission(t *testing.T) {
	assert.NoError(t, validateDocumentsSubmission(sprintFixture(models.SprintPackageSelected)))
}

func TestValidateDocumentsSubmissionRequiresPackage(t *testing.T) {
	err := validateDocumentsSubmission(&models.Sprint{Status: models.SprintPackageSelected})
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodePreconditionFail, e.Code)
}

func TestValidateDocumentsSubmissionNeverRegressesStatus(t *testing.T) {
	for _, from := range []models.SprintStatus{
		models.SprintAvailable,
		models.SprintDocumentsSubmitted,
		models.SprintMeetingScheduled,
		models.SprintInProgress,
		models.SprintCompleted,
	} {
		err := validateDocumentsSubmission(sprintFixture(from))
		require.Error(t, err, "from %s", from)
		e, ok := models.AsError(err)
		require.True(t, ok)
		assert.Equal(t, models.ErrCodeInvalidState, e.Code)
	}
}

func TestValidateMeetingSchedule(t *testing.T) {
	sprint := sprintFixture(models.SprintDocumentsSubmitted)
	sprint.DocumentsDone = true
	when := time.Now().Add(48 * time.Hour)

	assert.NoError(t, validateMeetingSchedule(sprint, "https://meet.example.com/kickoff", when))

	err := validateMeetingSchedule(sprint, "", when)
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidation, e.Code)

	assert.Error(t, validateMeetingSchedule(sprint, "https://meet.example.com/kickoff", time.Time{}))
}

func TestValidateMeetingScheduleRequiresDocuments(t *testing.T) {
	sprint := sprintFixture(models.SprintDocumentsSubmitted)
	err := validateMeetingSchedule(sprint, "https://meet.example.com/kickoff", time.Now())
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodePreconditionFail, e.Code)
}

func TestValidateMeetingScheduleNeverRegressesStatus(t *testing.T) {
	for _, from := range []models.SprintStatus{
		models.SprintPackageSelected,
		models.SprintMeetingScheduled,
		models.SprintInProgress,
		models.SprintCompleted,
	} {
		sprint := sprintFixture(from)
		sprint.DocumentsDone = true
		err := validateMeetingSchedule(sprint, "https://meet.example.com/kickoff", time.Now())
		require.Error(t, err, "from %s", from)
		e, ok := models.AsError(err)
		require.True(t, ok)
		assert.Equal(t, models.ErrCodeInvalidState, e.Code)
	}
}
