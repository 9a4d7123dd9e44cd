package services

import (
	"testing"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReviewFromReviewableStates(t *testing.T) {
	for _, from := range []models.QuestionnaireStatus{
		models.QuestionnaireSubmitted,
		models.QuestionnaireUnderReview,
		models.QuestionnaireRevisionRequested,
	} {
		assert.NoError(t, validateReview(from, models.QuestionnaireApproved, ""), "from %s", from)
	}
}

func TestValidateReviewRejectsNonReviewableStates(t *testing.T) {
	for _, from := range []models.QuestionnaireStatus{
		models.QuestionnaireDraft,
		models.QuestionnaireApproved,
		models.QuestionnaireRejected,
		models.QuestionnaireSprintCreated,
	} {
		err := validateReview(from, models.QuestionnaireApproved, "")
		require.Error(t, err, "from %s", from)
		e, ok := models.AsError(err)
		require.True(t, ok)
		assert.Equal(t, models.ErrCodeInvalidState, e.Code)
	}
}

func TestValidateReviewRejectionRequiresReason(t *testing.T) {
	err := validateReview(models.QuestionnaireSubmitted, models.QuestionnaireRejected, "")
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidation, e.Code)

	assert.NoError(t, validateReview(models.QuestionnaireSubmitted, models.QuestionnaireRejected, "budget out of scope"))
}

func TestValidateReviewOutcomeMustBeReviewDecision(t *testing.T) {
	err := validateReview(models.QuestionnaireSubmitted, models.QuestionnaireSprintCreated, "")
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidation, e.Code)
}

func TestValidatePackageOptions(t *testing.T) {
	valid := []models.PackageOption{
		{Name: "Starter", Description: "4 weeks", Price: 5000, Currency: "USD"},
		{Name: "Growth", Description: "8 weeks", Price: 9000, Currency: "USD"},
	}
	assert.NoError(t, validatePackageOptions(valid))

	assert.Error(t, validatePackageOptions(nil))
	assert.Error(t, validatePackageOptions([]models.PackageOption{{Name: "Starter", Price: 5000, Currency: "USD"}}))
	assert.Error(t, validatePackageOptions([]models.PackageOption{{Name: "Starter", Description: "4 weeks", Currency: "USD"}}))
}
