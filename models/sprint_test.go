package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPackageOption(t *testing.T) {
	sprint := &Sprint{
		PackageOptions: []PackageOption{
			{ID: "p1", Name: "Starter", Price: 5000, Currency: "USD"},
			{ID: "p2", Name: "Growth", Price: 9000, Currency: "USD"},
		},
	}

	option := sprint.FindPackageOption("p2")
	require.NotNil(t, option)
	assert.Equal(t, "Growth", option.Name)

	assert.Nil(t, sprint.FindPackageOption("p3"))

	empty := &Sprint{}
	assert.Nil(t, empty.FindPackageOption("p1"))
}

func TestPaid(t *testing.T) {
	assert.False(t, (&Sprint{PaymentStatus: PaymentUnpaid}).Paid())
	assert.True(t, (&Sprint{PaymentStatus: PaymentPaid}).Paid())
	assert.False(t, (&Sprint{}).Paid())
}

func TestQuestionnaireEditableStates(t *testing.T) {
	assert.True(t, QuestionnaireDraft.Editable())
	assert.True(t, QuestionnaireRevisionRequested.Editable())
	assert.False(t, QuestionnaireSubmitted.Editable())
	assert.False(t, QuestionnaireApproved.Editable())
	assert.False(t, QuestionnaireSprintCreated.Editable())
}

func TestQuestionnaireComplete(t *testing.T) {
	q := &Questionnaire{}
	assert.False(t, q.Complete())

	q.BasicInfo = &BasicInfo{StartupName: "Acme"}
	q.Requirements = &Requirements{Timeline: "2-4 weeks"}
	assert.False(t, q.Complete())

	q.Selection = &ServiceSelection{PackageType: "custom"}
	assert.True(t, q.Complete())
}

func TestErrorTaxonomyCodes(t *testing.T) {
	err := AlreadySelected("sprint %s already has a selected package", "abc")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAlreadySelected, e.Code)
	assert.Contains(t, e.Message, "abc")

	_, ok = AsError(assert.AnError)
	assert.False(t, ok)
}
