package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationStepOrder(t *testing.T) {
	assert.Equal(t, 0, StepBasicInfo.Index())
	assert.Equal(t, 5, StepReview.Index())
	assert.Equal(t, -1, RegistrationStep("payment").Index())

	assert.Equal(t, StepSchoolInfo, StepBasicInfo.Next())
	assert.Equal(t, StepReview, StepMedical.Next())
	assert.Equal(t, StepReview, StepReview.Next())
}

func TestDraftFacts(t *testing.T) {
	var empty *RegistrationDraft
	assert.Equal(t, EligibilityFacts{}, empty.Facts())

	draft := &RegistrationDraft{School: &SchoolInfo{
		CurrentSchool:              "DeRenne Middle School",
		YearsInGeorgia:             3,
		EnrolledTwoSemesters:       true,
		ReceivingOtherScholarships: true,
	}}

	facts := draft.Facts()
	assert.Equal(t, "DeRenne Middle School", facts.SchoolName)
	assert.Equal(t, 3, facts.YearsInGeorgia)
	assert.True(t, facts.EnrolledTwoSemesters)
	assert.False(t, facts.IsRisingKindergarten)
	assert.True(t, facts.ReceivingOtherScholarship)
}
