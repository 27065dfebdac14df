package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
)

func qualifyingSchool(t *testing.T, r *roster.Roster) string {
	t.Helper()
	require.NotEmpty(t, r.QualifyingSchools)
	return r.QualifyingSchools[0].Name
}

func TestEvaluateEligibilityEligible(t *testing.T) {
	r := roster.Default()
	facts := models.EligibilityFacts{
		SchoolName:           qualifyingSchool(t, r),
		YearsInGeorgia:       1,
		EnrolledTwoSemesters: true,
	}

	result := EvaluateEligibility(facts, r)

	assert.True(t, result.Eligible)
	assert.True(t, result.SchoolQualifies)
	assert.Equal(t, []string{ReasonAllCriteriaMet}, result.Reasons)
	require.Len(t, result.NextSteps, 4)
	assert.Equal(t, "Apply at "+r.Program.ApplicationSite+" between "+r.Program.ApplicationWindow, result.NextSteps[0])
	assert.Contains(t, result.NextSteps[1], "residency")
	assert.Contains(t, result.NextSteps[2], "income")
	assert.Contains(t, result.NextSteps[3], "enrollment")
}

func TestEvaluateEligibilityReportsEveryFailureInOrder(t *testing.T) {
	facts := models.EligibilityFacts{
		SchoolName:                "Unknown Academy",
		YearsInGeorgia:            0,
		ReceivingOtherScholarship: true,
	}

	result := EvaluateEligibility(facts, roster.Default())

	assert.False(t, result.Eligible)
	assert.False(t, result.SchoolQualifies)
	assert.Equal(t, []string{
		ReasonSchoolNotQualifying,
		ReasonResidency,
		ReasonEnrollment,
		ReasonOtherScholarship,
	}, result.Reasons)
	assert.Empty(t, result.NextSteps)
}

func TestEvaluateEligibilityRisingKindergarten(t *testing.T) {
	r := roster.Default()
	facts := models.EligibilityFacts{
		SchoolName:           qualifyingSchool(t, r),
		YearsInGeorgia:       3,
		EnrolledTwoSemesters: false,
		IsRisingKindergarten: true,
	}

	result := EvaluateEligibility(facts, r)
	assert.True(t, result.Eligible)
}

func TestEvaluateEligibilitySchoolMatchIgnoresCase(t *testing.T) {
	r := roster.Default()
	facts := models.EligibilityFacts{
		SchoolName:           strings.ToUpper(qualifyingSchool(t, r)),
		YearsInGeorgia:       2,
		EnrolledTwoSemesters: true,
	}

	assert.True(t, EvaluateEligibility(facts, r).SchoolQualifies)
}

func TestEvaluateEligibilityEmptyFacts(t *testing.T) {
	result := EvaluateEligibility(models.EligibilityFacts{}, roster.Default())
	assert.False(t, result.Eligible)
	assert.Len(t, result.Reasons, 3)

	withoutRoster := EvaluateEligibility(models.EligibilityFacts{SchoolName: "Any"}, nil)
	assert.False(t, withoutRoster.SchoolQualifies)
	assert.Equal(t, ReasonSchoolNotQualifying, withoutRoster.Reasons[0])
}

func TestEvaluateEligibilityIsDeterministic(t *testing.T) {
	r := roster.Default()
	facts := models.EligibilityFacts{SchoolName: "Nowhere", YearsInGeorgia: 5}
	assert.Equal(t, EvaluateEligibility(facts, r), EvaluateEligibility(facts, r))
}
