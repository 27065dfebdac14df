package service

import (
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/roster"
)

// Decision messages returned by EvaluateEligibility.
const (
	ReasonSchoolNotQualifying = "Student is not zoned for an eligible Georgia Promise Scholarship school"
	ReasonResidency           = "Parent/guardian must be a Georgia resident for at least 1 year"
	ReasonEnrollment          = "Student must be enrolled in a GA public school for 2 consecutive semesters"
	ReasonOtherScholarship    = "Cannot receive Georgia Promise Scholarship while receiving GA Special Needs Scholarship or SSO funds"
	ReasonAllCriteriaMet      = "All eligibility criteria met!"
)

// EvaluateEligibility decides scholarship eligibility. Every failed check is
// reported; a rising kindergartener satisfies the enrollment requirement
// without an enrollment history.
func EvaluateEligibility(facts models.EligibilityFacts, r *roster.Roster) models.EligibilityResult {
	schoolQualifies := r.Qualifies(facts.SchoolName)
	residencyMet := facts.YearsInGeorgia >= 1
	enrollmentMet := facts.IsRisingKindergarten || facts.EnrolledTwoSemesters

	reasons := make([]string, 0, 4)
	if !schoolQualifies {
		reasons = append(reasons, ReasonSchoolNotQualifying)
	}
	if !residencyMet {
		reasons = append(reasons, ReasonResidency)
	}
	if !enrollmentMet {
		reasons = append(reasons, ReasonEnrollment)
	}
	if facts.ReceivingOtherScholarship {
		reasons = append(reasons, ReasonOtherScholarship)
	}

	if len(reasons) > 0 {
		return models.EligibilityResult{Eligible: false, SchoolQualifies: schoolQualifies, Reasons: reasons}
	}

	var program roster.Program
	if r != nil {
		program = r.Program
	}
	return models.EligibilityResult{
		Eligible:        true,
		SchoolQualifies: true,
		Reasons:         []string{ReasonAllCriteriaMet},
		NextSteps:       scholarshipNextSteps(program),
	}
}

func scholarshipNextSteps(program roster.Program) []string {
	apply := "Apply for the Georgia Promise Scholarship"
	if program.ApplicationSite != "" {
		apply = "Apply at " + program.ApplicationSite
	}
	if program.ApplicationWindow != "" {
		apply += " between " + program.ApplicationWindow
	}
	return []string{
		apply,
		"Prepare proof of residency (GA driver's license or state ID)",
		"Prepare proof of income (most recent federal 1040 tax form)",
		"Prepare proof of enrollment (report card or school letter)",
	}
}
