package models

import "time"

// RegistrationStep names a state of the registration wizard.
type RegistrationStep string

// Wizard states in order. Review is terminal and carries no payload.
const (
	StepBasicInfo        RegistrationStep = "basic-info"
	StepSchoolInfo       RegistrationStep = "school-info"
	StepGuardianInfo     RegistrationStep = "guardian-info"
	StepEmergencyContact RegistrationStep = "emergency-contact"
	StepMedical          RegistrationStep = "medical"
	StepReview           RegistrationStep = "review"
)

// RegistrationSteps lists the wizard states in traversal order.
var RegistrationSteps = []RegistrationStep{
	StepBasicInfo,
	StepSchoolInfo,
	StepGuardianInfo,
	StepEmergencyContact,
	StepMedical,
	StepReview,
}

// Index returns the position of the step, or -1 for unknown steps.
func (s RegistrationStep) Index() int {
	for i, step := range RegistrationSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the following step. Review is its own successor.
func (s RegistrationStep) Next() RegistrationStep {
	idx := s.Index()
	if idx < 0 || idx >= len(RegistrationSteps)-1 {
		return StepReview
	}
	return RegistrationSteps[idx+1]
}

// BasicInfo is the first wizard section.
type BasicInfo struct {
	FirstName   string      `json:"first_name" validate:"required,max=100"`
	LastName    string      `json:"last_name" validate:"required,max=100"`
	DateOfBirth string      `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	ProgramType ProgramType `json:"program_type" validate:"required,oneof=K12 ADULT"`
	GradeLevel  string      `json:"grade_level" validate:"required_if=ProgramType K12,max=20"`
}

// SchoolInfo carries the scholarship eligibility facts.
type SchoolInfo struct {
	CurrentSchool              string `json:"current_school" validate:"max=200"`
	YearsInGeorgia             int    `json:"years_in_georgia" validate:"min=0,max=120"`
	EnrolledTwoSemesters       bool   `json:"enrolled_two_semesters"`
	IsRisingKindergarten       bool   `json:"is_rising_kindergarten"`
	ReceivingOtherScholarships bool   `json:"receiving_other_scholarships"`
}

// GuardianInfo is the parent or guardian section.
type GuardianInfo struct {
	ParentName  string `json:"parent_name" validate:"required,max=200"`
	ParentEmail string `json:"parent_email" validate:"required,email"`
	ParentPhone string `json:"parent_phone" validate:"required,min=7,max=30"`
}

// EmergencyContact is the emergency contact section.
type EmergencyContact struct {
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,min=7,max=30"`
	Relation string `json:"relation" validate:"required,max=100"`
}

// MedicalInfo is the optional medical section.
type MedicalInfo struct {
	Allergies    string `json:"allergies" validate:"max=1000"`
	Medications  string `json:"medications" validate:"max=1000"`
	SpecialNeeds string `json:"special_needs" validate:"max=1000"`
}

// RegistrationDraft is the server-side state of one wizard run. Step is the
// next section to fill; every earlier section is complete.
type RegistrationDraft struct {
	Token     string            `json:"token"`
	SessionID string            `json:"session_id"`
	Step      RegistrationStep  `json:"step"`
	Basic     *BasicInfo        `json:"basic_info,omitempty"`
	School    *SchoolInfo       `json:"school_info,omitempty"`
	Guardian  *GuardianInfo     `json:"guardian_info,omitempty"`
	Emergency *EmergencyContact `json:"emergency_contact,omitempty"`
	Medical   *MedicalInfo      `json:"medical,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Facts extracts the eligibility facts captured by the school section.
func (d *RegistrationDraft) Facts() EligibilityFacts {
	if d == nil || d.School == nil {
		return EligibilityFacts{}
	}
	return EligibilityFacts{
		SchoolName:                d.School.CurrentSchool,
		YearsInGeorgia:            d.School.YearsInGeorgia,
		EnrolledTwoSemesters:      d.School.EnrolledTwoSemesters,
		IsRisingKindergarten:      d.School.IsRisingKindergarten,
		ReceivingOtherScholarship: d.School.ReceivingOtherScholarships,
	}
}
