package models

// EligibilityFacts are the registrant facts the scholarship decision is based on.
type EligibilityFacts struct {
	SchoolName                string `json:"school_name"`
	YearsInGeorgia            int    `json:"years_in_georgia" validate:"min=0"`
	EnrolledTwoSemesters      bool   `json:"enrolled_two_semesters"`
	IsRisingKindergarten      bool   `json:"is_rising_kindergarten"`
	ReceivingOtherScholarship bool   `json:"receiving_other_scholarship"`
}

// EligibilityResult explains a scholarship decision. NextSteps is only set
// when Eligible is true; Reasons is never empty.
type EligibilityResult struct {
	Eligible        bool     `json:"eligible"`
	SchoolQualifies bool     `json:"school_qualifies"`
	Reasons         []string `json:"reasons"`
	NextSteps       []string `json:"next_steps,omitempty"`
}
