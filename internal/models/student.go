package models

import "time"

// Student represents a registrant together with guardian, emergency and
// medical details collected by the registration wizard.
type Student struct {
	ID                string     `db:"id" json:"id"`
	FirstName         string     `db:"first_name" json:"first_name"`
	LastName          string     `db:"last_name" json:"last_name"`
	DateOfBirth       *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	GradeLevel        *string    `db:"grade_level" json:"grade_level,omitempty"`
	CurrentSchool     *string    `db:"current_school" json:"current_school,omitempty"`
	ParentName        string     `db:"parent_name" json:"parent_name"`
	ParentEmail       string     `db:"parent_email" json:"parent_email"`
	ParentPhone       string     `db:"parent_phone" json:"parent_phone"`
	EmergencyName     string     `db:"emergency_name" json:"emergency_name"`
	EmergencyPhone    string     `db:"emergency_phone" json:"emergency_phone"`
	EmergencyRelation string     `db:"emergency_relation" json:"emergency_relation"`
	Allergies         *string    `db:"allergies" json:"allergies,omitempty"`
	Medications       *string    `db:"medications" json:"medications,omitempty"`
	SpecialNeeds      *string    `db:"special_needs" json:"special_needs,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
