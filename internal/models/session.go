package models

// GradeLevel identifies the grade band a K-12 session is offered to.
type GradeLevel string

// Grade bands in display order.
const (
	GradeLevelG35  GradeLevel = "G35"
	GradeLevelG68  GradeLevel = "G68"
	GradeLevelG912 GradeLevel = "G912"
)

var gradeLevelLabels = map[GradeLevel]string{
	GradeLevelG35:  "3rd-5th",
	GradeLevelG68:  "6th-8th",
	GradeLevelG912: "9th-12th",
}

// Label returns the human readable band name.
func (g GradeLevel) Label() string {
	if label, ok := gradeLevelLabels[g]; ok {
		return label
	}
	return string(g)
}

// Valid reports whether g is a known band.
func (g GradeLevel) Valid() bool {
	_, ok := gradeLevelLabels[g]
	return ok
}

// ProgramType separates the K-12 program from the adult program.
type ProgramType string

const (
	ProgramTypeK12   ProgramType = "K12"
	ProgramTypeAdult ProgramType = "ADULT"
)

// Session is a single bookable time slot.
type Session struct {
	ID             string      `db:"id" json:"id"`
	Date           Date        `db:"session_date" json:"date"`
	GradeLevel     *GradeLevel `db:"grade_level" json:"grade_level"`
	ProgramType    ProgramType `db:"program_type" json:"program_type"`
	StartTime      string      `db:"start_time" json:"start_time"`
	EndTime        string      `db:"end_time" json:"end_time"`
	Location       string      `db:"location" json:"location"`
	Capacity       int         `db:"capacity" json:"capacity"`
	AvailableSpots int         `db:"available_spots" json:"available_spots"`
}

// TimeRange renders the verbatim start/end pair.
func (s Session) TimeRange() string {
	return s.StartTime + " - " + s.EndTime
}

// GradeLabel returns the band label or the program name for adult sessions.
func (s Session) GradeLabel() string {
	if s.GradeLevel == nil {
		return "Adult"
	}
	return s.GradeLevel.Label()
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	From          *Date
	To            *Date
	GradeLevel    GradeLevel
	ProgramType   ProgramType
	OnlyAvailable bool
}

// DateAvailability aggregates remaining spots for one calendar date.
type DateAvailability struct {
	Date           Date `json:"date"`
	AvailableSpots int  `json:"available_spots"`
}
