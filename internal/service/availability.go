package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

// sessionNamespace seeds the name-based UUIDs of generated sessions so the
// same slot always gets the same identifier.
var sessionNamespace = uuid.MustParse("6f1d2a8e-3c4b-5e7f-9a0b-1c2d3e4f5a6b")

// TimeSlot is a wall-clock slot. Start and End are displayed verbatim.
type TimeSlot struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// GradeBand pairs a band with the capacity of each of its sessions.
type GradeBand struct {
	Level    models.GradeLevel `yaml:"level" json:"level"`
	Capacity int               `yaml:"capacity" json:"capacity"`
}

// AdultProgramPolicy configures the category-less adult sessions.
type AdultProgramPolicy struct {
	Enabled       bool       `yaml:"enabled" json:"enabled"`
	WeekdaySlots  []TimeSlot `yaml:"weekday_slots" json:"weekday_slots"`
	SaturdaySlots []TimeSlot `yaml:"saturday_slots" json:"saturday_slots"`
	Capacity      int        `yaml:"capacity" json:"capacity"`
}

// AvailabilityPolicy describes how bookable sessions are laid out over a
// date window.
type AvailabilityPolicy struct {
	HorizonDays   int                `yaml:"horizon_days" json:"horizon_days"`
	WeekdaySlot   TimeSlot           `yaml:"weekday_slot" json:"weekday_slot"`
	SaturdaySlots []TimeSlot         `yaml:"saturday_slots" json:"saturday_slots"`
	GradeBands    []GradeBand        `yaml:"grade_bands" json:"grade_bands"`
	Adult         AdultProgramPolicy `yaml:"adult" json:"adult"`
	Locations     []string           `yaml:"locations" json:"locations"`
}

// DefaultAvailabilityPolicy is the 180-day rolling window: weekday afternoons
// and five Saturday slots for three grade bands of 25.
func DefaultAvailabilityPolicy() AvailabilityPolicy {
	return AvailabilityPolicy{
		HorizonDays: 180,
		WeekdaySlot: TimeSlot{Start: "4:00 PM", End: "5:30 PM"},
		SaturdaySlots: []TimeSlot{
			{Start: "8:00 AM", End: "9:30 AM"},
			{Start: "10:00 AM", End: "11:30 AM"},
			{Start: "12:00 PM", End: "1:30 PM"},
			{Start: "2:00 PM", End: "3:30 PM"},
			{Start: "4:00 PM", End: "5:30 PM"},
		},
		GradeBands: []GradeBand{
			{Level: models.GradeLevelG35, Capacity: 25},
			{Level: models.GradeLevelG68, Capacity: 25},
			{Level: models.GradeLevelG912, Capacity: 25},
		},
		Adult: AdultProgramPolicy{
			WeekdaySlots: []TimeSlot{{Start: "6:00 PM", End: "7:30 PM"}},
			SaturdaySlots: []TimeSlot{
				{Start: "10:00 AM", End: "11:30 AM"},
				{Start: "2:00 PM", End: "3:30 PM"},
			},
			Capacity: 20,
		},
		Locations: []string{"WW Law Center"},
	}
}

// LoadAvailabilityPolicy overlays the YAML document at path on the default
// policy. An empty path yields the default policy.
func LoadAvailabilityPolicy(path string) (AvailabilityPolicy, error) {
	policy := DefaultAvailabilityPolicy()
	if path == "" {
		return policy, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AvailabilityPolicy{}, fmt.Errorf("read availability policy %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return AvailabilityPolicy{}, fmt.Errorf("decode availability policy %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return AvailabilityPolicy{}, err
	}
	return policy, nil
}

// Validate checks the policy can produce well-formed sessions.
func (p AvailabilityPolicy) Validate() error {
	if p.HorizonDays < 0 {
		return fmt.Errorf("availability policy: horizon_days must not be negative")
	}
	if len(p.GradeBands) == 0 {
		return fmt.Errorf("availability policy: at least one grade band is required")
	}
	for _, band := range p.GradeBands {
		if !band.Level.Valid() {
			return fmt.Errorf("availability policy: unknown grade band %q", band.Level)
		}
		if band.Capacity <= 0 {
			return fmt.Errorf("availability policy: grade band %s needs a positive capacity", band.Level)
		}
	}
	if p.WeekdaySlot.Start == "" || p.WeekdaySlot.End == "" {
		return fmt.Errorf("availability policy: weekday slot is required")
	}
	if p.Adult.Enabled && p.Adult.Capacity <= 0 {
		return fmt.Errorf("availability policy: adult program needs a positive capacity")
	}
	return nil
}

func (p AvailabilityPolicy) locationFor(dayOffset int) string {
	if len(p.Locations) == 0 {
		return ""
	}
	return p.Locations[dayOffset%len(p.Locations)]
}

// GenerateSessions lays out every bookable session in [start, start+horizonDays).
// Sundays are skipped. Saturdays get one session per Saturday slot and grade
// band, other days one session per band on the weekday slot. Adult sessions,
// when enabled, follow the K-12 sessions of the same day. Every session starts
// at full capacity.
func GenerateSessions(start models.Date, horizonDays int, policy AvailabilityPolicy) ([]models.Session, error) {
	if horizonDays < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "horizon days must not be negative")
	}
	if start.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "start date is required")
	}

	sessions := make([]models.Session, 0, horizonDays*len(policy.GradeBands))
	for offset := 0; offset < horizonDays; offset++ {
		day := start.AddDays(offset)
		weekday := day.Weekday()
		if weekday == time.Sunday {
			continue
		}

		location := policy.locationFor(offset)
		k12Slots := []TimeSlot{policy.WeekdaySlot}
		adultSlots := policy.Adult.WeekdaySlots
		if weekday == time.Saturday {
			k12Slots = policy.SaturdaySlots
			adultSlots = policy.Adult.SaturdaySlots
		}

		for _, slot := range k12Slots {
			for _, band := range policy.GradeBands {
				level := band.Level
				sessions = append(sessions, newGeneratedSession(day, models.ProgramTypeK12, &level, slot, location, band.Capacity))
			}
		}

		if !policy.Adult.Enabled {
			continue
		}
		for _, slot := range adultSlots {
			sessions = append(sessions, newGeneratedSession(day, models.ProgramTypeAdult, nil, slot, location, policy.Adult.Capacity))
		}
	}
	return sessions, nil
}

func newGeneratedSession(day models.Date, program models.ProgramType, level *models.GradeLevel, slot TimeSlot, location string, capacity int) models.Session {
	band := ""
	if level != nil {
		band = string(*level)
	}
	key := strings.Join([]string{day.String(), string(program), band, slot.Start, slot.End, location}, "|")
	return models.Session{
		ID:             uuid.NewSHA1(sessionNamespace, []byte(key)).String(),
		Date:           day,
		GradeLevel:     level,
		ProgramType:    program,
		StartTime:      slot.Start,
		EndTime:        slot.End,
		Location:       location,
		Capacity:       capacity,
		AvailableSpots: capacity,
	}
}

// FilterAvailable keeps sessions with at least one open spot, in order.
func FilterAvailable(sessions []models.Session) []models.Session {
	available := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.AvailableSpots > 0 {
			available = append(available, session)
		}
	}
	return available
}

// AvailableDates returns, in first-seen order, the distinct dates whose
// sessions have open spots in total.
func AvailableDates(sessions []models.Session) []models.DateAvailability {
	totals := make(map[string]int)
	order := make([]models.Date, 0)
	for _, session := range sessions {
		key := session.Date.String()
		if _, seen := totals[key]; !seen {
			order = append(order, session.Date)
		}
		totals[key] += session.AvailableSpots
	}

	dates := make([]models.DateAvailability, 0, len(order))
	for _, date := range order {
		if spots := totals[date.String()]; spots > 0 {
			dates = append(dates, models.DateAvailability{Date: date, AvailableSpots: spots})
		}
	}
	return dates
}

// SpotsForDate sums the open spots of the sessions on date.
func SpotsForDate(sessions []models.Session, date models.Date) int {
	total := 0
	for _, session := range sessions {
		if session.Date.Equal(date) {
			total += session.AvailableSpots
		}
	}
	return total
}

// matchesSessionFilter applies a listing filter in memory.
func matchesSessionFilter(session models.Session, filter models.SessionFilter) bool {
	if filter.From != nil && session.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && session.Date.After(*filter.To) {
		return false
	}
	if filter.GradeLevel != "" && (session.GradeLevel == nil || *session.GradeLevel != filter.GradeLevel) {
		return false
	}
	if filter.ProgramType != "" && session.ProgramType != filter.ProgramType {
		return false
	}
	if filter.OnlyAvailable && session.AvailableSpots <= 0 {
		return false
	}
	return true
}
