package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/config"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

type fakeSessionStore struct {
	stored     []models.Session
	listErr    error
	lastFilter models.SessionFilter
	inserted   []models.Session
	insertErr  error
}

func (f *fakeSessionStore) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stored, nil
}

func (f *fakeSessionStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	for i := range f.stored {
		if f.stored[i].ID == id {
			session := f.stored[i]
			return &session, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionStore) InsertMissing(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) (int, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, sessions...)
	return len(sessions), nil
}

// mondayNoon is 2024-01-01, a Monday.
func mondayNoon() time.Time {
	return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
}

func newAvailabilityFixture(store *fakeSessionStore, source string) *AvailabilityService {
	return NewAvailabilityService(store, AvailabilityOptions{
		Source:      source,
		Policy:      DefaultAvailabilityPolicy(),
		HorizonDays: 7,
		Now:         mondayNoon,
	}, nil, nil, nil)
}

func TestAvailabilityServiceGeneratedWindow(t *testing.T) {
	svc := newAvailabilityFixture(&fakeSessionStore{}, config.AvailabilitySourceGenerated)

	sessions, err := svc.Sessions(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 30)
	assert.Equal(t, "2024-01-01", sessions[0].Date.String())
	assert.Equal(t, "2024-01-06", sessions[len(sessions)-1].Date.String())
}

func TestAvailabilityServiceOverlaysBookedSpots(t *testing.T) {
	generated, err := GenerateSessions(models.NewDate(2024, time.January, 1), 7, DefaultAvailabilityPolicy())
	require.NoError(t, err)
	booked := generated[0]
	booked.AvailableSpots = 0
	store := &fakeSessionStore{stored: []models.Session{booked}}
	svc := newAvailabilityFixture(store, config.AvailabilitySourceGenerated)

	sessions, err := svc.Sessions(context.Background(), models.SessionFilter{OnlyAvailable: true})
	require.NoError(t, err)
	assert.Len(t, sessions, 29)
	for _, session := range sessions {
		assert.NotEqual(t, booked.ID, session.ID)
	}
	require.NotNil(t, store.lastFilter.From)
	assert.Equal(t, "2024-01-01", store.lastFilter.From.String())
	assert.Equal(t, "2024-01-07", store.lastFilter.To.String())

	spots, err := svc.SpotsForDate(context.Background(), models.NewDate(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 50, spots)
}

func TestAvailabilityServiceAppliesTimezone(t *testing.T) {
	newYork := time.FixedZone("EST", -5*60*60)
	svc := NewAvailabilityService(&fakeSessionStore{}, AvailabilityOptions{
		Policy:   DefaultAvailabilityPolicy(),
		Location: newYork,
		Now:      func() time.Time { return time.Date(2024, time.January, 2, 3, 0, 0, 0, time.UTC) },
	}, nil, nil, nil)

	assert.Equal(t, "2024-01-01", svc.Today().String())
}

func TestAvailabilityServicePersistedMode(t *testing.T) {
	level := models.GradeLevelG35
	store := &fakeSessionStore{stored: []models.Session{{
		ID: "stored-1", Date: models.NewDate(2025, time.January, 4), GradeLevel: &level,
		ProgramType: models.ProgramTypeK12, StartTime: "8:00 AM", EndTime: "9:30 AM", Capacity: 15, AvailableSpots: 3,
	}}}
	svc := newAvailabilityFixture(store, config.AvailabilitySourcePersisted)

	filter, err := svc.ParseQuery(dto.SessionQuery{From: "2025-01-01", GradeLevel: "G35", Available: true})
	require.NoError(t, err)

	sessions, err := svc.Sessions(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "stored-1", sessions[0].ID)
	assert.True(t, store.lastFilter.OnlyAvailable)
	assert.Equal(t, models.GradeLevelG35, store.lastFilter.GradeLevel)

	dates, err := svc.AvailableDates(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, 3, dates[0].AvailableSpots)
}

func TestAvailabilityServiceParseQueryRejectsInvertedRange(t *testing.T) {
	svc := newAvailabilityFixture(&fakeSessionStore{}, config.AvailabilitySourceGenerated)

	_, err := svc.ParseQuery(dto.SessionQuery{From: "2025-02-01", To: "2025-01-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ParseQuery(dto.SessionQuery{GradeLevel: "G1"})
	require.Error(t, err)
}

func TestAvailabilityServiceSessionLookup(t *testing.T) {
	level := models.GradeLevelG912
	past := models.Session{ID: "past-1", Date: models.NewDate(2023, time.December, 2), GradeLevel: &level, ProgramType: models.ProgramTypeK12}
	store := &fakeSessionStore{stored: []models.Session{past}}
	svc := newAvailabilityFixture(store, config.AvailabilitySourceGenerated)

	generated, err := GenerateSessions(models.NewDate(2024, time.January, 1), 7, DefaultAvailabilityPolicy())
	require.NoError(t, err)

	session, err := svc.Session(context.Background(), generated[4].ID)
	require.NoError(t, err)
	assert.Equal(t, generated[4], *session)

	_, err = svc.Session(context.Background(), "past-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Session(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServicePersist(t *testing.T) {
	store := &fakeSessionStore{}
	metrics := NewMetricsService()
	svc := NewAvailabilityService(store, AvailabilityOptions{Policy: DefaultAvailabilityPolicy(), HorizonDays: 14, Now: mondayNoon}, nil, metrics, nil)

	resp, err := svc.Persist(context.Background(), dto.GenerateSessionsRequest{StartDate: "2024-01-06", HorizonDays: 1})
	require.NoError(t, err)
	assert.Equal(t, 15, resp.Generated)
	assert.Equal(t, 15, resp.Inserted)
	assert.Equal(t, "2024-01-06", resp.From.String())
	assert.Equal(t, "2024-01-06", resp.To.String())
	assert.Len(t, store.inserted, 15)

	resp, err = svc.Persist(context.Background(), dto.GenerateSessionsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", resp.From.String())
	assert.Equal(t, "2024-01-14", resp.To.String())
}

func TestAvailabilityServiceWrapsStoreErrors(t *testing.T) {
	store := &fakeSessionStore{listErr: errors.New("db down")}
	svc := newAvailabilityFixture(store, config.AvailabilitySourceGenerated)

	_, err := svc.Sessions(context.Background(), models.SessionFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceHidesPastSessions(t *testing.T) {
	level := models.GradeLevelG35
	past := models.Session{ID: "past", Date: models.NewDate(2023, time.December, 1), GradeLevel: &level,
		ProgramType: models.ProgramTypeK12, Capacity: 15, AvailableSpots: 15}
	today := models.Session{ID: "today", Date: models.NewDate(2024, time.January, 1), GradeLevel: &level,
		ProgramType: models.ProgramTypeK12, Capacity: 15, AvailableSpots: 2}
	store := &fakeSessionStore{stored: []models.Session{past, today}}
	svc := newAvailabilityFixture(store, config.AvailabilitySourcePersisted)

	_, err := svc.Session(context.Background(), "past")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	session, err := svc.Session(context.Background(), "today")
	require.NoError(t, err)
	assert.Equal(t, "today", session.ID)

	_, err = svc.Sessions(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	require.NotNil(t, store.lastFilter.From)
	assert.Equal(t, "2024-01-01", store.lastFilter.From.String())

	from := models.NewDate(2023, time.November, 1)
	_, err = svc.Sessions(context.Background(), models.SessionFilter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", store.lastFilter.From.String())

	store.lastFilter = models.SessionFilter{}
	to := models.NewDate(2023, time.December, 31)
	sessions, err := svc.Sessions(context.Background(), models.SessionFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Nil(t, store.lastFilter.From)

	spots, err := svc.SpotsForDate(context.Background(), models.NewDate(2023, time.December, 1))
	require.NoError(t, err)
	assert.Zero(t, spots)
}

func TestRegistrationStartRejectsPastSession(t *testing.T) {
	level := models.GradeLevelG35
	store := &fakeSessionStore{stored: []models.Session{{ID: "past", Date: models.NewDate(2023, time.December, 1),
		GradeLevel: &level, ProgramType: models.ProgramTypeK12, Capacity: 15, AvailableSpots: 15}}}
	availability := newAvailabilityFixture(store, config.AvailabilitySourceGenerated)
	drafts := newMemoryDraftStore()
	registrations := NewRegistrationService(drafts, availability, time.Hour, nil, nil)

	_, err := registrations.Start(context.Background(), dto.StartRegistrationRequest{SessionID: "past"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, drafts.drafts)
}
