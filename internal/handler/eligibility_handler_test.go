package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rootwork-enrollment-api/internal/dto"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

func eligibilityRouter() http.Handler {
	h := NewEligibilityHandler(service.NewEligibilityService(nil, service.DefaultPricing(), nil, nil, nil))
	r := newTestRouter()
	r.POST("/eligibility", h.Evaluate)
	r.POST("/payments/quote", h.Quote)
	r.GET("/scholarship", h.Scholarship)
	return r
}

const qualifyingFacts = `{"school_name":"Robert W. Gadsden Elementary School","years_in_georgia":3,"enrolled_two_semesters":true}`

func TestEligibilityHandlerEvaluate(t *testing.T) {
	r := eligibilityRouter()

	w, env := performRequest(t, r, http.MethodPost, "/eligibility", []byte(qualifyingFacts), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result models.EligibilityResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Eligible)
	assert.Equal(t, []string{service.ReasonAllCriteriaMet}, result.Reasons)

	w, env = performRequest(t, r, http.MethodPost, "/eligibility", []byte(`{"school_name":"Nowhere Academy","years_in_georgia":0}`), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Eligible)
	assert.Contains(t, result.Reasons, service.ReasonSchoolNotQualifying)
	assert.Contains(t, result.Reasons, service.ReasonResidency)
	assert.Empty(t, result.NextSteps)

	w, _ = performRequest(t, r, http.MethodPost, "/eligibility", []byte(`not json`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEligibilityHandlerQuote(t *testing.T) {
	r := eligibilityRouter()

	body := []byte(`{"facts":` + qualifyingFacts + `,"payment_type":"gps","include_curriculum":true}`)
	w, env := performRequest(t, r, http.MethodPost, "/payments/quote", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var quote dto.QuoteResponse
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.Equal(t, models.PaymentTypeScholarship, quote.Breakdown.PaymentType)
	assert.True(t, quote.Breakdown.SessionCost.IsZero())
	assert.Equal(t, "35", quote.Breakdown.TotalDueNow.String())
	assert.Equal(t, "usd", quote.Currency)

	body = []byte(`{"facts":{"school_name":"Nowhere Academy"},"payment_type":"scholarship"}`)
	w, env = performRequest(t, r, http.MethodPost, "/payments/quote", body, nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, env.Error.Code)

	body = []byte(`{"facts":{},"payment_type":"card"}`)
	w, _ = performRequest(t, r, http.MethodPost, "/payments/quote", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEligibilityHandlerScholarship(t *testing.T) {
	w, env := performRequest(t, eligibilityRouter(), http.MethodGet, "/scholarship", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info dto.ScholarshipInfoResponse
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "Georgia Promise Scholarship", info.Program.Name)
	assert.NotEmpty(t, info.QualifyingSchools)
}
