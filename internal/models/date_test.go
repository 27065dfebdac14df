package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArithmeticAcrossMonthEnd(t *testing.T) {
	d := NewDate(2026, time.January, 30)

	next := d.AddDays(3)

	assert.Equal(t, "2026-02-02", next.String())
	assert.Equal(t, time.Monday, next.Weekday())
	assert.True(t, d.Before(next))
}

func TestDateOfIgnoresZone(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	late := time.Date(2026, time.March, 7, 23, 30, 0, 0, loc)

	assert.Equal(t, "2026-03-07", DateOf(late).String())
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-10"}`), &payload))
	assert.Equal(t, time.Saturday, payload.Date.Weekday())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-01-10"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"01/10/2026"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2026, time.January, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01-17", d.String())

	require.NoError(t, d.Scan([]byte("2026-01-24T00:00:00Z")))
	assert.Equal(t, "2026-01-24", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
