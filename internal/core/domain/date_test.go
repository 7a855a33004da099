package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
)

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*60*60)
	late := time.Date(2026, time.October, 15, 23, 30, 0, 0, madrid)

	assert.True(t, domain.DateOf(late).Equal(domain.NewDate(2026, time.October, 15)))
}

func TestDate_Ordering(t *testing.T) {
	d := domain.NewDate(2026, time.December, 31)
	next := d.AddDays(1)

	assert.True(t, d.Before(next))
	assert.True(t, next.After(d))
	assert.Equal(t, "2027-01-01", next.String())
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		OpensOn domain.Date `json:"opens_on"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"opens_on":"2026-10-20"}`), &payload))
	assert.True(t, payload.OpensOn.Equal(domain.NewDate(2026, time.October, 20)))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"opens_on":"2026-10-20"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"opens_on":"20/10/2026"}`), &payload))
}
