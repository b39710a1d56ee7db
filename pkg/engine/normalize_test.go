package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

var testWeekStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // a Monday

func TestNormalize_ExpandsRequirements(t *testing.T) {
	templates := []models.ShiftTemplate{
		{ID: "morning", Name: "Morning", StartTime: "08:00", EndTime: "12:00", Color: "#4caf50"},
		{ID: "evening", Name: "Evening", StartTime: "16:00", EndTime: "22:00"},
	}
	requirements := []models.Requirement{
		{DayOfWeek: 0, ShiftTemplateID: "morning", RequiredCount: 2},
		{DayOfWeek: 6, ShiftTemplateID: "evening", RequiredCount: 1},
		{DayOfWeek: 2, ShiftTemplateID: "morning", RequiredCount: 0}, // skipped
	}

	instances, dropped := Normalize(testWeekStart, requirements, templates)
	require.Empty(t, dropped)
	require.Len(t, instances, 2)

	assert.Equal(t, "2026-01-05", instances[0].Date)
	assert.Equal(t, "Morning", instances[0].ShiftName)
	assert.Equal(t, "#4caf50", instances[0].Color)
	assert.Equal(t, 2, instances[0].RequiredCount)
	assert.Equal(t, 0, instances[0].DayIndex)
	assert.InDelta(t, 4.0, instances[0].DurationHours, 0.001)

	assert.Equal(t, "2026-01-11", instances[1].Date)
	assert.Equal(t, 6, instances[1].DayIndex)
	assert.InDelta(t, 6.0, instances[1].DurationHours, 0.001)
}

func TestNormalize_DropsUnknownTemplate(t *testing.T) {
	templates := []models.ShiftTemplate{
		{ID: "morning", Name: "Morning", StartTime: "08:00", EndTime: "12:00"},
	}
	requirements := []models.Requirement{
		{DayOfWeek: 0, ShiftTemplateID: "morning", RequiredCount: 1},
		{DayOfWeek: 1, ShiftTemplateID: "ghost", RequiredCount: 3},
	}

	instances, dropped := Normalize(testWeekStart, requirements, templates)
	require.Len(t, instances, 1)
	require.Len(t, dropped, 1)
	assert.Contains(t, dropped[0], "ghost")
}

func TestNormalize_DropsBadWeekday(t *testing.T) {
	templates := []models.ShiftTemplate{
		{ID: "morning", Name: "Morning", StartTime: "08:00", EndTime: "12:00"},
	}
	requirements := []models.Requirement{
		{DayOfWeek: 7, ShiftTemplateID: "morning", RequiredCount: 1},
	}

	instances, dropped := Normalize(testWeekStart, requirements, templates)
	assert.Empty(t, instances)
	require.Len(t, dropped, 1)
	assert.Contains(t, dropped[0], "day_of_week")
}

func TestDurationHours_OvernightWrap(t *testing.T) {
	d, err := durationHours("22:00", "06:00")
	require.NoError(t, err)
	assert.InDelta(t, 8.0, d, 0.001)

	d, err = durationHours("09:30", "17:15")
	require.NoError(t, err)
	assert.InDelta(t, 7.75, d, 0.001)

	_, err = durationHours("25:00", "06:00")
	require.Error(t, err)
}
