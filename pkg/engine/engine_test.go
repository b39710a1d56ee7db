package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

// weekDates is a Monday-first week used across the tests.
var weekDates = []string{
	"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08",
	"2026-01-09", "2026-01-10", "2026-01-11",
}

// morningWeek builds one "Morning" 08:00-12:00 instance per day with the
// given required count.
func morningWeek(required int) []models.ShiftInstance {
	instances := make([]models.ShiftInstance, 0, 7)
	for i, date := range weekDates {
		instances = append(instances, models.ShiftInstance{
			Date:            date,
			ShiftTemplateID: "morning",
			ShiftName:       "Morning",
			StartTime:       "08:00",
			EndTime:         "12:00",
			DurationHours:   4,
			RequiredCount:   required,
			DayIndex:        i,
		})
	}
	return instances
}

// fullAvailability marks every staff member available for every instance.
func fullAvailability(staffIDs []string, instances []models.ShiftInstance) models.Availability {
	avail := make(models.Availability)
	for _, id := range staffIDs {
		avail[id] = make(map[string]map[string]bool)
		for _, inst := range instances {
			if avail[id][inst.Date] == nil {
				avail[id][inst.Date] = make(map[string]bool)
			}
			avail[id][inst.Date][inst.ShiftTemplateID] = true
		}
	}
	return avail
}

func countSeverity(warnings []models.Warning, severity string) int {
	n := 0
	for _, w := range warnings {
		if w.Severity == severity {
			n++
		}
	}
	return n
}

func TestGenerate_EvenSplit(t *testing.T) {
	staff := []string{"A", "B"}
	instances := morningWeek(1)
	avail := fullAvailability(staff, instances)

	result, err := New(DefaultOptions()).Generate(instances, avail, staff)
	require.NoError(t, err)

	assert.Equal(t, 7, result.Stats.TotalShiftsRequired)
	assert.Equal(t, 7, result.Stats.TotalShiftsFilled)
	assert.Equal(t, 100, result.Stats.CoveragePercent)

	// 7 shifts over 2 equally available staff split 4/3.
	counts := []int{result.StaffShiftCount["A"], result.StaffShiftCount["B"]}
	assert.ElementsMatch(t, []int{4, 3}, counts)
	assert.InDelta(t, 28.0, result.StaffHours["A"]+result.StaffHours["B"], 0.01)

	assert.Zero(t, countSeverity(result.Warnings, models.SeverityCritical))
	assert.Zero(t, countSeverity(result.Warnings, models.SeverityWarning))
	assert.Greater(t, result.Stats.FairnessScore, 80.0)
}

func TestGenerate_EvenDivisionIsPerfectlyFair(t *testing.T) {
	staff := []string{"A", "B"}
	instances := morningWeek(2) // 14 slots divide evenly over 2 staff
	avail := fullAvailability(staff, instances)

	result, err := New(DefaultOptions()).Generate(instances, avail, staff)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Stats.FairnessScore)
	assert.Equal(t, result.StaffShiftCount["A"], result.StaffShiftCount["B"])
	assert.Equal(t, result.StaffHours["A"], result.StaffHours["B"])
}

func TestGenerate_Deterministic(t *testing.T) {
	staff := []string{"C", "A", "B"}
	instances := morningWeek(2)
	avail := fullAvailability(staff, instances)
	gen := New(DefaultOptions())

	first, err := gen.Generate(instances, avail, staff)
	require.NoError(t, err)
	second, err := gen.Generate(instances, avail, staff)
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, first.StaffHours, second.StaffHours)
}

func TestGenerate_SingleStaffAbsorbsWeek(t *testing.T) {
	staff := []string{"A", "B"}
	instances := morningWeek(1)
	avail := fullAvailability([]string{"A"}, instances) // B never available

	result, err := New(Options{WeeklyHourLimit: 20, MaxConsecutiveDays: 5}).Generate(instances, avail, staff)
	require.NoError(t, err)

	assert.Equal(t, 7, result.StaffShiftCount["A"])
	assert.Zero(t, result.StaffShiftCount["B"])
	assert.InDelta(t, 28.0, result.StaffHours["A"], 0.01)
	assert.Equal(t, 100, result.Stats.CoveragePercent)

	// One person doing everything scores the bottom of the fairness range.
	assert.Equal(t, 0.0, result.Stats.FairnessScore)

	var overwork, consecutive bool
	for _, w := range result.Warnings {
		if w.Severity == models.SeverityWarning && w.StaffID == "A" {
			switch {
			case w.Message == "A is assigned 28.0h this week, over the 20.0h limit":
				overwork = true
			case w.Message == "A works 7 consecutive days, over the 5-day limit":
				consecutive = true
			}
		}
	}
	assert.True(t, overwork, "expected an overwork warning for A")
	assert.True(t, consecutive, "expected a consecutive-days warning for A")
}

func TestGenerate_Understaffed(t *testing.T) {
	staff := []string{"A", "B"}
	instances := morningWeek(2)
	avail := fullAvailability([]string{"A"}, instances)

	result, err := New(DefaultOptions()).Generate(instances, avail, staff)
	require.NoError(t, err)

	assert.Equal(t, 14, result.Stats.TotalShiftsRequired)
	assert.Equal(t, 7, result.Stats.TotalShiftsFilled)
	assert.Equal(t, 50, result.Stats.CoveragePercent)

	understaffed := 0
	for _, w := range result.Warnings {
		if w.Severity == models.SeverityWarning && w.ShiftTemplateID == "morning" {
			understaffed++
		}
	}
	assert.Equal(t, 7, understaffed)
}

func TestGenerate_EmptyStaff(t *testing.T) {
	instances := morningWeek(1)

	result, err := New(DefaultOptions()).Generate(instances, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Assignments)
	assert.Equal(t, 0, result.Stats.CoveragePercent)
	assert.Equal(t, 7, result.Stats.TotalShiftsRequired)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, models.SeverityCritical, result.Warnings[0].Severity)
}

func TestGenerate_FullyBlocked(t *testing.T) {
	staff := []string{"A", "B"}
	instances := morningWeek(1)

	// Demand exists but nobody is available anywhere.
	result, err := New(DefaultOptions()).Generate(instances, models.Availability{}, staff)
	require.NoError(t, err)

	assert.Empty(t, result.Assignments)
	assert.Equal(t, 0, result.Stats.TotalShiftsFilled)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, models.SeverityCritical, result.Warnings[0].Severity)
	assert.Contains(t, result.Warnings[0].Message, "cannot generate")

	// Staff still appear in the totals with zero hours.
	assert.Equal(t, 0.0, result.StaffHours["A"])
	assert.Equal(t, 0, result.StaffShiftCount["B"])
}

func TestGenerate_NoOverlappingDoubleBooking(t *testing.T) {
	staff := []string{"A"}
	instances := []models.ShiftInstance{
		{Date: "2026-01-05", ShiftTemplateID: "open", ShiftName: "Opening", StartTime: "08:00", EndTime: "14:00", DurationHours: 6, RequiredCount: 1, DayIndex: 0},
		{Date: "2026-01-05", ShiftTemplateID: "mid", ShiftName: "Midday", StartTime: "12:00", EndTime: "18:00", DurationHours: 6, RequiredCount: 1, DayIndex: 0},
	}
	avail := fullAvailability(staff, instances)

	result, err := New(DefaultOptions()).Generate(instances, avail, staff)
	require.NoError(t, err)

	// A can only take one of the two overlapping shifts.
	require.Len(t, result.Assignments["A"]["2026-01-05"], 1)
	assert.Equal(t, 1, result.Stats.TotalShiftsFilled)
	assert.Equal(t, 1, countSeverity(result.Warnings, models.SeverityCritical))
}

func TestGenerate_SameDayDoubleOnlyWhenUnavoidable(t *testing.T) {
	instances := []models.ShiftInstance{
		{Date: "2026-01-05", ShiftTemplateID: "open", ShiftName: "Opening", StartTime: "08:00", EndTime: "12:00", DurationHours: 4, RequiredCount: 1, DayIndex: 0},
		{Date: "2026-01-05", ShiftTemplateID: "close", ShiftName: "Closing", StartTime: "16:00", EndTime: "20:00", DurationHours: 4, RequiredCount: 1, DayIndex: 0},
	}

	// Two staff can cover both shifts; nobody should be doubled up.
	both := []string{"A", "B"}
	result, err := New(DefaultOptions()).Generate(instances, fullAvailability(both, instances), both)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StaffShiftCount["A"])
	assert.Equal(t, 1, result.StaffShiftCount["B"])
	assert.Zero(t, countSeverity(result.Warnings, models.SeverityInfo))

	// With a single staff member the double becomes unavoidable and is
	// flagged as info.
	solo := []string{"A"}
	result, err = New(DefaultOptions()).Generate(instances, fullAvailability(solo, instances), solo)
	require.NoError(t, err)
	assert.Equal(t, 2, result.StaffShiftCount["A"])
	assert.Equal(t, 2, result.Stats.TotalShiftsFilled)
	assert.Equal(t, 1, countSeverity(result.Warnings, models.SeverityInfo))
}

func TestGenerate_CoverageBounds(t *testing.T) {
	staff := []string{"A", "B", "C"}
	instances := morningWeek(5) // more demand than staff
	avail := fullAvailability(staff, instances)

	result, err := New(DefaultOptions()).Generate(instances, avail, staff)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Stats.TotalShiftsFilled, result.Stats.TotalShiftsRequired)
	assert.GreaterOrEqual(t, result.Stats.CoveragePercent, 0)
	assert.LessOrEqual(t, result.Stats.CoveragePercent, 100)
	assert.GreaterOrEqual(t, result.Stats.FairnessScore, 0.0)
	assert.LessOrEqual(t, result.Stats.FairnessScore, 100.0)
}

func TestGenerate_MalformedClockTime(t *testing.T) {
	instances := []models.ShiftInstance{
		{Date: "2026-01-05", ShiftTemplateID: "bad", StartTime: "8am", EndTime: "12:00", RequiredCount: 1},
	}
	staff := []string{"A"}

	_, err := New(DefaultOptions()).Generate(instances, fullAvailability(staff, instances), staff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_time")
}

func TestGenerate_ScarceShiftsFirst(t *testing.T) {
	// The day's bigger shift is filled before the smaller one.
	instances := []models.ShiftInstance{
		{Date: "2026-01-05", ShiftTemplateID: "small", ShiftName: "Small", StartTime: "08:00", EndTime: "12:00", DurationHours: 4, RequiredCount: 1, DayIndex: 0},
		{Date: "2026-01-05", ShiftTemplateID: "big", ShiftName: "Big", StartTime: "13:00", EndTime: "17:00", DurationHours: 4, RequiredCount: 2, DayIndex: 0},
	}
	staff := []string{"A", "B"}
	avail := fullAvailability(staff, instances)

	result, err := New(DefaultOptions()).Generate(instances, avail, staff)
	require.NoError(t, err)

	// Both staff land on the 2-person shift; the 1-person shift then has
	// to double someone up rather than go unfilled.
	assert.Equal(t, 3, result.Stats.TotalShiftsFilled)
	assert.Zero(t, countSeverity(result.Warnings, models.SeverityCritical))
}
