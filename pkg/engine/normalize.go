package engine

import (
	"fmt"
	"time"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

// dateLayout is the wire form for calendar dates throughout the engine.
const dateLayout = "2006-01-02"

// Normalize expands a week's requirement table into concrete shift
// instances, one per weekday x template with a positive required count.
// weekStart must be the Monday of the target week; requirement day_of_week
// values are offsets from it.
//
// Requirements referencing an unknown template, an out-of-range weekday or
// a template with unparseable times are dropped and reported in the second
// return value. Dropped rows never abort the batch.
func Normalize(weekStart time.Time, requirements []models.Requirement, templates []models.ShiftTemplate) ([]models.ShiftInstance, []string) {
	byID := make(map[string]models.ShiftTemplate, len(templates))
	for _, tpl := range templates {
		byID[tpl.ID] = tpl
	}

	var instances []models.ShiftInstance
	var dropped []string

	for _, req := range requirements {
		if req.RequiredCount <= 0 {
			continue
		}
		if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
			dropped = append(dropped, fmt.Sprintf("requirement for template %s: day_of_week %d outside 0-6", req.ShiftTemplateID, req.DayOfWeek))
			continue
		}
		tpl, ok := byID[req.ShiftTemplateID]
		if !ok {
			dropped = append(dropped, fmt.Sprintf("requirement references unknown shift template %s", req.ShiftTemplateID))
			continue
		}
		duration, err := durationHours(tpl.StartTime, tpl.EndTime)
		if err != nil {
			dropped = append(dropped, fmt.Sprintf("template %s: %v", tpl.ID, err))
			continue
		}

		instances = append(instances, models.ShiftInstance{
			Date:            weekStart.AddDate(0, 0, req.DayOfWeek).Format(dateLayout),
			ShiftTemplateID: tpl.ID,
			ShiftName:       tpl.Name,
			Color:           tpl.Color,
			StartTime:       tpl.StartTime,
			EndTime:         tpl.EndTime,
			DurationHours:   duration,
			RequiredCount:   req.RequiredCount,
			DayIndex:        req.DayOfWeek,
		})
	}

	return instances, dropped
}

// parseClock parses an "HH:MM" local time into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// clockRange returns a shift's [start, end) in minutes since midnight,
// extending end past 1440 when the shift wraps midnight.
func clockRange(start, end string) (int, int, error) {
	s, err := parseClock(start)
	if err != nil {
		return 0, 0, fmt.Errorf("start_time: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return 0, 0, fmt.Errorf("end_time: %w", err)
	}
	if e <= s {
		e += 24 * 60
	}
	return s, e, nil
}

// durationHours computes end minus start in fractional hours, treating an
// end at or before the start as wrapping past midnight.
func durationHours(start, end string) (float64, error) {
	s, e, err := clockRange(start, end)
	if err != nil {
		return 0, err
	}
	return float64(e-s) / 60.0, nil
}
