package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func dayName(index int) string {
	if index < 0 || index > 6 {
		return "?"
	}
	return dayNames[index]
}

// summarize derives the warning list and aggregate stats from a finished
// assignment pass. Warnings come back grouped by severity (critical,
// warning, info), then date, then staff id, so identical runs produce
// identical lists.
func (g *Generator) summarize(fills []fillRecord, assignments models.Assignments, hours map[string]float64, shiftCount map[string]int, staffIDs []string) ([]models.Warning, models.Stats) {
	var warnings []models.Warning

	required, filled := 0, 0
	for _, fill := range fills {
		inst := fill.instance
		required += inst.RequiredCount
		filled += len(fill.assigned)

		switch {
		case len(fill.assigned) == 0:
			warnings = append(warnings, models.Warning{
				Severity:        models.SeverityCritical,
				Message:         fmt.Sprintf("%s on %s %s has no staff assigned (0 of %d filled)", inst.ShiftName, dayName(inst.DayIndex), inst.Date, inst.RequiredCount),
				Date:            inst.Date,
				ShiftTemplateID: inst.ShiftTemplateID,
			})
		case len(fill.assigned) < inst.RequiredCount:
			warnings = append(warnings, models.Warning{
				Severity:        models.SeverityWarning,
				Message:         fmt.Sprintf("%s on %s %s is understaffed (%d of %d filled)", inst.ShiftName, dayName(inst.DayIndex), inst.Date, len(fill.assigned), inst.RequiredCount),
				Date:            inst.Date,
				ShiftTemplateID: inst.ShiftTemplateID,
			})
		}
	}

	sortedStaff := append([]string(nil), staffIDs...)
	sort.Strings(sortedStaff)

	for _, id := range sortedStaff {
		if hours[id] > g.opts.WeeklyHourLimit {
			warnings = append(warnings, models.Warning{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("%s is assigned %.1fh this week, over the %.1fh limit", id, hours[id], g.opts.WeeklyHourLimit),
				StaffID:  id,
			})
		}
		if run := longestConsecutiveRun(assignments[id]); run > g.opts.MaxConsecutiveDays {
			warnings = append(warnings, models.Warning{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("%s works %d consecutive days, over the %d-day limit", id, run, g.opts.MaxConsecutiveDays),
				StaffID:  id,
			})
		}

		// Same-day double shifts never overlap (the assignment pass
		// excludes that), but they are unusual enough to flag.
		dates := make([]string, 0, len(assignments[id]))
		for date, templates := range assignments[id] {
			if len(templates) > 1 {
				dates = append(dates, date)
			}
		}
		sort.Strings(dates)
		for _, date := range dates {
			warnings = append(warnings, models.Warning{
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("%s has %d non-overlapping shifts on %s", id, len(assignments[id][date]), date),
				Date:     date,
				StaffID:  id,
			})
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if sa, sb := severityRank(a.Severity), severityRank(b.Severity); sa != sb {
			return sa < sb
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StaffID != b.StaffID {
			return a.StaffID < b.StaffID
		}
		return a.ShiftTemplateID < b.ShiftTemplateID
	})

	return warnings, buildStats(required, filled, hours, staffIDs)
}

func severityRank(severity string) int {
	switch severity {
	case models.SeverityCritical:
		return 0
	case models.SeverityWarning:
		return 1
	default:
		return 2
	}
}

// buildStats computes the aggregate summary over every staff member in the
// catalog; staff with zero assigned hours still count toward min and avg.
func buildStats(required, filled int, hours map[string]float64, staffIDs []string) models.Stats {
	stats := models.Stats{
		TotalShiftsRequired: required,
		TotalShiftsFilled:   filled,
	}
	if required > 0 {
		stats.CoveragePercent = int(math.Round(100 * float64(filled) / float64(required)))
	}
	stats.FairnessScore = fairnessScore(hours, staffIDs)

	if len(staffIDs) == 0 {
		return stats
	}

	sum := 0.0
	stats.MinHours = math.Inf(1)
	for _, id := range staffIDs {
		h := hours[id]
		sum += h
		if h < stats.MinHours {
			stats.MinHours = h
		}
		if h > stats.MaxHours {
			stats.MaxHours = h
		}
	}
	stats.AvgHoursPerStaff = roundTenth(sum / float64(len(staffIDs)))
	return stats
}

// fairnessScore measures how evenly assigned hours spread across staff as
// 100*(1 - stddev/mean), clamped to [0,100]. Everyone equal (including
// everyone at zero) scores 100; one person absorbing all hours scores 0.
func fairnessScore(hours map[string]float64, staffIDs []string) float64 {
	if len(staffIDs) == 0 {
		return 0
	}

	sum := 0.0
	for _, id := range staffIDs {
		sum += hours[id]
	}
	if sum == 0 {
		return 100
	}

	mean := sum / float64(len(staffIDs))
	varianceSum := 0.0
	for _, id := range staffIDs {
		diff := hours[id] - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(staffIDs)))

	score := (1.0 - stdDev/mean) * 100.0
	if score < 0 {
		return 0
	}
	return roundTenth(score)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// longestConsecutiveRun returns the longest streak of back-to-back working
// calendar days in one staff member's assignment map.
func longestConsecutiveRun(byDate map[string][]string) int {
	if len(byDate) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(byDate))
	for date := range byDate {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for i, day := range days {
		if i > 0 && day.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
