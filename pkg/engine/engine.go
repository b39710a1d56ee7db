package engine

import (
	"fmt"
	"sort"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

// Options holds the review thresholds the diagnostics pass checks against.
type Options struct {
	// WeeklyHourLimit is the assigned-hours total above which a staff
	// member gets an overwork warning.
	WeeklyHourLimit float64

	// MaxConsecutiveDays is the longest run of back-to-back working days
	// allowed before a warning is raised.
	MaxConsecutiveDays int
}

// DefaultOptions returns the thresholds used when the host provides none.
func DefaultOptions() Options {
	return Options{
		WeeklyHourLimit:    40,
		MaxConsecutiveDays: 5,
	}
}

// Generator produces a week's shift assignment from normalized demand and
// staff availability. It holds no state between calls; a single Generator
// is safe to share across goroutines.
type Generator struct {
	opts Options
}

// New creates a Generator with the given thresholds.
func New(opts Options) *Generator {
	if opts.WeeklyHourLimit <= 0 {
		opts.WeeklyHourLimit = DefaultOptions().WeeklyHourLimit
	}
	if opts.MaxConsecutiveDays <= 0 {
		opts.MaxConsecutiveDays = DefaultOptions().MaxConsecutiveDays
	}
	return &Generator{opts: opts}
}

// fillRecord is the per-instance outcome of the assignment pass, consumed
// by the diagnostics builder.
type fillRecord struct {
	instance models.ShiftInstance
	assigned []string
}

// interval is a shift's minute range on one date, used for overlap checks.
type interval struct {
	start, end int
}

func (a interval) overlaps(b interval) bool {
	return a.start < b.end && b.start < a.end
}

// Generate assigns staff to every shift instance of one week.
//
// Instances are processed in a fixed order (date ascending, required count
// descending, start time ascending) and each one is filled greedily with
// the available staff carrying the fewest assigned hours so far. Ties fall
// back to fewest assigned shifts, then staff id, so identical inputs always
// produce identical output.
//
// Short-staffed weeks are not errors: unfilled and partially filled
// instances come back as warnings alongside the stats. Generate only
// returns an error for malformed input, such as an instance whose clock
// times do not parse.
func (g *Generator) Generate(instances []models.ShiftInstance, availability models.Availability, staffIDs []string) (*models.GenerateResult, error) {
	if len(staffIDs) == 0 {
		return g.emptyResult(instances, nil, "no staff available to schedule"), nil
	}

	ordered, err := orderInstances(instances)
	if err != nil {
		return nil, err
	}

	hours := make(map[string]float64, len(staffIDs))
	shiftCount := make(map[string]int, len(staffIDs))
	for _, id := range staffIDs {
		hours[id] = 0
		shiftCount[id] = 0
	}

	assignments := make(models.Assignments)
	busy := make(map[string]map[string][]interval) // staffID -> date -> booked ranges
	fills := make([]fillRecord, 0, len(ordered))
	totalAssigned := 0

	for _, item := range ordered {
		inst := item.inst
		span := interval{item.start, item.end}

		// Candidate pool: available for this date/template and not
		// already booked on an overlapping range.
		type candidate struct {
			id      string
			working bool // already holds a shift on this date
		}
		var pool []candidate
		for _, id := range staffIDs {
			if !availability.CanWork(id, inst.Date, inst.ShiftTemplateID) {
				continue
			}
			booked := busy[id][inst.Date]
			clash := false
			for _, b := range booked {
				if span.overlaps(b) {
					clash = true
					break
				}
			}
			if clash {
				continue
			}
			pool = append(pool, candidate{id: id, working: len(booked) > 0})
		}

		// Least-loaded first. Staff already working that day only get a
		// second shift when nobody else can cover the slot.
		sort.Slice(pool, func(i, j int) bool {
			a, b := pool[i], pool[j]
			if a.working != b.working {
				return !a.working
			}
			if hours[a.id] != hours[b.id] {
				return hours[a.id] < hours[b.id]
			}
			if shiftCount[a.id] != shiftCount[b.id] {
				return shiftCount[a.id] < shiftCount[b.id]
			}
			return a.id < b.id
		})

		take := inst.RequiredCount
		if take > len(pool) {
			take = len(pool)
		}

		assigned := make([]string, 0, take)
		for _, cand := range pool[:take] {
			id := cand.id
			byDate, ok := assignments[id]
			if !ok {
				byDate = make(map[string][]string)
				assignments[id] = byDate
			}
			byDate[inst.Date] = append(byDate[inst.Date], inst.ShiftTemplateID)

			if busy[id] == nil {
				busy[id] = make(map[string][]interval)
			}
			busy[id][inst.Date] = append(busy[id][inst.Date], span)

			hours[id] += inst.DurationHours
			shiftCount[id]++
			assigned = append(assigned, id)
		}
		totalAssigned += len(assigned)

		fills = append(fills, fillRecord{instance: inst, assigned: assigned})
	}

	// When not a single slot could be staffed the preview is useless;
	// return an empty schedule with one clear warning instead of a sea of
	// per-shift criticals.
	if totalAssigned == 0 && len(ordered) > 0 {
		return g.emptyResult(instances, staffIDs, "cannot generate a schedule: no shift can be staffed with the submitted availability"), nil
	}

	warnings, stats := g.summarize(fills, assignments, hours, shiftCount, staffIDs)

	return &models.GenerateResult{
		Assignments:     assignments,
		Warnings:        warnings,
		Stats:           stats,
		StaffHours:      hours,
		StaffShiftCount: shiftCount,
	}, nil
}

// orderedInstance pairs an instance with its parsed minute range so the
// assignment loop parses each clock time once.
type orderedInstance struct {
	inst       models.ShiftInstance
	start, end int
}

// orderInstances validates and sorts instances into the engine's fixed
// processing order: date ascending, required count descending, start time
// ascending, template id as the final tie-break.
func orderInstances(instances []models.ShiftInstance) ([]orderedInstance, error) {
	out := make([]orderedInstance, 0, len(instances))
	for i, inst := range instances {
		if inst.RequiredCount <= 0 {
			continue
		}
		start, end, err := clockRange(inst.StartTime, inst.EndTime)
		if err != nil {
			return nil, fmt.Errorf("shift instance %d (%s on %s): %w", i, inst.ShiftTemplateID, inst.Date, err)
		}
		item := orderedInstance{inst: inst, start: start, end: end}
		if item.inst.DurationHours <= 0 {
			item.inst.DurationHours = float64(end-start) / 60.0
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.inst.Date != b.inst.Date {
			return a.inst.Date < b.inst.Date
		}
		if a.inst.RequiredCount != b.inst.RequiredCount {
			return a.inst.RequiredCount > b.inst.RequiredCount
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.inst.ShiftTemplateID < b.inst.ShiftTemplateID
	})

	return out, nil
}

// emptyResult builds the zero-coverage result used when no staff exist or
// nothing at all can be staffed. Stats still carry the demand totals and
// every known staff member appears with zero hours.
func (g *Generator) emptyResult(instances []models.ShiftInstance, staffIDs []string, message string) *models.GenerateResult {
	required := 0
	for _, inst := range instances {
		if inst.RequiredCount > 0 {
			required += inst.RequiredCount
		}
	}

	hours := make(map[string]float64, len(staffIDs))
	shiftCount := make(map[string]int, len(staffIDs))
	for _, id := range staffIDs {
		hours[id] = 0
		shiftCount[id] = 0
	}

	return &models.GenerateResult{
		Assignments: make(models.Assignments),
		Warnings: []models.Warning{{
			Severity: models.SeverityCritical,
			Message:  message,
		}},
		Stats: models.Stats{
			TotalShiftsRequired: required,
			TotalShiftsFilled:   0,
			CoveragePercent:     0,
			FairnessScore:       0,
		},
		StaffHours:      hours,
		StaffShiftCount: shiftCount,
	}
}
