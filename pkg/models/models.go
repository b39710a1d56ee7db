package models

// ShiftTemplate is a reusable shift definition scoped to a store.
// Times are local clock times in "HH:MM" form.
type ShiftTemplate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color,omitempty"`
}

// Requirement is one row of the week's staffing table: how many people a
// shift template needs on a given weekday. DayOfWeek is 0-6, Monday first.
type Requirement struct {
	DayOfWeek       int    `json:"day_of_week"`
	ShiftTemplateID string `json:"shift_template_id"`
	RequiredCount   int    `json:"required_count"`
}

// ShiftInstance is a concrete staffing need for one calendar date.
// Instances only exist for requirements with RequiredCount > 0.
type ShiftInstance struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	ShiftTemplateID string  `json:"shift_template_id"`
	ShiftName       string  `json:"shift_name"`
	Color           string  `json:"color,omitempty"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationHours   float64 `json:"duration_hours"`
	RequiredCount   int     `json:"required_count"`
	DayIndex        int     `json:"day_index"` // 0-6, Monday first
}

// Availability maps staffID -> date -> shiftTemplateID -> can work.
// A missing entry at any level means unavailable.
type Availability map[string]map[string]map[string]bool

// CanWork reports whether a staff member marked themselves available for a
// shift template on a date. Missing entries default to false.
func (a Availability) CanWork(staffID, date, templateID string) bool {
	byDate, ok := a[staffID]
	if !ok {
		return false
	}
	byShift, ok := byDate[date]
	if !ok {
		return false
	}
	return byShift[templateID]
}

// Assignments maps staffID -> date -> shift template IDs assigned that day,
// in assignment order.
type Assignments map[string]map[string][]string

// Warning severities, ordered from most to least severe.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Warning is a non-fatal diagnostic about a generated schedule that needs
// human review before the schedule is accepted.
type Warning struct {
	Severity        string `json:"severity"`
	Message         string `json:"message"`
	Date            string `json:"date,omitempty"`
	ShiftTemplateID string `json:"shift_template_id,omitempty"`
	StaffID         string `json:"staff_id,omitempty"`
}

// Stats summarizes coverage and load balance for one generated week.
type Stats struct {
	TotalShiftsRequired int     `json:"total_shifts_required"`
	TotalShiftsFilled   int     `json:"total_shifts_filled"`
	CoveragePercent     int     `json:"coverage_percent"`
	FairnessScore       float64 `json:"fairness_score"`
	AvgHoursPerStaff    float64 `json:"avg_hours_per_staff"`
	MinHours            float64 `json:"min_hours"`
	MaxHours            float64 `json:"max_hours"`
}

// GenerateInput is the request body for the scheduling endpoint.
type GenerateInput struct {
	ShiftInstances []ShiftInstance `json:"shift_instances"`
	Availability   Availability    `json:"availability"`
	StaffIDs       []string        `json:"staff_ids"`
}

// GenerateResult is the engine's complete output for one week.
type GenerateResult struct {
	Assignments     Assignments        `json:"assignments"`
	Warnings        []Warning          `json:"warnings"`
	Stats           Stats              `json:"stats"`
	StaffHours      map[string]float64 `json:"staff_hours"`
	StaffShiftCount map[string]int     `json:"staff_shift_count"`
}
