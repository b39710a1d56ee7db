package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

// StaffMember represents the staff_members table
type StaffMember struct {
	ID      string `gorm:"primaryKey" json:"id"`
	StoreID string `gorm:"index;not null" json:"store_id"`
	Name    string `json:"name"`
	Active  bool   `gorm:"default:true" json:"active"`
}

// ShiftTemplate represents the shift_templates table
type ShiftTemplate struct {
	ID        string `gorm:"primaryKey" json:"id"`
	StoreID   string `gorm:"index;not null" json:"store_id"`
	Name      string `gorm:"not null" json:"name"`
	StartTime string `gorm:"not null" json:"start_time"` // HH:MM
	EndTime   string `gorm:"not null" json:"end_time"`   // HH:MM
	Color     string `json:"color"`
}

// Requirement represents the requirements table: required headcount per
// weekday x template for one store week.
type Requirement struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StoreID         string `gorm:"uniqueIndex:idx_req_slot;not null" json:"store_id"`
	WeekStart       string `gorm:"uniqueIndex:idx_req_slot;not null" json:"week_start"`
	DayOfWeek       int    `gorm:"uniqueIndex:idx_req_slot" json:"day_of_week"`
	ShiftTemplateID string `gorm:"uniqueIndex:idx_req_slot;not null" json:"shift_template_id"`
	RequiredCount   int    `json:"required_count"`
}

// AvailabilityEntry represents the availability_entries table: one staff
// member's yes/no for one date x template. Absent rows mean unavailable.
type AvailabilityEntry struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StoreID         string `gorm:"index:idx_avail_week;not null" json:"store_id"`
	WeekStart       string `gorm:"index:idx_avail_week;not null" json:"week_start"`
	StaffID         string `gorm:"not null" json:"staff_id"`
	Date            string `gorm:"not null" json:"date"`
	ShiftTemplateID string `gorm:"not null" json:"shift_template_id"`
	Available       bool   `json:"available"`
}

// Generation represents the generations table: one accepted schedule run
// with its stats snapshot.
type Generation struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	StoreID             string    `gorm:"index:idx_gen_week;not null" json:"store_id"`
	WeekStart           string    `gorm:"index:idx_gen_week;not null" json:"week_start"`
	TotalShiftsRequired int       `json:"total_shifts_required"`
	TotalShiftsFilled   int       `json:"total_shifts_filled"`
	CoveragePercent     int       `json:"coverage_percent"`
	FairnessScore       float64   `json:"fairness_score"`
	WarningCount        int       `json:"warning_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// ScheduleRow represents the schedule_rows table: one staff-date-template
// cell of an accepted schedule.
type ScheduleRow struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	GenerationID    string `gorm:"index;not null" json:"generation_id"`
	StoreID         string `gorm:"index:idx_row_week;not null" json:"store_id"`
	WeekStart       string `gorm:"index:idx_row_week;not null" json:"week_start"`
	StaffID         string `gorm:"not null" json:"staff_id"`
	Date            string `gorm:"not null" json:"date"`
	ShiftTemplateID string `gorm:"not null" json:"shift_template_id"`
}

// WeekData is everything the engine needs for one store week, read from
// the tables above.
type WeekData struct {
	Templates    []models.ShiftTemplate
	Requirements []models.Requirement
	Availability models.Availability
	StaffIDs     []string
}

// LoadWeek reads the requirement table, template catalog, availability
// grid and active staff list for one store week.
func LoadWeek(db *gorm.DB, storeID, weekStart string) (*WeekData, error) {
	var templates []ShiftTemplate
	if err := db.Where("store_id = ?", storeID).Order("start_time, id").Find(&templates).Error; err != nil {
		return nil, err
	}

	var requirements []Requirement
	if err := db.Where("store_id = ? AND week_start = ?", storeID, weekStart).
		Order("day_of_week, shift_template_id").Find(&requirements).Error; err != nil {
		return nil, err
	}

	var entries []AvailabilityEntry
	if err := db.Where("store_id = ? AND week_start = ?", storeID, weekStart).Find(&entries).Error; err != nil {
		return nil, err
	}

	var staff []StaffMember
	if err := db.Where("store_id = ? AND active = ?", storeID, true).Order("id").Find(&staff).Error; err != nil {
		return nil, err
	}

	data := &WeekData{Availability: make(models.Availability)}
	for _, tpl := range templates {
		data.Templates = append(data.Templates, models.ShiftTemplate{
			ID:        tpl.ID,
			Name:      tpl.Name,
			StartTime: tpl.StartTime,
			EndTime:   tpl.EndTime,
			Color:     tpl.Color,
		})
	}
	for _, req := range requirements {
		data.Requirements = append(data.Requirements, models.Requirement{
			DayOfWeek:       req.DayOfWeek,
			ShiftTemplateID: req.ShiftTemplateID,
			RequiredCount:   req.RequiredCount,
		})
	}
	for _, entry := range entries {
		if !entry.Available {
			continue
		}
		byDate, ok := data.Availability[entry.StaffID]
		if !ok {
			byDate = make(map[string]map[string]bool)
			data.Availability[entry.StaffID] = byDate
		}
		byShift, ok := byDate[entry.Date]
		if !ok {
			byShift = make(map[string]bool)
			byDate[entry.Date] = byShift
		}
		byShift[entry.ShiftTemplateID] = true
	}
	for _, member := range staff {
		data.StaffIDs = append(data.StaffIDs, member.ID)
	}

	return data, nil
}

// ReplaceWeek persists an accepted schedule atomically: the week's previous
// rows and generation records are deleted and the new ones inserted inside
// one transaction, so a partial schedule is never visible.
func ReplaceWeek(db *gorm.DB, gen Generation, rows []ScheduleRow) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ? AND week_start = ?", gen.StoreID, gen.WeekStart).
			Delete(&ScheduleRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ? AND week_start = ?", gen.StoreID, gen.WeekStart).
			Delete(&Generation{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&gen).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
