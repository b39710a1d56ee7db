package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shiftwise/rostergen-api-go/pkg/database"
	"github.com/shiftwise/rostergen-api-go/pkg/engine"
	"github.com/shiftwise/rostergen-api-go/pkg/export"
	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

// GenerateSchedule runs the engine on demand and availability supplied in
// the request body and returns the preview. Nothing is persisted; the
// caller accepts the preview through AcceptSchedule.
func (h *Handler) GenerateSchedule(c *gin.Context) {
	var input models.GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Engine.Generate(input.ShiftInstances, input.Availability, input.StaffIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.RecordUsage(c, len(input.ShiftInstances), len(input.StaffIDs), len(result.Warnings))

	c.JSON(http.StatusOK, result)
}

// GenerateForWeek loads one store week's requirement table, template
// catalog and availability grid from the database and runs the engine on
// it. The two pre-flight conditions the product blocks on (no requirements
// configured, no staff at all) are rejected here, before the engine runs.
func (h *Handler) GenerateForWeek(c *gin.Context) {
	storeID := c.Param("storeID")
	weekStartStr := c.Param("weekStart")

	weekStart, err := time.Parse("2006-01-02", weekStartStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	data, err := database.LoadWeek(h.DB, storeID, weekStartStr)
	if err != nil {
		h.Log.Error("load week failed", zap.String("store", storeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load week data"})
		return
	}

	if len(data.Requirements) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no staffing requirements configured for this week"})
		return
	}
	if len(data.StaffIDs) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no active staff for this store"})
		return
	}

	instances, dropped := engine.Normalize(weekStart, data.Requirements, data.Templates)
	for _, diag := range dropped {
		h.Log.Warn("requirement dropped", zap.String("store", storeID), zap.String("reason", diag))
	}

	result, err := h.Engine.Generate(instances, data.Availability, data.StaffIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.RecordUsage(c, len(instances), len(data.StaffIDs), len(result.Warnings))

	c.JSON(http.StatusOK, gin.H{
		"store_id":        storeID,
		"week_start":      weekStartStr,
		"shift_instances": instances,
		"dropped":         dropped,
		"result":          result,
	})
}

// AcceptRequest is the body for persisting an accepted schedule preview.
type AcceptRequest struct {
	StoreID     string             `json:"store_id" binding:"required"`
	WeekStart   string             `json:"week_start" binding:"required"`
	Assignments models.Assignments `json:"assignments" binding:"required"`
	Stats       models.Stats       `json:"stats"`
	Warnings    []models.Warning   `json:"warnings"`
}

// AcceptSchedule persists an accepted preview: one generation record with
// the stats snapshot plus one schedule row per staff-date-template cell,
// replacing any existing schedule for that store week in one transaction.
func (h *Handler) AcceptSchedule(c *gin.Context) {
	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", req.WeekStart); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	gen := database.Generation{
		ID:                  uuid.NewString(),
		StoreID:             req.StoreID,
		WeekStart:           req.WeekStart,
		TotalShiftsRequired: req.Stats.TotalShiftsRequired,
		TotalShiftsFilled:   req.Stats.TotalShiftsFilled,
		CoveragePercent:     req.Stats.CoveragePercent,
		FairnessScore:       req.Stats.FairnessScore,
		WarningCount:        len(req.Warnings),
	}

	rows := scheduleRows(gen, req.Assignments)
	if err := database.ReplaceWeek(h.DB, gen, rows); err != nil {
		h.Log.Error("replace week failed", zap.String("store", req.StoreID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not persist schedule"})
		return
	}

	h.Log.Info("schedule accepted",
		zap.String("store", req.StoreID),
		zap.String("week", req.WeekStart),
		zap.String("generation", gen.ID),
		zap.Int("rows", len(rows)),
	)

	c.JSON(http.StatusOK, gin.H{"generation_id": gen.ID, "rows": len(rows)})
}

// GetWeek returns the persisted schedule rows and generation record for a
// store week.
func (h *Handler) GetWeek(c *gin.Context) {
	storeID := c.Param("storeID")
	weekStart := c.Param("weekStart")

	var gen database.Generation
	if err := h.DB.Where("store_id = ? AND week_start = ?", storeID, weekStart).First(&gen).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No schedule for this week"})
		return
	}

	var rows []database.ScheduleRow
	h.DB.Where("generation_id = ?", gen.ID).Order("date, shift_template_id, staff_id").Find(&rows)

	c.JSON(http.StatusOK, gin.H{"generation": gen, "rows": rows})
}

// ExportRequest is the body for both export endpoints: the preview to
// render plus the week it belongs to.
type ExportRequest struct {
	WeekStart      string                 `json:"week_start" binding:"required"`
	ShiftInstances []models.ShiftInstance `json:"shift_instances" binding:"required"`
	Assignments    models.Assignments     `json:"assignments" binding:"required"`
}

// ExportCSV renders a generated schedule as flat CSV rows, one per
// staff-date-template assignment.
func (h *Handler) ExportCSV(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instIndex := make(map[string]models.ShiftInstance, len(req.ShiftInstances))
	for _, inst := range req.ShiftInstances {
		instIndex[inst.Date+"|"+inst.ShiftTemplateID] = inst
	}

	staffIDs := make([]string, 0, len(req.Assignments))
	for id := range req.Assignments {
		staffIDs = append(staffIDs, id)
	}
	sort.Strings(staffIDs)

	var out strings.Builder
	writer := csv.NewWriter(&out)
	writer.Write([]string{"staff_id", "date", "shift_template_id", "shift_name", "start", "end", "duration_hours"})

	for _, staffID := range staffIDs {
		dates := make([]string, 0, len(req.Assignments[staffID]))
		for date := range req.Assignments[staffID] {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		for _, date := range dates {
			for _, tplID := range req.Assignments[staffID][date] {
				inst := instIndex[date+"|"+tplID]
				writer.Write([]string{
					staffID,
					date,
					tplID,
					inst.ShiftName,
					inst.StartTime,
					inst.EndTime,
					fmt.Sprintf("%.2f", inst.DurationHours),
				})
			}
		}
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{"csv": out.String()})
}

// ExportXLSX renders a generated schedule as an Excel week grid.
func (h *Handler) ExportXLSX(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	buf, filename, err := export.WeekWorkbook(weekStart, req.ShiftInstances, req.Assignments)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// scheduleRows flattens an assignment map into schedule rows in a stable
// order.
func scheduleRows(gen database.Generation, assignments models.Assignments) []database.ScheduleRow {
	staffIDs := make([]string, 0, len(assignments))
	for id := range assignments {
		staffIDs = append(staffIDs, id)
	}
	sort.Strings(staffIDs)

	var rows []database.ScheduleRow
	for _, staffID := range staffIDs {
		dates := make([]string, 0, len(assignments[staffID]))
		for date := range assignments[staffID] {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		for _, date := range dates {
			for _, tplID := range assignments[staffID][date] {
				rows = append(rows, database.ScheduleRow{
					GenerationID:    gen.ID,
					StoreID:         gen.StoreID,
					WeekStart:       gen.WeekStart,
					StaffID:         staffID,
					Date:            date,
					ShiftTemplateID: tplID,
				})
			}
		}
	}
	return rows
}
