package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

// ValidateInput checks a generation request before the engine runs: the
// two conditions the product blocks generation on entirely (no demand, no
// staff) plus contract errors that indicate a caller bug rather than a
// scheduling conflict.
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.ShiftInstances) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one shift instance is required",
		})
		return
	}

	if len(input.StaffIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one staff member is required",
		})
		return
	}

	staffSeen := make(map[string]bool)
	for _, id := range input.StaffIDs {
		if id == "" {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Empty staff ID in staff_ids"})
			return
		}
		if staffSeen[id] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Duplicate staff ID: " + id})
			return
		}
		staffSeen[id] = true
	}

	for i, inst := range input.ShiftInstances {
		if inst.ShiftTemplateID == "" {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("shift_instances[%d]: missing shift_template_id", i)})
			return
		}
		if _, err := time.Parse("2006-01-02", inst.Date); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("shift_instances[%d]: date %q is not YYYY-MM-DD", i, inst.Date)})
			return
		}
		if _, err := time.Parse("15:04", inst.StartTime); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("shift_instances[%d]: start_time %q is not HH:MM", i, inst.StartTime)})
			return
		}
		if _, err := time.Parse("15:04", inst.EndTime); err != nil {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("shift_instances[%d]: end_time %q is not HH:MM", i, inst.EndTime)})
			return
		}
		if inst.RequiredCount < 0 {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("shift_instances[%d]: required_count is negative", i)})
			return
		}
	}

	// Availability rows for staff outside the catalog are ignored by the
	// engine; surface them as a count so callers can spot stale grids.
	unknownStaff := 0
	for staffID := range input.Availability {
		if !staffSeen[staffID] {
			unknownStaff++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"shift_instance_count":       len(input.ShiftInstances),
			"staff_count":                len(input.StaffIDs),
			"unknown_availability_staff": unknownStaff,
		},
	})
}
