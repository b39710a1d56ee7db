// Package export renders a generated week schedule as an Excel workbook
// for store managers who review rosters outside the app.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shiftwise/rostergen-api-go/pkg/models"
)

const sheetName = "Schedule"

var dayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// templateRow is one row of the grid: a shift template and its clock times.
type templateRow struct {
	id, name, start, end string
}

// WeekWorkbook builds a one-sheet workbook with Monday-Sunday columns and
// one row per shift template, each cell listing the staff assigned to that
// template on that date. Returns the workbook bytes and a suggested
// filename.
func WeekWorkbook(weekStart time.Time, instances []models.ShiftInstance, assignments models.Assignments) (*bytes.Buffer, string, error) {
	rows := collectTemplates(instances)
	if len(rows) == 0 {
		return nil, "", fmt.Errorf("nothing to export: no shift instances")
	}

	// date|templateID -> sorted staff ids
	cellIndex := make(map[string][]string)
	for staffID, byDate := range assignments {
		for date, templates := range byDate {
			for _, tplID := range templates {
				key := date + "|" + tplID
				cellIndex[key] = append(cellIndex[key], staffID)
			}
		}
	}
	for key := range cellIndex {
		sort.Strings(cellIndex[key])
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	if err := f.SetCellValue(sheetName, "A1", "Shift"); err != nil {
		return nil, "", err
	}
	for day := 0; day < 7; day++ {
		cell, err := excelize.CoordinatesToCellName(day+2, 1)
		if err != nil {
			return nil, "", err
		}
		date := weekStart.AddDate(0, 0, day)
		if err := f.SetCellValue(sheetName, cell, fmt.Sprintf("%s %s", dayLabels[day], date.Format("01-02"))); err != nil {
			return nil, "", err
		}
	}

	for i, row := range rows {
		nameCell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		label := fmt.Sprintf("%s (%s-%s)", row.name, row.start, row.end)
		if err := f.SetCellValue(sheetName, nameCell, label); err != nil {
			return nil, "", err
		}

		for day := 0; day < 7; day++ {
			date := weekStart.AddDate(0, 0, day).Format("2006-01-02")
			staff := cellIndex[date+"|"+row.id]
			if len(staff) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(day+2, i+2)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheetName, cell, strings.Join(staff, ", ")); err != nil {
				return nil, "", err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", weekStart.Format("2006-01-02"))
	return buf, filename, nil
}

// collectTemplates returns the distinct templates appearing in the
// instance list, ordered by start time then name.
func collectTemplates(instances []models.ShiftInstance) []templateRow {
	seen := make(map[string]bool)
	var rows []templateRow
	for _, inst := range instances {
		if seen[inst.ShiftTemplateID] {
			continue
		}
		seen[inst.ShiftTemplateID] = true
		rows = append(rows, templateRow{
			id:    inst.ShiftTemplateID,
			name:  inst.ShiftName,
			start: inst.StartTime,
			end:   inst.EndTime,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].start != rows[j].start {
			return rows[i].start < rows[j].start
		}
		return rows[i].name < rows[j].name
	})
	return rows
}
