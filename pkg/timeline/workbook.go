package timeline

import (
	"fmt"
	"io"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported timeline
const SheetName = "Timeline"

// WorkbookHeader is the first row of an exported timeline
var WorkbookHeader = []string{"Timestamp", "Temperature", "Humidity", "Shock"}

// WriteWorkbook renders points as an .xlsx workbook. Absent values are left blank.
func WriteWorkbook(w io.Writer, sensorID string, points []models.TimelinePoint) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Timeline %s", sensorID),
		Subject: sensorID,
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &WorkbookHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 22); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "D", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	for i, p := range points {
		row := []interface{}{p.Timestamp, nil, nil, nil}
		if p.Temperature != nil {
			row[1] = *p.Temperature
		}
		if p.Humidity != nil {
			row[2] = *p.Humidity
		}
		if p.Shock != nil {
			row[3] = *p.Shock
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
