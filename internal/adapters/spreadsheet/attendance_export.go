package spreadsheet

import (
	"attendance-service/internal/domain"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var attendanceHeader = []any{
	"Employee ID", "Employee", "Date", "Clock In", "Clock Out", "Hours",
	"Clock In Lat", "Clock In Lon", "Clock Out Lat", "Clock Out Lon",
}

// WriteAttendanceXLSX renders records as a single-sheet workbook with times
// in WIB. employees resolves names; unknown IDs leave the name blank.
func WriteAttendanceXLSX(w io.Writer, records []domain.AttendanceRecord, employees map[string]domain.Employee) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), attendanceSheet); err != nil {
		return fmt.Errorf("export attendance: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export attendance: header style: %w", err)
	}

	header := attendanceHeader
	if err := f.SetSheetRow(attendanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("export attendance: header: %w", err)
	}
	if err := f.SetRowStyle(attendanceSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("export attendance: header style: %w", err)
	}

	wib := domain.Jakarta()
	for i, r := range records {
		row := []any{
			r.EmployeeID,
			employees[r.EmployeeID].Name,
			r.ClockInAt.In(wib).Format("2006-01-02"),
			domain.FormatWIB(r.ClockInAt),
			"",
			"",
			r.ClockInPos.Lat,
			r.ClockInPos.Lon,
			"",
			"",
		}
		if r.ClockOutAt != nil {
			row[4] = domain.FormatWIB(*r.ClockOutAt)
			row[5] = roundHours(r.ClockOutAt.Sub(r.ClockInAt))
		}
		if r.ClockOutPos != nil {
			row[8] = r.ClockOutPos.Lat
			row[9] = r.ClockOutPos.Lon
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export attendance: row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(attendanceSheet, cell, &row); err != nil {
			return fmt.Errorf("export attendance: row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(attendanceSheet, "A", "B", 20); err != nil {
		return fmt.Errorf("export attendance: column width: %w", err)
	}
	if err := f.SetColWidth(attendanceSheet, "C", "F", 12); err != nil {
		return fmt.Errorf("export attendance: column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export attendance: write workbook: %w", err)
	}
	return nil
}

func roundHours(d time.Duration) float64 {
	return float64(d.Round(time.Minute)/time.Minute) / 60
}
