package spreadsheet

import (
	"attendance-service/internal/domain"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseRoster_XLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Office ID", "Name", "Position", "Contact"},
		{"hq", " Sari ", "Staff", "081234567890"},
		{"", "", "", ""},
		{"hq", "Budi", "Manager", "081234567891"},
	})

	rows, err := ParseRoster(buf, "roster.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, RosterRow{Line: 2, Name: "Sari", Position: "Staff", Contact: "081234567890", OfficeID: "hq"}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
}

func TestParseRoster_MissingColumns(t *testing.T) {
	buf := workbook(t, [][]any{{"name", "contact"}, {"Sari", "081234567890"}})

	_, err := ParseRoster(buf, "roster.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position")
	assert.Contains(t, err.Error(), "office_id")
}

func TestParseRoster_RejectsUnknownAndBrokenFiles(t *testing.T) {
	_, err := ParseRoster(strings.NewReader("a,b,c"), "roster.csv")
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = ParseRoster(strings.NewReader("not a workbook"), "roster.xlsx")
	assert.Error(t, err)

	_, err = ParseRoster(strings.NewReader("not a workbook"), "roster.xls")
	assert.Error(t, err)

	_, err = ParseRoster(strings.NewReader(""), "roster.xlsx")
	assert.ErrorContains(t, err, "empty")
}

func TestWriteAttendanceXLSX(t *testing.T) {
	in := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	out := in.Add(8*time.Hour + 30*time.Minute)
	pos := domain.Coordinates{Lat: -6.2, Lon: 106.8}

	records := []domain.AttendanceRecord{
		{ID: "a1", EmployeeID: "EMP001", ClockInAt: in, ClockInPos: pos, ClockOutAt: &out, ClockOutPos: &pos},
		{ID: "a2", EmployeeID: "EMP404", ClockInAt: in.Add(24 * time.Hour), ClockInPos: pos},
	}
	employees := map[string]domain.Employee{"EMP001": {ID: "EMP001", Name: "Sari"}}

	var buf bytes.Buffer
	require.NoError(t, WriteAttendanceXLSX(&buf, records, employees))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, attendanceSheet, f.GetSheetName(0))
	rows, err := f.GetRows(attendanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Employee ID", rows[0][0])
	assert.Equal(t, []string{"EMP001", "Sari", "2026-03-02", "08:00 WIB", "16:30 WIB", "8.5"}, rows[1][:6])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][4])
}
