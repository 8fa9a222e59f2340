package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Upper bound on rows read from a legacy workbook.
const maxXLSRows = 100000

// RosterRow is one employee line from an uploaded roster. Line is the
// 1-based spreadsheet row, for error messages.
type RosterRow struct {
	Line     int
	ID       string
	Name     string
	Position string
	Contact  string
	OfficeID string
}

var headerAliases = map[string]string{
	"id":          "id",
	"employee_id": "id",
	"name":        "name",
	"nama":        "name",
	"position":    "position",
	"jabatan":     "position",
	"contact":     "contact",
	"kontak":      "contact",
	"office_id":   "office_id",
	"officeid":    "office_id",
	"office":      "office_id",
}

var requiredColumns = []string{"name", "position", "contact", "office_id"}

// ParseRoster reads employee rows from an .xlsx or .xls file. The first row
// is a header; columns are matched by name in any order. Blank rows are
// skipped.
func ParseRoster(r io.Reader, filename string) ([]RosterRow, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse roster %q: %w", filename, err)
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		if key, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("parse roster %q: missing columns: %s", filename, strings.Join(missing, ", "))
	}

	idCol, hasID := cols["id"]
	if !hasID {
		idCol = -1
	}

	out := make([]RosterRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rr := RosterRow{
			Line:     i + 2,
			ID:       cellValue(row, idCol),
			Name:     cellValue(row, cols["name"]),
			Position: cellValue(row, cols["position"]),
			Contact:  cellValue(row, cols["contact"]),
			OfficeID: cellValue(row, cols["office_id"]),
		}
		if rr.ID == "" && rr.Name == "" && rr.Position == "" && rr.Contact == "" && rr.OfficeID == "" {
			continue
		}
		out = append(out, rr)
	}

	return out, nil
}

func readRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return readXLSRows(data)
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.New("no worksheet found")
		}

		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.New("worksheet is empty")
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q; upload .xlsx or .xls", filepath.Ext(filename))
	}
}

// readXLSRows reads the single sheet of a legacy workbook. The decoder can
// panic on malformed uploads, so that is reported as an error.
func readXLSRows(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("read xls: malformed workbook: %v", r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	if workbook.NumSheets() > 1 {
		return nil, errors.New("multiple worksheets found; please upload a file with a single sheet")
	}
	rows = workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
