package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"reservation-system/internal/dto"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/validation"
)

var (
	equipmentRequiredColumns = []string{"gageid", "description", "manufacturer", "model", "range", "uom"}
	companyRequiredColumns   = []string{"name"}
)

// table is an import file reduced to a header and its data rows. lines
// holds the 1-based file line of each row.
type table struct {
	headers []string
	index   map[string]int
	rows    [][]string
	lines   []int
}

// normalizeHeader folds "Gage ID", "gage_id" and "gageId" together.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func readTable(r io.Reader, format string) (*table, error) {
	var (
		records [][]string
		lines   []int
	)
	switch format {
	case validation.FormatCSV:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		for {
			rec, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, apperrors.NewValidationError("malformed CSV: %s", err.Error())
			}
			line, _ := reader.FieldPos(0)
			records = append(records, rec)
			lines = append(lines, line)
		}
	case validation.FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, apperrors.NewValidationError("malformed XLSX: %s", err.Error())
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewValidationError("workbook has no sheets")
		}
		all, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, apperrors.NewValidationError("read sheet %q: %s", sheets[0], err.Error())
		}
		records = all
		for i := range all {
			lines = append(lines, i+1)
		}
	default:
		return nil, apperrors.NewValidationError("unsupported import format %q", format)
	}

	// leading blank lines before the header are ignored
	for len(records) > 0 && blank(records[0]) {
		records, lines = records[1:], lines[1:]
	}
	if len(records) == 0 {
		return nil, apperrors.NewValidationError("file is empty")
	}

	t := &table{headers: records[0], index: make(map[string]int, len(records[0]))}
	for i, h := range records[0] {
		key := normalizeHeader(h)
		if _, dup := t.index[key]; !dup && key != "" {
			t.index[key] = i
		}
	}
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.rows = append(t.rows, rec)
		t.lines = append(t.lines, lines[i+1])
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (t *table) require(columns []string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *table) has(column string) bool {
	_, ok := t.index[column]
	return ok
}

func (t *table) cell(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) rowData(row []string) map[string]string {
	data := make(map[string]string, len(t.headers))
	for i, h := range t.headers {
		if h = strings.TrimSpace(h); h == "" {
			continue
		}
		if i < len(row) {
			data[h] = row[i]
		} else {
			data[h] = ""
		}
	}
	return data
}

// ParseEquipmentFile turns a CSV or XLSX upload into import rows. A missing
// required column fails the whole file.
func ParseEquipmentFile(r io.Reader, format string) ([]dto.EquipmentImportRow, error) {
	t, err := readTable(r, format)
	if err != nil {
		return nil, err
	}
	if err := t.require(equipmentRequiredColumns); err != nil {
		return nil, err
	}

	withImage := t.has("imageurl")
	withDueDate := t.has("calibrationduedate")

	rows := make([]dto.EquipmentImportRow, 0, len(t.rows))
	for i, rec := range t.rows {
		row := dto.EquipmentImportRow{
			Row:          t.lines[i],
			GageID:       t.cell(rec, "gageid"),
			Description:  t.cell(rec, "description"),
			Manufacturer: t.cell(rec, "manufacturer"),
			Model:        t.cell(rec, "model"),
			Range:        t.cell(rec, "range"),
			UOM:          t.cell(rec, "uom"),
			RowData:      t.rowData(rec),
		}
		if withImage {
			v := t.cell(rec, "imageurl")
			row.ImageURL = &v
		}
		if withDueDate {
			v := t.cell(rec, "calibrationduedate")
			row.CalibrationDueDate = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func ParseCompanyFile(r io.Reader, format string) ([]dto.CompanyImportRow, error) {
	t, err := readTable(r, format)
	if err != nil {
		return nil, err
	}
	if err := t.require(companyRequiredColumns); err != nil {
		return nil, err
	}

	rows := make([]dto.CompanyImportRow, 0, len(t.rows))
	for i, rec := range t.rows {
		rows = append(rows, dto.CompanyImportRow{
			Row:     t.lines[i],
			Name:    t.cell(rec, "name"),
			RowData: t.rowData(rec),
		})
	}
	return rows, nil
}
