package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Export content types.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Format of an export.
type Format string

// Export formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Export is a rendered attachment. Body is nil when the entity has no rows.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render exports one entity of s.
func Render(s Snapshot, e Entity, format Format) (Export, error) {
	rows := s.Rows(e)
	switch format {
	case FormatXLSX:
		body, err := XLSX(rows, e)
		return Export{Filename: Filename(s.Partner, e, "xlsx"), ContentType: ContentTypeXLSX, Body: body}, err
	default:
		body, err := CSV(rows)
		return Export{Filename: Filename(s.Partner, e, "csv"), ContentType: ContentTypeCSV, Body: body}, err
	}
}

// Filename returns the attachment name for an export, e.g. allmax-signals.csv.
func Filename(partnerID string, e Entity, ext string) string {
	return fmt.Sprintf("%s-%s.%s", strings.ToLower(partnerID), e, ext)
}

// CSV renders rows with a header equal to the union of their keys. Every
// cell is JSON encoded; a missing or null value renders as "". Rows are
// separated by a newline with none after the last. Empty input returns nil.
func CSV(rows []Row) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers := Headers(rows)

	var buf bytes.Buffer
	buf.WriteString(strings.Join(headers, ","))
	for _, r := range rows {
		buf.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				buf.WriteByte(',')
			}
			v, _ := r.Get(h)
			cell, err := encodeCell(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", h, err)
			}
			buf.Write(cell)
		}
	}
	return buf.Bytes(), nil
}

func encodeCell(v any) ([]byte, error) {
	if v == nil {
		v = ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// XLSX renders rows into a single-sheet workbook named after the entity,
// using the same header model as CSV. Empty input returns nil.
func XLSX(rows []Row, e Entity) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers := Headers(rows)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := string(e)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for n, r := range rows {
		values := make([]any, len(headers))
		for i, h := range headers {
			v, _ := r.Get(h)
			if v == nil {
				v = ""
			}
			values[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", n+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
