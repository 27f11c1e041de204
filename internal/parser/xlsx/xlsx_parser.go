// Package xlsx reads one worksheet of an Excel workbook into a table. The
// first non-blank row is the header; cells are returned as their raw text so
// numeric formatting in the workbook never changes the value.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"vlingest/pkg/records"
)

// Options configures the workbook reader.
type Options struct {
	// Sheet names the worksheet to read. Empty selects the first sheet.
	Sheet string

	// NullTokens reads common missing-value spellings as null in addition to
	// blank cells.
	NullTokens bool
}

// Parser reads workbooks according to Options.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the configured sheet. Fully blank rows are dropped; rows shorter
// than the header are padded with nulls and cells beyond the header are
// ignored and counted as skipped rows.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	var out records.Table

	f, err := excelize.OpenReader(r)
	if err != nil {
		return out, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			zap.L().Warn("xlsx: close workbook", zap.Error(cerr))
		}
	}()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return out, 0, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return out, 0, fmt.Errorf("sheet %q not found (have %v)", sheet, f.GetSheetList())
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return out, 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var headers []string
	skipped := 0
	for i, row := range rows {
		if blank(row) {
			continue
		}
		if headers == nil {
			headers = normalizeHeaders(row)
			out.Columns = append(out.Columns, headers...)
			continue
		}
		if len(row) > len(headers) && !blank(row[len(headers):]) {
			zap.L().Warn("xlsx: skipping row wider than header",
				zap.String("sheet", sheet), zap.Int("row", i+1), zap.Int("expected", len(headers)), zap.Int("got", len(row)))
			skipped++
			continue
		}
		rec := make(records.Record, len(headers))
		for j, h := range headers {
			if j < len(row) {
				rec[h] = p.cell(row[j])
			} else {
				rec[h] = nil
			}
		}
		out.Rows = append(out.Rows, rec)
	}
	return out, skipped, nil
}

func (p *Parser) cell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" || (p.opt.NullTokens && records.IsNullToken(s)) {
		return nil
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeHeaders trims and NFC-normalizes names, names blank headers
// "Unnamed: N", and suffixes repeats with ".N".
func normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := norm.NFC.String(strings.TrimSpace(col))
		if c == "" {
			c = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[c]; dup {
			seen[c] = n + 1
			c = c + "." + strconv.Itoa(n+1)
		} else {
			seen[c] = 0
		}
		res[i] = c
	}
	return res
}
