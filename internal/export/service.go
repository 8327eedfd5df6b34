package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yogeshhk/MiningResume/internal/parser"
)

// Service produces XLSX bytes for batches of parse results.
type Service struct {
	attributes []string
	logger     *slog.Logger
}

// NewService builds an exporter whose column layout follows the given
// attribute order.
func NewService(attributes []string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{attributes: attributes, logger: logger}
}

// ResultsXLSX returns an XLSX workbook (as bytes) with one row per document:
// fixed columns first, then one column per configured attribute. Multi-value
// attributes are joined with "; ".
func (s *Service) ResultsXLSX(results []*parser.ParserResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := append([]string{"Document", "Success", "Error"}, s.attributes...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.DocumentName)
		write(2, r.Success)
		if r.ErrorMessage != nil {
			write(3, truncate(*r.ErrorMessage, 200))
		} else {
			write(3, "")
		}

		record := r.Record()
		for i, attr := range s.attributes {
			o, ok := record.Get(attr)
			if !ok {
				write(4+i, "")
				continue
			}
			write(4+i, cellValue(o))
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "C", 48)
	if len(s.attributes) > 0 {
		last, _ := excelize.ColumnNumberToName(3 + len(s.attributes))
		_ = f.SetColWidth(sheet, "D", last, 28)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func cellValue(o parser.AttributeOutcome) string {
	if o.Failed() {
		return "ERROR: " + *o.Error
	}
	if len(o.Values) > 0 {
		return strings.Join(o.Values, "; ")
	}
	if o.Value != nil {
		return *o.Value
	}
	return ""
}

// truncate shortens s to at most n runes, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
