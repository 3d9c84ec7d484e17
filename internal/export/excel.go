package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Quote"

// GenerateExcel renders the quote sheet as an .xlsx workbook.
func GenerateExcel(q QuoteSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Job titles may hold characters Excel rejects in sheet names.
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	for col, width := range map[string]float64{"A": 28, "B": 16, "C": 18} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11, Color: "#555555"},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	lineStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create line style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", "C1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(q.Title))
	f.SetCellStyle(sheetName, "A1", "C1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", "C2"); err != nil {
		return nil, fmt.Errorf("merge job label: %w", err)
	}
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell(q.JobLabel)+" | lead: "+sanitizeExcelCell(q.LeadType))
	f.SetCellStyle(sheetName, "A2", "C2", subtitleStyle)

	if err := f.MergeCell(sheetName, "A3", "C3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+q.CreatedDate)
	f.SetCellStyle(sheetName, "A3", "C3", subtitleStyle)

	for i, h := range []string{"Item", "Detail", "Amount"} {
		f.SetCellValue(sheetName, fmt.Sprintf("%c5", 'A'+i), h)
	}
	f.SetCellStyle(sheetName, "A5", "C5", headerStyle)

	row := 6
	for _, line := range q.Lines {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), sanitizeExcelCell(line.Label))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), sanitizeExcelCell(line.Detail))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), FormatUSD(line.Amount))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), lineStyle)
		row++
	}

	totals := []CostLine{
		{Label: "COGS", Amount: q.Cogs},
		{Label: "Sale price", Amount: q.Sale},
		{Label: "Gross profit", Detail: FormatPercent(q.GPMPercent) + " GPM", Amount: q.Profit},
		{Label: "Commission", Detail: FormatPercent(q.CommissionRate), Amount: q.CommissionTotal},
	}
	for _, line := range totals {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line.Label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), line.Detail)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), FormatUSD(line.Amount))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), totalStyle)
		row++
	}

	row++
	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row)); err != nil {
		return nil, fmt.Errorf("merge commission label: %w", err)
	}
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), q.CommissionLabel)
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), subtitleStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell quotes values Excel would otherwise read as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
