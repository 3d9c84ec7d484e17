package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	grayText   = &props.Color{Red: 90, Green: 90, Blue: 90}
	headerFill = &props.Color{Red: 33, Green: 37, Blue: 41}
	totalFill  = &props.Color{Red: 240, Green: 240, Blue: 240}
)

// GeneratePDF renders the quote sheet as a one-page PDF.
func GeneratePDF(q QuoteSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	addHeader(m, q)
	addLines(m, q)
	addTotals(m, q)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}

	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, q QuoteSheet) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(q.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
		row.New(7).Add(
			col.New(8).Add(
				text.New(fmt.Sprintf("%s | lead: %s", q.JobLabel, q.LeadType), props.Text{Size: 9, Color: grayText}),
			),
			col.New(4).Add(
				text.New("Date: "+q.CreatedDate, props.Text{Size: 9, Align: align.Right, Color: grayText}),
			),
		),
		row.New(5),
	)
}

func addLines(m core.Maroto, q QuoteSheet) {
	headerText := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Left:  2,
		Top:   1.5,
	}
	headerRight := headerText
	headerRight.Align = align.Right
	headerRight.Right = 2
	headerCell := &props.Cell{BackgroundColor: headerFill}

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(text.New("Item", headerText)).WithStyle(headerCell),
			col.New(3).Add(text.New("Detail", headerText)).WithStyle(headerCell),
			col.New(3).Add(text.New("Amount", headerRight)).WithStyle(headerCell),
		),
	)

	lineText := props.Text{Size: 9, Left: 2, Top: 1.5}
	lineRight := lineText
	lineRight.Align = align.Right
	lineRight.Right = 2

	for _, line := range q.Lines {
		m.AddRows(
			row.New(7).Add(
				col.New(6).Add(text.New(line.Label, lineText)),
				col.New(3).Add(text.New(line.Detail, lineText)),
				col.New(3).Add(text.New(FormatUSD(line.Amount), lineRight)),
			),
		)
	}
}

func addTotals(m core.Maroto, q QuoteSheet) {
	m.AddRows(row.New(4))

	label := props.Text{Size: 10, Style: fontstyle.Bold, Left: 2, Top: 1.5}
	value := label
	value.Align = align.Right
	value.Right = 2
	cell := &props.Cell{BackgroundColor: totalFill}

	totals := []CostLine{
		{Label: "COGS", Amount: q.Cogs},
		{Label: "Sale price", Amount: q.Sale},
		{Label: "Gross profit", Detail: FormatPercent(q.GPMPercent) + " GPM", Amount: q.Profit},
		{Label: "Commission", Detail: FormatPercent(q.CommissionRate), Amount: q.CommissionTotal},
	}
	for _, line := range totals {
		m.AddRows(
			row.New(8).Add(
				col.New(6).Add(text.New(line.Label, label)).WithStyle(cell),
				col.New(3).Add(text.New(line.Detail, label)).WithStyle(cell),
				col.New(3).Add(text.New(FormatUSD(line.Amount), value)).WithStyle(cell),
			),
		)
	}

	m.AddRows(
		row.New(4),
		row.New(6).Add(
			col.New(12).Add(
				text.New(q.CommissionLabel, props.Text{Size: 8, Color: grayText}),
			),
		),
	)
}
