// Package pdf renders the inventory usage report handed to clinic
// administrators and health-authority inspections.
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"dataclinica/internal/models"
)

var (
	colorPrimary = &props.Color{Red: 13, Green: 110, Blue: 253}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// UsageReportLine is one supply row in the report table.
type UsageReportLine struct {
	Supply        *models.Supply
	AvgDailyUsage float64
	TotalConsumed int
	StockStatus   string
}

// UsageReportInput carries everything the renderer needs.
type UsageReportInput struct {
	Tenant      *models.Tenant
	Stats       *models.SupplyStats
	Lines       []UsageReportLine
	PeriodStart time.Time
	PeriodEnd   time.Time
	GeneratedAt time.Time
}

// UsageReportGenerator renders a usage report into PDF bytes.
type UsageReportGenerator struct{}

func NewUsageReportGenerator() *UsageReportGenerator { return &UsageReportGenerator{} }

func (g *UsageReportGenerator) Generate(input *UsageReportInput) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Inventory Usage Report", true).
		WithAuthor(input.Tenant.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(input))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(input.Stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(input.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(input))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(input *UsageReportInput) core.Row {
	period := fmt.Sprintf("%s to %s",
		input.PeriodStart.Format("02/01/2006"),
		input.PeriodEnd.Format("02/01/2006"))

	return row.New(18).Add(
		col.New(7).Add(
			text.New(input.Tenant.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("License: "+input.Tenant.License, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("INVENTORY USAGE REPORT", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(period, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 8,
			}),
		),
	)
}

func summaryRow(stats *models.SupplyStats) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5}),
		)
	}
	return row.New(12).Add(
		cell("Active supplies", fmt.Sprintf("%d", stats.TotalSupplies)),
		cell("Inventory value", stats.TotalValue.StringFixed(2)),
		cell("Below reorder point", fmt.Sprintf("%d", stats.BelowReorder)),
		cell("Out of stock", fmt.Sprintf("%d", stats.OutOfStock)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Supply", 4, align.Left),
		h("Stock", 1, align.Right),
		h("Reorder pt.", 2, align.Right),
		h("Avg/day", 1, align.Right),
		h("Status", 2, align.Center),
	)
}

func tableLineRows(lines []UsageReportLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				l.Supply.SKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				l.Supply.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Supply.CurrentStock),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				fmt.Sprintf("%d", l.Supply.ReorderPoint),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%.1f", l.AvgDailyUsage),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				l.StockStatus,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
		))
	}
	return result
}

func footerRow(input *UsageReportInput) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(
				fmt.Sprintf("Generated %s", input.GeneratedAt.Format("02/01/2006 15:04")),
				props.Text{Size: 7, Color: colorGray, Align: align.Right, Top: 1},
			),
		),
	)
}
