package admin

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook.
const (
	SheetSummary      = "Summary"
	SheetMonthly      = "Monthly Revenue"
	SheetCategories   = "Sales by Category"
	SheetTopProducts  = "Top Products"
	SheetRecentOrders = "Recent Orders"
	SheetStatusCounts = "Order Status"
)

type sheet struct {
	name   string
	header []string
	rows   [][]any
	widths []float64
}

// ExportXLSX writes the dashboard, and the reports when r is non-nil, to w as
// an Excel workbook with one sheet per widget.
func ExportXLSX(w io.Writer, d *Dashboard, r *Reports) error {
	if d == nil {
		return errors.New("dashboard is required")
	}

	sheets := []sheet{
		{
			name:   SheetSummary,
			header: []string{"Metric", "Value"},
			rows: [][]any{
				{"Total Users", d.Summary.TotalUsers},
				{"Total Orders", d.Summary.TotalOrders},
				{"Total Products", d.Summary.TotalProducts},
				{"Total Revenue", d.Summary.TotalRevenue.InexactFloat64()},
				{"Pending Orders", d.Summary.PendingOrders},
				{"Delivered Orders", d.Summary.Delivered},
			},
			widths: []float64{20, 16},
		},
		monthlySheet(d),
		categorySheet(d),
		topProductsSheet(d),
		recentOrdersSheet(d),
	}
	if r != nil {
		sheets = append(sheets, statusSheet(r))
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return errors.Wrap(err, "rename sheet")
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return errors.Wrapf(err, "create sheet %q", sh.name)
		}
		if err := writeSheet(f, sh); err != nil {
			return errors.Wrapf(err, "write sheet %q", sh.name)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sh sheet) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	header := make([]any, len(sh.header))
	for i, h := range sh.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(sh.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sh.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return err
		}
	}

	for i, width := range sh.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func monthlySheet(d *Dashboard) sheet {
	sh := sheet{name: SheetMonthly, header: []string{"Month", "Revenue"}, widths: []float64{14, 16}}
	for _, m := range d.MonthlyRevenue {
		sh.rows = append(sh.rows, []any{m.Month, m.Revenue.InexactFloat64()})
	}
	return sh
}

func categorySheet(d *Dashboard) sheet {
	sh := sheet{name: SheetCategories, header: []string{"Category", "Sales", "Units"}, widths: []float64{24, 16, 10}}
	for _, c := range d.SalesByCategory {
		sh.rows = append(sh.rows, []any{c.Category, c.Sales.InexactFloat64(), c.Quantity})
	}
	return sh
}

func topProductsSheet(d *Dashboard) sheet {
	sh := sheet{name: SheetTopProducts, header: []string{"Product", "Brand", "Units Sold", "Revenue"}, widths: []float64{32, 16, 12, 16}}
	for _, p := range d.TopProducts {
		sh.rows = append(sh.rows, []any{p.Name, p.Brand, p.Sold, p.Revenue.InexactFloat64()})
	}
	return sh
}

func recentOrdersSheet(d *Dashboard) sheet {
	sh := sheet{
		name:   SheetRecentOrders,
		header: []string{"Order", "Customer", "Total", "Status", "Placed"},
		widths: []float64{28, 20, 12, 12, 20},
	}
	for _, o := range d.RecentOrders {
		placed := ""
		if !o.CreatedAt.IsZero() {
			placed = o.CreatedAt.Format("2006-01-02 15:04")
		}
		sh.rows = append(sh.rows, []any{
			o.ID,
			customerName(o.User.Name, o.ShippingAddress.Name),
			o.Total.InexactFloat64(),
			string(o.EffectiveStatus()),
			placed,
		})
	}
	return sh
}

func statusSheet(r *Reports) sheet {
	sh := sheet{name: SheetStatusCounts, header: []string{"Status", "Orders"}, widths: []float64{16, 10}}
	for _, c := range r.StatusCounts {
		sh.rows = append(sh.rows, []any{string(c.Status), c.Count})
	}
	return sh
}

func customerName(names ...string) string {
	for _, n := range names {
		if n != "" {
			return n
		}
	}
	return ""
}
