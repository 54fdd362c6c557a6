// Package pdf implementa la generación del reporte kardex por producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + SKU  │  Rango de fechas                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Subtipo | Cant | Costo U. | Saldo     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: existencia final                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
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
	"github.com/shopspring/decimal"

	appledger "github.com/jpinedac/comercio-api/internal/application/ledger"
	"github.com/jpinedac/comercio-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ appledger.KardexPDFGenerator = (*KardexPDFGenerator)(nil)

// KardexPDFGenerator implementa ledger.KardexPDFGenerator usando Maroto v2.
type KardexPDFGenerator struct{}

// NewKardexPDFGenerator construye el generador.
func NewKardexPDFGenerator() *KardexPDFGenerator { return &KardexPDFGenerator{} }

// GenerateKardexPDF genera el PDF del kardex y devuelve sus bytes.
func (g *KardexPDFGenerator) GenerateKardexPDF(
	_ context.Context,
	product *entity.Product,
	rows []appledger.KardexRow,
	from, to *time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+product.SKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(product, from, to))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(rows) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre + SKU (izq) y rango de fechas (der).
func headerRow(product *entity.Product, from, to *time.Time) core.Row {
	rango := "Desde el origen"
	if from != nil || to != nil {
		rango = fmt.Sprintf("%s — %s", formatDate(from, "origen"), formatDate(to, "hoy"))
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New("KARDEX DE PRODUCTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(product.Name, props.Text{
				Style: fontstyle.Bold, Size: 12, Top: 6,
			}),
			text.New("SKU: "+product.SKU, props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Rango", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(rango, props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Subtipo", 3, align.Left),
		h("Cantidad", 2, align.Right),
		h("Costo U.", 1, align.Right),
		h("Saldo", 2, align.Right),
	)
}

// tableDetailRows: una fila por movimiento, salidas en rojo.
func tableDetailRows(rows []appledger.KardexRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		m := r.Movement
		qtyColor := colorGray
		if m.Quantity.IsNegative() {
			qtyColor = colorRed
		}
		unitCost := "—"
		if m.UnitCost != nil {
			unitCost = m.UnitCost.StringFixed(2)
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(
				m.Date.Format("02/01/2006"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				m.Type,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				m.Subtype,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				m.Quantity.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: qtyColor},
			)),
			col.New(1).Add(text.New(
				unitCost,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				r.Balance.String(),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Style: fontstyle.Bold},
			)),
		))
	}
	return result
}

// summaryRow: existencia al cierre del rango.
func summaryRow(rows []appledger.KardexRow) core.Row {
	final := decimal.Zero
	if len(rows) > 0 {
		final = rows[len(rows)-1].Balance
	}
	return row.New(10).Add(
		col.New(8).Add(text.New(
			fmt.Sprintf("%d movimientos", len(rows)),
			props.Text{Size: 8, Top: 2, Color: colorGray},
		)),
		col.New(4).Add(text.New(
			"Existencia: "+final.String(),
			props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 2, Right: 1,
			},
		)),
	)
}

func formatDate(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("02/01/2006")
}
