// Package pdf genera el comprobante de compra de un pedido.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Marketplace            │  N° Pedido + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PEDIDO: checkout + estado                                   │
//	│  COMPRADOR: usuario + dirección de entrega                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apporder "github.com/jhoicas/agrimarket-api/internal/application/order"
	"github.com/jhoicas/agrimarket-api/internal/domain/entity"
)

var _ apporder.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 102, Blue: 51}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa order.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	marketplace string
	printer     *message.Printer
}

// NewMarotoReceiptGenerator construye el generador. marketplace es el nombre impreso en el encabezado.
func NewMarotoReceiptGenerator(marketplace string) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{
		marketplace: marketplace,
		printer:     message.NewPrinter(language.Spanish),
	}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(_ context.Context, order *entity.OrderView) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de pedido", true).
		WithAuthor(g.marketplace, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderRow(order))
	m.AddRows(buyerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRow(order))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReceiptGenerator) headerRow(order *entity.OrderView) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.marketplace, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante de compra", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PEDIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %d", order.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+order.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func orderRow(order *entity.OrderView) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL PEDIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Checkout: %s   |   Estado: %s", order.CheckoutID, order.Status),
				props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func buyerRow(order *entity.OrderView) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("COMPRADOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(order.BuyerUsername, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Dirección de entrega: "+nonEmpty(order.DeliveryAddress, "—"),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoReceiptGenerator) tableDetailRow(order *entity.OrderView) core.Row {
	return row.New(7).Add(
		col.New(2).Add(text.New(
			fmt.Sprintf("%d", order.Quantity),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(5).Add(text.New(
			order.ProductName,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			g.money(order.UnitPrice()),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
		col.New(3).Add(text.New(
			g.money(order.TotalPrice),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

func (g *MarotoReceiptGenerator) totalRow(order *entity.OrderView) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New(g.money(order.TotalPrice), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores del idioma configurado. Ej: 1234567.5 → "$1.234.567,50".
func (g *MarotoReceiptGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("$%.2f", f)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
