// Package pdf genera el rótulo imprimible de una guía de envío.
//
// Layout (media hoja A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  EMPRESA + NIT               │  N° de guía + fecha          │
//	│  código de barras del número de guía                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  REMITENTE                   │  DESTINATARIO                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Piezas | Peso real | Peso vol. | Peso cobrado | Declarado  │
//	│  QR de rastreo + contenido                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/guias-api/internal/application/guides"
	"github.com/jhoicas/guias-api/internal/domain/entity"
)

var _ guides.LabelGenerator = (*LabelGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// LabelGenerator implementa guides.LabelGenerator con Maroto v2.
type LabelGenerator struct {
	// trackingURL base opcional para el QR; vacío = el QR lleva solo el número de guía.
	trackingURL string
}

// NewLabelGenerator construye el generador.
func NewLabelGenerator(trackingURL string) *LabelGenerator {
	return &LabelGenerator{trackingURL: strings.TrimRight(trackingURL, "/")}
}

// GenerateLabel genera el PDF del rótulo y devuelve sus bytes.
func (g *LabelGenerator) GenerateLabel(_ context.Context, guide *entity.Guide, company *entity.Company) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía "+guide.TrackingNumber, true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(guide, company))
	m.AddRows(row.New(16).Add(col.New(12).Add(
		code.NewBar(guide.TrackingNumber, props.Barcode{Percent: 90, Center: true}),
	)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(guide))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(packageHeaderRow(), packageRow(guide.Package))
	m.AddRows(line.NewRow(3))
	m.AddRows(trackingRow(guide, g.qrData(guide)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar rótulo: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *LabelGenerator) qrData(guide *entity.Guide) string {
	if g.trackingURL == "" {
		return guide.TrackingNumber
	}
	return g.trackingURL + "/" + guide.TrackingNumber
}

func headerRow(guide *entity.Guide, company *entity.Company) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+nonEmpty(company.NIT, "—"), props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("GUÍA DE ENVÍO", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(guide.TrackingNumber, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6}),
			text.New("Fecha: "+guide.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 7, Align: align.Right, Top: 12, Color: colorGray}),
		),
	)
}

func partiesRow(guide *entity.Guide) core.Row {
	return row.New(30).Add(
		col.New(6).Add(addressBlock("REMITENTE", guide.Sender)...),
		col.New(6).Add(addressBlock("DESTINATARIO", guide.Consignee)...),
	)
}

func addressBlock(title string, a entity.Address) []core.Component {
	city := a.City
	if a.Department != "" {
		city += ", " + a.Department
	}
	out := []core.Component{
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(a.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		text.New(a.Street, props.Text{Size: 8, Top: 12}),
		text.New(city, props.Text{Size: 8, Top: 17}),
		text.New("Tel: "+nonEmpty(a.Phone, "—"), props.Text{Size: 8, Top: 22, Color: colorGray}),
	}
	if a.Reference != "" {
		out = append(out, text.New(a.Reference, props.Text{Size: 7, Top: 26, Color: colorGray}))
	}
	return out
}

func packageHeaderRow() core.Row {
	h := func(label string) core.Col {
		return col.New(2).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Align: align.Center, Top: 1}))
	}
	return row.New(6).Add(
		h("Sobres"), h("Paquetes"), h("Cajas"),
		h("Peso real"), h("Peso vol."), h("Peso cobrado"),
	)
}

func packageRow(p entity.PackageComposition) core.Row {
	v := func(s string) core.Col {
		return col.New(2).Add(text.New(s, props.Text{Size: 9, Align: align.Center, Top: 1}))
	}
	return row.New(7).Add(
		v(fmt.Sprint(p.Sobres)), v(fmt.Sprint(p.Paquetes)), v(fmt.Sprint(p.Cajas)),
		v(p.RealWeight.StringFixed(2)+" kg"),
		v(p.DimensionalWeight.StringFixed(2)+" kg"),
		v(p.TotalWeight.StringFixed(2)+" kg"),
	)
}

func trackingRow(guide *entity.Guide, qr string) core.Row {
	details := []core.Component{
		text.New("Rastree su envío con el número de guía o escaneando el código QR.", props.Text{
			Size: 8, Top: 3, Left: 3, Color: colorGray,
		}),
		text.New(fmt.Sprintf("Piezas: %d   |   Valor declarado: $%s",
			guide.Package.Pieces(), guide.Package.DeclaredValue.StringFixed(2)), props.Text{
			Size: 8, Top: 10, Left: 3,
		}),
	}
	if guide.Package.Description != "" {
		details = append(details, text.New("Contenido: "+guide.Package.Description, props.Text{
			Size: 8, Top: 16, Left: 3,
		}))
	}
	return row.New(34).Add(
		col.New(4).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(details...),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
