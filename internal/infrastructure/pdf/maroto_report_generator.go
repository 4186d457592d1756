// Package pdf genera el reporte PDF del dashboard de un manager.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Manager + fecha de generación                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Proyectos | Activos | Presupuesto | Gastado | %   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Proyecto | Estado | Avance | Presupuesto | Gastado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOBREASIGNADOS: Empleado | Asignación total | Proyectos    │
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

	"github.com/jhoicas/Recursos-api/internal/application/dto"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
)

var _ ports.ReportGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ports.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	printer *message.Printer
}

// NewMarotoReportGenerator construye el generador con formato numérico en español.
func NewMarotoReportGenerator() *MarotoReportGenerator {
	return &MarotoReportGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateManagerReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateManagerReport(
	_ context.Context,
	managerName string,
	dashboard *dto.ManagerDashboardDTO,
) ([]byte, error) {
	if dashboard == nil {
		return nil, fmt.Errorf("pdf: dashboard vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de recursos", true).
		WithAuthor(managerName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(managerName, dashboard))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.summaryRow(dashboard))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("PROYECTOS"))
	m.AddRows(projectHeaderRow())
	m.AddRows(g.projectRows(dashboard.Projects)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("EMPLEADOS SOBREASIGNADOS"))
	m.AddRows(g.overAllocatedRows(dashboard.OverAllocatedEmployees)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReportGenerator) headerRow(managerName string, d *dto.ManagerDashboardDTO) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Dashboard de recursos", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Manager: "+nonEmpty(managerName, d.ManagerID), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+d.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func (g *MarotoReportGenerator) summaryRow(d *dto.ManagerDashboardDTO) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("Proyectos", g.printer.Sprintf("%d", d.ProjectCount)),
		cell("Activos", g.printer.Sprintf("%d", d.ActiveProjects)),
		cell("Recursos", g.printer.Sprintf("%d", d.TotalResources)),
		cell("Presupuesto", g.money(d.TotalBudget)),
		cell("Gastado", g.money(d.TotalSpent)),
		cell("Uso presupuesto", g.percent(d.BudgetUtilization)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func projectHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Proyecto", 4, align.Left),
		h("Estado", 2, align.Center),
		h("Avance", 1, align.Center),
		h("Presupuesto", 2, align.Right),
		h("Gastado", 2, align.Right),
		h("Uso", 1, align.Right),
	)
}

func (g *MarotoReportGenerator) projectRows(projects []dto.ProjectKPIDTO) []core.Row {
	if len(projects) == 0 {
		return []core.Row{emptyRow("Sin proyectos asignados.")}
	}
	rows := make([]core.Row, 0, len(projects))
	for _, p := range projects {
		usage := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if p.BudgetUtilization.GreaterThan(decimal.NewFromInt(100)) {
			usage.Color = colorAlert
		}
		rows = append(rows, row.New(6).Add(
			col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(p.Status, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d%%", p.Progress), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.money(p.Budget), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(g.money(p.TotalSpent), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(g.percent(p.BudgetUtilization), usage)),
		))
	}
	return rows
}

func (g *MarotoReportGenerator) overAllocatedRows(employees []dto.OverAllocatedEmployeeDTO) []core.Row {
	if len(employees) == 0 {
		return []core.Row{emptyRow("Ningún empleado supera el 100 % de su capacidad.")}
	}
	rows := make([]core.Row, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(e.EmployeeName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(g.percent(e.TotalAllocation), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Color: colorAlert,
			})),
			col.New(3).Add(text.New(g.printer.Sprintf("%d proyectos", e.ProjectCount), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorGray,
			})),
		))
	}
	return rows
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores de miles del locale: 1234567.5 → "$1.234.567,50".
func (g *MarotoReportGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("$%.2f", f)
}

func (g *MarotoReportGenerator) percent(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("%.2f %%", f)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
