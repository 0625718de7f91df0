package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var meritColumns = []struct {
	title string
	width float64
}{
	{"Colaborador", 62},
	{"Cargo", 48},
	{"Salario", 26},
	{"% Mediana", 22},
	{"Nota", 16},
	{"Merito %", 20},
	{"Novo salario", 28},
	{"Impacto anual", 30},
}

func optionalNumber(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// WriteMeritPDF renders the grouped merit report as a landscape table,
// one section per manager.
func WriteMeritPDF(w io.Writer, groups []MeritGroup, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, tr("Relatório de Mérito"))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Gerado em %s", generatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	for _, g := range groups {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(g.Gestor))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range meritColumns {
			pdf.CellFormat(col.width, 7, tr(col.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		var annual float64
		for _, e := range g.Funcionarios {
			values := []string{
				e.Nome,
				e.Cargo,
				fmt.Sprintf("%.2f", e.CurrentSalary),
				optionalNumber(e.PctOfMedian, "%.1f"),
				optionalNumber(e.FinalRating, "%.2f"),
				optionalNumber(e.MeritPercent, "%.1f"),
				optionalNumber(e.NewSalary, "%.2f"),
				optionalNumber(e.AnnualImpact, "%.2f"),
			}
			for i, col := range meritColumns {
				align := "R"
				if i < 2 {
					align = "L"
				}
				pdf.CellFormat(col.width, 6, tr(values[i]), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
			if e.AnnualImpact != nil {
				annual += *e.AnnualImpact
			}
		}
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 7, tr(fmt.Sprintf("Colaboradores: %d | Impacto anual: %.2f", len(g.Funcionarios), annual)))
		pdf.Ln(10)
	}
	return pdf.Output(w)
}

// WritePDIPDF renders the development plan report, one line per evaluation.
func WritePDIPDF(w io.Writer, report PDIReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "PDI por Dimensoes")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	round := "-"
	if report.RoundCode != nil {
		round = *report.RoundCode
	}
	pdf.Cell(0, 6, tr(fmt.Sprintf("Rodada: %s | Total: %d", round, report.Total)))
	pdf.Ln(6)
	pdf.MultiCell(0, 5, report.Criteria.Description, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	headers := []string{"Colaborador", "Gestor", "Final", "Classificacao"}
	widths := []float64{60, 50, 20, 60}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range report.Items {
		pdf.CellFormat(widths[0], 6, tr(it.EmployeeName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(it.ManagerName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", it.FinalRating), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, string(it.Classification), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
