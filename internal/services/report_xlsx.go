package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Diagnóstico"

// BuildResultWorkbook renders the fixed-layout report for one result:
// company info block, aggregate score block, then one row per pillar. All
// numbers come from the stored snapshot; the live catalog is never consulted.
func BuildResultWorkbook(res *DiagnosticResult) ([]byte, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}

	row := 1
	setPair := func(label, value string) error {
		labelCell := fmt.Sprintf("A%d", row)
		if err := f.SetCellStr(reportSheet, labelCell, label); err != nil {
			return fmt.Errorf("set cell %s: %w", labelCell, err)
		}
		_ = f.SetCellStyle(reportSheet, labelCell, labelCell, bold)
		valueCell := fmt.Sprintf("B%d", row)
		if err := f.SetCellStr(reportSheet, valueCell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", valueCell, err)
		}
		row++
		return nil
	}

	company := res.CompanyData
	hasPartners := "Não"
	if company.HasPartners {
		hasPartners = "Sim"
	}
	pairs := [][2]string{
		{"Nome", company.Name},
		{"Empresa", company.Company},
		{"CNPJ", company.TaxID},
		{"Possui sócios", hasPartners},
		{"Funcionários", fmt.Sprintf("%d", company.EmployeeCount)},
		{"Faturamento", ftoa(company.Revenue)},
		{"Segmento", company.Segment},
		{"Tempo de atividade", company.YearsActive},
		{"Localização", company.Region},
		{"Forma jurídica", company.LegalForm},
		{"Data", res.Date.Format(time.RFC3339)},
	}
	for _, p := range pairs {
		if err := setPair(p[0], p[1]); err != nil {
			return nil, err
		}
	}

	row++ // blank separator
	if err := setPair("Pontuação total", ftoa(res.TotalScore)); err != nil {
		return nil, err
	}
	if err := setPair("Pontuação máxima", ftoa(res.MaxPossibleScore)); err != nil {
		return nil, err
	}
	if err := setPair("Percentual", fmt.Sprintf("%.2f%%", res.PercentageScore)); err != nil {
		return nil, err
	}

	row++ // blank separator
	header := []string{"Pilar", "Pontuação", "Máximo", "Percentual"}
	for col, h := range header {
		cell := fmt.Sprintf("%s%d", colName(col+1), row)
		if err := f.SetCellStr(reportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	headerEnd := fmt.Sprintf("%s%d", colName(len(header)), row)
	_ = f.SetCellStyle(reportSheet, fmt.Sprintf("A%d", row), headerEnd, bold)
	row++

	for _, ps := range res.PillarScores {
		vals := []string{ps.PillarName, ftoa(ps.Score), ftoa(ps.MaxPossibleScore), fmt.Sprintf("%.2f%%", ps.PercentageScore)}
		for col, v := range vals {
			cell := fmt.Sprintf("%s%d", colName(col+1), row)
			if err := f.SetCellStr(reportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		row++
	}

	// Heuristic widths: label column wide, the rest modest.
	_ = f.SetColWidth(reportSheet, "A", "A", 28)
	_ = f.SetColWidth(reportSheet, "B", "D", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}
