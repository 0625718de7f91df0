package reports

import (
	"sort"
	"strconv"
	"strings"

	"hrkey/internal/domain/scoring"
)

// BuildNineBox counts items per grid position. Items without a position
// count toward the total only.
func BuildNineBox(roundCode, managerName string, items []NineBoxItem) NineBoxReport {
	counts := make(map[string]int, 9)
	for i := 1; i <= 9; i++ {
		counts[strconv.Itoa(i)] = 0
	}
	for _, it := range items {
		if it.NineBoxPosition == nil {
			continue
		}
		key := strconv.Itoa(*it.NineBoxPosition)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}
	if items == nil {
		items = []NineBoxItem{}
	}
	report := NineBoxReport{RoundCode: roundCode, Total: len(items), Counts: counts, Items: items}
	if managerName != "" {
		report.ManagerName = &managerName
	}
	return report
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return scoring.Round2(*p)
}

// BuildPDIItems classifies each row and sorts by manager then employee
// name, both trimmed and upper-cased.
func BuildPDIItems(rows []PDIRow, t scoring.Thresholds) []PDIItem {
	items := make([]PDIItem, 0, len(rows))
	for _, r := range rows {
		final := valueOrZero(r.FinalRating)
		outcome := scoring.ClassifyOutcome(&final, t)
		pdi, recognition := outcome.Flags()
		items = append(items, PDIItem{
			EmployeeID:     r.EmployeeID,
			EmployeeName:   r.EmployeeName,
			Cargo:          r.Cargo,
			Empresa:        r.Empresa,
			CompanyName:    r.CompanyName,
			BranchName:     r.BranchName,
			DepartmentName: r.DepartmentName,
			ManagerName:    r.ManagerName,
			ManagerCode:    r.ManagerCode,
			Ratings: map[string]float64{
				scoring.Institucional.String(): valueOrZero(r.InstitucionalAvg),
				scoring.Funcional.String():     valueOrZero(r.FuncionalAvg),
				scoring.Individual.String():    valueOrZero(r.IndividualAvg),
				scoring.Metas.String():         valueOrZero(r.MetasAvg),
			},
			FinalRating:     final,
			Classification:  outcome,
			PDIFlag:         pdi,
			RecognitionFlag: recognition,
			RoundCode:       r.RoundCode,
			EvaluationID:    r.EvaluationID,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		mi := sortKey(items[i].ManagerName)
		mj := sortKey(items[j].ManagerName)
		if mi != mj {
			return mi < mj
		}
		return sortKey(items[i].EmployeeName) < sortKey(items[j].EmployeeName)
	})
	return items
}

func sortKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ResolveMeritItems joins each row with its matrix band.
func ResolveMeritItems(rows []MeritRow, bands []scoring.MeritBand) []MeritItem {
	items := make([]MeritItem, 0, len(rows))
	for _, r := range rows {
		outcome := scoring.ResolveMerit(scoring.MeritInput{
			Salary:      r.CurrentSalary,
			Median100:   r.Median100,
			Year:        r.SalaryGradeYear,
			Region:      r.SalaryRegion,
			FinalRating: r.FinalRating,
		}, bands)
		items = append(items, MeritItem{MeritRow: r, MeritOutcome: outcome})
	}
	return items
}

// GroupMerit groups items by manager name in first-seen order.
func GroupMerit(items []MeritItem) []MeritGroup {
	groups := []MeritGroup{}
	index := map[string]int{}
	for _, it := range items {
		name := strings.TrimSpace(it.ManagerName)
		if name == "" {
			name = unnamedManager
		}
		pos, ok := index[name]
		if !ok {
			pos = len(groups)
			index[name] = pos
			groups = append(groups, MeritGroup{Gestor: name})
		}
		groups[pos].Funcionarios = append(groups[pos].Funcionarios, MeritEmployee{
			EmployeeID:       it.EmployeeID,
			Nome:             it.EmployeeName,
			Cargo:            it.Cargo,
			Company:          it.CompanyName,
			Department:       it.DepartmentName,
			Branch:           it.BranchName,
			CurrentSalary:    it.CurrentSalary,
			MedianSalary:     it.Median100,
			Median80:         it.Median80,
			Median120:        it.Median120,
			PctOfMedian:      it.PctOfMedian,
			FinalRating:      it.FinalRating,
			FinalRatingRound: it.FinalRatingRound,
			MeritPercent:     it.MeritPercent,
			NewSalary:        it.NewSalary,
			MonthlyImpact:    it.MonthlyImpact,
			AnnualImpact:     it.AnnualImpact,
			GradeGroup:       it.GradeGroup,
			GradeLevel:       it.GradeLevel,
			SalaryRegion:     it.SalaryRegion,
			SalaryYear:       it.SalaryGradeYear,
		})
	}
	return groups
}
