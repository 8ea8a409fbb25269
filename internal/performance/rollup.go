package performance

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	// PriorityThreshold marks skills below this accuracy as priorities
	PriorityThreshold = 60.0
	// StrongThreshold marks skills at or above this accuracy as consolidated
	StrongThreshold = 80.0
	// DefaultSkillLimit bounds PrioritySkills and StrongSkills
	DefaultSkillLimit = 5
)

// Rollup keeps the rows with at least one answer and recomputes their
// accuracy from the counts
func Rollup(rows []types.SkillProgress) []types.SkillProgress {
	out := make([]types.SkillProgress, 0, len(rows))
	for _, row := range rows {
		if row.TotalAnswered <= 0 {
			continue
		}
		row.CorrectCount = min(max(row.CorrectCount, 0), row.TotalAnswered)
		row.AccuracyPct = Percent(row.CorrectCount, row.TotalAnswered)
		out = append(out, row)
	}
	return out
}

type competencyTotals struct {
	code        string
	description string
	total       int
	correct     int
}

// GroupByCompetency sums skill counts per competency and derives each
// competency's accuracy from the sums. Output is ordered by competency number.
func GroupByCompetency(rows []types.SkillProgress) []types.CompetencyProgress {
	groups := make(map[string]*competencyTotals)
	for _, row := range Rollup(rows) {
		g, ok := groups[row.CompetencyCode]
		if !ok {
			g = &competencyTotals{code: row.CompetencyCode}
			groups[row.CompetencyCode] = g
		}
		if g.description == "" {
			g.description = row.CompetencyDescription
		}
		g.total += row.TotalAnswered
		g.correct += row.CorrectCount
	}

	out := make([]types.CompetencyProgress, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.CompetencyProgress{
			Code:          g.code,
			Description:   g.description,
			TotalAnswered: g.total,
			CorrectCount:  g.correct,
			AccuracyPct:   Percent(g.correct, g.total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := codeNumber(out[i].Code), codeNumber(out[j].Code)
		if ni != nj {
			return ni < nj
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// PrioritySkills returns up to limit skills below PriorityThreshold, weakest first
func PrioritySkills(rows []types.SkillProgress, limit int) []types.SkillProgress {
	return selectSkills(rows, limit,
		func(r types.SkillProgress) bool { return r.AccuracyPct < PriorityThreshold },
		func(a, b types.SkillProgress) bool { return a.AccuracyPct < b.AccuracyPct })
}

// StrongSkills returns up to limit skills at or above StrongThreshold, strongest first
func StrongSkills(rows []types.SkillProgress, limit int) []types.SkillProgress {
	return selectSkills(rows, limit,
		func(r types.SkillProgress) bool { return r.AccuracyPct >= StrongThreshold },
		func(a, b types.SkillProgress) bool { return a.AccuracyPct > b.AccuracyPct })
}

// SkillCodes lists the skill codes of rows
func SkillCodes(rows []types.SkillProgress) []string {
	codes := make([]string, 0, len(rows))
	for _, r := range rows {
		codes = append(codes, r.SkillCode)
	}
	return codes
}

func selectSkills(rows []types.SkillProgress, limit int, keep func(types.SkillProgress) bool, less func(a, b types.SkillProgress) bool) []types.SkillProgress {
	if limit <= 0 {
		limit = DefaultSkillLimit
	}
	selected := make([]types.SkillProgress, 0)
	for _, r := range Rollup(rows) {
		if keep(r) {
			selected = append(selected, r)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool { return less(selected[i], selected[j]) })
	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// codeNumber extracts the numeric suffix of a code such as "C12"
func codeNumber(code string) int {
	digits := strings.TrimLeftFunc(code, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
