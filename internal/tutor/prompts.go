package tutor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/adaptive-tutor/internal/normalize"
	"github.com/jonathan/adaptive-tutor/internal/performance"
	"github.com/jonathan/adaptive-tutor/internal/prompts"
	"github.com/jonathan/adaptive-tutor/internal/types"
)

const (
	skillDescriptionLimit      = 120
	competencyDescriptionLimit = 140
	skillSummaryLimit          = 20
	recentSessionLimit         = 5
	themeRequestCount          = 6
	defaultLearnerName         = "Estudante"
	defaultMotivationContext   = "geral"
)

var feedbackInstructions = []string{
	"Forneça um feedback construtivo e motivador",
	"Explique por que a resposta está incorreta",
	"Explique a resposta correta de forma didática",
	"Sugira estratégias de estudo específicas para esta habilidade",
	"Mantenha um tom encorajador e positivo",
	"Seja específico sobre conceitos que precisam ser revisados",
	"Considere o desempenho específico do estudante nesta habilidade",
}

var progressInstructions = []string{
	"Utilize apenas as competências (C) e habilidades (H) listadas acima; nunca invente códigos.",
	"Descreva tendências e lacunas citando explicitamente os códigos BNCC/ENEM.",
	"Monte um plano de estudo semanal relacionando cada recomendação às habilidades prioritárias e competências em foco.",
	"Sugira um nível de dificuldade ideal entre 0 e 1 coerente com o desempenho observado.",
	`Forneça pelo menos 2 recomendações com tipo ("study", "practice" ou "review"), prioridade (1-5) e focus_skills.`,
	"Inclua uma mensagem motivacional contextualizada e uma meta semanal verificável.",
}

var motivationInstructions = []string{
	"Seja genuinamente motivador e positivo",
	"Reconheça o esforço do estudante",
	"Use linguagem adequada para ensino médio",
	"Inclua dicas práticas se relevante",
	"Mantenha o foco no objetivo do ENEM",
	"Seja específico sobre conquistas",
	"Limite a 100 palavras",
}

var themeInstructions = []string{
	"Cada tema deve trazer título, descrição, problema central e diretrizes de intervenção.",
	"Inclua pelo menos dois textos de apoio por tema, cada um com título, tipo, conteúdo e fonte.",
	"Use identificadores sequenciais no formato tema-01, tema-02 e assim por diante.",
}

type feedbackContext struct {
	question    types.Question
	chosen      string
	subjectName string
	entry       *types.TaxonomyEntry
	concepts    []types.ConceptReference
	snapshot    types.PerformanceSnapshot
	skill       types.SkillAccuracy
}

func buildFeedbackPrompt(fc feedbackContext) (prompts.Prompt, error) {
	q := fc.question
	skillCode := q.SkillCode
	skillDescription := ""
	if fc.entry != nil {
		skillCode = prompts.OrDefault(skillCode, fc.entry.Code)
		skillDescription = fmt.Sprintf("Descrição da Habilidade: %s", fc.entry.Description)
		if fc.entry.CompetencyCode != "" {
			skillDescription += fmt.Sprintf("\nCompetência: %s - %s", fc.entry.CompetencyCode, fc.entry.CompetencyDescription)
		}
	}

	body, err := prompts.Render(prompts.TutorFile, "feedback-body", map[string]string{
		"SubjectName":       fc.subjectName,
		"Subject":           q.Subject,
		"SkillCode":         prompts.OrDefault(skillCode, "não informada"),
		"SkillDescription":  skillDescription,
		"Difficulty":        formatNumber(q.Difficulty),
		"Statement":         q.Statement,
		"AltA":              q.Alternatives[0],
		"AltB":              q.Alternatives[1],
		"AltC":              q.Alternatives[2],
		"AltD":              q.Alternatives[3],
		"AltE":              q.Alternatives[4],
		"ConceptsContext":   prompts.RenderConcepts(fc.subjectName, fc.concepts),
		"Chosen":            fc.chosen,
		"Correct":           q.CorrectAnswer,
		"TotalAnswered":     strconv.Itoa(fc.snapshot.TotalAnswered),
		"AccuracyPct":       formatNumber(fc.snapshot.AccuracyPct),
		"RecentAccuracyPct": formatNumber(fc.snapshot.RecentAccuracyPct),
		"AvgResponseTime":   formatNumber(fc.snapshot.AvgResponseTimeSeconds),
		"SkillAccuracyPct":  formatNumber(fc.skill.AccuracyPct),
		"SkillTotal":        strconv.Itoa(fc.skill.TotalAnswered),
	})
	if err != nil {
		return prompts.Prompt{}, err
	}

	instructions := prompts.NewInstructions(feedbackInstructions...).
		AddIf(len(fc.concepts) > 0,
			`Utilize somente os objetos listados acima para preencher "concepts_to_review", devolvendo cada item no formato "CODIGO - descrição literal".`).
		Add("Diagnostique o motivo do erro do estudante, mencionando trechos do enunciado ou características da alternativa escolhida.").
		Add("Indique o principal ponto de confusão ou armadilha conceitual que pode ter levado ao erro e como identificá-lo.").
		Add(fmt.Sprintf("Proponha até %d passos práticos e objetivos para evitar repetir o erro, em linguagem direta.", normalize.MaxReviewSteps)).
		Add("Limite a resposta a no máximo 200 palavras.")

	return prompts.Build(
		prompts.MustGet(prompts.TutorFile, "feedback-system"),
		body,
		instructions,
		prompts.MustGet(prompts.TutorFile, "feedback-schema"),
	)
}

type progressContext struct {
	subject     string
	subjectName string
	snapshot    types.PerformanceSnapshot
	sessions    []types.StudySession
	skills      []types.SkillProgress // rows with at least one attempt
}

func buildProgressPrompt(pc progressContext) (prompts.Prompt, error) {
	skills := pc.skills
	if len(skills) > skillSummaryLimit {
		skills = skills[:skillSummaryLimit]
	}

	body, err := prompts.Render(prompts.TutorFile, "progress-body", map[string]string{
		"SubjectName":       pc.subjectName,
		"Subject":           pc.subject,
		"TotalAnswered":     strconv.Itoa(pc.snapshot.TotalAnswered),
		"AccuracyPct":       formatNumber(pc.snapshot.AccuracyPct),
		"RecentAccuracyPct": formatNumber(pc.snapshot.RecentAccuracyPct),
		"AvgResponseTime":   formatNumber(pc.snapshot.AvgResponseTimeSeconds),
		"Sessions":          renderSessions(pc.sessions),
		"Skills": renderSkillLines(skills,
			"- Nenhuma habilidade da BNCC respondida até agora."),
		"PrioritySkills": renderSkillLines(performance.PrioritySkills(pc.skills, performance.DefaultSkillLimit),
			"- Ainda não há habilidades críticas mapeadas."),
		"StrongSkills": renderSkillLines(performance.StrongSkills(pc.skills, performance.DefaultSkillLimit),
			"- Nenhuma habilidade consolidada foi identificada por enquanto."),
		"Competencies": renderCompetencies(performance.GroupByCompetency(pc.skills)),
	})
	if err != nil {
		return prompts.Prompt{}, err
	}

	instructions := prompts.NewInstructions(progressInstructions...).
		AddIf(len(pc.skills) == 0,
			"Como não há histórico registrado, explique como iniciar os estudos e estabeleça metas iniciais realistas.")

	return prompts.Build(
		prompts.MustGet(prompts.TutorFile, "progress-system"),
		body,
		instructions,
		prompts.MustGet(prompts.TutorFile, "progress-schema"),
	)
}

func renderSkillLines(rows []types.SkillProgress, empty string) string {
	if len(rows) == 0 {
		return empty
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("- %s/%s: %s%% (%d/%d) – %s",
			r.CompetencyCode, r.SkillCode, formatNumber(r.AccuracyPct), r.CorrectCount, r.TotalAnswered,
			prompts.Truncate(r.Description, skillDescriptionLimit)))
	}
	return strings.Join(lines, "\n")
}

func renderCompetencies(groups []types.CompetencyProgress) string {
	if len(groups) == 0 {
		return "- Sem competências com respostas registradas nesta matéria."
	}
	lines := make([]string, 0, len(groups))
	for _, c := range groups {
		lines = append(lines, fmt.Sprintf("- %s: %s%% (%d/%d) – %s",
			c.Code, formatNumber(c.AccuracyPct), c.CorrectCount, c.TotalAnswered,
			prompts.Truncate(c.Description, competencyDescriptionLimit)))
	}
	return strings.Join(lines, "\n")
}

func renderSessions(sessions []types.StudySession) string {
	if len(sessions) == 0 {
		return "- Nenhuma sessão concluída recentemente."
	}
	lines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		date := "Sem data"
		if !s.StartedAt.IsZero() {
			date = s.StartedAt.Format("02/01/2006")
		}
		pct := 0.0
		if s.TotalQuestions > 0 {
			pct = float64(s.CorrectCount) * 100 / float64(s.TotalQuestions)
		}
		lines = append(lines, fmt.Sprintf("- %s: %.1f%% de acerto em %d questões", date, pct, s.TotalQuestions))
	}
	return strings.Join(lines, "\n")
}

type motivationContext struct {
	context     string
	learnerName string
	snapshot    types.PerformanceSnapshot
}

func buildMotivationPrompt(mc motivationContext) (prompts.Prompt, error) {
	body, err := prompts.Render(prompts.TutorFile, "motivation-body", map[string]string{
		"Context":       prompts.OrDefault(mc.context, defaultMotivationContext),
		"LearnerName":   prompts.OrDefault(mc.learnerName, defaultLearnerName),
		"AccuracyPct":   formatNumber(mc.snapshot.AccuracyPct),
		"TotalAnswered": strconv.Itoa(mc.snapshot.TotalAnswered),
		"Stars":         strconv.Itoa(performance.Stars(mc.snapshot.CorrectCount)),
	})
	if err != nil {
		return prompts.Prompt{}, err
	}

	return prompts.Build(
		prompts.MustGet(prompts.TutorFile, "motivation-system"),
		body,
		prompts.NewInstructions(motivationInstructions...),
		prompts.MustGet(prompts.TutorFile, "motivation-schema"),
	)
}

func buildThemesPrompt() (prompts.Prompt, error) {
	body, err := prompts.Render(prompts.TutorFile, "themes-body", map[string]string{
		"Count": strconv.Itoa(themeRequestCount),
	})
	if err != nil {
		return prompts.Prompt{}, err
	}

	return prompts.Build(
		prompts.MustGet(prompts.TutorFile, "themes-system"),
		body,
		prompts.NewInstructions(themeInstructions...),
		prompts.MustGet(prompts.TutorFile, "themes-schema"),
	)
}

// formatNumber prints 60 as "60" and 62.5 as "62.5"
func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
