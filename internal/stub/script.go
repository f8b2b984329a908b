package stub

import (
	"fmt"
	"strings"

	"evalyze-client/internal/model"
)

// defaultQuestions is the scripted interview used when a vacancy has no
// generated script. The real platform generates these with an LLM; the stub
// only needs deterministic turns.
var defaultQuestions = []string{
	"Tell me about a project you are proud of and your role in it.",
	"How do you approach debugging a problem you have never seen before?",
	"Describe a time you disagreed with a teammate. How did it resolve?",
}

func greeting(session *stubSession) string {
	return fmt.Sprintf(
		"Welcome %s! This is the interview for %q. We'll go through %d questions. %s",
		session.CandidateName, session.VacancyTitle, len(session.Questions), session.Questions[0],
	)
}

// scoreAnswer is a deterministic mock of the server-side scoring pipeline:
// longer, multi-sentence answers score better, capped at 10.
func scoreAnswer(answer string) float64 {
	words := len(strings.Fields(answer))
	score := float64(words) / 5
	if strings.Contains(answer, ".") {
		score += 2
	}
	if score > 10 {
		score = 10
	}
	return score
}

// buildReport assembles a canned analysis for a completed session.
func buildReport(session *stubSession, user *stubUser) *model.InterviewReport {
	percent := 0.0
	if session.MaxPossibleScore > 0 {
		percent = session.TotalScore / session.MaxPossibleScore * 100
	}

	category := "poor"
	switch {
	case percent >= 85:
		category = "excellent"
	case percent >= 70:
		category = "good"
	case percent >= 50:
		category = "fair"
	}

	vacancyID := 0
	if session.VacancyID != nil {
		vacancyID = *session.VacancyID
	}

	return &model.InterviewReport{
		CandidateID:       session.CandidateID,
		CandidateName:     session.CandidateName,
		CandidateEmail:    user.Email,
		VacancyID:         vacancyID,
		VacancyTitle:      session.VacancyTitle,
		CompanyName:       session.CompanyName,
		InterviewDate:     session.LastActivity,
		QuantitativeScore: percent,
		ScoreCategory:     category,
		SWOTAnalysis: model.SWOTAnalysis{
			Strengths:     []string{"communicates clearly"},
			Weaknesses:    []string{"answers could use more concrete detail"},
			Opportunities: []string{"room to grow into the role"},
			Threats:       []string{"competitive candidate pool"},
		},
		CrossSWOT: model.CrossSWOT{
			SOStrategies: []string{"pair strengths with onboarding mentorship"},
			WOStrategies: []string{"targeted upskilling plan"},
			STStrategies: []string{"fast-track the hiring decision"},
			WTStrategies: []string{"schedule a follow-up technical screen"},
		},
		Recommendations: []string{"proceed to the next round"},
		Metadata: model.ReportMetadata{
			TotalQuestions:  len(session.Questions),
			TotalMessages:   session.MessageCount,
			DurationMinutes: 12,
		},
	}
}
