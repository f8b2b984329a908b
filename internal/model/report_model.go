package model

// SWOTAnalysis is the qualitative section of a scored interview report.
type SWOTAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

// CrossSWOT pairs SWOT quadrants into actionable strategies.
type CrossSWOT struct {
	SOStrategies []string `json:"so_strategies"`
	WOStrategies []string `json:"wo_strategies"`
	STStrategies []string `json:"st_strategies"`
	WTStrategies []string `json:"wt_strategies"`
}

// ReportMetadata carries interview-level counters attached to a report.
type ReportMetadata struct {
	TotalQuestions  int     `json:"total_questions"`
	TotalMessages   int     `json:"total_messages"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// InterviewReport is the full server-computed analysis of one completed
// interview. The client consumes it; scoring happens server-side.
type InterviewReport struct {
	CandidateID       int            `json:"candidate_id"`
	CandidateName     string         `json:"candidate_name"`
	CandidateEmail    string         `json:"candidate_email"`
	VacancyID         int            `json:"vacancy_id"`
	VacancyTitle      string         `json:"vacancy_title"`
	CompanyName       string         `json:"company_name"`
	InterviewDate     string         `json:"interview_date"`
	QuantitativeScore float64        `json:"quantitative_score"`
	ScoreCategory     string         `json:"score_category"`
	SWOTAnalysis      SWOTAnalysis   `json:"swot_analysis"`
	CrossSWOT         CrossSWOT      `json:"cross_swot"`
	Recommendations   []string       `json:"recommendations"`
	Metadata          ReportMetadata `json:"metadata"`
}

// CandidateInterview summarizes a candidate's interview for company listings.
// Nil when the candidate has not yet been interviewed.
type CandidateInterview struct {
	SessionID   int      `json:"session_id"`
	Status      string   `json:"status"`
	CompletedAt *string  `json:"completed_at"`
	HasAnalysis bool     `json:"has_analysis"`
	Score       *float64 `json:"score"`
}

// CandidateInfo is one row in the company's candidate overview.
type CandidateInfo struct {
	ID           int                 `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	VacancyTitle string              `json:"vacancy_title"`
	AppliedAt    string              `json:"applied_at"`
	Status       string              `json:"status"`
	Interview    *CandidateInterview `json:"interview"`
}

// RankedCandidate is one entry in the company-wide candidate ranking.
type RankedCandidate struct {
	Rank int `json:"rank"`
	Candidate struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"candidate"`
	VacancyTitle  string  `json:"vacancy_title"`
	Score         float64 `json:"score"`
	ScoreCategory string  `json:"score_category"`
	CompletedAt   string  `json:"completed_at"`
	SessionID     int     `json:"session_id"`
	Summary       struct {
		StrengthsCount    int    `json:"strengths_count"`
		WeaknessesCount   int    `json:"weaknesses_count"`
		TopRecommendation string `json:"top_recommendation"`
	} `json:"summary"`
}

// GlobalReport aggregates interview outcomes across a whole company.
type GlobalReport struct {
	CompanyName string `json:"company_name"`
	ReportDate  string `json:"report_date"`
	Summary     struct {
		TotalInterviews int     `json:"total_interviews"`
		AverageScore    float64 `json:"average_score"`
		CompletionRate  float64 `json:"completion_rate"`
		ScoreDistribution struct {
			Excellent int `json:"excellent"`
			Good      int `json:"good"`
			Fair      int `json:"fair"`
			Poor      int `json:"poor"`
		} `json:"score_distribution"`
	} `json:"summary"`
	Insights struct {
		TopStrengths         []string        `json:"top_strengths"`
		CommonWeaknesses     []string        `json:"common_weaknesses"`
		RecommendationTrends [][]interface{} `json:"recommendation_trends"`
	} `json:"insights"`
	Effectiveness struct {
		InterviewQuality       float64 `json:"interview_quality"`
		RequirementFulfillment float64 `json:"requirement_fulfillment"`
		CandidateEngagement    float64 `json:"candidate_engagement"`
	} `json:"effectiveness"`
	Recommendations []string `json:"recommendations"`
}
