package model

// SessionStatus is the server-side lifecycle state of an interview session.
// Progression is strictly forward: pending -> active -> completed. The
// alternate terminal state "abandoned" is set server-side only; the client
// reflects it but never transitions into it.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether no further lifecycle transitions are possible.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// InterviewSession tracks one candidate's progress through one vacancy's
// interview questions.
type InterviewSession struct {
	ID                   int           `json:"id"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	StartedAt            string        `json:"started_at,omitempty"`
	CompletedAt          string        `json:"completed_at,omitempty"`
	LastActivity         string        `json:"last_activity"`
	TotalScore           float64       `json:"total_score"`
	MaxPossibleScore     float64       `json:"max_possible_score"`
	CandidateName        string        `json:"candidate_name"`
	VacancyTitle         string        `json:"vacancy_title"`
	VacancyID            *int          `json:"vacancy_id,omitempty"`
	MessageCount         int           `json:"message_count"`
	CompanyName          string        `json:"company_name,omitempty"`
}

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderCandidate Sender = "candidate"
	SenderAI        Sender = "ai"
	SenderSystem    Sender = "system"
)

// ChatMessage is a single entry in the interview transcript. The message list
// is append-only and ordered by insertion; the timestamp field is informative
// (client- or server-supplied depending on call path) and does not define
// ordering.
type ChatMessage struct {
	ID            *int     `json:"id,omitempty"`
	Sender        Sender   `json:"sender"`
	Content       string   `json:"content"`
	Timestamp     string   `json:"timestamp"`
	QuestionIndex *int     `json:"question_index,omitempty"`
	Score         *float64 `json:"score,omitempty"`
}

// InterviewQuestion is one generated question of a vacancy's interview script.
type InterviewQuestion struct {
	ID               string   `json:"id"`
	Question         string   `json:"question"`
	Type             string   `json:"type"` // "technical" | "behavioral" | "situational"
	ExpectedKeywords []string `json:"expected_keywords"`
	Rubric           string   `json:"rubric"`
	Weight           float64  `json:"weight"`
}
