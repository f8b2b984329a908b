// Package stub is an in-memory stand-in for the Evalyze backend. It exists so
// the client can be developed and end-to-end tested without the real platform:
// real JWT auth, real session lifecycle, scripted interviewer instead of an
// AI.
package stub

import (
	"strings"
	"sync"
	"time"

	"evalyze-client/internal/model"

	"golang.org/x/crypto/bcrypt"
)

type stubUser struct {
	ID           int
	Email        string
	PasswordHash string
	Role         model.Role
	Name         string
}

type stubSession struct {
	model.InterviewSession
	CandidateID int
	Questions   []string
	Messages    []model.ChatMessage
	Scores      []float64
}

// state holds everything the stub knows, guarded by one mutex: the stub
// favors simplicity over throughput.
type state struct {
	mu sync.Mutex

	users     map[int]*stubUser
	byEmail   map[string]*stubUser
	vacancies map[int]*model.Vacancy
	sessions  map[int]*stubSession

	// scripts holds per-vacancy generated interview questions. Vacancies
	// without an entry fall back to defaultQuestions.
	scripts map[int][]string

	// refreshTokens maps an issued refresh token to the user it belongs to.
	// Rotation on use: the consumed token is deleted.
	refreshTokens map[string]int

	nextUserID    int
	nextVacancyID int
	nextSessionID int
}

func newState() *state {
	s := &state{
		users:         make(map[int]*stubUser),
		byEmail:       make(map[string]*stubUser),
		vacancies:     make(map[int]*model.Vacancy),
		sessions:      make(map[int]*stubSession),
		scripts:       make(map[int][]string),
		refreshTokens: make(map[string]int),
		nextUserID:    1,
		nextVacancyID: 1,
		nextSessionID: 1,
	}
	s.seed()
	return s
}

// seed loads demo accounts and vacancies so the terminal client works out of
// the box.
func (s *state) seed() {
	s.addUser("candidate@evalyze.dev", "candidate123", model.RoleCandidate, "Dana Candidate")
	s.addUser("company@evalyze.dev", "company123", model.RoleCompany, "Acme Recruiting")

	s.addVacancy(&model.Vacancy{
		Title:       "Backend Engineer",
		Description: "Build and operate the services behind the hiring pipeline.",
		Level:       "mid",
		Location:    "Remote",
		CompanyName: "Acme Recruiting",
		Status:      "open",
	})
	s.addVacancy(&model.Vacancy{
		Title:       "Data Analyst",
		Description: "Turn interview outcomes into product decisions.",
		Level:       "junior",
		Location:    "Hybrid",
		CompanyName: "Acme Recruiting",
		Status:      "open",
	})
}

func (s *state) addUser(email, password string, role model.Role, name string) *stubUser {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	user := &stubUser{
		ID:           s.nextUserID,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         role,
		Name:         name,
	}
	s.nextUserID++
	s.users[user.ID] = user
	s.byEmail[user.Email] = user
	return user
}

func (s *state) addVacancy(v *model.Vacancy) *model.Vacancy {
	v.ID = s.nextVacancyID
	s.nextVacancyID++
	v.CreatedAt = time.Now().Format(time.RFC3339)
	s.vacancies[v.ID] = v
	return v
}

func (s *state) addSession(candidate *stubUser, vacancy *model.Vacancy, questions []string) *stubSession {
	vacancyID := vacancy.ID
	session := &stubSession{
		InterviewSession: model.InterviewSession{
			ID:               s.nextSessionID,
			Status:           model.SessionPending,
			LastActivity:     time.Now().Format(time.RFC3339),
			CandidateName:    candidate.Name,
			VacancyTitle:     vacancy.Title,
			VacancyID:        &vacancyID,
			CompanyName:      vacancy.CompanyName,
			MaxPossibleScore: float64(len(questions) * 10),
		},
		CandidateID: candidate.ID,
		Questions:   questions,
	}
	s.nextSessionID++
	s.sessions[session.ID] = session
	return session
}

// activeSessionFor returns the candidate's most recent non-terminal session.
func (s *state) activeSessionFor(candidateID int) *stubSession {
	var latest *stubSession
	for _, session := range s.sessions {
		if session.CandidateID != candidateID || session.Status.Terminal() {
			continue
		}
		if latest == nil || session.ID > latest.ID {
			latest = session
		}
	}
	return latest
}

// sessionForVacancy finds any session the candidate already has against the
// vacancy, terminal or not. One application per candidate per vacancy.
func (s *state) sessionForVacancy(candidateID, vacancyID int) *stubSession {
	for _, session := range s.sessions {
		if session.CandidateID == candidateID && session.VacancyID != nil && *session.VacancyID == vacancyID {
			return session
		}
	}
	return nil
}

func (session *stubSession) appendMessage(sender model.Sender, content string, questionIndex *int, score *float64) {
	session.Messages = append(session.Messages, model.ChatMessage{
		Sender:        sender,
		Content:       content,
		Timestamp:     time.Now().Format(time.RFC3339),
		QuestionIndex: questionIndex,
		Score:         score,
	})
	session.MessageCount = len(session.Messages)
	session.LastActivity = time.Now().Format(time.RFC3339)
}
