package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"evalyze-client/internal/bootstrap"
	"evalyze-client/internal/config"
	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/tracer"
	"evalyze-client/pkg/api"
	"evalyze-client/pkg/chat"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	promptColor = color.New(color.FgYellow)
	errColor    = color.New(color.FgRed)
	aiColor     = color.New(color.FgGreen)
	youColor    = color.New(color.FgWhite, color.Bold)
	faintColor  = color.New(color.Faint)
)

type app struct {
	c  *bootstrap.Container
	in *bufio.Reader
}

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)
	defer container.Close()

	a := &app{c: container, in: bufio.NewReader(os.Stdin)}
	a.run(context.Background())
}

func (a *app) run(ctx context.Context) {
	titleColor.Println("Evalyze")

	// Surface bus events the menus did not trigger themselves, e.g. a forced
	// logout when a background refresh fails.
	if err := watchEvents(ctx, a.c.Bus, os.Stdout); err != nil {
		errColor.Printf("event notifications unavailable: %v\n", err)
	}

	if user, err := a.c.Auth.Restore(ctx); err == nil && user != nil {
		faintColor.Printf("welcome back, %s\n", user.Name)
		if expiry, ok := a.c.Tokens.AccessExpiry(); ok {
			faintColor.Printf("session valid until %s\n", expiry.Local().Format("15:04"))
		}
	}

	for {
		if !a.c.Tokens.IsAuthenticated() {
			if !a.authMenu(ctx) {
				return
			}
			continue
		}
		user := a.c.Tokens.User()
		if user == nil {
			a.c.Auth.Logout()
			continue
		}
		// Right after a login, candidates with an interview in flight land
		// straight back in it instead of on the menu.
		if a.c.Credentials.ConsumeJustLoggedIn() && user.Role == model.RoleCandidate {
			if session, err := a.c.Interviews.GetActiveSession(ctx); err == nil && session != nil {
				a.chatLoop(ctx, session.ID)
			}
		}

		var keepGoing bool
		if user.Role == model.RoleCompany {
			keepGoing = a.companyMenu(ctx, user)
		} else {
			keepGoing = a.candidateMenu(ctx, user)
		}
		if !keepGoing {
			return
		}
	}
}

// authMenu returns false when the user chose to quit.
func (a *app) authMenu(ctx context.Context) bool {
	fmt.Println()
	fmt.Println("1) log in  2) register as candidate  3) register as company  q) quit")
	switch a.prompt("> ") {
	case "1":
		a.login(ctx)
	case "2":
		a.registerCandidate(ctx)
	case "3":
		a.registerCompany(ctx)
	case "q":
		return false
	}
	return true
}

func (a *app) login(ctx context.Context) {
	req := &dto.LoginRequest{
		Email:    a.prompt("email: "),
		Password: a.prompt("password: "),
	}
	switch a.prompt("role [candidate/company]: ") {
	case "company":
		req.Role = model.RoleCompany
	default:
		req.Role = model.RoleCandidate
	}
	req.Remember = strings.EqualFold(a.prompt("remember me? [y/N]: "), "y")

	user, err := a.c.Auth.Login(ctx, req)
	if err != nil {
		a.printError(err)
		return
	}
	faintColor.Printf("logged in as %s (%s)\n", user.Name, user.Role)
}

func (a *app) registerCandidate(ctx context.Context) {
	req := &dto.RegisterCandidateRequest{
		Email:    a.prompt("email: "),
		Password: a.prompt("password: "),
		Name:     a.prompt("full name: "),
	}
	user, err := a.c.Auth.RegisterCandidate(ctx, req)
	if err != nil {
		a.printError(err)
		return
	}
	faintColor.Printf("registered and logged in as %s\n", user.Name)
}

func (a *app) registerCompany(ctx context.Context) {
	req := &dto.RegisterCompanyRequest{
		Email:       a.prompt("email: "),
		Password:    a.prompt("password: "),
		Name:        a.prompt("contact name: "),
		CompanyName: a.prompt("company name: "),
	}
	user, err := a.c.Auth.RegisterCompany(ctx, req)
	if err != nil {
		a.printError(err)
		return
	}
	faintColor.Printf("registered and logged in as %s\n", user.Name)
}

// candidateMenu returns false when the user chose to quit.
func (a *app) candidateMenu(ctx context.Context, user *model.User) bool {
	fmt.Println()
	titleColor.Printf("%s (candidate)\n", user.Name)
	if a.c.Interviews.HasActiveSession() {
		faintColor.Println("you have an interview in progress")
	}
	fmt.Println("1) browse vacancies  2) my interview  3) logout  q) quit")
	switch a.prompt("> ") {
	case "1":
		a.browseVacancies(ctx)
	case "2":
		a.resumeInterview(ctx)
	case "3":
		a.c.Interviews.ClearActiveSession()
		a.c.Auth.Logout()
	case "q":
		return false
	}
	return true
}

func (a *app) browseVacancies(ctx context.Context) {
	vacancies, err := a.c.Vacancies.List(ctx)
	if err != nil {
		a.printError(err)
		return
	}
	if len(vacancies) == 0 {
		fmt.Println("no open vacancies")
		return
	}
	for _, v := range vacancies {
		fmt.Printf("  [%d] %s, %s (%s, %s)\n", v.ID, v.Title, v.CompanyName, v.Level, v.Location)
	}
	raw := a.prompt("apply to vacancy id (empty to go back): ")
	if raw == "" {
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		errColor.Println("not a vacancy id")
		return
	}
	a.applyAndInterview(ctx, id)
}

// applyAndInterview applies to a vacancy and drops into the interview chat.
// An already-applied conflict is not fatal: the existing session is resumed.
func (a *app) applyAndInterview(ctx context.Context, vacancyID int) {
	resp, err := a.c.Vacancies.Apply(ctx, vacancyID)
	if err != nil {
		if apiErr, ok := api.AsError(err); ok && apiErr.StatusCode == 409 {
			faintColor.Println("already applied, resuming your interview")
			a.resumeInterview(ctx)
			return
		}
		a.printError(err)
		return
	}
	a.chatLoop(ctx, resp.SessionID)
}

// resumeInterview prefers the broadcast active session over a fresh fetch, so
// hopping between the menu and the chat does not re-hit the endpoint.
func (a *app) resumeInterview(ctx context.Context) {
	session := a.c.Interviews.ActiveSession()
	if session == nil {
		var err error
		session, err = a.c.Interviews.GetActiveSession(ctx)
		if err != nil {
			a.printError(err)
			return
		}
	}
	if session == nil {
		fmt.Println("no interview in progress, apply to a vacancy first")
		return
	}
	a.chatLoop(ctx, session.ID)
}

func (a *app) chatLoop(ctx context.Context, sessionID int) {
	ctrl := a.c.Chat
	if err := ctrl.Bind(ctx, sessionID); err != nil {
		a.printError(err)
		return
	}

	session := ctrl.Session()
	fmt.Println()
	titleColor.Printf("Interview: %s @ %s\n", session.VacancyTitle, session.CompanyName)
	faintColor.Printf("status: %s\n", chat.StatusLabel(session.Status))

	if ctrl.State() == chat.StateReadyPending {
		if !strings.EqualFold(a.prompt("start the interview now? [y/N]: "), "y") {
			return
		}
		if err := ctrl.StartInterview(ctx); err != nil {
			a.printError(err)
			return
		}
	}

	// Scroll requests fire when the transcript grows, including from the
	// background poller while the prompt is waiting on stdin. A full redraw
	// mid-prompt would garble the line, so just nudge the user.
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ctrl.ScrollRequests():
				faintColor.Println("(transcript updated)")
			}
		}
	}()

	rendered := 0
	for {
		rendered = a.render(ctrl, rendered)
		if ctrl.State() == chat.StateCompleted {
			faintColor.Println("interview completed")
			a.c.Interviews.ClearActiveSession()
			a.showReport(ctx, sessionID)
			return
		}

		line := a.prompt("you (/finalize, /back): ")
		switch line {
		case "/back":
			return
		case "/finalize":
			if err := ctrl.RequestFinalize(); err != nil {
				a.printError(err)
				continue
			}
			if !strings.EqualFold(a.prompt("end the interview early? [y/N]: "), "y") {
				ctrl.CancelFinalize()
				continue
			}
			result, err := ctrl.ConfirmFinalize(ctx)
			if err != nil {
				a.printError(err)
				continue
			}
			faintColor.Printf("finalized, score %.1f%%\n", result.Score)
		default:
			if err := ctrl.SendMessage(ctx, line); err != nil {
				a.printError(err)
			}
		}
	}
}

// render prints messages appended since the previous call and returns the new
// count.
func (a *app) render(ctrl *chat.Controller, from int) int {
	messages := ctrl.Messages()
	for _, msg := range messages[min(from, len(messages)):] {
		stamp := chat.FormatTime(msg.Timestamp)
		switch msg.Sender {
		case model.SenderCandidate:
			youColor.Printf("[%s] you: %s\n", stamp, msg.Content)
		case model.SenderAI:
			aiColor.Printf("[%s] interviewer: %s\n", stamp, msg.Content)
		default:
			faintColor.Printf("[%s] %s\n", stamp, msg.Content)
		}
	}
	return len(messages)
}

func (a *app) showReport(ctx context.Context, sessionID int) {
	report, err := a.c.Analysis.GetReport(ctx, sessionID)
	if err != nil {
		a.printError(err)
		return
	}
	fmt.Println()
	titleColor.Println("Interview report")
	fmt.Printf("score: %.1f%% (%s)\n", report.QuantitativeScore, report.ScoreCategory)
	fmt.Printf("strengths: %s\n", strings.Join(report.SWOTAnalysis.Strengths, "; "))
	fmt.Printf("weaknesses: %s\n", strings.Join(report.SWOTAnalysis.Weaknesses, "; "))
	fmt.Printf("recommendations: %s\n", strings.Join(report.Recommendations, "; "))
}

// companyMenu returns false when the user chose to quit.
func (a *app) companyMenu(ctx context.Context, user *model.User) bool {
	fmt.Println()
	titleColor.Printf("%s (company)\n", user.Name)
	fmt.Println("1) vacancies  2) new vacancy  3) generate interview  4) candidates  5) ranking  6) global report  7) logout  q) quit")
	switch a.prompt("> ") {
	case "1":
		a.browseVacancies(ctx)
	case "2":
		a.createVacancy(ctx)
	case "3":
		a.generateInterview(ctx)
	case "4":
		a.listCandidates(ctx)
	case "5":
		a.showRanking(ctx)
	case "6":
		a.showGlobalReport(ctx)
	case "7":
		a.c.Auth.Logout()
	case "q":
		return false
	}
	return true
}

func (a *app) createVacancy(ctx context.Context) {
	req := &dto.SaveVacancyRequest{
		Title:       a.prompt("title: "),
		Description: a.prompt("description: "),
		Level:       a.prompt("level [junior/mid/senior]: "),
		Location:    a.prompt("location: "),
	}
	vacancy, err := a.c.Vacancies.Create(ctx, req)
	if err != nil {
		a.printError(err)
		return
	}
	faintColor.Printf("created vacancy #%d %q\n", vacancy.ID, vacancy.Title)
}

func (a *app) generateInterview(ctx context.Context) {
	id, err := strconv.Atoi(a.prompt("vacancy id: "))
	if err != nil {
		errColor.Println("not a vacancy id")
		return
	}
	n, err := strconv.Atoi(a.prompt("number of questions: "))
	if err != nil || n <= 0 {
		n = 5
	}
	resp, err := a.c.Interviews.GenerateInterview(ctx, id, &dto.GenerateInterviewConfig{
		Level:      "mid",
		NQuestions: n,
	})
	if err != nil {
		a.printError(err)
		return
	}
	faintColor.Printf("generated %d questions for vacancy #%d\n", len(resp.Interview.Questions), resp.Interview.VacancyID)
}

func (a *app) listCandidates(ctx context.Context) {
	candidates, err := a.c.Analysis.GetCandidates(ctx)
	if err != nil {
		a.printError(err)
		return
	}
	if len(candidates) == 0 {
		fmt.Println("no applications yet")
		return
	}
	for _, cand := range candidates {
		line := fmt.Sprintf("  %s <%s>, %s [%s]", cand.Name, cand.Email, cand.VacancyTitle, cand.Status)
		if cand.Interview != nil && cand.Interview.Score != nil {
			line += fmt.Sprintf(" score %.1f%%", *cand.Interview.Score)
		}
		fmt.Println(line)
	}
}

func (a *app) showRanking(ctx context.Context) {
	ranking, err := a.c.Analysis.GetRanking(ctx)
	if err != nil {
		a.printError(err)
		return
	}
	if ranking.TotalCandidates == 0 {
		fmt.Println("no completed interviews yet")
		return
	}
	for _, entry := range ranking.Ranking {
		fmt.Printf("  #%d %s, %s, %.1f%% (%s)\n",
			entry.Rank, entry.Candidate.Name, entry.VacancyTitle, entry.Score, entry.ScoreCategory)
	}
}

func (a *app) showGlobalReport(ctx context.Context) {
	report, err := a.c.Analysis.GetGlobalReport(ctx)
	if err != nil {
		a.printError(err)
		return
	}
	fmt.Println()
	titleColor.Printf("Hiring report: %s\n", report.CompanyName)
	fmt.Printf("interviews: %d, average score %.1f%%, completion rate %.0f%%\n",
		report.Summary.TotalInterviews, report.Summary.AverageScore, report.Summary.CompletionRate)
	dist := report.Summary.ScoreDistribution
	fmt.Printf("distribution: excellent %d / good %d / fair %d / poor %d\n",
		dist.Excellent, dist.Good, dist.Fair, dist.Poor)
}

func (a *app) prompt(label string) string {
	promptColor.Print(label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) printError(err error) {
	if apiErr, ok := api.AsError(err); ok {
		if apiErr.IsValidation() {
			for field, msgs := range apiErr.Fields {
				errColor.Printf("%s: %s\n", field, strings.Join(msgs, "; "))
			}
			return
		}
		errColor.Println(apiErr.Message)
		return
	}
	errColor.Println(err)
}
