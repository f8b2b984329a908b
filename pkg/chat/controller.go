// Package chat drives the candidate-facing interview conversation through the
// session lifecycle: history loading, start, optimistic sends, background
// polling while the session is active, and the finalize confirmation gate.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"evalyze-client/internal/dto"
	"evalyze-client/internal/model"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/internal/service"
	"evalyze-client/pkg/events"
)

// State of the controller's interaction machine.
type State string

const (
	StateIdle           State = "IDLE"
	StateLoadingHistory State = "LOADING_HISTORY"
	StateReadyPending   State = "READY_PENDING"
	StateAwaitingInput  State = "AWAITING_INPUT"
	StateWaitingForAI   State = "WAITING_FOR_AI"
	StateCompleted      State = "COMPLETED"
)

var (
	// ErrInterviewNotPending is returned when StartInterview is called in any
	// state other than ready-pending.
	ErrInterviewNotPending = errors.New("interview is not pending")

	// ErrSessionCompleted is returned when a send is attempted after the
	// session reached a terminal status. The guard is client-side on purpose,
	// independent of server enforcement.
	ErrSessionCompleted = errors.New("interview session is completed")

	// ErrInterviewNotActive is returned when a send is attempted before the
	// interview has been started.
	ErrInterviewNotActive = errors.New("interview is not active")

	// ErrNoFinalizePending is returned when ConfirmFinalize is called without
	// a preceding RequestFinalize.
	ErrNoFinalizePending = errors.New("no finalize confirmation pending")

	// ErrNoSession is returned for operations that need a bound session.
	ErrNoSession = errors.New("no interview session bound")
)

// DefaultPollInterval is how often message history is re-fetched while the
// session is active.
const DefaultPollInterval = 5 * time.Second

type Controller struct {
	svc      service.IInterviewService
	analysis service.IAnalysisService
	bus      *events.Bus
	log      logger.ILogger

	pollInterval time.Duration

	mu              sync.Mutex
	state           State
	gen             int // binding generation; results tagged with an older gen are discarded
	sessionID       int
	session         *model.InterviewSession
	messages        []model.ChatMessage
	questionIndex   int
	totalQuestions  int
	finalizePending bool
	pollCancel      context.CancelFunc

	// scrollC coalesces scroll-to-bottom requests: any number of appends in
	// quick succession collapse into one pending signal.
	scrollC chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

func WithBus(bus *events.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

func NewController(svc service.IInterviewService, analysis service.IAnalysisService, opts ...Option) *Controller {
	c := &Controller{
		svc:          svc,
		analysis:     analysis,
		log:          logger.Nop(),
		pollInterval: DefaultPollInterval,
		state:        StateIdle,
		scrollC:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind attaches the controller to a session: fetches metadata and history,
// then enters the state matching the session's status. Binding to a new
// session supersedes the old one entirely: previous messages are reset and
// any in-flight results for the old binding are discarded when they land.
func (c *Controller) Bind(ctx context.Context, sessionID int) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.stopPollingLocked()
	c.sessionID = sessionID
	c.session = nil
	c.messages = nil
	c.questionIndex = 0
	c.totalQuestions = 0
	c.finalizePending = false
	c.state = StateLoadingHistory
	c.mu.Unlock()

	session, err := c.svc.GetSession(ctx, sessionID)
	if err != nil {
		c.failBind(gen)
		return err
	}
	history, err := c.svc.GetMessages(ctx, sessionID)
	if err != nil {
		c.failBind(gen)
		return err
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.session = session
	c.messages = append([]model.ChatMessage(nil), history.Messages...)
	c.totalQuestions = history.TotalQuestions
	c.questionIndex = session.CurrentQuestionIndex
	if history.CurrentQuestion > c.questionIndex {
		c.questionIndex = history.CurrentQuestion
	}

	switch session.Status {
	case model.SessionPending:
		c.state = StateReadyPending
	case model.SessionActive:
		c.state = StateAwaitingInput
		c.startPollingLocked(gen, sessionID)
	default:
		c.state = StateCompleted
	}
	if len(c.messages) > 0 {
		c.signalScroll()
	}
	c.mu.Unlock()

	c.log.Debug("chat", "session bound", map[string]interface{}{
		"session_id": sessionID,
		"status":     session.Status,
	})
	return nil
}

func (c *Controller) failBind(gen int) {
	c.mu.Lock()
	if gen == c.gen {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// StartInterview issues the start call. Permitted only from ready-pending; on
// failure the controller stays there so the user can retry.
func (c *Controller) StartInterview(ctx context.Context) error {
	c.mu.Lock()
	if c.sessionID == 0 {
		c.mu.Unlock()
		return ErrNoSession
	}
	if c.state != StateReadyPending {
		c.mu.Unlock()
		return ErrInterviewNotPending
	}
	gen, sessionID := c.gen, c.sessionID
	c.mu.Unlock()

	res, err := c.svc.StartSession(ctx, sessionID)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if res.FirstMessage != "" {
		c.messages = append(c.messages, model.ChatMessage{
			Sender:    model.SenderAI,
			Content:   res.FirstMessage,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	if c.session != nil {
		c.advanceStatusLocked(model.SessionActive)
	}
	c.state = StateAwaitingInput
	c.startPollingLocked(gen, sessionID)
	c.signalScroll()
	c.mu.Unlock()

	c.publish(events.TypeSessionStarted, map[string]interface{}{"session_id": sessionID})
	return nil
}

// SendMessage submits a candidate answer. Empty or whitespace-only input, an
// unbound session, and an in-flight send are silent no-ops. The candidate's
// message is appended optimistically before the network call and is never
// rolled back; a failure only returns the controller to input so the user can
// resend.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.sessionID == 0 {
		c.mu.Unlock()
		return nil
	}
	switch c.state {
	case StateWaitingForAI:
		c.mu.Unlock()
		return nil
	case StateCompleted:
		c.mu.Unlock()
		return ErrSessionCompleted
	case StateAwaitingInput:
		// fall through
	default:
		c.mu.Unlock()
		return ErrInterviewNotActive
	}

	gen, sessionID := c.gen, c.sessionID
	c.messages = append(c.messages, model.ChatMessage{
		Sender:    model.SenderCandidate,
		Content:   text,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	c.state = StateWaitingForAI
	c.signalScroll()
	c.mu.Unlock()

	c.publish(events.TypeMessageAppended, map[string]interface{}{
		"session_id": sessionID,
		"sender":     string(model.SenderCandidate),
	})

	res, err := c.svc.SendMessage(ctx, sessionID, text)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.state = StateAwaitingInput
		c.mu.Unlock()
		return err
	}

	c.messages = append(c.messages, model.ChatMessage{
		Sender:    model.SenderAI,
		Content:   res.Message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if res.TotalQuestions > 0 {
		c.totalQuestions = res.TotalQuestions
	}

	// The tracked index never regresses, whatever the payload says.
	if res.CurrentQuestion > c.questionIndex {
		c.questionIndex = res.CurrentQuestion
	}
	if c.session != nil && res.CurrentQuestion > c.session.CurrentQuestionIndex {
		c.session.CurrentQuestionIndex = res.CurrentQuestion
	}

	completed := res.IsComplete
	if completed {
		c.state = StateCompleted
		c.advanceStatusLocked(model.SessionCompleted)
		c.stopPollingLocked()
	} else {
		c.state = StateAwaitingInput
	}
	c.signalScroll()
	c.mu.Unlock()

	c.publish(events.TypeMessageAppended, map[string]interface{}{
		"session_id": sessionID,
		"sender":     string(model.SenderAI),
	})
	if completed {
		c.publish(events.TypeSessionCompleted, map[string]interface{}{"session_id": sessionID})
	}
	return nil
}

// RequestFinalize opens the confirmation gate before the irreversible
// finalize call.
func (c *Controller) RequestFinalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID == 0 {
		return ErrNoSession
	}
	if c.state == StateCompleted {
		return ErrSessionCompleted
	}
	c.finalizePending = true
	return nil
}

// CancelFinalize dismisses the confirmation gate.
func (c *Controller) CancelFinalize() {
	c.mu.Lock()
	c.finalizePending = false
	c.mu.Unlock()
}

// ConfirmFinalize performs the finalize call. The confirmation is consumed
// either way; on failure the controller stays in its current state.
func (c *Controller) ConfirmFinalize(ctx context.Context) (*dto.FinalizeResponse, error) {
	c.mu.Lock()
	if !c.finalizePending {
		c.mu.Unlock()
		return nil, ErrNoFinalizePending
	}
	c.finalizePending = false
	gen, sessionID := c.gen, c.sessionID
	c.mu.Unlock()

	res, err := c.analysis.FinalizeInterview(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if gen == c.gen {
		c.state = StateCompleted
		c.advanceStatusLocked(model.SessionCompleted)
		c.stopPollingLocked()
	}
	c.mu.Unlock()

	c.publish(events.TypeSessionCompleted, map[string]interface{}{
		"session_id": sessionID,
		"score":      res.Score,
	})
	return res, nil
}

// Close tears the controller down. Polling stops immediately; any still
// in-flight results are discarded when they land.
func (c *Controller) Close() {
	c.mu.Lock()
	c.gen++
	c.stopPollingLocked()
	c.sessionID = 0
	c.session = nil
	c.state = StateIdle
	c.mu.Unlock()
}

// ScrollRequests delivers at most one pending scroll-to-bottom signal however
// many appends produced it. A renderer that is not consuming loses nothing
// but the duplicate signals.
func (c *Controller) ScrollRequests() <-chan struct{} {
	return c.scrollC
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SessionID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Session returns a copy of the bound session metadata, nil when unbound.
func (c *Controller) Session() *model.InterviewSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	session := *c.session
	return &session
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatMessage(nil), c.messages...)
}

func (c *Controller) QuestionIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.questionIndex
}

func (c *Controller) TotalQuestions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalQuestions
}

func (c *Controller) FinalizePending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalizePending
}

// --- internal machinery ---

// startPollingLocked launches the fixed-interval history poll for the given
// binding. The poll context belongs to the binding, not to any one request:
// it is cancelled on rebind, teardown, and completion.
func (c *Controller) startPollingLocked(gen, sessionID int) {
	if c.pollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.pollCancel = cancel
	go c.pollLoop(ctx, gen, sessionID)
}

func (c *Controller) stopPollingLocked() {
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
}

func (c *Controller) pollLoop(ctx context.Context, gen, sessionID int) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		live := gen == c.gen && c.session != nil && c.session.Status == model.SessionActive
		c.mu.Unlock()
		if !live {
			continue
		}

		history, err := c.svc.GetMessages(ctx, sessionID)
		if err != nil {
			c.log.Warn("chat", "history poll failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			continue
		}
		c.applyHistory(gen, sessionID, history)
	}
}

// applyHistory replaces the local transcript with server state. Results for a
// superseded binding are discarded; reconciliation of any optimistic/server
// divergence is exactly this full replace.
func (c *Controller) applyHistory(gen, sessionID int, history *dto.MessagesResponse) {
	c.mu.Lock()
	if gen != c.gen || sessionID != c.sessionID {
		c.mu.Unlock()
		return
	}

	grew := len(history.Messages) > len(c.messages)
	c.messages = append([]model.ChatMessage(nil), history.Messages...)
	if history.TotalQuestions > 0 {
		c.totalQuestions = history.TotalQuestions
	}
	if history.CurrentQuestion > c.questionIndex {
		c.questionIndex = history.CurrentQuestion
	}

	completed := false
	if status := model.SessionStatus(history.Status); status.Terminal() {
		if c.advanceStatusLocked(status) {
			c.state = StateCompleted
			c.stopPollingLocked()
			completed = true
		}
	}
	if grew {
		c.signalScroll()
	}
	c.mu.Unlock()

	if completed {
		c.publish(events.TypeSessionCompleted, map[string]interface{}{"session_id": sessionID})
	}
}

// advanceStatusLocked moves the session status forward only, never backward.
// Reports whether the status actually changed.
func (c *Controller) advanceStatusLocked(next model.SessionStatus) bool {
	if c.session == nil {
		return false
	}
	if statusRank(next) <= statusRank(c.session.Status) {
		return false
	}
	c.session.Status = next
	return true
}

func statusRank(s model.SessionStatus) int {
	switch s {
	case model.SessionPending:
		return 0
	case model.SessionActive:
		return 1
	case model.SessionCompleted, model.SessionAbandoned:
		return 2
	default:
		return -1
	}
}

// signalScroll coalesces: if a scroll is already pending, the new request
// folds into it.
func (c *Controller) signalScroll() {
	select {
	case c.scrollC <- struct{}{}:
	default:
	}
}

func (c *Controller) publish(eventType string, data map[string]interface{}) {
	if c.bus == nil {
		return
	}
	event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := c.bus.Publish(context.Background(), event); err != nil {
		c.log.Warn("chat", "failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}
