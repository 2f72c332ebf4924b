// Package flow implements the onboarding conversation state machine.
//
// The machine is an explicit transition table: for each state, a list of
// transitions evaluated in order, with exact-label matches listed before the
// catch-all free-text handler. Handlers mutate the session and return the
// outbound prompts; the package performs no I/O.
package flow

import (
	"log/slog"
	"strings"
	"time"

	"github.com/wwwmplusm/goaltrack/internal/models"
)

// Result describes the outcome of applying one inbound input to a session.
type Result struct {
	// Messages are the outbound prompts to send, in order.
	Messages []models.Message
	// Matched reports whether any transition fired. Unmatched input is
	// dropped silently: no state change and no messages.
	Matched bool
	// Commit is set when the conversation reached its end: the caller must
	// persist the accumulated profile and clear the session.
	Commit bool
	// ReportTime carries the user-entered report time when Commit is set.
	ReportTime string
}

// handlerFunc applies a transition's effect to the session and returns the
// prompts to send.
type handlerFunc func(s *models.Session, input string) Result

// transition pairs a matcher with a handler. A transition matches by exact
// label, or by predicate when match is set. One with neither is the
// catch-all for free text at that state.
type transition struct {
	label  string
	match  func(input string) bool
	handle handlerFunc
}

// IsStartEvent reports whether the input is a conversation start command.
// The messaging surface has no command menu, so the bare word is accepted
// alongside the slash form.
func IsStartEvent(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/start", "start":
		return true
	default:
		return false
	}
}

// Onboarding is the conversation state machine. It is stateless; all
// per-user data lives in the Session.
type Onboarding struct {
	transitions map[models.StateType][]transition
}

// NewOnboarding builds the machine with its full transition table.
func NewOnboarding() *Onboarding {
	o := &Onboarding{}
	o.transitions = map[models.StateType][]transition{
		models.StateStart: {
			{match: IsStartEvent, handle: o.handleStart},
		},
		models.StateAskGoalsToday: {
			{label: LabelYes, handle: o.handleHasGoals},
			{label: LabelNo, handle: o.handleNoGoals},
		},
		models.StateInputGoals: {
			{handle: o.handleInputGoals},
		},
		models.StateSelectLifeArea: {
			{handle: o.handleSelectArea},
		},
		models.StateSuggestExampleGoal: {
			{label: LabelBack, handle: o.handleExampleBack},
			{handle: o.handleExampleInput},
		},
		models.StateSummaryGoals: {
			{label: LabelAddGoal, handle: o.handleSummaryAdd},
			{label: LabelRemoveGoal, handle: o.handleSummaryRemove},
			{label: LabelAllGood, handle: o.handleSummaryOK},
		},
		models.StateRemoveGoals: {
			{handle: o.handleRemoveGoal},
		},
		models.StateDailyRules: {
			{label: LabelHowItWorks, handle: o.handleAskExample},
			{handle: o.handleSkipExample},
		},
		models.StateExplainLogging: {
			{label: LabelShowExample, handle: o.handleSendExample},
			{label: LabelWantToStart, handle: o.handleSkipSendExample},
		},
		models.StateSetReportTime: {
			{handle: o.handleSaveReportTime},
		},
	}
	return o
}

// Handle applies the transition matching (session.CurrentState, input).
// Exact-label transitions take priority over the catch-all. When nothing
// matches, the session is left untouched and Result.Matched is false.
func (o *Onboarding) Handle(session *models.Session, input string) Result {
	transitions, ok := o.transitions[session.CurrentState]
	if !ok {
		slog.Error("Onboarding unknown state", "userID", session.UserID, "state", session.CurrentState)
		return Result{}
	}

	var catchAll handlerFunc
	for _, tr := range transitions {
		if tr.label == "" && tr.match == nil {
			catchAll = tr.handle
			continue
		}
		if tr.label == input || (tr.match != nil && tr.match(input)) {
			res := tr.handle(session, input)
			session.UpdatedAt = time.Now()
			return res
		}
	}
	if catchAll != nil {
		res := catchAll(session, input)
		session.UpdatedAt = time.Now()
		return res
	}

	slog.Debug("Onboarding dropping unmatched input", "userID", session.UserID, "state", session.CurrentState)
	return Result{}
}

func (o *Onboarding) handleStart(s *models.Session, input string) Result {
	s.CurrentState = models.StateAskGoalsToday
	return Result{
		Matched: true,
		Messages: []models.Message{
			{Body: msgWelcome},
			{Body: msgAskGoalsToday, Options: YesNoOptions()},
		},
	}
}

func (o *Onboarding) handleHasGoals(s *models.Session, input string) Result {
	s.CurrentState = models.StateInputGoals
	return Result{Matched: true, Messages: []models.Message{{Body: msgInputGoals}}}
}

func (o *Onboarding) handleNoGoals(s *models.Session, input string) Result {
	s.CurrentState = models.StateSelectLifeArea
	return Result{Matched: true, Messages: []models.Message{{Body: msgSelectLifeArea, Options: LifeAreaOptions()}}}
}

// handleInputGoals splits the text into non-empty trimmed lines and appends
// each as a goal, preserving order. Duplicates are allowed.
func (o *Onboarding) handleInputGoals(s *models.Session, input string) Result {
	for _, line := range strings.Split(input, "\n") {
		if goal := strings.TrimSpace(line); goal != "" {
			s.PendingGoals = append(s.PendingGoals, goal)
		}
	}
	return o.showSummary(s)
}

func (o *Onboarding) handleSelectArea(s *models.Session, input string) Result {
	s.PendingArea = input
	s.CurrentState = models.StateSuggestExampleGoal
	return Result{
		Matched:  true,
		Messages: []models.Message{{Body: suggestExampleText(input), Options: BackOptions()}},
	}
}

func (o *Onboarding) handleExampleBack(s *models.Session, input string) Result {
	return o.handleNoGoals(s, input)
}

// handleExampleInput replaces the goal list with the single entered goal.
// Unlike InputGoals this never appends.
func (o *Onboarding) handleExampleInput(s *models.Session, input string) Result {
	s.PendingGoals = []string{input}
	return o.showSummary(s)
}

func (o *Onboarding) showSummary(s *models.Session) Result {
	s.CurrentState = models.StateSummaryGoals
	return Result{
		Matched:  true,
		Messages: []models.Message{{Body: summaryText(s.PendingGoals), Options: SummaryOptions()}},
	}
}

func (o *Onboarding) handleSummaryAdd(s *models.Session, input string) Result {
	s.CurrentState = models.StateInputGoals
	return Result{Matched: true, Messages: []models.Message{{Body: msgAddMoreGoals}}}
}

func (o *Onboarding) handleSummaryRemove(s *models.Session, input string) Result {
	s.CurrentState = models.StateRemoveGoals
	return Result{
		Matched:  true,
		Messages: []models.Message{{Body: msgRemovePick, Options: GoalPickerOptions(s.PendingGoals)}},
	}
}

func (o *Onboarding) handleSummaryOK(s *models.Session, input string) Result {
	s.CurrentState = models.StateDailyRules
	return Result{Matched: true, Messages: []models.Message{{Body: msgDailyRules, Options: DailyRulesOptions()}}}
}

// handleRemoveGoal removes the first goal matching the input. Text matching
// no goal removes nothing; the summary is shown again either way.
func (o *Onboarding) handleRemoveGoal(s *models.Session, input string) Result {
	for i, g := range s.PendingGoals {
		if g == input {
			s.PendingGoals = append(s.PendingGoals[:i], s.PendingGoals[i+1:]...)
			break
		}
	}
	return o.showSummary(s)
}

func (o *Onboarding) handleAskExample(s *models.Session, input string) Result {
	s.CurrentState = models.StateExplainLogging
	return Result{Matched: true, Messages: []models.Message{{Body: msgExplainLogging, Options: ExampleOptions()}}}
}

func (o *Onboarding) handleSkipExample(s *models.Session, input string) Result {
	return o.askReportTime(s)
}

func (o *Onboarding) handleSendExample(s *models.Session, input string) Result {
	res := o.askReportTime(s)
	res.Messages = append([]models.Message{{Body: msgExampleReport}}, res.Messages...)
	return res
}

func (o *Onboarding) handleSkipSendExample(s *models.Session, input string) Result {
	return o.askReportTime(s)
}

func (o *Onboarding) askReportTime(s *models.Session) Result {
	s.CurrentState = models.StateSetReportTime
	return Result{Matched: true, Messages: []models.Message{{Body: msgAskReportTime}}}
}

// handleSaveReportTime signals the commit: the caller persists the profile
// built from the session plus the entered report time, then clears the
// session. The closing message must only be sent if the commit succeeds.
func (o *Onboarding) handleSaveReportTime(s *models.Session, input string) Result {
	return Result{
		Matched:    true,
		Commit:     true,
		ReportTime: input,
		Messages:   []models.Message{{Body: msgClosing}},
	}
}
