package dialogue

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wwwmplusm/goaltrack/internal/flow"
	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/store"
)

// failingStore wraps an in-memory store and lets tests inject failures.
type failingStore struct {
	*store.InMemoryStore
	failSaveProfile bool
	failSaveSession bool
}

var errInjected = errors.New("injected store failure")

func (s *failingStore) SaveProfile(profile models.UserProfile) error {
	if s.failSaveProfile {
		return errInjected
	}
	return s.InMemoryStore.SaveProfile(profile)
}

func (s *failingStore) SaveSession(session models.Session) error {
	if s.failSaveSession {
		return errInjected
	}
	return s.InMemoryStore.SaveSession(session)
}

// send feeds one event to the driver, failing the test on error.
func send(t *testing.T, d *Driver, userID, text string) []models.Message {
	t.Helper()
	msgs, err := d.Handle(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("Handle(%q) returned error: %v", text, err)
	}
	return msgs
}

func TestHandleEmptyUserID(t *testing.T) {
	d := NewDriver(store.NewInMemoryStore())
	if _, err := d.Handle(context.Background(), "", "/start"); !errors.Is(err, models.ErrEmptyUserID) {
		t.Errorf("expected ErrEmptyUserID, got %v", err)
	}
}

func TestHandleEmptyTextNeverAdvances(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)

	send(t, d, "+15551234567", "/start")
	before, _ := st.GetSession("+15551234567")

	for _, text := range []string{"", "   ", "\n\t"} {
		msgs := send(t, d, "+15551234567", text)
		if msgs != nil {
			t.Errorf("expected no messages for blank input %q, got %v", text, msgs)
		}
	}

	after, _ := st.GetSession("+15551234567")
	if after.CurrentState != before.CurrentState {
		t.Errorf("blank input advanced state from %s to %s", before.CurrentState, after.CurrentState)
	}
}

func TestHappyPathAreaFirst(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)
	user := "+15551234567"

	send(t, d, user, "/start")
	send(t, d, user, flow.LabelNo)
	send(t, d, user, "Health")
	send(t, d, user, "Exercise 30min")
	send(t, d, user, flow.LabelAllGood)
	send(t, d, user, "ok")
	msgs := send(t, d, user, "22:00")
	if len(msgs) == 0 {
		t.Error("expected a closing message after commit")
	}

	profile, err := st.GetProfile(user)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.LifeArea != "Health" {
		t.Errorf("expected life area Health, got %q", profile.LifeArea)
	}
	if !reflect.DeepEqual(profile.Goals, []string{"Exercise 30min"}) {
		t.Errorf("expected goals [Exercise 30min], got %v", profile.Goals)
	}
	if profile.ReportTime != "22:00" {
		t.Errorf("expected report time 22:00, got %q", profile.ReportTime)
	}

	// Session is cleared on commit.
	if sess, _ := st.GetSession(user); sess != nil {
		t.Errorf("expected session to be deleted after commit, got state %s", sess.CurrentState)
	}
}

func TestHappyPathGoalsFirst(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)
	user := "+15557654321"

	send(t, d, user, "/start")
	send(t, d, user, flow.LabelYes)
	send(t, d, user, "Read\nWrite\n")
	send(t, d, user, flow.LabelAllGood)
	send(t, d, user, "ok")
	send(t, d, user, "09:30")

	profile, err := st.GetProfile(user)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.LifeArea != "" {
		t.Errorf("expected no life area on the direct path, got %q", profile.LifeArea)
	}
	if !reflect.DeepEqual(profile.Goals, []string{"Read", "Write"}) {
		t.Errorf("expected goals [Read Write], got %v", profile.Goals)
	}
	if profile.ReportTime != "09:30" {
		t.Errorf("expected report time 09:30, got %q", profile.ReportTime)
	}
}

func TestStartMidConversationResets(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)
	user := "+15550001111"

	send(t, d, user, "/start")
	send(t, d, user, flow.LabelYes)
	send(t, d, user, "Read")

	msgs := send(t, d, user, "/start")
	if len(msgs) != 2 {
		t.Fatalf("expected welcome messages on restart, got %d", len(msgs))
	}
	sess, _ := st.GetSession(user)
	if sess == nil {
		t.Fatal("expected a session after restart")
	}
	if sess.CurrentState != models.StateAskGoalsToday {
		t.Errorf("expected restart at %s, got %s", models.StateAskGoalsToday, sess.CurrentState)
	}
	if len(sess.PendingGoals) != 0 {
		t.Errorf("expected pending goals discarded on restart, got %v", sess.PendingGoals)
	}
}

func TestUnmatchedInputDoesNotTouchSession(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)
	user := "+15552223333"

	send(t, d, user, "/start")
	before, _ := st.GetSession(user)

	msgs := send(t, d, user, "not a button")
	if msgs != nil {
		t.Errorf("expected no messages for unmatched input, got %v", msgs)
	}
	after, _ := st.GetSession(user)
	if !after.UpdatedAt.Equal(before.UpdatedAt) || after.CurrentState != before.CurrentState {
		t.Error("unmatched input modified the stored session")
	}
}

func TestNonStartTextWithoutSessionIsIgnored(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)

	msgs := send(t, d, "+15559998888", "hello?")
	if msgs != nil {
		t.Errorf("expected no reply without a session, got %v", msgs)
	}
	if sess, _ := st.GetSession("+15559998888"); sess != nil {
		t.Error("expected no session to be created for non-start text")
	}
}

func TestCommitFailureKeepsSessionForRetry(t *testing.T) {
	st := &failingStore{InMemoryStore: store.NewInMemoryStore()}
	d := NewDriver(st)
	user := "+15554445555"

	send(t, d, user, "/start")
	send(t, d, user, flow.LabelYes)
	send(t, d, user, "Read")
	send(t, d, user, flow.LabelAllGood)
	send(t, d, user, "ok")

	st.failSaveProfile = true
	msgs, err := d.Handle(context.Background(), user, "22:00")
	if err == nil {
		t.Fatal("expected commit failure to propagate")
	}
	if msgs != nil {
		t.Errorf("expected no outbound messages on commit failure, got %v", msgs)
	}

	// The session stays at the report time step so the user can retry.
	sess, _ := st.GetSession(user)
	if sess == nil || sess.CurrentState != models.StateSetReportTime {
		t.Fatalf("expected session kept at %s, got %v", models.StateSetReportTime, sess)
	}

	st.failSaveProfile = false
	if msgs := send(t, d, user, "22:00"); len(msgs) == 0 {
		t.Error("expected closing message on retry")
	}
	profile, _ := st.GetProfile(user)
	if profile.ReportTime != "22:00" {
		t.Errorf("expected committed report time after retry, got %q", profile.ReportTime)
	}
}

func TestSessionSaveFailureSuppressesMessages(t *testing.T) {
	st := &failingStore{InMemoryStore: store.NewInMemoryStore()}
	d := NewDriver(st)

	st.failSaveSession = true
	msgs, err := d.Handle(context.Background(), "+15556667777", "/start")
	if err == nil {
		t.Fatal("expected session save failure to propagate")
	}
	if msgs != nil {
		t.Errorf("expected no messages when the session could not be saved, got %v", msgs)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	st := store.NewInMemoryStore()
	d := NewDriver(st)

	send(t, d, "+15551112222", "/start")
	send(t, d, "+15551112222", flow.LabelYes)
	send(t, d, "+15553334444", "/start")

	s1, _ := st.GetSession("+15551112222")
	s2, _ := st.GetSession("+15553334444")
	if s1.CurrentState != models.StateInputGoals {
		t.Errorf("user 1: expected %s, got %s", models.StateInputGoals, s1.CurrentState)
	}
	if s2.CurrentState != models.StateAskGoalsToday {
		t.Errorf("user 2: expected %s, got %s", models.StateAskGoalsToday, s2.CurrentState)
	}
}
