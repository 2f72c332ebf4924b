package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/wwwmplusm/goaltrack/internal/dialogue"
	"github.com/wwwmplusm/goaltrack/internal/models"
	"github.com/wwwmplusm/goaltrack/internal/store"
)

// fakeService records outbound messages and replays queued inbound responses.
type fakeService struct {
	sent      []models.Message
	sentTo    []string
	responses chan models.Response
}

func newFakeService() *fakeService {
	return &fakeService{responses: make(chan models.Response, 10)}
}

func (f *fakeService) SendMessage(ctx context.Context, to string, msg models.Message) error {
	f.sentTo = append(f.sentTo, to)
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeService) Start(ctx context.Context) error { return nil }
func (f *fakeService) Stop() error                     { return nil }
func (f *fakeService) Responses() <-chan models.Response {
	return f.responses
}

// fakeTranscriber returns a fixed transcript or error.
type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return f.text, f.err
}

func TestHandleResponseTextEvent(t *testing.T) {
	service := newFakeService()
	driver := dialogue.NewDriver(store.NewInMemoryStore())

	handleResponse(context.Background(), service, driver, nil, models.Response{
		From: "+15551234567",
		Body: "/start",
	})

	if len(service.sent) != 2 {
		t.Fatalf("expected welcome messages, got %d", len(service.sent))
	}
	for _, to := range service.sentTo {
		if to != "+15551234567" {
			t.Errorf("message sent to %q, want +15551234567", to)
		}
	}
}

func TestHandleResponseVoiceNote(t *testing.T) {
	service := newFakeService()
	st := store.NewInMemoryStore()
	driver := dialogue.NewDriver(st)
	transcriber := &fakeTranscriber{text: "start"}

	handleResponse(context.Background(), service, driver, transcriber, models.Response{
		From:  "+15551234567",
		Audio: []byte{0x4f, 0x67, 0x67},
	})

	if len(service.sent) == 0 {
		t.Fatal("expected transcribed voice note to start the conversation")
	}
	sess, _ := st.GetSession("+15551234567")
	if sess == nil || sess.CurrentState != models.StateAskGoalsToday {
		t.Errorf("expected session at %s, got %v", models.StateAskGoalsToday, sess)
	}
}

func TestHandleResponseTranscriptionFailureDoesNotAdvance(t *testing.T) {
	service := newFakeService()
	st := store.NewInMemoryStore()
	driver := dialogue.NewDriver(st)
	transcriber := &fakeTranscriber{err: errors.New("whisper unavailable")}

	handleResponse(context.Background(), service, driver, transcriber, models.Response{
		From:  "+15551234567",
		Audio: []byte{0x4f, 0x67, 0x67},
	})

	if len(service.sent) != 0 {
		t.Errorf("expected no outbound messages, got %d", len(service.sent))
	}
	if sess, _ := st.GetSession("+15551234567"); sess != nil {
		t.Error("expected no session after failed transcription")
	}
}

func TestHandleResponseVoiceNoteWithoutTranscriber(t *testing.T) {
	service := newFakeService()
	driver := dialogue.NewDriver(store.NewInMemoryStore())

	handleResponse(context.Background(), service, driver, nil, models.Response{
		From:  "+15551234567",
		Audio: []byte{0x4f, 0x67, 0x67},
	})

	if len(service.sent) != 0 {
		t.Errorf("expected voice note to be ignored without a transcriber, got %d messages", len(service.sent))
	}
}

func TestHandleResponseEmptyTranscript(t *testing.T) {
	service := newFakeService()
	st := store.NewInMemoryStore()
	driver := dialogue.NewDriver(st)
	transcriber := &fakeTranscriber{text: ""}

	handleResponse(context.Background(), service, driver, transcriber, models.Response{
		From:  "+15551234567",
		Audio: []byte{0x4f, 0x67, 0x67},
	})

	if len(service.sent) != 0 {
		t.Errorf("expected empty transcript to be dropped, got %d messages", len(service.sent))
	}
	if sess, _ := st.GetSession("+15551234567"); sess != nil {
		t.Error("expected no session for empty transcript")
	}
}

func TestBuildStoreSelectsBackend(t *testing.T) {
	st, err := buildStore(nil)
	if err != nil {
		t.Fatalf("buildStore returned error: %v", err)
	}
	defer st.Close()
	if _, ok := st.(*store.InMemoryStore); !ok {
		t.Errorf("expected in-memory store without a DSN, got %T", st)
	}
}

func TestBuildServiceUnknownTransport(t *testing.T) {
	if _, err := buildService(Opts{Transport: "carrier-pigeon"}, nil, nil); err == nil {
		t.Error("expected error for unknown transport")
	}
}
