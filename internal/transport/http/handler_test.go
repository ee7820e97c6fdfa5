package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comm-hub/chat-service/internal/domain"
	"github.com/comm-hub/chat-service/internal/service"
	"github.com/comm-hub/chat-service/internal/transport/ws"
)

type fakeRepo struct {
	users    map[string]*domain.User
	messages []domain.ChatMessage
}

func (f *fakeRepo) GetOrCreate(_ context.Context, a, b int64) (*domain.Room, error) {
	if a > b {
		a, b = b, a
	}
	return &domain.Room{ID: "room-" + domain.MakeRoomKey(a, b), User1ID: a, User2ID: b}, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeRepo) Save(_ context.Context, roomID string, senderID int64, content string, attachment *string) (*domain.ChatMessage, error) {
	msg := domain.ChatMessage{ID: "1", RoomID: roomID, SenderID: senderID, Content: content, Attachment: attachment}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeRepo) History(_ context.Context, roomID, _ string, _ int) ([]domain.ChatMessage, string, error) {
	var out []domain.ChatMessage
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, "", nil
}

type fakeAttachments struct {
	saved int
}

func (f *fakeAttachments) Save(name string, data []byte) (string, error) {
	f.saved++
	return "/media/" + name, nil
}

func newTestRouter(repo *fakeRepo, att *fakeAttachments) http.Handler {
	convSvc := service.NewConversationService(repo, repo)
	chatSvc := service.NewChatService(repo, repo, repo)
	h := NewHandler(convSvc, chatSvc, att)
	wsServer := ws.NewServer(ws.NewHub(), chatSvc)
	return NewRouter(h, wsServer, "")
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("X-User-ID", "3")
	return req
}

func TestGetConversation(t *testing.T) {
	repo := &fakeRepo{users: map[string]*domain.User{
		"alice": {ID: 3, Username: "alice"},
		"bob":   {ID: 7, Username: "bob"},
	}}
	router := newTestRouter(repo, &fakeAttachments{})

	// порядок username в пути не влияет на ключ
	for _, path := range []string{"/chat/alice/bob", "/chat/bob/alice"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, path, nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		var resp ConversationResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.RoomKey != "3_7" {
			t.Fatalf("%s: expected key 3_7, got %q", path, resp.RoomKey)
		}
	}
}

func TestGetConversation_UnknownUser(t *testing.T) {
	repo := &fakeRepo{users: map[string]*domain.User{"alice": {ID: 3, Username: "alice"}}}
	router := newTestRouter(repo, &fakeAttachments{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/chat/alice/nobody", nil)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetChatHistory_BadKey(t *testing.T) {
	router := newTestRouter(&fakeRepo{users: map[string]*domain.User{}}, &fakeAttachments{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/rooms/3_abc/messages", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadAttachment(t *testing.T) {
	att := &fakeAttachments{}
	router := newTestRouter(&fakeRepo{users: map[string]*domain.User{}}, att)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "pic.png")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	_, _ = fw.Write([]byte("fake-png"))
	_ = mw.Close()

	req := authed(httptest.NewRequest(http.MethodPost, "/attachments", &body))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.FileURL == "" || att.saved != 1 {
		t.Fatalf("upload not stored: %+v", resp)
	}
}

func TestUploadAttachment_NoFile(t *testing.T) {
	router := newTestRouter(&fakeRepo{users: map[string]*domain.User{}}, &fakeAttachments{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, "/attachments", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(&fakeRepo{users: map[string]*domain.User{}}, &fakeAttachments{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/alice/bob", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}
