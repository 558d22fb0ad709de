package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dhozzi-app/dhozzi/pkg/auth"
	"github.com/dhozzi-app/dhozzi/pkg/core/chat"
	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/mw"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

type stubGen struct {
	text types.Result
}

func (g stubGen) GenerateText(context.Context, string, string, []types.Message, *types.Attachment) types.Result {
	return g.text
}
func (g stubGen) GenerateImage(context.Context, string) types.Result { return g.text }
func (g stubGen) GenerateVideo(context.Context, string, *types.Attachment) types.Result {
	return g.text
}

func asUser(r *http.Request, uid string) *http.Request {
	return r.WithContext(mw.WithUID(r.Context(), uid))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAccount_SignUpFlow(t *testing.T) {
	st := store.NewMemory(nil)
	h := AccountHandler{Auth: auth.NewService(st, nil, nil), Users: st.Users()}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader(`{"email":"a@dhozzi.app"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp sessionResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" || resp.User.Email != "a@dhozzi.app" {
		t.Errorf("resp = %+v", resp)
	}

	// Same email again conflicts.
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader(`{"email":"a@dhozzi.app"}`))
	rec = httptest.NewRecorder()
	h.SignUp(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d", rec.Code)
	}
}

func TestAccount_SignUpRejectsBadEmail(t *testing.T) {
	st := store.NewMemory(nil)
	h := AccountHandler{Auth: auth.NewService(st, nil, nil), Users: st.Users()}
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", strings.NewReader(`{"email":"nope"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAccount_SignInUnknownEmail(t *testing.T) {
	st := store.NewMemory(nil)
	h := AccountHandler{Auth: auth.NewService(st, nil, nil), Users: st.Users()}
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", strings.NewReader(`{"email":"ghost@dhozzi.app"}`))
	rec := httptest.NewRecorder()
	h.SignIn(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestModelsHandler_FiltersByPlan(t *testing.T) {
	st := store.NewMemory(nil)
	if err := st.Users().Put(context.Background(), types.User{UID: "u1", Email: "a@b.c", Plan: types.PlanBasic}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := ModelsHandler{Users: st.Users()}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/v1/models", nil), "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Models []struct {
			ID      string `json:"id"`
			MinPlan string `json:"min_plan"`
		} `json:"models"`
		DefaultModel string `json:"default_model"`
	}
	decodeBody(t, rec, &resp)
	if resp.DefaultModel != "gemini-2.5-flash" {
		t.Errorf("default = %q", resp.DefaultModel)
	}
	if len(resp.Models) == 0 {
		t.Fatal("no models")
	}
	for _, m := range resp.Models {
		if m.MinPlan != string(types.PlanBasic) {
			t.Errorf("model %s above basic tier leaked: %s", m.ID, m.MinPlan)
		}
	}
}

func TestModelsHandler_UnknownUser(t *testing.T) {
	h := ModelsHandler{Users: store.NewMemory(nil).Users()}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/v1/models", nil), "ghost"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHistoryHandler_RoundTrip(t *testing.T) {
	st := store.NewMemory(nil)
	h := HistoryHandler{Histories: st.Histories()}

	put := httptest.NewRequest(http.MethodPut, "/v1/history",
		strings.NewReader(`{"items":[{"id":"c1","name":"Chat","type":"chat","model":"gemini-2.5-flash","date":"2026-03-01T00:00:00Z"}]}`))
	rec := httptest.NewRecorder()
	h.Put(rec, asUser(put, "u1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Get(rec, asUser(httptest.NewRequest(http.MethodGet, "/v1/history", nil), "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var resp struct {
		Items []types.HistoryItem `json:"items"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Items) != 1 || resp.Items[0].ID != "c1" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestHistoryHandler_EmptyIsNotNull(t *testing.T) {
	h := HistoryHandler{Histories: store.NewMemory(nil).Histories()}
	rec := httptest.NewRecorder()
	h.Get(rec, asUser(httptest.NewRequest(http.MethodGet, "/v1/history", nil), "u1"))
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func seedChat(t *testing.T, st store.Store, uid, chatID string) {
	t.Helper()
	items := []types.HistoryItem{{
		ID:    chatID,
		Name:  "Test",
		Type:  types.ItemChat,
		Model: "gemini-2.5-flash",
		Date:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	if err := st.Histories().Save(context.Background(), uid, items); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestMessagesHandler_Send(t *testing.T) {
	st := store.NewMemory(nil)
	seedChat(t, st, "u1", "c1")
	h := MessagesHandler{Chat: chat.New(stubGen{text: types.TextResult{Text: "Hello"}}, st.Histories(), nil)}

	req := httptest.NewRequest(http.MethodPost, "/v1/chats/c1/messages", strings.NewReader(`{"text":"hi"}`))
	req.SetPathValue("chatID", "c1")
	rec := httptest.NewRecorder()
	h.Send(rec, asUser(req, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp messagesResponse
	decodeBody(t, rec, &resp)
	if len(resp.Messages) != 2 || resp.Messages[1].Text != "Hello" {
		t.Errorf("messages = %+v", resp.Messages)
	}
}

func TestMessagesHandler_SendValidation(t *testing.T) {
	st := store.NewMemory(nil)
	seedChat(t, st, "u1", "c1")
	h := MessagesHandler{Chat: chat.New(stubGen{}, st.Histories(), nil)}

	req := httptest.NewRequest(http.MethodPost, "/v1/chats/c1/messages", strings.NewReader(`{"text":"  "}`))
	req.SetPathValue("chatID", "c1")
	rec := httptest.NewRecorder()
	h.Send(rec, asUser(req, "u1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/chats/nope/messages", strings.NewReader(`{"text":"hi"}`))
	req.SetPathValue("chatID", "nope")
	rec = httptest.NewRecorder()
	h.Send(rec, asUser(req, "u1"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown chat status = %d", rec.Code)
	}
}

type stubSpeech struct {
	result types.Result
}

func (s stubSpeech) GenerateSpeech(context.Context, string, types.Voice) types.Result {
	return s.result
}

func TestSpeechHandler(t *testing.T) {
	h := SpeechHandler{Gen: stubSpeech{result: types.SpeechResult{AudioBase64: "cGNt"}}}
	req := httptest.NewRequest(http.MethodPost, "/v1/speech", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cGNt") {
		t.Errorf("speech = %d %s", rec.Code, rec.Body.String())
	}

	h = SpeechHandler{Gen: stubSpeech{result: types.ErrorResult{Message: "No audio data received from API."}}}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/speech", strings.NewReader(`{"text":"hello"}`)))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("failure status = %d", rec.Code)
	}
}

type stubEditor struct {
	result types.Result
}

func (s stubEditor) EditImage(context.Context, string, string, string) types.Result {
	return s.result
}

func TestImageEditHandler(t *testing.T) {
	h := ImageEditHandler{Gen: stubEditor{result: types.ImageResult{Base64: "aW1n", MIMEType: "image/png"}}}
	body := `{"image":{"base64":"aW1n","mime_type":"image/jpeg"},"prompt":"make it blue"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/images/edit", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/images/edit", strings.NewReader(`{"prompt":"x"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing image status = %d", rec.Code)
	}
}
