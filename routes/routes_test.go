package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aura_server/middleware"
	"aura_server/models"
	"aura_server/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router http.Handler
	store  *services.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := services.NewMemoryStore()
	hub := services.NewHub()
	retry := services.RetryPolicy{MaxAttempts: 5, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	swipes := services.NewSwipeService(store, hub, retry)
	chats := services.NewChatService(store, hub)

	r := mux.NewRouter()
	RegisterRoutes(r)
	api := NewAPIRouter(r)
	RegisterUserProfileRoutes(api, &services.UserProfileService{Store: store, Retry: retry})
	RegisterActionRoutes(api, swipes)
	RegisterMatchRoutes(api, &services.FeedService{Store: store}, swipes, services.NewBatchMatchService(store))
	RegisterChatRoutes(api, chats)
	return &testAPI{router: r, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (a *testAPI) signup(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		rec := a.do(t, http.MethodPost, "/api/users", id, map[string]string{"name": id, "campus": "IIT Bombay"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

func (a *testAPI) match(t *testing.T, x, y string) string {
	t.Helper()
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/swipe/like", x, map[string]string{"targetId": y}).Code)
	rec := a.do(t, http.MethodPost, "/api/swipe/like", y, map[string]string{"targetId": x})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct{ Result models.SwipeResult }
	decode(t, rec, &body)
	require.Equal(t, models.OutcomeMatched, body.Result.Outcome)
	return body.Result.ChatID
}

func TestPublicRoutes(t *testing.T) {
	a := newTestAPI(t)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/privacy-policy", "", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/metrics", "", nil).Code)
}

func TestAPIRequiresIdentity(t *testing.T) {
	a := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/feed", "", nil).Code)
}

func TestSignupAndProfileViews(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob")

	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, "/api/users", "alice", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/users", "carol", map[string]string{"mode": "Party"}).Code)

	var me models.User
	decode(t, a.do(t, http.MethodGet, "/api/users/me", "alice", nil), &me)
	assert.Equal(t, "alice", me.UserID)
	assert.Equal(t, "iit-bombay", me.Campus)

	rec := a.do(t, http.MethodGet, "/api/users/alice", "bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "liked")

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/users/ghost", "bob", nil).Code)

	rec = a.do(t, http.MethodPost, "/api/users/me/status", "alice", map[string]string{"status": models.StatusAwaiting})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &me)
	assert.Equal(t, models.StatusAwaiting, me.Status)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/users/me/status", "alice", map[string]string{"status": models.StatusMatched}).Code)
}

func TestFeedPaging(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob", "carol", "dave")

	var page struct {
		Seed       string
		Total      int
		Offset     int
		Candidates []models.Candidate
	}
	decode(t, a.do(t, http.MethodGet, "/api/feed?seed=9&limit=2", "alice", nil), &page)
	assert.Equal(t, "9", page.Seed)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Candidates, 2)
	first := page.Candidates

	decode(t, a.do(t, http.MethodGet, "/api/feed?seed=9&limit=2&offset=2", "alice", nil), &page)
	require.Len(t, page.Candidates, 1)

	seen := map[string]bool{}
	for _, c := range append(first, page.Candidates...) {
		seen[c.UserID] = true
	}
	assert.Equal(t, map[string]bool{"bob": true, "carol": true, "dave": true}, seen)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/feed?seed=abc", "alice", nil).Code)
}

func TestSwipeFlow(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob")

	rec := a.do(t, http.MethodPost, "/api/swipe/like", "alice", map[string]string{"targetId": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Result models.SwipeResult
		Noop   bool
	}
	decode(t, rec, &body)
	assert.Equal(t, models.OutcomePending, body.Result.Outcome)

	chatID := a.match(t, "bob", "alice")
	assert.Equal(t, "alice_bob", chatID)

	rec = a.do(t, http.MethodPost, "/api/swipe/like", "alice", map[string]string{"targetId": "bob"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var matches struct{ Matches []models.Chat }
	decode(t, a.do(t, http.MethodGet, "/api/matches", "alice", nil), &matches)
	require.Len(t, matches.Matches, 1)
	assert.Equal(t, chatID, matches.Matches[0].ChatID)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/swipe/like", "alice", map[string]string{"targetId": "alice"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/swipe/like", "alice", map[string]string{}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPost, "/api/swipe/like", "alice", map[string]string{"targetId": "ghost"}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPost, "/api/swipe/superlike", "alice", map[string]string{"targetId": "bob"}).Code)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/swipe/block", "alice", map[string]string{"targetId": "bob"}).Code)
	rec = a.do(t, http.MethodPost, "/api/swipe/block", "alice", map[string]string{"targetId": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.True(t, body.Noop)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/chat/"+chatID+"/messages", "alice", nil).Code)
}

func TestPassAndRecycle(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob")

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/swipe/pass", "alice", map[string]string{"targetId": "bob"}).Code)
	var page struct{ Total int }
	decode(t, a.do(t, http.MethodGet, "/api/feed", "alice", nil), &page)
	assert.Zero(t, page.Total)

	rec := a.do(t, http.MethodPost, "/api/swipe/recycle", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, a.do(t, http.MethodGet, "/api/feed", "alice", nil), &page)
	assert.Equal(t, 1, page.Total)
}

func TestChatRoutes(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob", "eve")
	chatID := a.match(t, "alice", "bob")
	base := "/api/chat/" + chatID

	rec := a.do(t, http.MethodPost, base+"/messages", "alice", models.TextPayload("hey"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, base+"/messages", "alice", models.TextPayload("   ")).Code)
	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, base+"/messages", "eve", models.TextPayload("hi")).Code)

	var history struct{ Messages []models.Message }
	decode(t, a.do(t, http.MethodGet, base+"/messages", "bob", nil), &history)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hey", history.Messages[0].Text)

	var chat models.Chat
	decode(t, a.do(t, http.MethodPost, base+"/read", "bob", nil), &chat)
	assert.Zero(t, chat.UnreadBy.Len())

	var prompt models.Payload
	decode(t, a.do(t, http.MethodGet, base+"/prompt?category=truth&seed=4", "bob", nil), &prompt)
	assert.Equal(t, models.MessageKindGame, prompt.Kind)
	assert.NotEmpty(t, prompt.GamePrompt)
	assert.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, base+"/messages", "bob", prompt).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, base+"/prompt?category=dares", "bob", nil).Code)
}

func TestBatchRunRoute(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob")
	for _, id := range []string{"alice", "bob"} {
		require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/users/me/status", id, map[string]string{"status": models.StatusAwaiting}).Code)
	}

	rec := a.do(t, http.MethodPost, "/api/match/run?seed=1", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message string
		Report  services.BatchReport
	}
	decode(t, rec, &body)
	assert.Equal(t, "Matching Run Complete", body.Message)
	require.Len(t, body.Report.Pairs, 1)
	assert.Equal(t, "alice_bob", body.Report.Pairs[0].ChatID)
}

func TestStreamDeliversHistoryThenLiveUntilBlock(t *testing.T) {
	a := newTestAPI(t)
	a.signup(t, "alice", "bob")
	chatID := a.match(t, "alice", "bob")
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/chat/"+chatID+"/messages", "alice", models.TextPayload("first")).Code)

	srv := httptest.NewServer(a.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/" + chatID + "/stream"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{middleware.UserIDHeader: {"eve"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{middleware.UserIDHeader: {"bob"}})
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg models.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "first", msg.Text)

	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/chat/"+chatID+"/messages", "alice", models.TextPayload("second")).Code)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "second", msg.Text)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/swipe/block", "alice", map[string]string{"targetId": "bob"}).Code)
	err = conn.ReadJSON(&msg)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}
