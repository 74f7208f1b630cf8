package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"secureview/internal/clock"
	"secureview/internal/draft"
	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/service"
	"secureview/internal/session"
	"secureview/internal/transport/ws"
)

type testAPI struct {
	handler http.Handler
	subs    *memSubmissions
	drafts  *draft.MemoryStore
	clk     *clock.Fake
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.NewNop()
	users := &memUsers{users: []*model.User{
		{ID: "u1", Email: "ana@example.com", PasswordHash: hash(t, "pw-ana"), Role: model.RoleEmployee, Department: "eng"},
		{ID: "m1", Email: "lead@example.com", PasswordHash: hash(t, "pw-lead"), Role: model.RoleManager, Department: "eng"},
	}}
	tasks := &memTasks{tasks: []*model.Task{{
		ID: "retro-1", Title: "Sprint retro", Department: "eng",
		Questions: []model.Question{{ID: "q1", Text: "Went well?"}, {ID: "q2", Text: "Went badly?"}},
	}}}
	insights := &memInsights{byDept: map[string]*model.DepartmentInsights{
		"eng": {Department: "eng", NumEmployees: 8, Dimensions: map[string]model.DimensionScore{
			"teamwork": {Raw: 0.09}, "support": {Raw: -0.08}, "efficiency": {Raw: 0.01},
		}},
	}}
	api := &testAPI{subs: &memSubmissions{}, drafts: draft.NewMemoryStore(), clk: clock.NewFake(time.Now())}

	authSvc := service.NewAuthService(users, &memDenylist{}, nil, "router-test-secret", time.Hour, log)
	taskSvc := service.NewTaskService(tasks, api.subs)
	submissionSvc := service.NewSubmissionService(api.subs, log)
	manager := session.NewManager(api.drafts, submissionSvc.SubmitterFor, api.clk, session.DefaultAutosaveDelay, log)
	sessionSvc := service.NewSessionService(taskSvc, api.subs, manager, log)
	insightSvc := service.NewInsightService(insights, nil, log)

	hub := ws.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	sessionSvc.SetBroadcaster(hub)

	api.handler = NewRouter(&Container{
		AuthService:    authSvc,
		TaskService:    taskSvc,
		SessionService: sessionSvc,
		InsightService: insightSvc,
		WSHub:          hub,
		Log:            log,
	})
	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := a.do(t, "POST", "/v1/auth/login", "", model.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) session.View {
	t.Helper()
	var v session.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, "POST", "/v1/auth/login", "", model.LoginRequest{Email: "ana@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, "POST", "/v1/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := api.login(t, "ana@example.com", "pw-ana")
	rec = api.do(t, "GET", "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"department":"eng"`)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestRoleGuards(t *testing.T) {
	api := newTestAPI(t)
	employee := api.login(t, "ana@example.com", "pw-ana")
	manager := api.login(t, "lead@example.com", "pw-lead")

	assert.Equal(t, http.StatusUnauthorized, api.do(t, "GET", "/v1/tasks", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, "GET", "/v1/tasks", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, "GET", "/v1/tasks", manager, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, "GET", "/v1/insights/eng", employee, nil).Code)
}

func TestTasks(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "ana@example.com", "pw-ana")

	rec := api.do(t, "GET", "/v1/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.TaskSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].QuestionCount)
	assert.False(t, list[0].Submitted)

	assert.Equal(t, http.StatusOK, api.do(t, "GET", "/v1/tasks/retro-1", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, "GET", "/v1/tasks/nope", token, nil).Code)
}

func TestSessionFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "ana@example.com", "pw-ana")
	base := "/v1/tasks/retro-1/session"

	rec := api.do(t, "POST", base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.StateEditing, decodeView(t, rec).State)

	rec = api.do(t, "POST", base+"/next", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missing":["q1"]`)

	rec = api.do(t, "PUT", base+"/answers/q1", token, map[string]string{"text": "good pairing"})
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, session.SavePending, v.SaveStatus)
	assert.Equal(t, 0.5, v.Progress)

	rec = api.do(t, "POST", base+"/submit", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missing":["q2"]`)

	assert.Equal(t, http.StatusBadRequest, api.do(t, "POST", base+"/navigate", token, map[string]string{}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(t, "POST", base+"/navigate", token, map[string]int{"index": 5}).Code)
	rec = api.do(t, "POST", base+"/navigate", token, map[string]int{"index": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeView(t, rec).CurrentIndex)

	require.Equal(t, http.StatusOK, api.do(t, "PUT", base+"/answers/q2", token, map[string]string{"text": "slow reviews"}).Code)
	rec = api.do(t, "POST", base+"/flush", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.SaveSaved, decodeView(t, rec).SaveStatus)
	assert.Equal(t, 1, api.drafts.Len())

	assert.Equal(t, http.StatusConflict, api.do(t, "POST", base+"/confirm", token, nil).Code)

	rec = api.do(t, "POST", base+"/submit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.StateSubmitConfirmPending, decodeView(t, rec).State)

	rec = api.do(t, "POST", base+"/cancel", token, nil)
	assert.Equal(t, session.StateEditing, decodeView(t, rec).State)
	require.Equal(t, http.StatusOK, api.do(t, "POST", base+"/submit", token, nil).Code)

	rec = api.do(t, "POST", base+"/confirm", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, session.StateSubmitted, decodeView(t, rec).State)
	assert.Equal(t, 0, api.drafts.Len())
	require.Len(t, api.subs.submissions, 1)

	assert.Equal(t, http.StatusConflict, api.do(t, "PUT", base+"/answers/q1", token, map[string]string{"text": "edit"}).Code)
	assert.Equal(t, http.StatusConflict, api.do(t, "POST", base+"/confirm", token, nil).Code)

	rec = api.do(t, "GET", "/v1/tasks", token, nil)
	assert.Contains(t, rec.Body.String(), `"submitted":true`)
}

func TestSessionResumesAfterLogout(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "ana@example.com", "pw-ana")
	base := "/v1/tasks/retro-1/session"

	require.Equal(t, http.StatusOK, api.do(t, "PUT", base+"/answers/q1", token, map[string]string{"text": "draft text"}).Code)
	require.Equal(t, http.StatusNoContent, api.do(t, "POST", "/v1/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, "GET", "/v1/auth/me", token, nil).Code)

	token = api.login(t, "ana@example.com", "pw-ana")
	rec := api.do(t, "GET", base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "draft text", decodeView(t, rec).Responses["q1"])
}

func TestInsights(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "lead@example.com", "pw-lead")

	rec := api.do(t, "GET", "/v1/insights/eng", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report model.InsightReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 8, report.NumEmployees)
	assert.Equal(t, []string{"teamwork"}, report.Summary.Strengths)
	assert.Equal(t, []string{"support"}, report.Summary.Improvements)
	assert.Len(t, report.Insights, 3)

	assert.Equal(t, http.StatusForbidden, api.do(t, "GET", "/v1/insights/sales", token, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest("OPTIONS", "/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionWebSocket(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.handler)
	defer srv.Close()
	token := api.login(t, "ana@example.com", "pw-ana")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/tasks/retro-1?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	read := func() ws.Message {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	first := read()
	assert.Equal(t, ws.MsgSnapshot, first.Type)

	rec := api.do(t, "PUT", "/v1/tasks/retro-1/session/answers/q1", token, map[string]string{"text": "live"})
	require.Equal(t, http.StatusOK, rec.Code)

	// the open itself may still be in flight as a state event
	msg := read()
	for msg.Type == ws.MessageType(session.EventStateChanged) {
		msg = read()
	}
	assert.Equal(t, ws.MessageType(session.EventSaveStatus), msg.Type)
	var ev session.Event
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, session.SavePending, ev.SaveStatus)
	assert.Equal(t, "retro-1", ev.TaskID)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws/tasks/retro-1?token=bad", nil)
	assert.Error(t, err)
}
