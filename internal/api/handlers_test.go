// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/standingsync/internal/audit"
	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/models"
	standings "github.com/tomtom215/standingsync/internal/sync"
)

type fakeStore struct {
	pingErr    error
	managers   map[int64]models.SyncManager
	characters map[int64]models.SyncedCharacter
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Manager(_ context.Context, allianceID int64) (models.SyncManager, error) {
	m, ok := f.managers[allianceID]
	if !ok {
		return models.SyncManager{}, database.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) Managers(context.Context) ([]models.SyncManager, error) {
	out := make([]models.SyncManager, 0, len(f.managers))
	for _, m := range f.managers {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) SyncedCharacter(_ context.Context, characterID int64) (models.SyncedCharacter, error) {
	c, ok := f.characters[characterID]
	if !ok {
		return models.SyncedCharacter{}, database.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) SyncedCharacters(_ context.Context, filter database.SyncedCharacterFilter) ([]models.SyncedCharacter, error) {
	var out []models.SyncedCharacter
	for _, c := range f.characters {
		if filter.ManagerID == 0 || c.ManagerID == filter.ManagerID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeDispatcher struct {
	managers   []standings.ManagerSyncTask
	characters []standings.CharacterSyncTask
}

func (f *fakeDispatcher) DispatchManagerSync(_ context.Context, task standings.ManagerSyncTask) error {
	f.managers = append(f.managers, task)
	return nil
}

func (f *fakeDispatcher) DispatchCharacterSync(_ context.Context, task standings.CharacterSyncTask) error {
	f.characters = append(f.characters, task)
	return nil
}

func (f *fakeDispatcher) DispatchWarRefresh(context.Context, standings.WarRefreshTask) error {
	return nil
}

type fakeRegistrar struct {
	err     error
	removed []int64
}

func (f *fakeRegistrar) RegisterManager(_ context.Context, _, characterID int64) (models.SyncManager, error) {
	if f.err != nil {
		return models.SyncManager{}, f.err
	}
	return models.SyncManager{AllianceID: 3001, CharacterID: characterID}, nil
}

func (f *fakeRegistrar) ActivateCharacter(_ context.Context, _, characterID, allianceID int64) (models.SyncedCharacter, error) {
	if f.err != nil {
		return models.SyncedCharacter{}, f.err
	}
	return models.SyncedCharacter{CharacterID: characterID, ManagerID: allianceID}, nil
}

func (f *fakeRegistrar) RemoveCharacter(_ context.Context, _, characterID int64) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, characterID)
	return nil
}

type testServer struct {
	handler    http.Handler
	store      *fakeStore
	dispatcher *fakeDispatcher
	registrar  *fakeRegistrar
}

func newTestServer(cfg RouterConfig) *testServer {
	synced := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ts := &testServer{
		store: &fakeStore{
			managers: map[int64]models.SyncManager{
				3001: {AllianceID: 3001, CharacterID: 1001, VersionHash: "abc", LastSync: synced},
			},
			characters: map[int64]models.SyncedCharacter{
				2002: {CharacterID: 2002, ManagerID: 3001, LastError: models.ErrorTokenExpired, LastSync: synced},
			},
		},
		dispatcher: &fakeDispatcher{},
		registrar:  &fakeRegistrar{},
	}
	h := NewHandler(HandlerDeps{Store: ts.store, Dispatcher: ts.dispatcher, Registrar: ts.registrar})
	ts.handler = NewRouter(h, cfg)
	return ts
}

func (ts *testServer) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(RouterConfig{})

	if rec := ts.do(http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d", rec.Code)
	}
	rec := ts.do(http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing X-Request-ID response header")
	}

	ts.store.pingErr = errors.New("database is locked")
	if rec := ts.do(http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz with failing database = %d, want 503", rec.Code)
	}
}

func TestReadyChecksRouter(t *testing.T) {
	running := false
	h := NewHandler(HandlerDeps{Store: &fakeStore{}, RouterRunning: func() bool { return running }})
	router := NewRouter(h, RouterConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz with stopped router = %d, want 503", rec.Code)
	}

	running = true
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz with running router = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(RouterConfig{})
	ts.do(http.MethodGet, "/api/v1/managers", "")

	rec := ts.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output misses default collectors")
	}
}

func TestListAndGetManagers(t *testing.T) {
	ts := newTestServer(RouterConfig{})

	rec := ts.do(http.MethodGet, "/api/v1/managers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/managers = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != 1 {
		t.Errorf("unexpected list response: %s", rec.Body.String())
	}

	rec = ts.do(http.MethodGet, "/api/v1/managers/3001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/managers/3001 = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"status":"OK"`, `"character_id":2002`, `"status":"Expired token"`} {
		if !strings.Contains(body, want) {
			t.Errorf("manager response misses %s: %s", want, body)
		}
	}

	if rec := ts.do(http.MethodGet, "/api/v1/managers/9999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown manager = %d, want 404", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/managers/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("GET non-numeric manager = %d, want 400", rec.Code)
	}
}

func TestSyncTriggers(t *testing.T) {
	ts := newTestServer(RouterConfig{})

	rec := ts.do(http.MethodPost, "/api/v1/managers/3001/sync", `{"report_to": 1}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST manager sync = %d: %s", rec.Code, rec.Body.String())
	}
	if len(ts.dispatcher.managers) != 1 {
		t.Fatalf("dispatched %d manager tasks, want 1", len(ts.dispatcher.managers))
	}
	if got := ts.dispatcher.managers[0]; got.AllianceID != 3001 || !got.Force || got.ReportTo != 1 {
		t.Errorf("manager task = %+v", got)
	}

	rec = ts.do(http.MethodPost, "/api/v1/characters/2002/sync", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST character sync = %d", rec.Code)
	}
	if len(ts.dispatcher.characters) != 1 || !ts.dispatcher.characters[0].Force {
		t.Errorf("character tasks = %+v", ts.dispatcher.characters)
	}

	if rec := ts.do(http.MethodPost, "/api/v1/managers/9999/sync", ""); rec.Code != http.StatusNotFound {
		t.Errorf("POST unknown manager sync = %d, want 404", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/api/v1/characters/9999/sync", ""); rec.Code != http.StatusNotFound {
		t.Errorf("POST unknown character sync = %d, want 404", rec.Code)
	}
}

func TestRegistrationEndpoints(t *testing.T) {
	ts := newTestServer(RouterConfig{})

	rec := ts.do(http.MethodPost, "/api/v1/managers", `{"user_id": 1, "character_id": 1001}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("POST managers = %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/v1/characters", `{"user_id": 2, "character_id": 2003, "alliance_id": 3001}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("POST characters = %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodDelete, "/api/v1/characters/2002?user_id=2", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE character = %d", rec.Code)
	}
	if len(ts.registrar.removed) != 1 || ts.registrar.removed[0] != 2002 {
		t.Errorf("removed = %v", ts.registrar.removed)
	}

	if rec := ts.do(http.MethodDelete, "/api/v1/characters/2002", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("DELETE without user_id = %d, want 400", rec.Code)
	}
}

func TestRegistrationValidation(t *testing.T) {
	ts := newTestServer(RouterConfig{})

	rec := ts.do(http.MethodPost, "/api/v1/characters", `{"user_id": 2, "character_id": 2003}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST without alliance_id = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want VALIDATION_FAILED", resp.Error)
	}

	if rec := ts.do(http.MethodPost, "/api/v1/managers", `{not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("POST malformed JSON = %d, want 400", rec.Code)
	}
}

func TestRegistrationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"permission", standings.ErrPermissionDenied, http.StatusForbidden},
		{"not owner", standings.ErrNotOwner, http.StatusForbidden},
		{"no manager", standings.ErrNoManager, http.StatusNotFound},
		{"unknown character", fmt.Errorf("load character: %w", database.ErrNotFound), http.StatusNotFound},
		{"no alliance", standings.ErrNoAlliance, http.StatusUnprocessableEntity},
		{"member", standings.ErrAllianceMember, http.StatusUnprocessableEntity},
		{"not blue", fmt.Errorf("%w: the standing value is: -5.0", standings.ErrNotBlue), http.StatusUnprocessableEntity},
		{"token", fmt.Errorf("character 2003: %w", auth.ErrTokenInvalid), http.StatusUnprocessableEntity},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(RouterConfig{})
			ts.registrar.err = tt.err
			rec := ts.do(http.MethodPost, "/api/v1/characters", `{"user_id": 2, "character_id": 2003, "alliance_id": 3001}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNotBlueMessageCarriesStanding(t *testing.T) {
	ts := newTestServer(RouterConfig{})
	ts.registrar.err = fmt.Errorf("%w: the standing value is: -5.0", standings.ErrNotBlue)

	rec := ts.do(http.MethodPost, "/api/v1/characters", `{"user_id": 2, "character_id": 2003, "alliance_id": 3001}`)
	resp := decodeResponse(t, rec)
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "-5.0") {
		t.Errorf("error = %+v, want the standing in the message", resp.Error)
	}
}

func TestBearerToken(t *testing.T) {
	ts := newTestServer(RouterConfig{APIToken: "s3cret"})

	if rec := ts.do(http.MethodGet, "/api/v1/managers", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/managers", "", "Authorization", "Bearer wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/v1/managers", "", "Authorization", "Bearer s3cret"); rec.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz must not require a token, got %d", rec.Code)
	}
}

func TestSyncTriggerRateLimit(t *testing.T) {
	ts := newTestServer(RouterConfig{RateLimitRequests: 100, RateLimitWindow: time.Minute, SyncRateLimit: 2})

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, ts.do(http.MethodPost, "/api/v1/characters/2002/sync", "").Code)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusAccepted || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [202 202 429]", codes)
	}
}

type fakeAuditor struct {
	events []audit.Event
}

func (f *fakeAuditor) Log(e *audit.Event) { f.events = append(f.events, *e) }

func (f *fakeAuditor) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	var out []audit.Event
	for _, e := range f.events {
		if filter.ActorID != 0 && e.ActorID != filter.ActorID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func TestAuditTrail(t *testing.T) {
	ts := newTestServer(RouterConfig{})
	auditor := &fakeAuditor{}
	ts.handler = NewRouter(NewHandler(HandlerDeps{
		Store:      ts.store,
		Dispatcher: ts.dispatcher,
		Registrar:  ts.registrar,
		Audit:      auditor,
	}), RouterConfig{})

	if rec := ts.do(http.MethodPost, "/api/v1/managers", `{"user_id": 1, "character_id": 1001}`); rec.Code != http.StatusCreated {
		t.Fatalf("POST managers = %d", rec.Code)
	}
	ts.registrar.err = standings.ErrNotOwner
	if rec := ts.do(http.MethodPost, "/api/v1/characters", `{"user_id": 2, "character_id": 2003, "alliance_id": 3001}`); rec.Code != http.StatusForbidden {
		t.Fatalf("POST characters = %d, want 403", rec.Code)
	}

	if len(auditor.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(auditor.events))
	}
	reg := auditor.events[0]
	if reg.Type != audit.EventManagerRegistered || reg.ActorID != 1 || reg.TargetID != 3001 || reg.Outcome != audit.OutcomeSuccess {
		t.Errorf("registration event = %+v", reg)
	}
	denied := auditor.events[1]
	if denied.Type != audit.EventAuthzDenied || denied.ActorID != 2 || denied.TargetID != 2003 || denied.Outcome != audit.OutcomeFailure {
		t.Errorf("denial event = %+v", denied)
	}
	if denied.RequestID == "" {
		t.Error("denial event carries no request id")
	}

	rec := ts.do(http.MethodGet, "/api/v1/audit?actor_id=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET audit = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != 1 {
		t.Errorf("meta = %+v, want count 1", resp.Meta)
	}

	if rec := ts.do(http.MethodGet, "/api/v1/audit?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("GET audit with bad limit = %d, want 400", rec.Code)
	}
}

func TestAuditDisabled(t *testing.T) {
	ts := newTestServer(RouterConfig{})
	if rec := ts.do(http.MethodGet, "/api/v1/audit", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET audit without auditor = %d, want 404", rec.Code)
	}
}
