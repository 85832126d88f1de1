// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/standingsync/internal/audit"
	"github.com/tomtom215/standingsync/internal/auth"
	"github.com/tomtom215/standingsync/internal/database"
	"github.com/tomtom215/standingsync/internal/models"
	standings "github.com/tomtom215/standingsync/internal/sync"
	"github.com/tomtom215/standingsync/internal/validation"
)

// Store is the read side the handlers need. Implemented by *database.DB.
type Store interface {
	Ping(ctx context.Context) error
	Manager(ctx context.Context, allianceID int64) (models.SyncManager, error)
	Managers(ctx context.Context) ([]models.SyncManager, error)
	SyncedCharacter(ctx context.Context, characterID int64) (models.SyncedCharacter, error)
	SyncedCharacters(ctx context.Context, filter database.SyncedCharacterFilter) ([]models.SyncedCharacter, error)
}

// Registrar registers managers and followers. Implemented by
// *sync.Registrar.
type Registrar interface {
	RegisterManager(ctx context.Context, userID, characterID int64) (models.SyncManager, error)
	ActivateCharacter(ctx context.Context, userID, characterID, allianceID int64) (models.SyncedCharacter, error)
	RemoveCharacter(ctx context.Context, userID, characterID int64) error
}

// Auditor records and lists audit events. Implemented by *audit.Logger.
type Auditor interface {
	Log(event *audit.Event)
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// HandlerDeps are the collaborators of a Handler. RouterRunning and Audit
// may be nil.
type HandlerDeps struct {
	Store         Store
	Dispatcher    standings.Dispatcher
	Registrar     Registrar
	Audit         Auditor
	RouterRunning func() bool
}

// Handler implements the HTTP endpoints.
type Handler struct {
	store         Store
	dispatcher    standings.Dispatcher
	registrar     Registrar
	auditor       Auditor
	routerRunning func() bool
	startTime     time.Time
}

// NewHandler creates a handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		store:         deps.Store,
		dispatcher:    deps.Dispatcher,
		registrar:     deps.Registrar,
		auditor:       deps.Audit,
		routerRunning: deps.RouterRunning,
		startTime:     time.Now(),
	}
}

// ManagerView is a sync manager as the API shows it.
type ManagerView struct {
	AllianceID  int64           `json:"alliance_id"`
	CharacterID int64           `json:"character_id,omitempty"`
	VersionHash string          `json:"version_hash,omitempty"`
	LastSync    *time.Time      `json:"last_sync,omitempty"`
	Status      string          `json:"status"`
	Followers   []CharacterView `json:"followers,omitempty"`
}

// CharacterView is a synced character as the API shows it.
type CharacterView struct {
	CharacterID int64      `json:"character_id"`
	ManagerID   int64      `json:"manager_id"`
	VersionHash string     `json:"version_hash,omitempty"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
	Status      string     `json:"status"`
}

func managerView(m models.SyncManager) ManagerView {
	return ManagerView{
		AllianceID:  m.AllianceID,
		CharacterID: m.CharacterID,
		VersionHash: m.VersionHash,
		LastSync:    optionalTime(m.LastSync),
		Status:      m.StatusMessage(),
	}
}

func characterView(c models.SyncedCharacter) CharacterView {
	return CharacterView{
		CharacterID: c.CharacterID,
		ManagerID:   c.ManagerID,
		VersionHash: c.VersionHash,
		LastSync:    optionalTime(c.LastSync),
		Status:      c.StatusMessage(),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Live answers liveness probes.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// Ready answers readiness probes: the database must answer and, when
// known, the task router must be running.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	dbOK := h.store != nil && h.store.Ping(r.Context()) == nil
	routerOK := h.routerRunning == nil || h.routerRunning()

	data := map[string]any{
		"database_connected": dbOK,
		"router_running":     routerOK,
	}
	if !dbOK || !routerOK {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "not ready", data)
		return
	}
	rw.Success(data)
}

// ListManagers returns every sync manager.
func (h *Handler) ListManagers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	managers, err := h.store.Managers(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	views := make([]ManagerView, 0, len(managers))
	for _, m := range managers {
		views = append(views, managerView(m))
	}
	rw.List(views, len(views))
}

// GetManager returns one manager and its followers.
func (h *Handler) GetManager(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	allianceID, ok := pathID(rw, r, "allianceID")
	if !ok {
		return
	}

	mgr, err := h.store.Manager(r.Context(), allianceID)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("sync manager not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	followers, err := h.store.SyncedCharacters(r.Context(), database.SyncedCharacterFilter{ManagerID: allianceID})
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	view := managerView(mgr)
	for _, c := range followers {
		view.Followers = append(view.Followers, characterView(c))
	}
	rw.Success(view)
}

type registerManagerRequest struct {
	UserID      int64 `json:"user_id" validate:"eve_id"`
	CharacterID int64 `json:"character_id" validate:"eve_id"`
}

// RegisterManager makes a character the sync manager of its alliance.
func (h *Handler) RegisterManager(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req registerManagerRequest
	if !h.decode(rw, r, &req) {
		return
	}
	mgr, err := h.registrar.RegisterManager(r.Context(), req.UserID, req.CharacterID)
	if err != nil {
		h.rejected(r, "register_manager", req.UserID, req.CharacterID, err)
		registrationError(rw, err)
		return
	}
	h.record(r, audit.EventManagerRegistered, "register_manager", req.UserID, mgr.AllianceID, models.KindAlliance)
	rw.Created(managerView(mgr))
}

type syncManagerRequest struct {
	ReportTo int64 `json:"report_to" validate:"gte=0"`
}

// SyncManager enqueues a forced manager sync. A report_to user receives a
// completion notification.
func (h *Handler) SyncManager(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	allianceID, ok := pathID(rw, r, "allianceID")
	if !ok {
		return
	}
	var req syncManagerRequest
	if r.ContentLength > 0 && !h.decode(rw, r, &req) {
		return
	}

	if _, err := h.store.Manager(r.Context(), allianceID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("sync manager not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	task := standings.ManagerSyncTask{AllianceID: allianceID, Force: true, ReportTo: req.ReportTo}
	if err := h.dispatcher.DispatchManagerSync(r.Context(), task); err != nil {
		rw.InternalError(err)
		return
	}
	h.record(r, audit.EventSyncTriggered, "sync_manager", req.ReportTo, allianceID, models.KindAlliance)
	rw.Accepted(task)
}

type activateCharacterRequest struct {
	UserID      int64 `json:"user_id" validate:"eve_id"`
	CharacterID int64 `json:"character_id" validate:"eve_id"`
	AllianceID  int64 `json:"alliance_id" validate:"eve_id"`
}

// ActivateCharacter starts syncing a character with an alliance.
func (h *Handler) ActivateCharacter(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req activateCharacterRequest
	if !h.decode(rw, r, &req) {
		return
	}
	c, err := h.registrar.ActivateCharacter(r.Context(), req.UserID, req.CharacterID, req.AllianceID)
	if err != nil {
		h.rejected(r, "activate_character", req.UserID, req.CharacterID, err)
		registrationError(rw, err)
		return
	}
	h.record(r, audit.EventCharacterActivated, "activate_character", req.UserID, req.CharacterID, models.KindCharacter)
	rw.Created(characterView(c))
}

// GetCharacter returns one synced character.
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	characterID, ok := pathID(rw, r, "characterID")
	if !ok {
		return
	}
	c, err := h.store.SyncedCharacter(r.Context(), characterID)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("synced character not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(characterView(c))
}

// SyncCharacter enqueues a forced character sync.
func (h *Handler) SyncCharacter(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	characterID, ok := pathID(rw, r, "characterID")
	if !ok {
		return
	}
	if _, err := h.store.SyncedCharacter(r.Context(), characterID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("synced character not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	task := standings.CharacterSyncTask{CharacterID: characterID, Force: true}
	if err := h.dispatcher.DispatchCharacterSync(r.Context(), task); err != nil {
		rw.InternalError(err)
		return
	}
	h.record(r, audit.EventSyncTriggered, "sync_character", 0, characterID, models.KindCharacter)
	rw.Accepted(task)
}

// RemoveCharacter stops syncing a character. The owning user is given as
// the user_id query parameter.
func (h *Handler) RemoveCharacter(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	characterID, ok := pathID(rw, r, "characterID")
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		rw.BadRequest("user_id query parameter must be a positive integer")
		return
	}
	if err := h.registrar.RemoveCharacter(r.Context(), userID, characterID); err != nil {
		h.rejected(r, "remove_character", userID, characterID, err)
		registrationError(rw, err)
		return
	}
	h.record(r, audit.EventCharacterRemoved, "remove_character", userID, characterID, models.KindCharacter)
	rw.NoContent()
}

func (h *Handler) decode(rw *ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(rw.w, r.Body, 1<<16)).Decode(v); err != nil {
		rw.BadRequest("invalid JSON body")
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

func pathID(rw *ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		rw.BadRequest(param + " must be a positive integer")
		return 0, false
	}
	return id, true
}

// ListAuditEvents returns recent audit events, newest first. Supports the
// actor_id, target_id, type and limit query parameters.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.auditor == nil {
		rw.Error(http.StatusNotFound, ErrCodeNotFound, "audit log disabled")
		return
	}

	q := r.URL.Query()
	var filter audit.QueryFilter
	for param, dst := range map[string]*int64{"actor_id": &filter.ActorID, "target_id": &filter.TargetID} {
		if v := q.Get(param); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				rw.BadRequest(param + " must be a positive integer")
				return
			}
			*dst = id
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			rw.BadRequest("limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}
	for _, t := range q["type"] {
		filter.Types = append(filter.Types, audit.EventType(t))
	}

	events, err := h.auditor.Query(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	rw.List(events, len(events))
}

func (h *Handler) record(r *http.Request, typ audit.EventType, action string, actorID, targetID int64, kind models.EntityKind) {
	if h.auditor == nil {
		return
	}
	e := audit.FromRequest(r, typ, audit.OutcomeSuccess, action)
	e.ActorID, e.TargetID, e.TargetKind = actorID, targetID, string(kind)
	h.auditor.Log(e)
}

// rejected records a failed registration. Permission and ownership
// failures are recorded as authorization denials.
func (h *Handler) rejected(r *http.Request, action string, actorID, characterID int64, err error) {
	if h.auditor == nil {
		return
	}
	typ := audit.EventRegistrationRejected
	if errors.Is(err, standings.ErrPermissionDenied) || errors.Is(err, standings.ErrNotOwner) {
		typ = audit.EventAuthzDenied
	}
	e := audit.FromRequest(r, typ, audit.OutcomeFailure, action)
	e.ActorID, e.TargetID, e.TargetKind = actorID, characterID, string(models.KindCharacter)
	e.Description = err.Error()
	h.auditor.Log(e)
}

// registrationError maps registration failures onto HTTP statuses.
func registrationError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, standings.ErrPermissionDenied), errors.Is(err, standings.ErrNotOwner):
		rw.Error(http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, standings.ErrNoManager):
		rw.NotFound(err.Error())
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound("character not found")
	case errors.Is(err, standings.ErrNoAlliance),
		errors.Is(err, standings.ErrAllianceMember),
		errors.Is(err, standings.ErrNotBlue),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenExpired):
		rw.Error(http.StatusUnprocessableEntity, ErrCodeUnprocessable, err.Error())
	default:
		rw.InternalError(err)
	}
}
