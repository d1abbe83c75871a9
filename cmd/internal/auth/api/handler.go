package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gate/cmd/internal/auth"
	"gate/cmd/internal/user"
	"gate/cmd/security/password"
)

// Handler serves the authentication and account routes.
type Handler struct {
	log   *slog.Logger
	cfg   Config
	svc   *auth.Service
	users user.Store
}

// NewHandler constructs the auth API handler.
func NewHandler(log *slog.Logger, cfg Config, svc *auth.Service, users user.Store) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, cfg: cfg, svc: svc, users: users}
}

// Register attaches all auth routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/session", h.handleSession)
	mux.HandleFunc("/auth/sessions", h.handleSessions)
	mux.HandleFunc("/auth/sessions/revoke", h.handleSessionsRevoke)
	mux.HandleFunc("/auth/sessions/revoke_all", h.handleSessionsRevokeAll)
	mux.HandleFunc("/user", h.handleUserCreate)
	mux.HandleFunc("/user/", h.handleUserByName)
}

// requireAuth validates the session cookie and attaches the identity to
// the request context. On failure it clears the cookie and writes 401;
// the caller must return immediately when ok is false.
func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (*http.Request, Identity, bool) {
	token := h.sessionToken(r)

	v, err := h.svc.ValidateSession(r.Context(), time.Now().UTC(), token)
	if err != nil {
		h.log.Error("authapi.validate.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return r, Identity{}, false
	}
	if !v.IsValid {
		h.clearSessionCookie(w)
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session")
		return r, Identity{}, false
	}

	ident := Identity{
		UserID:    v.Session.UserID,
		SessionID: v.Session.ID,
		Token:     token,
	}
	return r.WithContext(WithIdentity(r.Context(), ident)), ident, true
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "username and password are required")
		return
	}

	res, err := h.svc.Login(r.Context(), time.Now().UTC(), auth.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		UserAgent: userAgent(r),
		IPAddress: h.clientIP(r),
	})
	if err != nil {
		switch {
		case auth.IsInvalidCredentials(err):
			loginAttempts.WithLabelValues("invalid_credentials").Inc()
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		case auth.IsAccountDisabled(err):
			loginAttempts.WithLabelValues("account_disabled").Inc()
			writeError(w, http.StatusForbidden, "account_disabled", "account is disabled")
		default:
			loginAttempts.WithLabelValues("error").Inc()
			h.log.Error("authapi.login.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "internal", "internal error")
		}
		return
	}

	loginAttempts.WithLabelValues("success").Inc()
	sessionsIssued.Inc()
	h.log.Info("authapi.login", "user_id", res.UserID, "session_id", res.SessionID)

	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:    res.UserID,
		SessionID: res.SessionID,
		ExpiresAt: res.ExpiresAt,
	})
}

// handleLogout revokes the presented session, if any, and always clears
// the cookie. Safe to call without a valid session.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	if token := h.sessionToken(r); token != "" {
		if err := h.svc.Logout(r.Context(), time.Now().UTC(), token); err != nil {
			h.log.Error("authapi.logout.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "internal", "internal error")
			return
		}
		sessionsRevoked.Inc()
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	token := h.sessionToken(r)
	v, err := h.svc.ValidateSession(r.Context(), time.Now().UTC(), token)
	if err != nil {
		h.log.Error("authapi.session.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	if !v.IsValid {
		h.clearSessionCookie(w)
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: v.Session.ID,
		UserID:    v.Session.UserID,
		CreatedAt: v.Session.CreatedAt,
		ExpiresAt: v.Session.ExpiresAt,
	})
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	r, ident, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	infos, err := h.svc.UserSessions(r.Context(), time.Now().UTC(), ident.UserID, ident.SessionID)
	if err != nil {
		h.log.Error("authapi.sessions.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	out := make([]sessionInfoResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, sessionInfoResponse{
			SessionID: info.SessionID,
			UserAgent: info.UserAgent,
			IPAddress: info.IPAddress,
			CreatedAt: info.CreatedAt,
			ExpiresAt: info.ExpiresAt,
			IsCurrent: info.IsCurrent,
			IsActive:  info.IsActive,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSessionsRevoke revokes one of the caller's own sessions by id.
// Ownership is checked against the caller's session listing; a session
// id belonging to another user is indistinguishable from an unknown one.
func (h *Handler) handleSessionsRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	r, ident, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	var req revokeSessionRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "session_id is required")
		return
	}

	now := time.Now().UTC()
	infos, err := h.svc.UserSessions(r.Context(), now, ident.UserID, ident.SessionID)
	if err != nil {
		h.log.Error("authapi.revoke.list.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	owned := false
	for _, info := range infos {
		if info.SessionID == req.SessionID {
			owned = true
			break
		}
	}
	if !owned {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	if err := h.svc.RevokeSession(r.Context(), now, req.SessionID); err != nil {
		h.log.Error("authapi.revoke.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	sessionsRevoked.Inc()
	h.log.Info("authapi.revoke", "user_id", ident.UserID, "session_id", req.SessionID)

	if req.SessionID == ident.SessionID {
		h.clearSessionCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionsRevokeAll logs the user out everywhere except the
// session making the request.
func (h *Handler) handleSessionsRevokeAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	r, ident, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	keep := ident.Token
	if err := h.svc.RevokeAllSessions(r.Context(), time.Now().UTC(), ident.UserID, &keep); err != nil {
		h.log.Error("authapi.revoke_all.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	sessionsRevoked.Inc()
	h.log.Info("authapi.revoke_all", "user_id", ident.UserID)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req createUserRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	u, err := h.users.Create(r.Context(), user.CreateInput{
		Name:     req.Name,
		Password: req.Password,
		Type:     req.Type,
	})
	if err != nil {
		switch {
		case user.IsDuplicate(err):
			writeError(w, http.StatusConflict, "duplicate_name", "user name already taken")
		case errors.Is(err, user.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "bad_request", "name and password are required")
		case errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong):
			writeError(w, http.StatusBadRequest, "bad_request", "password does not meet the length policy")
		default:
			h.log.Error("authapi.user.create.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "internal", "internal error")
		}
		return
	}

	h.log.Info("authapi.user.create", "user_id", u.ID, "name", u.Name)
	writeJSON(w, http.StatusCreated, userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Type:      u.Type,
		CreatedAt: u.CreatedAt,
		Disabled:  u.Disabled(),
	})
}

func (h *Handler) handleUserByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/user/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	u, err := h.users.GetByName(r.Context(), name)
	if err != nil {
		if user.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("authapi.user.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	// The lookup includes the stored hash; it stops here.
	writeJSON(w, http.StatusOK, userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Type:      u.Type,
		CreatedAt: u.CreatedAt,
		Disabled:  u.Disabled(),
	})
}
