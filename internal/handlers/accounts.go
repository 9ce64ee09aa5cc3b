package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "quintal/internal/log"
	"quintal/models"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Signup registers a new account and establishes a session for it.
func (a *API) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if a.db == nil || a.sessions == nil {
		applog.Debug(r.Context(), "signup dependencies unavailable")
		writeJSONError(w, http.StatusServiceUnavailable, "registration not available")
		return
	}

	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid signup payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		writeJSONError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if len(payload.Password) < 8 {
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters long")
		return
	}

	if _, err := a.findUserByEmail(r, email); err == nil {
		applog.Debug(r.Context(), "signup attempted with existing email", "email", email)
		writeJSONError(w, http.StatusConflict, "an account with that email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		applog.Error(r.Context(), "failed to check existing user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		applog.Error(r.Context(), "failed to hash password", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(payload.Name),
		PasswordHash: string(hashed),
	}
	if err := a.db.WithContext(r.Context()).Create(user).Error; err != nil {
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	if err := a.establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after signup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Info(r.Context(), "user registered", "userID", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, projectUser(user))
}

// Login verifies credentials and establishes a session.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if a.db == nil || a.sessions == nil {
		applog.Debug(r.Context(), "login dependencies unavailable")
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid login payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.verifyCredentials(r, payload.Email, payload.Password)
	if err != nil {
		applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(payload.Email))
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := a.establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Info(r.Context(), "user signed in", "userID", user.ID)
	writeJSON(w, http.StatusOK, projectUser(user))
}

// Logout destroys the current session.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if a.sessions != nil {
		if err := a.sessions.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Token exchanges credentials for a signed bearer token, letting
// non-browser clients call the API without a cookie jar.
func (a *API) Token(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if a.db == nil || a.tokens == nil {
		applog.Debug(r.Context(), "token dependencies unavailable")
		writeJSONError(w, http.StatusServiceUnavailable, "token authentication not available")
		return
	}

	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid token payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.verifyCredentials(r, payload.Email, payload.Password)
	if err != nil {
		applog.Debug(r.Context(), "token authentication failed", "email", strings.ToLower(payload.Email))
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, expires, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		applog.Error(r.Context(), "failed to issue token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to issue token")
		return
	}

	applog.Info(r.Context(), "bearer token issued", "userID", user.ID)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires})
}

func (a *API) findUserByEmail(r *http.Request, email string) (*models.User, error) {
	user := &models.User{}
	err := a.db.WithContext(r.Context()).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *API) verifyCredentials(r *http.Request, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.New("missing credentials")
	}

	user, err := a.findUserByEmail(r, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *API) establishSession(r *http.Request, user *models.User) error {
	if a.sessions == nil {
		return errors.New("session manager not configured")
	}
	if err := a.sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	a.sessions.Put(r.Context(), sessionAuthenticatedKey, true)
	a.sessions.Put(r.Context(), sessionUserIDKey, int(user.ID))
	a.sessions.Put(r.Context(), sessionUserEmailKey, user.Email)
	a.sessions.Put(r.Context(), sessionUserNameKey, user.Name)
	return nil
}

func projectUser(user *models.User) userResponse {
	return userResponse{ID: user.ID, Email: user.Email, Name: user.Name}
}
