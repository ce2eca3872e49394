package handler

import (
	"log/slog"
	"net/http"

	"github.com/brenowss/foodiary/internal/model"
	"github.com/brenowss/foodiary/internal/service"
)

// AuthHandler serves account sign-up, sign-in and the current profile.
//
//   - HandleSignUp → POST /auth/sign-up
//   - HandleSignIn → POST /auth/sign-in
//   - HandleMe     → GET  /me (protected)
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type signUpResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"accessToken"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type userResponse struct {
	User *model.User `json:"user"`
}

// HandleSignUp creates an account.
//
// HTTP: POST /auth/sign-up
// 201 {"id": "...", "accessToken": "..."}; 400 with issues; 409 on a taken email.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest[service.SignUpInput](r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.SignUp(r.Context(), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signUpResponse{ID: res.User.ID, AccessToken: res.Token})
}

// HandleSignIn exchanges credentials for an access token.
//
// HTTP: POST /auth/sign-in
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest[signInRequest](r)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.SignIn(r.Context(), req.Body.Email, req.Body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	req, err := parseAuthed[NoBody](r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Me(r.Context(), req.UserID)
	if err != nil {
		h.logger.Warn("HandleMe: user lookup failed",
			slog.String("user_id", req.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: user})
}
