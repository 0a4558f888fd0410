package http

import (
	"net/http"

	"github.com/ponliv/marketplace/internal/marketplace/service"
	"github.com/ponliv/marketplace/pkg/httpx"
	"github.com/ponliv/marketplace/pkg/marketsdk"
)

type UsersHandler struct {
	Sessions *service.SessionService
}

// HandleRegister creates an account.
//
//	@Summary		Register
//	@Description	Creates a user. The role member selects the schema: school requires director and schoolType,
//	@Description	parent accepts children, sponsor accepts company. Every failing field is reported.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		marketsdk.RegisterRequest	true	"Registration payload"
//	@Success		201		{object}	marketsdk.UserProfile
//	@Failure		400		{object}	httpx.ErrorResponse	"validation_error or duplicate_email"
//	@Failure		429		{object}	httpx.ErrorResponse
//	@Router			/api/users/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	u, err := h.Sessions.Register(r.Context(), body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProfile(u))
}

// HandleLogin exchanges credentials for a session token.
//
//	@Summary		Login
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		marketsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	marketsdk.LoginResponse
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	httpx.ErrorResponse
//	@Router			/api/users/login [post].
func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadBody(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sess, err := h.Sessions.Login(r.Context(), body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.LoginResponse{
		Token:     sess.Token,
		TokenType: "Bearer",
		ExpiresAt: sess.ExpiresAt,
		User:      toProfile(sess.User),
	})
}

// HandleMe returns the caller's profile.
//
//	@Summary	Current user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	marketsdk.UserProfile
//	@Failure	401	{object}	httpx.ErrorResponse
//	@Failure	404	{object}	httpx.ErrorResponse	"account deleted"
//	@Router		/api/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	u, err := h.Sessions.Me(r.Context(), a.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(u))
}

// HandleUpdate applies a partial update.
//
//	@Summary		Update user
//	@Description	Validates only the supplied members against the user's role schema. The role cannot change.
//	@Description	Allowed for the user themselves and for admins.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"User id"
//	@Param			request	body		object	true	"Members to change"
//	@Success		200		{object}	marketsdk.UserProfile
//	@Failure		400		{object}	httpx.ErrorResponse
//	@Failure		403		{object}	httpx.ErrorResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Router			/api/users/{id} [put].
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	body, err := httpx.ReadBody(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	u, err := h.Sessions.Update(r.Context(), a, r.PathValue("id"), body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProfile(u))
}

// HandleDelete removes an account.
//
//	@Summary	Delete user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"User id"
//	@Success	200	{object}	marketsdk.MessageResponse
//	@Failure	403	{object}	httpx.ErrorResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.Sessions.Delete(r.Context(), a, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.MessageResponse{Message: "user deleted"})
}

// HandleLogout revokes the presented token.
//
//	@Summary	Logout
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	marketsdk.MessageResponse
//	@Failure	401	{object}	httpx.ErrorResponse
//	@Router		/api/users/logout [post].
func (h *UsersHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := h.Sessions.Logout(r.Context(), p.Token, p.Claims); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, marketsdk.MessageResponse{Message: "logged out"})
}
