// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
)

// # Definitions & Constructors

// Handler exposes the passwordless signup endpoints.
//
// Both routes are public. Their success bodies are bare JSON objects
// (`{username, email}` and `{token}`) rather than the data envelope, because
// clients of the original API depend on that shape.
type Handler struct {
	authService *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// # Endpoints
//   - POST /signup : Sends a confirmation code to the email.
//   - POST /token  : Exchanges a confirmation code for an access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/token", handler.token)

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

/*
signup requests a confirmation code.

POST /api/v1/auth/signup

Response:
  - 200: {username, email} (code sent)
  - 400: VALIDATION_ERROR
  - 409: CONFLICT, username or email bound to another identity
  - 503: NOTIFICATION_FAILED, code stored but not delivered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Signup(request.Context(), SignupInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, result)
}

/*
token exchanges a confirmation code for an access token.

POST /api/v1/auth/token

Response:
  - 200: {token}
  - 400: VALIDATION_ERROR (malformed input) or INVALID_CODE
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	accessToken, err := handler.authService.IssueToken(request.Context(), TokenInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, accessToken)
}
