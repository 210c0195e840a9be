// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/access"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// Handler exposes the /users endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the user routes.
//
// # Endpoints
//   - GET    /me          : Own profile (owner-only)
//   - PATCH  /me          : Update own profile, role ignored (owner-only)
//   - GET    /            : List users (admin)
//   - POST   /            : Create a user (admin)
//   - GET    /{username}  : Fetch a user (admin)
//   - PATCH  /{username}  : Update a user, role included (admin)
//   - DELETE /{username}  : Delete a user (admin)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(access.Require(access.OwnerOnly))
		r.Get("/me", handler.getMe)
		r.Patch("/me", handler.updateMe)
	})

	router.Group(func(r chi.Router) {
		r.Use(access.Require(access.Admin))
		r.Get("/", handler.list)
		r.Post("/", handler.create)
		r.Get("/{username}", handler.get)
		r.Patch("/{username}", handler.update)
		r.Delete("/{username}", handler.delete)
	})

	return router
}

// # Request Payloads

// patchRequest is shared by PATCH /me and PATCH /{username}.
type patchRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

type createRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// # Own Profile

/*
GET /api/v1/users/me.

Response:
  - 200: User
  - 401: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := access.Authorize(request, access.OwnerOnly, claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/me.

A role in the body is accepted and ignored.

Response:
  - 200: User
  - 400: Validation failure
  - 401: Authentication required
  - 409: Username or email already taken
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := access.Authorize(request, access.OwnerOnly, claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input patchRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), claims.UserID, Patch(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # User Management

/*
GET /api/v1/users?search=&role=&page=&limit=

Response:
  - 200: Paginated users
  - 400: Unknown role filter
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	users, meta, err := handler.accountService.List(request.Context(), ListInput{
		Search: query.Get("search"),
		Role:   query.Get("role"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

/*
POST /api/v1/users

Response:
  - 201: User
  - 400: Validation failure
  - 409: Username or email already taken
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// get handles GET /api/v1/users/{username}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.Get(request.Context(), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// update handles PATCH /api/v1/users/{username}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input patchRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(request.Context(), requestutil.Param(request, "username"), Patch(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// delete handles DELETE /api/v1/users/{username}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Delete(request.Context(), requestutil.Param(request, "username")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
