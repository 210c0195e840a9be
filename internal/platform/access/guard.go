// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"log/slog"
	"net/http"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/metrics"
	"github.com/taibuivan/yamdb/internal/platform/respond"
)

// Authorize evaluates tier for the caller attached to request against one object.
//
// ownerID is the recorded owner of the target object. An empty ownerID means
// the object has no owner, so owner tiers fall back to their privileged roles.
// A denial is returned as 401 when the caller is anonymous and 403 otherwise.
func Authorize(request *http.Request, tier Tier, ownerID string) error {
	return authorize(request, tier, Target{Safe: IsSafeMethod(request.Method), OwnerID: ownerID})
}

// Require guards every route below it with a collection-level check of tier.
//
// Object-level rules must call [Authorize] from the handler once the owner is known.
func Require(tier Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			target := Target{Safe: IsSafeMethod(request.Method), Collection: true}
			if err := authorize(request, tier, target); err != nil {
				respond.Error(writer, request, err)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func authorize(request *http.Request, tier Tier, target Target) error {
	ctx := request.Context()
	subject := SubjectFromClaims(ctxutil.GetAuthUser(ctx))

	if Evaluate(tier, subject, target) {
		return nil
	}

	metrics.AuthorizationDenied(tier.String())
	ctxutil.GetLogger(ctx).InfoContext(ctx, "authorization_denied",
		slog.String("tier", tier.String()),
		slog.String("method", request.Method),
		slog.String("user_id", subject.UserID),
		slog.Bool("collection", target.Collection),
	)

	if !subject.Authenticated {
		return apperr.Unauthorized("Authentication required")
	}
	return apperr.Forbidden("You do not have permission to perform this action")
}
