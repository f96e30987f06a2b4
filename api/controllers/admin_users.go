package controllers

import (
	"net/http"

	"github.com/organimart/organimart-backend/api/responses"
	"github.com/organimart/organimart-backend/api/validators"
	"github.com/organimart/organimart-backend/internal/users"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/logger"
	"github.com/organimart/organimart-backend/pkg/pagination"
)

// AdminListUsers pages through accounts filtered by role and status.
func AdminListUsers(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListUsers(r.Context(), users.ListUsersInput{
			Role:   queryValue(r, "role"),
			Status: queryValue(r, "status"),
			Limit:  limit,
			Cursor: queryValue(r, "cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminGetUser returns one account with profile associations.
func AdminGetUser(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AdminListPendingSellers returns seller accounts awaiting approval.
func AdminListPendingSellers(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		rows, err := svc.ListPendingSellers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type updateUserStatusBody struct {
	Status string `json:"status" validate:"required"`
}

// AdminUpdateUserStatus sets an account's status, approving sellers when activated.
func AdminUpdateUserStatus(svc *users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		adminID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUserStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateUserStatus(r.Context(), users.UpdateUserStatusInput{
			UserID:      targetID,
			Status:      body.Status,
			ActorUserID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
