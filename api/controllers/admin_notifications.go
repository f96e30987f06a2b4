package controllers

import (
	"net/http"

	"github.com/organimart/organimart-backend/api/responses"
	"github.com/organimart/organimart-backend/api/validators"
	"github.com/organimart/organimart-backend/internal/notifications"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/logger"
)

// AdminSendNotification writes a direct message to one user's feed.
func AdminSendNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body notifications.SendInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Send(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// AdminBulkSendNotification writes one message to several users' feeds.
func AdminBulkSendNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		var body notifications.BulkSendInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sent, err := svc.SendBulk(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]int{"sent": sent})
	}
}
