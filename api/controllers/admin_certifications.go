package controllers

import (
	"net/http"

	"github.com/organimart/organimart-backend/api/responses"
	"github.com/organimart/organimart-backend/api/validators"
	"github.com/organimart/organimart-backend/internal/certifications"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/logger"
)

// AdminCertificationQueue pages through claims awaiting review.
func AdminCertificationQueue(svc *certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certifications service unavailable"))
			return
		}

		input, err := buildCertificationListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListQueue(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminReviewCertification records a verify or reject decision on one claim.
func AdminReviewCertification(svc *certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certifications service unavailable"))
			return
		}

		adminID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		certID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body certifications.ReviewInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cert, err := svc.Review(r.Context(), adminID, certID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cert)
	}
}

// AdminBulkReviewCertifications applies one decision to a batch of claims.
func AdminBulkReviewCertifications(svc *certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certifications service unavailable"))
			return
		}

		adminID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body certifications.BulkReviewInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviewed, err := svc.BulkReview(r.Context(), adminID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"reviewed": reviewed})
	}
}
