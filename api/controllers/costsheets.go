package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rashidkhoury/fleetquote-backend/api/middleware"
	"github.com/rashidkhoury/fleetquote-backend/api/responses"
	"github.com/rashidkhoury/fleetquote-backend/api/validators"
	internalcostsheets "github.com/rashidkhoury/fleetquote-backend/internal/costsheets"
	pkgerrors "github.com/rashidkhoury/fleetquote-backend/pkg/errors"
	"github.com/rashidkhoury/fleetquote-backend/pkg/logger"
)

type costSheetRequest struct {
	Assumptions internalcostsheets.AssumptionOverrides `json:"assumptions"`
	Lines       []internalcostsheets.LineCostInput     `json:"lines" validate:"required,min=1"`
}

type approveCostSheetRequest struct {
	Notes *string `json:"notes"`
}

type rejectCostSheetRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CalculateCostSheet creates a new cost sheet version for the quote.
func CalculateCostSheet(svc internalcostsheets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cost sheet service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req costSheetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Calculate(r.Context(), internalcostsheets.CalculateInput{
			QuoteID:     quoteID,
			Assumptions: req.Assumptions,
			Lines:       req.Lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// RecalculateCostSheet reworks the current draft sheet in place.
func RecalculateCostSheet(svc internalcostsheets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cost sheet service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req costSheetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Recalculate(r.Context(), internalcostsheets.RecalculateInput{
			QuoteID:     quoteID,
			Assumptions: req.Assumptions,
			Lines:       req.Lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// CurrentCostSheet returns the live sheet for the quote with its recomputed
// margin summary.
func CurrentCostSheet(svc internalcostsheets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cost sheet service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetCurrent(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// SubmitCostSheet sends the draft sheet for approval, enforcing the margin
// gate.
func SubmitCostSheet(svc internalcostsheets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cost sheet service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Submit(r.Context(), internalcostsheets.SubmitInput{
			QuoteID:     quoteID,
			SubmittedBy: actorID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "pending_approval"})
	}
}

// ApproveCostSheet approves the pending sheet.
func ApproveCostSheet(svc internalcostsheets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cost sheet service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req approveCostSheetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Approve(r.Context(), internalcostsheets.ApproveInput{
			QuoteID:    quoteID,
			ApprovedBy: actorID,
			Notes:      req.Notes,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "approved"})
	}
}

// RejectCostSheet rejects the pending sheet with a mandatory reason.
func RejectCostSheet(svc internalcostsheets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cost sheet service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, err := parseActorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rejectCostSheetRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reject(r.Context(), internalcostsheets.RejectInput{
			QuoteID:    quoteID,
			RejectedBy: actorID,
			Reason:     validators.SanitizeString(req.Reason, 1000),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

func parseActorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header is required")
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor id")
	}
	return actorID, nil
}
