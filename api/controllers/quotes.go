package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashidkhoury/fleetquote-backend/api/responses"
	"github.com/rashidkhoury/fleetquote-backend/api/validators"
	internalquotes "github.com/rashidkhoury/fleetquote-backend/internal/quotes"
	"github.com/rashidkhoury/fleetquote-backend/pkg/enums"
	pkgerrors "github.com/rashidkhoury/fleetquote-backend/pkg/errors"
	"github.com/rashidkhoury/fleetquote-backend/pkg/logger"
	"github.com/rashidkhoury/fleetquote-backend/pkg/pagination"
)

type createQuoteRequest struct {
	Type          string           `json:"type"`
	CustomerName  string           `json:"customer_name" validate:"required"`
	CustomerEmail *string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone *string          `json:"customer_phone"`
	Currency      *string          `json:"currency"`
	VATPercent    *decimal.Decimal `json:"vat_percent"`
	Notes         *string          `json:"notes"`
}

type saveStepRequest struct {
	Customer *internalquotes.CustomerStepInput `json:"customer"`
	Vehicles []internalquotes.VehicleLineInput `json:"vehicles"`
	Pricing  *internalquotes.PricingStepInput  `json:"pricing"`
}

type decideQuoteRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// CreateQuote opens a new draft for the wizard.
func CreateQuote(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var req createQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalquotes.CreateDraftInput{
			CustomerName:  validators.SanitizeString(req.CustomerName, 255),
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			VATPercent:    req.VATPercent,
			Notes:         req.Notes,
		}

		if req.Type != "" {
			quoteType, err := enums.ParseQuoteType(req.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote type"))
				return
			}
			input.Type = quoteType
		}
		if req.Currency != nil {
			currency, err := enums.ParseCurrency(*req.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			input.Currency = &currency
		}

		quote, err := svc.CreateDraft(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// ListQuotes returns a cursor-paginated page of quote summaries.
func ListQuotes(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildQuoteFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// QuoteDetail returns the quote with its pricing breakdown and per-step
// completeness map.
func QuoteDetail(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetDetail(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// SaveQuoteStep applies one wizard step to a draft quote.
func SaveQuoteStep(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawStep := strings.TrimSpace(chi.URLParam(r, "step"))
		step, err := enums.ParseWizardStep(rawStep)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wizard step"))
			return
		}

		var req saveStepRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.SaveStep(r.Context(), internalquotes.SaveStepInput{
			QuoteID:  quoteID,
			Step:     step,
			Customer: req.Customer,
			Vehicles: req.Vehicles,
			Pricing:  req.Pricing,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// QuotePricing recomputes the pricing breakdown without persisting anything.
func QuotePricing(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pricing, err := svc.PreviewPricing(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pricing)
	}
}

// SubmitQuote moves a complete draft into the submitted state.
func SubmitQuote(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Submit(r.Context(), quoteID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(enums.QuoteStatusSubmitted)})
	}
}

// DecideQuote closes a quote as won or lost with a mandatory reason.
func DecideQuote(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req decideQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseQuoteStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote status"))
			return
		}

		if err := svc.Decide(r.Context(), internalquotes.DecideInput{
			QuoteID: quoteID,
			Status:  status,
			Reason:  validators.SanitizeString(req.Reason, 1000),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// NewQuoteRevision clones a locked quote into a fresh editable draft.
func NewQuoteRevision(svc internalquotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID, err := parseQuoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		revision, err := svc.NewRevision(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, revision)
	}
}

func parseQuoteID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "quoteId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
	}
	quoteID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote id")
	}
	return quoteID, nil
}

func buildQuoteFilters(r *http.Request) (internalquotes.QuoteFilters, error) {
	filters := internalquotes.QuoteFilters{
		Query: validators.SanitizeString(r.URL.Query().Get("q"), 255),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return internalquotes.QuoteFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		quoteType, err := enums.ParseQuoteType(raw)
		if err != nil {
			return internalquotes.QuoteFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		filters.Type = &quoteType
	}

	return filters, nil
}
