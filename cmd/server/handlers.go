package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/markup/internal/catalog"
	"github.com/Simplici0/markup/internal/logger"
	"github.com/Simplici0/markup/internal/pricing"
)

// channelView is the listing shape of a sales channel. Unset rates are shown as 0.
type channelView struct {
	ID                  int64       `json:"id"`
	CompanyID           int64       `json:"companyId"`
	Name                string      `json:"name"`
	ICMSOut             json.Number `json:"icmsOut"`
	PISOut              json.Number `json:"pisOut"`
	COFINSOut           json.Number `json:"cofinsOut"`
	IPIOut              json.Number `json:"ipiOut"`
	DIFALOut            json.Number `json:"difalOut"`
	IRCSLL              json.Number `json:"irCsll"`
	Commission          json.Number `json:"commission"`
	Marketing           json.Number `json:"marketing"`
	FreightPercent      json.Number `json:"freightPercent"`
	DefaultRate         json.Number `json:"defaultRate"`
	FinancialCost       json.Number `json:"financialCost"`
	FixedCostAllocation json.Number `json:"fixedCostAllocation"`
	FixedExpensesRate   json.Number `json:"fixedExpensesRate"`
	PayrollRate         json.Number `json:"payrollRate"`
	AdministrativeCost  json.Number `json:"administrativeCost"`
	ProfitMargin        json.Number `json:"profitMargin"`
	FreightValue        json.Number `json:"freightValue"`
}

func number(v decimal.NullDecimal) json.Number {
	if !v.Valid {
		return "0"
	}
	return json.Number(v.Decimal.String())
}

func newChannelView(ch pricing.SalesChannel) channelView {
	return channelView{
		ID:                  ch.ID,
		CompanyID:           ch.CompanyID,
		Name:                ch.Name,
		ICMSOut:             number(ch.ICMSOut),
		PISOut:              number(ch.PISOut),
		COFINSOut:           number(ch.COFINSOut),
		IPIOut:              number(ch.IPIOut),
		DIFALOut:            number(ch.DIFALOut),
		IRCSLL:              number(ch.IRCSLL),
		Commission:          number(ch.Commission),
		Marketing:           number(ch.Marketing),
		FreightPercent:      number(ch.FreightPercent),
		DefaultRate:         number(ch.DefaultRate),
		FinancialCost:       number(ch.FinancialCost),
		FixedCostAllocation: number(ch.FixedCostAllocation),
		FixedExpensesRate:   number(ch.FixedExpensesRate),
		PayrollRate:         number(ch.PayrollRate),
		AdministrativeCost:  number(ch.AdministrativeCost),
		ProfitMargin:        number(ch.ProfitMargin),
		FreightValue:        number(ch.FreightValue),
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *server) handlePriceCalc(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r.URL.Query().Get("productId"), "productId")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	channelID, err := parseID(r.URL.Query().Get("channelId"), "channelId")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := s.quotes.ComputePrice(r.Context(), productID, channelID)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	if result.Status == pricing.StatusInfeasible {
		logger.FromContext(r.Context()).Info().
			Int64("productId", productID).
			Int64("channelId", channelID).
			Str("divisor", result.AppliedDivisor.String()).
			Msg("pricing infeasible for channel margin structure")
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleProductPrices(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	prices, err := s.quotes.ComputeAllChannels(r.Context(), productID)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, prices)
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseID(r.URL.Query().Get("companyId"), "companyId")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	products, err := s.products.ListByCompany(r.Context(), companyID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleSalesChannels(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseID(r.URL.Query().Get("companyId"), "companyId")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	channels, err := s.channels.ListForCompany(r.Context(), companyID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	views := make([]channelView, 0, len(channels))
	for _, ch := range channels {
		views = append(views, newChannelView(ch))
	}
	writeJSON(w, http.StatusOK, views)
}

func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", field)
	}
	return id, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, pricing.ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrInvalidRegime):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	l := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}

	l.Warn().Err(err).Int("status", status).Msg("request rejected")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
