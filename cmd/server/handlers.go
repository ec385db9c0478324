package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paper-trading-go/internal/ledger"
	"paper-trading-go/internal/store"
	"paper-trading-go/internal/trading"
	"paper-trading-go/internal/yahoo"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	service *trading.Service
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, service *trading.Service) *APIHandler {
	return &APIHandler{log: log, service: service}
}

// Register attaches all API routes to the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/accounts", h.CreateAccountHandler)
	mux.HandleFunc("GET /api/accounts/{id}/portfolio", h.PortfolioHandler)
	mux.HandleFunc("GET /api/accounts/{id}/trades", h.TradesHandler)
	mux.HandleFunc("POST /api/accounts/{id}/buy", h.BuyHandler)
	mux.HandleFunc("POST /api/accounts/{id}/sell", h.SellHandler)
	mux.HandleFunc("POST /api/accounts/{id}/reset", h.ResetHandler)
	mux.HandleFunc("GET /api/stocks", h.StocksHandler)
	mux.HandleFunc("GET /api/stocks/{symbol}/price", h.PriceHandler)
	mux.HandleFunc("GET /api/health", h.HealthHandler)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to write response", zap.Error(err))
	}
}

// writeError maps domain failures onto HTTP statuses with a user-facing
// message carrying the required-vs-available detail the ledger reports.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	var (
		invalidQty         *ledger.InvalidQuantityError
		insufficientFunds  *ledger.InsufficientFundsError
		positionNotFound   *ledger.PositionNotFoundError
		insufficientShares *ledger.InsufficientSharesError
		priceUnavailable   *yahoo.PriceUnavailableError
	)

	switch {
	case errors.As(err, &invalidQty), errors.Is(err, ledger.ErrInvalidPrice):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: err.Error()})
	case errors.Is(err, store.ErrAccountNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Account not found"})
	case errors.As(err, &insufficientFunds):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Insufficient funds",
			Message: "Required: " + insufficientFunds.Required.StringFixed(2) + ", Available: " + insufficientFunds.Available.StringFixed(2),
		})
	case errors.As(err, &positionNotFound):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Stock not found in portfolio"})
	case errors.As(err, &insufficientShares):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Insufficient shares",
			Message: "Available: " + insufficientShares.Available.String() + ", Requested: " + insufficientShares.Requested.String(),
		})
	case errors.As(err, &priceUnavailable):
		h.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Price unavailable", Message: err.Error()})
	case errors.Is(err, store.ErrConcurrentModification):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: "Conflicting trade in progress", Message: "Please retry"})
	default:
		h.log.Error("Request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
	}
}

func (h *APIHandler) accountID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid account id"})
		return 0, false
	}
	return uint(id), true
}

type tradeRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (h *APIHandler) decodeTrade(w http.ResponseWriter, r *http.Request) (*tradeRequest, bool) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: "Malformed request body"})
		return nil, false
	}
	if req.Symbol == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: "Symbol and positive quantity are required"})
		return nil, false
	}
	return &req, true
}

// CreateAccountHandler opens a new paper-trading account.
func (h *APIHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.CreateAccount(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      acct.ID,
		"balance": acct.Cash,
	})
}

// BuyHandler executes a market buy for the account.
func (h *APIHandler) BuyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeTrade(w, r)
	if !ok {
		return
	}

	report, err := h.service.Buy(r.Context(), id, req.Symbol, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Stock purchased successfully",
		"trade":      report.Trade,
		"newBalance": report.NewBalance,
		"portfolio":  report.Portfolio,
	})
}

// SellHandler executes a market sell for the account.
func (h *APIHandler) SellHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeTrade(w, r)
	if !ok {
		return
	}

	report, err := h.service.Sell(r.Context(), id, req.Symbol, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Stock sold successfully",
		"trade":       report.Trade,
		"realizedPnL": report.RealizedPnL,
		"newBalance":  report.NewBalance,
		"portfolio":   report.Portfolio,
	})
}

// PortfolioHandler returns the account's valuation report.
func (h *APIHandler) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	valuation, err := h.service.Portfolio(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, valuation)
}

// TradesHandler returns the account's trade history, newest first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	trades, err := h.service.Trades(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// ResetHandler restores the account to its starting state.
func (h *APIHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}
	acct, err := h.service.Reset(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Portfolio reset successfully",
		"balance":   acct.Cash,
		"portfolio": acct.Positions,
	})
}

// StocksHandler lists the curated symbol catalog.
func (h *APIHandler) StocksHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": yahoo.ListCatalog(),
	})
}

// PriceHandler returns the current market price for one symbol.
func (h *APIHandler) PriceHandler(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	price, err := h.service.Quote(r.Context(), symbol)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"price":  price,
	})
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
