package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/types"
)

// CurrencyHandler manages currencies and their exchange rates.
type CurrencyHandler struct {
	currencyService CurrencyServiceInterface
	refresher       RateRefresherInterface
}

func NewCurrencyHandler(currencyService CurrencyServiceInterface, refresher RateRefresherInterface) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService: currencyService,
		refresher:       refresher,
	}
}

// UpdateRateRequest sets the current rate of a currency.
type UpdateRateRequest struct {
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source,omitempty"`
}

func (h *CurrencyHandler) ListCurrenciesHandler(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, currencies)
}

func (h *CurrencyHandler) GetCurrencyHandler(c *gin.Context) {
	code, ok := currencyCodeParam(c)
	if !ok {
		return
	}
	cur, err := h.currencyService.GetCurrency(c.Request.Context(), code)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

func (h *CurrencyHandler) CreateCurrencyHandler(c *gin.Context) {
	var req types.CreateCurrencyParams
	if !bindJSONOrError(c, &req) {
		return
	}
	cur, err := h.currencyService.CreateCurrency(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, cur)
}

func (h *CurrencyHandler) UpdateCurrencyHandler(c *gin.Context) {
	code, ok := currencyCodeParam(c)
	if !ok {
		return
	}
	var req types.UpdateCurrencyParams
	if !bindJSONOrError(c, &req) {
		return
	}
	cur, err := h.currencyService.UpdateCurrency(c.Request.Context(), code, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

func (h *CurrencyHandler) DeleteCurrencyHandler(c *gin.Context) {
	code, ok := currencyCodeParam(c)
	if !ok {
		return
	}
	if err := h.currencyService.DeleteCurrency(c.Request.Context(), code); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CurrencyHandler) UpdateRateHandler(c *gin.Context) {
	code, ok := currencyCodeParam(c)
	if !ok {
		return
	}
	var req UpdateRateRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	cur, err := h.currencyService.UpdateExchangeRate(c.Request.Context(), code, req.Rate, req.Source)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

// GetRateHistoryHandler pages through a currency's rate history. Query
// parameters: limit, offset, from, to.
func (h *CurrencyHandler) GetRateHistoryHandler(c *gin.Context) {
	code, ok := currencyCodeParam(c)
	if !ok {
		return
	}

	var query types.ExchangeRateHistoryQuery
	var err error
	if query.Limit, err = intQuery(c, "limit"); err != nil {
		_ = c.Error(err)
		return
	}
	if query.Offset, err = intQuery(c, "offset"); err != nil {
		_ = c.Error(err)
		return
	}
	if query.From, err = timeQuery(c, "from"); err != nil {
		_ = c.Error(err)
		return
	}
	if query.To, err = timeQuery(c, "to"); err != nil {
		_ = c.Error(err)
		return
	}

	history, err := h.currencyService.GetExchangeRateHistory(c.Request.Context(), code, query)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// RefreshRatesHandler pulls the rate feed now instead of waiting for the schedule.
func (h *CurrencyHandler) RefreshRatesHandler(c *gin.Context) {
	result, err := h.refresher.RefreshNow(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
