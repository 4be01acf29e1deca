package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/catalogs/currency"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// CurrencyHandler handles currency catalog endpoints.
type CurrencyHandler struct {
	*CatalogHandler[*currency.Currency]
	service *currency.Service
}

// NewCurrencyHandler creates a new currency handler.
func NewCurrencyHandler(base *BaseHandler, service *currency.Service) *CurrencyHandler {
	return &CurrencyHandler{
		CatalogHandler: NewCatalogHandler[*currency.Currency](base, service, func() *currency.Currency {
			return &currency.Currency{}
		}),
		service: service,
	}
}

// GetBase handles GET /base.
func (h *CurrencyHandler) GetBase(c *gin.Context) {
	cur, err := h.service.GetBaseCurrency(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cur)
}

// UpdateExchangeRate handles POST /exchange-rate.
func (h *CurrencyHandler) UpdateExchangeRate(c *gin.Context) {
	var req dto.UpdateExchangeRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := types.NewMoneyFromString(req.Rate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid rate").WithDetail("rate", req.Rate))
		return
	}

	if err := h.service.UpdateExchangeRate(c.Request.Context(), req.ISOCode, rate); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "exchange rate updated")
}
