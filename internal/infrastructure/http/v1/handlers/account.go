package handlers

import (
	"github.com/gin-gonic/gin"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/catalogs/account"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/infrastructure/http/v1/dto"
)

// AccountHandler handles chart of accounts endpoints.
type AccountHandler struct {
	*CatalogHandler[*account.Account]
	service *account.Service
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(base *BaseHandler, service *account.Service) *AccountHandler {
	return &AccountHandler{
		CatalogHandler: NewCatalogHandler[*account.Account](base, service, func() *account.Account {
			return &account.Account{}
		}),
		service: service,
	}
}

// ListByType handles GET /by-type/:type.
func (h *AccountHandler) ListByType(c *gin.Context) {
	accType := account.AccountType(c.Param("type"))

	accounts, err := h.service.ListByType(c.Request.Context(), accType)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, accounts)
}

// BindRole handles POST /bind-role.
func (h *AccountHandler) BindRole(c *gin.Context) {
	var req dto.BindAccountRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	accountID, err := id.Parse(req.AccountID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid account id").WithDetail("accountId", req.AccountID))
		return
	}

	if err := h.service.BindRole(c.Request.Context(), ledger.AccountRole(req.Role), accountID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "role bound")
}
