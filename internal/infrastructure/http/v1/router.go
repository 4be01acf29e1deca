// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"rxledger/internal/core/id"
	"rxledger/internal/core/numerator"
	"rxledger/internal/domain"
	"rxledger/internal/domain/approval"
	"rxledger/internal/domain/audit"
	"rxledger/internal/domain/auth"
	"rxledger/internal/domain/catalogs/account"
	"rxledger/internal/domain/catalogs/branch"
	"rxledger/internal/domain/catalogs/currency"
	"rxledger/internal/domain/catalogs/medicine"
	"rxledger/internal/domain/catalogs/supplier"
	"rxledger/internal/domain/documents/credit_note"
	"rxledger/internal/domain/documents/payment"
	"rxledger/internal/domain/documents/purchase_invoice"
	"rxledger/internal/domain/documents/purchase_order"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
	"rxledger/internal/domain/registers/batch"
	"rxledger/internal/domain/reports"
	"rxledger/internal/infrastructure/http/v1/handlers"
	"rxledger/internal/infrastructure/http/v1/middleware"
	"rxledger/internal/infrastructure/storage/postgres"
	"rxledger/internal/infrastructure/storage/postgres/catalog_repo"
	"rxledger/internal/infrastructure/storage/postgres/document_repo"
	"rxledger/internal/infrastructure/storage/postgres/register_repo"
	"rxledger/internal/infrastructure/storage/postgres/report_repo"
	"rxledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *pgxpool.Pool

	// TxManager is injected into every repository
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// ApprovalProvider compiles and caches payment approval policies
	ApprovalProvider *approval.Provider

	// Audit writes the entity change trail
	Audit *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.BranchAccess())

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerApprovalRoutes(protected, cfg)
		registerAuditRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- SUPPLIERS ---
	{
		repo := catalog_repo.NewSupplierRepo(cfg.TxManager)
		service := supplier.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewSupplierHandler(baseHandler, service)
		group := catalogs.Group("/suppliers")
		RegisterCatalogRoutes(group, handler, "catalog:supplier")
		group.GET("/by-gstin/:gstin", middleware.RequirePermission("catalog:supplier:read"), handler.FindByGSTIN)
	}

	// --- MEDICINES ---
	{
		repo := catalog_repo.NewMedicineRepo(cfg.TxManager)
		service := medicine.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewMedicineHandler(baseHandler, service)
		group := catalogs.Group("/medicines")
		RegisterCatalogRoutes(group, handler, "catalog:medicine")
		group.GET("/by-barcode/:barcode", middleware.RequirePermission("catalog:medicine:read"), handler.FindByBarcode)
		group.GET("/below-reorder-level", middleware.RequirePermission("catalog:medicine:read"), handler.ListBelowReorderLevel)
	}

	// --- ACCOUNTS ---
	{
		repo := catalog_repo.NewAccountRepo(cfg.TxManager)
		service := account.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewAccountHandler(baseHandler, service)
		group := catalogs.Group("/accounts")
		RegisterCatalogRoutes(group, handler, "catalog:account")
		group.GET("/by-type/:type", middleware.RequirePermission("catalog:account:read"), handler.ListByType)
		group.POST("/bind-role", middleware.RequirePermission("catalog:account:update"), handler.BindRole)
	}

	// --- BRANCHES ---
	{
		repo := catalog_repo.NewBranchRepo(cfg.TxManager)
		service := branch.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewBranchHandler(baseHandler, service)
		group := catalogs.Group("/branches")
		RegisterCatalogRoutes(group, handler, "catalog:branch")
		group.GET("/default", middleware.RequirePermission("catalog:branch:read"), handler.GetDefault)
	}

	// --- CURRENCIES ---
	{
		repo := catalog_repo.NewCurrencyRepo(cfg.TxManager)
		service := currency.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewCurrencyHandler(baseHandler, service)
		group := catalogs.Group("/currencies")
		RegisterCatalogRoutes(group, handler, "catalog:currency")
		group.GET("/base", middleware.RequirePermission("catalog:currency:read"), handler.GetBase)
		group.POST("/exchange-rate", middleware.RequirePermission("catalog:currency:update"), handler.UpdateExchangeRate)
	}
}

// auditTrail registers change-trail hooks for a document type. Entries
// share the business transaction, so a failed write rolls the operation back.
func auditTrail[T interface{ GetID() id.ID }](audit *postgres.AuditService, hooks *domain.HookRegistry[T], entityType string) {
	if audit == nil {
		return
	}
	hooks.OnAfterCreate(func(ctx context.Context, doc T) error {
		return audit.LogChange(ctx, entityType, doc.GetID(), postgres.AuditActionCreate, nil)
	})
	hooks.OnAfterUpdate(func(ctx context.Context, doc T) error {
		return audit.LogChange(ctx, entityType, doc.GetID(), postgres.AuditActionUpdate, nil)
	})
	hooks.OnAfterPost(func(ctx context.Context, doc T) error {
		return audit.LogChange(ctx, entityType, doc.GetID(), postgres.AuditActionPost, nil)
	})
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// Shared dependencies for posting documents
	batchRepo := register_repo.NewBatchRepo(cfg.TxManager)
	batchService := batch.NewService(batchRepo)
	ledgerRepo := register_repo.NewLedgerRepo(cfg.TxManager)
	ledgerService := ledger.NewService(ledgerRepo, cfg.TxManager)
	postingEngine := posting.NewEngine(cfg.TxManager, ledgerService, batchService)

	accountRepo := catalog_repo.NewAccountRepo(cfg.TxManager)
	accountService := account.NewService(accountRepo, cfg.TxManager, cfg.Numerator)

	settlementRepo := document_repo.NewSettlementRepo(cfg.TxManager)

	invoiceRepo := document_repo.NewPurchaseInvoiceRepo(cfg.TxManager)
	invoiceService := purchase_invoice.NewService(
		invoiceRepo, settlementRepo, accountService, postingEngine, cfg.Numerator, cfg.TxManager)

	// --- PURCHASE ORDERS ---
	{
		repo := document_repo.NewPurchaseOrderRepo(cfg.TxManager)
		service := purchase_order.NewService(repo, cfg.Numerator, cfg.TxManager)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *purchase_order.PurchaseOrder) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *purchase_order.PurchaseOrder) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		auditTrail(cfg.Audit, service.Hooks(), "purchase_order")

		handler := handlers.NewPurchaseOrderHandler(baseHandler, service)
		group := docsGroup.Group("/purchase-orders")
		RegisterDocumentRoutes(group, handler, "document:purchase_order")
		group.POST("/:id/receive", middleware.RequirePermission("document:purchase_order:update"), handler.MarkReceived)
		group.POST("/:id/cancel", middleware.RequirePermission("document:purchase_order:update"), handler.Cancel)
	}

	// --- PURCHASE INVOICES ---
	{
		invoiceService.Hooks().OnBeforeCreate(func(ctx context.Context, doc *purchase_invoice.PurchaseInvoice) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		invoiceService.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *purchase_invoice.PurchaseInvoice) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		auditTrail(cfg.Audit, invoiceService.Hooks(), "purchase_invoice")

		handler := handlers.NewPurchaseInvoiceHandler(baseHandler, invoiceService)
		group := docsGroup.Group("/purchase-invoices")
		RegisterDocumentRoutes(group, handler, "document:purchase_invoice")
		group.GET("/:id/balance", middleware.RequirePermission("document:purchase_invoice:read"), handler.GetBalance)
	}

	// --- PAYMENTS ---
	{
		repo := document_repo.NewPaymentRepo(cfg.TxManager)
		service := payment.NewService(
			repo, invoiceService, accountService, cfg.ApprovalProvider,
			postingEngine, cfg.Numerator, cfg.TxManager)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *payment.Payment) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *payment.Payment) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		auditTrail(cfg.Audit, service.Hooks(), "payment")

		handler := handlers.NewPaymentHandler(baseHandler, service)
		group := docsGroup.Group("/payments")
		RegisterDocumentRoutes(group, handler, "document:payment")
		group.GET("/pending-approval", middleware.RequirePermission("document:payment:approve"), handler.ListPendingApproval)
		group.POST("/:id/submit", middleware.RequirePermission("document:payment:update"), handler.Submit)
		group.POST("/:id/approve", middleware.RequirePermission("document:payment:approve"), handler.Approve)
		group.POST("/:id/reject", middleware.RequirePermission("document:payment:approve"), handler.Reject)
		group.POST("/:id/unpost", middleware.RequirePermission("document:payment:unpost"), handler.Unpost)
	}

	// --- CREDIT NOTES ---
	{
		repo := document_repo.NewCreditNoteRepo(cfg.TxManager)
		service := credit_note.NewService(
			repo, invoiceService, accountService, postingEngine, cfg.Numerator, cfg.TxManager)

		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *credit_note.CreditNote) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *credit_note.CreditNote) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		auditTrail(cfg.Audit, service.Hooks(), "credit_note")

		handler := handlers.NewCreditNoteHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/credit-notes"), handler, "document:credit_note")
	}
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	// Inventory batch register
	{
		batchRepo := register_repo.NewBatchRepo(cfg.TxManager)
		batchService := batch.NewService(batchRepo)
		batchHandler := handlers.NewBatchHandler(baseHandler, batchService, batchRepo)

		batchGroup := registers.Group("/batches")
		batchGroup.GET("/availability/:branchId/:medicineId", middleware.RequirePermission("register:batch:read"), batchHandler.GetAvailability)
		batchGroup.GET("/expiring/:branchId", middleware.RequirePermission("register:batch:read"), batchHandler.GetExpiring)
		batchGroup.GET("/movements/:recorderId", middleware.RequirePermission("register:batch:read"), batchHandler.GetMovements)
	}

	// General ledger
	{
		ledgerRepo := register_repo.NewLedgerRepo(cfg.TxManager)
		ledgerService := ledger.NewService(ledgerRepo, cfg.TxManager)
		ledgerHandler := handlers.NewLedgerHandler(baseHandler, ledgerService)

		ledgerGroup := registers.Group("/ledger")
		ledgerGroup.GET("/accounts/:id/statement", middleware.RequirePermission("register:ledger:read"), ledgerHandler.AccountStatement)
		ledgerGroup.GET("/by-document/:type/:docId", middleware.RequirePermission("register:ledger:read"), ledgerHandler.GetByDocument)
		ledgerGroup.POST("/transactions/:id/reverse", middleware.RequirePermission("register:ledger:reverse"), ledgerHandler.Reverse)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo(cfg.TxManager)
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup.GET("/supplier-outstanding", middleware.RequirePermission("report:finance:read"), reportHandler.GetSupplierOutstanding)
	reportsGroup.GET("/gst-input", middleware.RequirePermission("report:finance:read"), reportHandler.GetGSTInputSummary)
	reportsGroup.GET("/expiring-stock", middleware.RequirePermission("report:stock:read"), reportHandler.GetExpiringStock)
	reportsGroup.GET("/document-journal", middleware.RequireAnyPermission("report:documents:read", "report:finance:read"), reportHandler.GetDocumentJournal)
}

// registerApprovalRoutes registers payment approval rule endpoints.
func registerApprovalRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.ApprovalProvider == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewApprovalRuleHandler(baseHandler, cfg.ApprovalProvider)

	group := rg.Group("/approval-rules")
	group.GET("", middleware.RequirePermission("approval:rules:read"), handler.List)
	group.POST("", middleware.RequirePermission("approval:rules:manage"), handler.Save)
	group.DELETE("/:id", middleware.RequirePermission("approval:rules:manage"), handler.Delete)
}

// registerAuditRoutes registers audit trail endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Audit == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewAuditHandler(baseHandler, cfg.Audit)

	rg.GET("/audit/:entityType/:id", middleware.RequirePermission("audit:read"), handler.GetHistory)
}
