package http

import (
	"context"
	"errors"
	"strconv"

	"dcaportfolio/internal/engine"
	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/exchange/threecommas/rest"
	"dcaportfolio/internal/logger"
	"dcaportfolio/internal/models"
	"dcaportfolio/internal/store"
	"dcaportfolio/pkg/response"

	"github.com/gin-gonic/gin"
)

// Syncer runs remote work on the engine goroutine.
type Syncer interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	RunPass(ctx context.Context, mode models.SyncMode, pageSize int) (engine.PassReport, error)
	AccountSummary(ctx context.Context, creds models.Credentials) ([]models.AccountSummary, error)
	GetDealOrders(ctx context.Context, profile models.Profile, dealID int64) ([]models.MarketOrder, error)
	ResetProfileData(ctx context.Context, profileID string) error
}

// Reader serves persisted rows.
type Reader interface {
	Bots(ctx context.Context, profileID string) ([]models.Bot, error)
	Deals(ctx context.Context, profileID string, status store.DealStatus) ([]models.Deal, error)
	AccountRows(ctx context.Context, profileID string) ([]models.AccountRow, error)
	Metrics(ctx context.Context, profileID string) (store.Metrics, error)
	BotPerformance(ctx context.Context, profileID string) ([]store.BotPerformance, error)
}

type Handler struct {
	profile models.Profile
	syncer  Syncer
	reader  Reader
	log     *logger.Logger
}

func NewHandler(profile models.Profile, syncer Syncer, reader Reader, log *logger.Logger) *Handler {
	return &Handler{
		profile: profile,
		syncer:  syncer,
		reader:  reader,
		log:     log,
	}
}

type syncRequest struct {
	Mode     models.SyncMode `json:"mode" binding:"omitempty,oneof=autoSync full"`
	PageSize int             `json:"page_size" binding:"omitempty,min=1,max=1000"`
}

type credentialsRequest struct {
	Key    string `json:"key" binding:"required"`
	Secret string `json:"secret" binding:"required"`
	Mode   string `json:"mode" binding:"required,oneof=paper real"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bots", h.GetBots)
	rg.GET("/bots/performance", h.GetBotPerformance)
	rg.GET("/deals", h.GetDeals)
	rg.GET("/deals/:id/orders", h.GetDealOrders)
	rg.GET("/accounts", h.GetAccounts)
	rg.GET("/accounts/summary", h.GetAccountSummary)
	rg.POST("/accounts/summary", h.CheckAccountSummary)
	rg.GET("/metrics", h.GetMetrics)
	rg.POST("/sync", h.Sync)
	rg.DELETE("/data", h.DeleteData)
}

// GET /api/v1/bots
func (h *Handler) GetBots(c *gin.Context) {
	bots, err := h.reader.Bots(c.Request.Context(), h.profile.ID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, bots)
}

// GET /api/v1/bots/performance
func (h *Handler) GetBotPerformance(c *gin.Context) {
	perf, err := h.reader.BotPerformance(c.Request.Context(), h.profile.ID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, perf)
}

// GET /api/v1/deals?status=open|closed
func (h *Handler) GetDeals(c *gin.Context) {
	status, err := store.ParseDealStatus(c.Query("status"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	deals, err := h.reader.Deals(c.Request.Context(), h.profile.ID, status)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, deals)
}

// GET /api/v1/accounts
func (h *Handler) GetAccounts(c *gin.Context) {
	rows, err := h.reader.AccountRows(c.Request.Context(), h.profile.ID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, rows)
}

// GET /api/v1/metrics
func (h *Handler) GetMetrics(c *gin.Context) {
	m, err := h.reader.Metrics(c.Request.Context(), h.profile.ID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, m)
}

// POST /api/v1/sync
func (h *Handler) Sync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	if req.Mode == "" {
		req.Mode = models.SyncModeAuto
	}

	var report engine.PassReport
	err := h.syncer.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		report, err = h.syncer.RunPass(ctx, req.Mode, req.PageSize)
		return err
	})
	if err != nil {
		h.remoteError(c, err)
		return
	}
	response.Success(c, report)
}

// GET /api/v1/accounts/summary
func (h *Handler) GetAccountSummary(c *gin.Context) {
	h.accountSummary(c, h.profile.Credentials)
}

// POST /api/v1/accounts/summary checks keys before they are saved to the config.
func (h *Handler) CheckAccountSummary(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.accountSummary(c, models.Credentials{Key: req.Key, Secret: req.Secret, Mode: req.Mode})
}

func (h *Handler) accountSummary(c *gin.Context, creds models.Credentials) {
	var accounts []models.AccountSummary
	err := h.syncer.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		accounts, err = h.syncer.AccountSummary(ctx, creds)
		return err
	})
	if err != nil {
		h.remoteError(c, err)
		return
	}
	response.Success(c, accounts)
}

// GET /api/v1/deals/:id/orders
func (h *Handler) GetDealOrders(c *gin.Context) {
	dealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || dealID <= 0 {
		response.BadRequest(c, "Некорректный id сделки.")
		return
	}

	var orders []models.MarketOrder
	err = h.syncer.Do(c.Request.Context(), func(ctx context.Context) error {
		var err error
		orders, err = h.syncer.GetDealOrders(ctx, h.profile, dealID)
		return err
	})
	if err != nil {
		h.remoteError(c, err)
		return
	}
	response.Success(c, orders)
}

// DELETE /api/v1/data runs on the engine goroutine so it never interleaves with a pass.
func (h *Handler) DeleteData(c *gin.Context) {
	err := h.syncer.Do(c.Request.Context(), func(ctx context.Context) error {
		return h.syncer.ResetProfileData(ctx, h.profile.ID)
	})
	if err != nil {
		h.remoteError(c, err)
		return
	}
	response.Success(c, gin.H{"profile_id": h.profile.ID})
}

func (h *Handler) remoteError(c *gin.Context, err error) {
	h.log.WithProfile(h.profile.ID).WithError(err).WithField("path", c.FullPath()).Warn("Операция движка завершилась с ошибкой.")

	var apiErr *rest.APIError
	switch {
	case errors.Is(err, exchange.ErrMissingCredentials):
		response.BadRequest(c, err.Error())
	case errors.Is(err, engine.ErrEngineStopped):
		response.ServiceUnavailable(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		response.GatewayTimeout(c, err.Error())
	case errors.As(err, &apiErr):
		response.BadGateway(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
