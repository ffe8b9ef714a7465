package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/middleware"
	"github.com/clearledger/server/internal/models"
)

// LedgerCommander defines the write-side operations used by LedgerHandler.
type LedgerCommander interface {
	CreateLedger(ctx context.Context, cmd cqrs.CreateLedgerCommand) (*models.Ledger, error)
	JoinLedger(ctx context.Context, cmd cqrs.JoinLedgerCommand) error
}

// LedgerQuerier defines the read-side operations used by LedgerHandler.
type LedgerQuerier interface {
	ListLedgers(ctx context.Context, q cqrs.ListLedgersQuery) ([]models.Ledger, error)
	GetLedgerStats(ctx context.Context, q cqrs.LedgerStatsQuery) (*models.LedgerStats, error)
}

type LedgerHandler struct {
	commands LedgerCommander
	queries  LedgerQuerier
}

func NewLedgerHandler(commands LedgerCommander, queries LedgerQuerier) *LedgerHandler {
	return &LedgerHandler{commands: commands, queries: queries}
}

type CreateLedgerRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"max=256"`
}

type ListLedgersResponse struct {
	Ledgers []models.Ledger `json:"ledgers"`
}

func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	currentUser, _ := middleware.GetCurrentUser(c)

	var req CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	ledger, err := h.commands.CreateLedger(c.Request.Context(), cqrs.CreateLedgerCommand{
		UserID:      currentUser.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create ledger")
		return
	}

	c.JSON(http.StatusCreated, ledger)
}

func (h *LedgerHandler) ListLedgers(c *gin.Context) {
	currentUser, _ := middleware.GetCurrentUser(c)

	ledgers, err := h.queries.ListLedgers(c.Request.Context(), cqrs.ListLedgersQuery{UserID: currentUser.ID})
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list ledgers")
		return
	}
	if ledgers == nil {
		ledgers = []models.Ledger{}
	}
	c.JSON(http.StatusOK, ListLedgersResponse{Ledgers: ledgers})
}

func (h *LedgerHandler) JoinLedger(c *gin.Context) {
	ledgerID := c.Param("ledgerId")
	currentUser, _ := middleware.GetCurrentUser(c)

	err := h.commands.JoinLedger(c.Request.Context(), cqrs.JoinLedgerCommand{
		UserID:   currentUser.ID,
		LedgerID: ledgerID,
	})
	if err != nil {
		if err.Error() == "ledger not found" {
			middleware.RespondWithError(c, http.StatusNotFound, "Ledger not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to join ledger")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) GetLedgerStats(c *gin.Context) {
	ledgerID := c.Param("ledgerId")
	currentUser, _ := middleware.GetCurrentUser(c)

	stats, err := h.queries.GetLedgerStats(c.Request.Context(), cqrs.LedgerStatsQuery{
		LedgerID: ledgerID,
		UserID:   currentUser.ID,
	})
	if err != nil {
		switch err.Error() {
		case "ledger not found":
			middleware.RespondWithError(c, http.StatusNotFound, "Ledger not found")
		case "forbidden":
			middleware.RespondWithError(c, http.StatusForbidden, "You are not a member of this ledger")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get ledger stats")
		}
		return
	}

	c.JSON(http.StatusOK, stats)
}
