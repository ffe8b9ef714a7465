package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clearledger/server/internal/cqrs"
	"github.com/clearledger/server/internal/middleware"
	"github.com/clearledger/server/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(ctx context.Context, cmd cqrs.CreateTransactionCommand) (*models.TransactionView, error)
	UpdateTransaction(ctx context.Context, cmd cqrs.UpdateTransactionCommand) (*models.TransactionView, error)
	DeleteTransaction(ctx context.Context, cmd cqrs.DeleteTransactionCommand) error
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) (*models.TransactionPage, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

type CreateTransactionRequest struct {
	LedgerID        string `json:"ledgerId" validate:"required"`
	Amount          int64  `json:"amount" validate:"required"`
	Description     string `json:"description"`
	TransactionDate string `json:"transactionDate" validate:"required"`
}

type UpdateTransactionRequest struct {
	LedgerID        string  `json:"ledgerId" validate:"required"`
	Amount          *int64  `json:"amount"`
	Description     *string `json:"description"`
	TransactionDate string  `json:"transactionDate" validate:"required"`
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	currentUser, _ := middleware.GetCurrentUser(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.CreateTransaction(c.Request.Context(), cqrs.CreateTransactionCommand{
		LedgerID:        req.LedgerID,
		UserID:          currentUser.ID,
		Username:        currentUser.Username,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
	})
	if err != nil {
		respondWithTransactionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	transactionID := c.Param("transactionId")
	currentUser, _ := middleware.GetCurrentUser(c)

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateTransaction(c.Request.Context(), cqrs.UpdateTransactionCommand{
		ID:              transactionID,
		LedgerID:        req.LedgerID,
		UserID:          currentUser.ID,
		Username:        currentUser.Username,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
	})
	if err != nil {
		respondWithTransactionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID := c.Param("transactionId")
	currentUser, _ := middleware.GetCurrentUser(c)

	err := h.commands.DeleteTransaction(c.Request.Context(), cqrs.DeleteTransactionCommand{
		ID:     transactionID,
		UserID: currentUser.ID,
	})
	if err != nil {
		respondWithTransactionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	ledgerID := c.Param("ledgerId")
	currentUser, _ := middleware.GetCurrentUser(c)

	page, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{
		LedgerID: ledgerID,
		UserID:   currentUser.ID,
		PageNum:  parsePageNum(c),
		PageSize: parsePageSize(c),
	})
	if err != nil {
		respondWithTransactionError(c, err)
		return
	}

	if page.Records == nil {
		page.Records = []models.TransactionView{}
	}
	c.JSON(http.StatusOK, page)
}

func respondWithTransactionError(c *gin.Context, err error) {
	switch err.Error() {
	case "ledger not found":
		middleware.RespondWithError(c, http.StatusNotFound, "Ledger not found")
	case "transaction not found":
		middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
	case "forbidden":
		middleware.RespondWithError(c, http.StatusForbidden, "You do not have permission to act on this ledger")
	case "invalid transaction date":
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction date")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to process transaction")
	}
}

func parsePageNum(c *gin.Context) int {
	page, _ := strconv.Atoi(c.Query("page"))
	if page <= 0 {
		page = 1
	}
	return page
}

func parsePageSize(c *gin.Context) int {
	size, _ := strconv.Atoi(c.Query("size"))
	switch {
	case size > maxPageSize:
		size = maxPageSize
	case size <= 0:
		size = defaultPageSize
	}
	return size
}
