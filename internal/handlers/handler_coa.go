package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
	"github.com/orsa-labs/coa_ledger/internal/dto"
	"github.com/orsa-labs/coa_ledger/internal/middleware"
)

// coaHandler handles HTTP requests against the chart of accounts.
type coaHandler struct {
	coa portssvc.CoaSvcFacade
}

func newCoaHandler(coa portssvc.CoaSvcFacade) *coaHandler {
	return &coaHandler{coa: coa}
}

// registerCoaRoutes registers the privileged chart-of-accounts routes.
func registerCoaRoutes(rg *gin.RouterGroup, coa portssvc.CoaSvcFacade) {
	h := newCoaHandler(coa)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccounts)
		accounts.GET("", h.getAccountsByIDs)
		accounts.GET("/balances", h.getAccountsWithBalances)
		accounts.GET("/:id/journal-entries", h.getJournalEntriesByAccountID)
		accounts.POST("/deactivate", h.deactivateAccounts)
		accounts.POST("/reactivate", h.reactivateAccounts)
		accounts.POST("/delete", h.deleteAccounts)
	}
	rg.GET("/owners/:ownerID/accounts", h.getAccountsByOwnerID)
	rg.POST("/journal-entries", h.createJournalEntries)
	rg.GET("/currencies", h.getActiveCurrencies)
}

// registerInternalCoaRoutes registers the unauthenticated internal surface.
func registerInternalCoaRoutes(rg *gin.RouterGroup, coa portssvc.CoaSvcFacade) {
	h := newCoaHandler(coa)
	rg.GET("/accounts/by-types", h.getAccountsByTypes)
}

func (h *coaHandler) createAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var requests []dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		logger.Warn("Failed to bind JSON for createAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	results, err := h.coa.CreateAccounts(c.Request.Context(), requests)
	if err != nil {
		// partial completion persisted part of the batch; report both the
		// created items and the failure
		if errors.Is(err, apperrors.ErrPartialCreation) {
			logger.Error("Account batch partially created", slog.Int("created", len(results)))
			c.JSON(http.StatusMultiStatus, gin.H{"error": err.Error(), "accounts": results})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"accounts": results})
}

func (h *coaHandler) createJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var requests []dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		logger.Warn("Failed to bind JSON for createJournalEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ids, err := h.coa.CreateJournalEntries(c.Request.Context(), requests)
	if err != nil {
		if errors.Is(err, apperrors.ErrPartialCreation) {
			logger.Error("Journal entry batch partially created", slog.Int("created", len(ids)))
			c.JSON(http.StatusMultiStatus, gin.H{"error": err.Error(), "ids": ids})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateJournalEntriesResponse{IDs: ids})
}

func (h *coaHandler) getAccountsByIDs(c *gin.Context) {
	ids := splitQueryList(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	accounts, err := h.coa.GetCoaAccountsByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListCoaAccountResponse(accounts)})
}

func (h *coaHandler) getAccountsByOwnerID(c *gin.Context) {
	accounts, err := h.coa.GetCoaAccountsByOwnerID(c.Request.Context(), c.Param("ownerID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListCoaAccountResponse(accounts)})
}

func (h *coaHandler) getAccountsByTypes(c *gin.Context) {
	raw := splitQueryList(c.Query("types"))
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "types query parameter is required"})
		return
	}
	types := make([]domain.AccountType, len(raw))
	for i, t := range raw {
		types[i] = domain.AccountType(t)
	}

	accounts, err := h.coa.GetCoaAccountsByTypes(c.Request.Context(), types)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListCoaAccountResponse(accounts)})
}

func (h *coaHandler) getAccountsWithBalances(c *gin.Context) {
	ids := splitQueryList(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	accounts, err := h.coa.GetAccountsByIDs(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToListAccountWithBalancesResponse(accounts)})
}

func (h *coaHandler) getJournalEntriesByAccountID(c *gin.Context) {
	entries, err := h.coa.GetJournalEntriesByAccountID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journalEntries": dto.ToListJournalEntryResponse(entries)})
}

func (h *coaHandler) getActiveCurrencies(c *gin.Context) {
	currencies := h.coa.GetCoaActiveCurrencies()
	c.JSON(http.StatusOK, gin.H{"currencies": dto.ToListCurrencyResponse(currencies)})
}

func (h *coaHandler) deactivateAccounts(c *gin.Context) {
	h.transitionAccounts(c, h.coa.DeactivateAccountsByIDs)
}

func (h *coaHandler) reactivateAccounts(c *gin.Context) {
	h.transitionAccounts(c, h.coa.ReactivateAccountsByIDs)
}

func (h *coaHandler) deleteAccounts(c *gin.Context) {
	h.transitionAccounts(c, h.coa.DeleteAccountsByIDs)
}

func (h *coaHandler) transitionAccounts(c *gin.Context, op func(ctx context.Context, ids []string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AccountIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for account transition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := op(c.Request.Context(), req.IDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func splitQueryList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
