package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reactbank/reactbank/internal/app"
	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/rates"
	"github.com/reactbank/reactbank/internal/receipt"
	"github.com/reactbank/reactbank/internal/receiptlog"
	"github.com/reactbank/reactbank/internal/selection"
	"github.com/reactbank/reactbank/internal/transactions"
)

type handler struct {
	app *app.App
}

type currencyView struct {
	Code   currency.Code `json:"code"`
	Label  string        `json:"label"`
	Symbol string        `json:"symbol"`
	IsBase bool          `json:"is_base"`
}

type selectRequest struct {
	Code string `json:"code" binding:"required"`
}

type selectionView struct {
	selection.Snapshot
	State string `json:"state"`
}

func viewOf(s selection.Snapshot) selectionView {
	return selectionView{Snapshot: s, State: s.State().String()}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) listCurrencies(c *gin.Context) {
	all := currency.Supported()
	out := make([]currencyView, len(all))
	for i, cur := range all {
		out[i] = currencyView{Code: cur.Code, Label: cur.Label, Symbol: cur.Symbol, IsBase: cur.Code.IsBase()}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getCurrency(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(h.app.Store.Snapshot()))
}

func (h *handler) selectCurrency(c *gin.Context) {
	logger := loggerFrom(c)

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid currency request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if !h.doSelect(c, req.Code) {
		return
	}
	c.JSON(http.StatusOK, viewOf(h.app.Store.Snapshot()))
}

// doSelect writes the error response itself and reports whether the caller
// should continue.
func (h *handler) doSelect(c *gin.Context, raw string) bool {
	logger := loggerFrom(c)

	code, err := currency.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}

	err = h.app.Store.Select(c.Request.Context(), code)
	var fetchErr *rates.RateFetchError
	switch {
	case err == nil:
		return true
	case errors.Is(err, selection.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "selection": viewOf(h.app.Store.Snapshot())})
	case errors.As(err, &fetchErr):
		logger.Warn("rate fetch failed", slog.String("currency", code.String()), slog.Any("error", fetchErr.Err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fetchErr.Message, "selection": viewOf(h.app.Store.Snapshot())})
	default:
		logger.Error("currency selection failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select currency"})
	}
	return false
}

// listTransactions renders in the selected currency, or in ?currency= for
// this response only.
func (h *handler) listTransactions(c *gin.Context) {
	raw := c.Query("currency")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{
			"summary":      h.app.Summary(),
			"transactions": h.app.List(),
		})
		return
	}

	code, err := currency.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, list, err := h.app.ViewIn(c.Request.Context(), code)
	var fetchErr *rates.RateFetchError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"summary": summary, "transactions": list})
	case errors.As(err, &fetchErr):
		loggerFrom(c).Warn("rate fetch failed", slog.String("currency", code.String()), slog.Any("error", fetchErr.Err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fetchErr.Message})
	default:
		loggerFrom(c).Error("listing transactions failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
	}
}

func (h *handler) refreshTransactions(c *gin.Context) {
	if err := h.app.Transactions.Refresh(c.Request.Context()); err != nil {
		loggerFrom(c).Warn("refresh aborted", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Refresh aborted"})
		return
	}
	c.JSON(http.StatusOK, h.app.Summary())
}

func (h *handler) getTransaction(c *gin.Context) {
	refID := c.Param("refId")
	for _, v := range h.app.List() {
		if v.RefID == refID {
			c.JSON(http.StatusOK, v)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
}

func (h *handler) getReceipt(c *gin.Context) {
	logger := loggerFrom(c)

	rc, err := h.app.Receipt(c.Param("refId"))
	if errors.Is(err, transactions.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	if err != nil {
		logger.Error("building receipt", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": receipt.ShareFailedMessage})
		return
	}

	rd, err := h.app.Receipts.Renderer(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType := "text/plain; charset=utf-8"
	if rd.Format() == "json" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	if err := h.app.Receipts.Share(c.Writer, rc, rd.Format(), "api"); err != nil {
		logger.Error("sharing receipt", slog.String("action", string(receiptlog.ActionShare)), slog.Any("error", err))
	}
}
