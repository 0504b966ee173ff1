package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/middleware"
	"github.com/pharmaledger/pharma_ledger_app/internal/utils/accounting"
)

// reportingHandler handles HTTP requests for the financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/account-activity", h.getAccountActivity)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
		reports.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// parsePeriodWindow reads year/month query params and derives the report window.
func parsePeriodWindow(c *gin.Context) (time.Time, time.Time, error) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid or missing year")
	}
	month := 0
	if monthParam := c.Query("month"); monthParam != "" {
		month, err = strconv.Atoi(monthParam)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid month")
		}
	}
	return accounting.PeriodWindow(year, month)
}

// getAccountActivity godoc
// @Summary Account activity report
// @Description Sums non-draft debits and credits per account over a calendar period
// @Tags reports
// @Produce  json
// @Param   year query int true "Calendar year"
// @Param   month query int false "Calendar month (1-12); omit for the whole year"
// @Success 200 {object} dto.AccountActivityResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/account-activity [get]
func (h *reportingHandler) getAccountActivity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parsePeriodWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.reportingService.AccountActivity(c.Request.Context(), from, to)
	if err != nil {
		logger.Error("Failed to generate account activity report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, dto.AccountActivityResponse{Rows: dto.ToAccountActivityRowResponses(rows)})
}

// getProfitAndLoss godoc
// @Summary Profit and loss report
// @Description Generates a profit and loss summary over a calendar period
// @Tags reports
// @Produce  json
// @Param   year query int true "Calendar year"
// @Param   month query int false "Calendar month (1-12); omit for the whole year"
// @Success 200 {object} domain.PAndLReport
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, err := parsePeriodWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		logger.Error("Failed to generate profit and loss report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Balance sheet report
// @Description Generates a balance sheet snapshot as of a date; defaults to today
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Snapshot date (RFC 3339); defaults to now"
// @Success 200 {object} domain.BalanceSheetReport
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf := time.Now().UTC()
	if asOfParam := c.Query("asOf"); asOfParam != "" {
		t, err := time.Parse(time.RFC3339, asOfParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asOf, expected RFC 3339"})
			return
		}
		asOf = t
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to generate balance sheet report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.JSON(http.StatusOK, report)
}
