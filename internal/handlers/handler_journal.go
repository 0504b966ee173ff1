package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/domain"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/core/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/middleware"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createJournalEntry)
		entries.GET("", h.listJournalEntries)
		entries.GET("/period", h.listJournalEntriesByPeriod)
		entries.GET("/:id", h.getJournalEntry)
		entries.PUT("/:id", h.updateJournalEntry)
		entries.DELETE("/:id", h.deleteJournalEntry)
		entries.GET("/:id/lines", h.getJournalLines)
		entries.POST("/:id/lines", h.addJournalLine)
		entries.GET("/:id/balance", h.validateJournalEntryBalance)
		entries.POST("/:id/post", h.postJournalEntry)
		entries.POST("/:id/reverse", h.reverseJournalEntry)
	}
}

// journalWriteStatus maps a journal service error to an HTTP status.
func journalWriteStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrEntryNotDraft),
		errors.Is(err, services.ErrEntryNotPosted),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrEntryMinLines),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrAccountInactive),
		errors.Is(err, services.ErrLineAccountEmpty),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// createJournalEntry godoc
// @Summary Create a journal entry
// @Description Creates a journal entry with its lines in one atomic operation. Entries created as POSTED must balance exactly.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Entry details"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 422 {object} map[string]string "Debits and credits do not balance"
// @Failure 500 {object} map[string]string "Failed to create journal entry"
// @Router /journal-entries [post]
func (h *journalHandler) createJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("actor", actor))
	logger.Info("Received request to create journal entry", slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.CreateJournalEntry(c.Request.Context(), req, actor)
	if err != nil {
		status := journalWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to create journal entry in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to create journal entry"})
		} else {
			logger.Warn("Rejected journal entry creation", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Journal entry created successfully", slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// getJournalEntry godoc
// @Summary Get a journal entry by ID
// @Description Retrieves a journal entry with its lines
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Router /journal-entries/{id} [get]
func (h *journalHandler) getJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	entry, err := h.journalService.GetJournalEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Journal entry not found", slog.String("entry_id", entryID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else {
			logger.Error("Failed to get journal entry from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// getJournalLines godoc
// @Summary Get the lines of a journal entry
// @Description Retrieves an entry's lines ordered by position
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {array} dto.JournalLineResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve lines"
// @Router /journal-entries/{id}/lines [get]
func (h *journalHandler) getJournalLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	lines, err := h.journalService.GetJournalLines(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else {
			logger.Error("Failed to get journal lines from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal lines"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalLineResponses(lines))
}

// addJournalLine godoc
// @Summary Add a line to a draft journal entry
// @Description Appends one debit or credit line to a DRAFT entry
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   id path string true "Entry ID"
// @Param   line body dto.AddJournalLineRequest true "Line details"
// @Success 201 {object} dto.JournalLineResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to add line"
// @Router /journal-entries/{id}/lines [post]
func (h *journalHandler) addJournalLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	var req dto.AddJournalLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddJournalLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	line, err := h.journalService.AddJournalLine(c.Request.Context(), entryID, req, actor)
	if err != nil {
		status := journalWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to add journal line in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to add journal line"})
		} else {
			logger.Warn("Rejected journal line", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Journal line added successfully", slog.String("entry_id", entryID), slog.String("line_id", line.LineID))
	c.JSON(http.StatusCreated, dto.ToJournalLineResponse(line))
}

// validateJournalEntryBalance godoc
// @Summary Check the balance of a journal entry
// @Description Reports the debit and credit sums of a persisted entry and whether they match exactly
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.BalanceCheckResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to validate entry"
// @Router /journal-entries/{id}/balance [get]
func (h *journalHandler) validateJournalEntryBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	check, err := h.journalService.ValidateJournalEntryBalance(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else {
			logger.Error("Failed to validate journal entry balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate journal entry"})
		}
		return
	}

	c.JSON(http.StatusOK, check)
}

// postJournalEntry godoc
// @Summary Post a draft journal entry
// @Description Transitions a DRAFT entry to POSTED after re-validating its balance
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 422 {object} map[string]string "Debits and credits do not balance"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Router /journal-entries/{id}/post [post]
func (h *journalHandler) postJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("entry_id", entryID), slog.String("actor", actor))
	logger.Info("Received request to post journal entry")

	entry, err := h.journalService.PostJournalEntry(c.Request.Context(), entryID, actor)
	if err != nil {
		status := journalWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to post journal entry in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to post journal entry"})
		} else {
			logger.Warn("Rejected journal entry posting", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Journal entry posted successfully")
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseJournalEntry godoc
// @Summary Reverse a posted journal entry
// @Description Creates a mirrored POSTED entry and marks the original REVERSED
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted or is itself a reversal"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Router /journal-entries/{id}/reverse [post]
func (h *journalHandler) reverseJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("entry_id", entryID), slog.String("actor", actor))
	logger.Info("Received request to reverse journal entry")

	reversing, err := h.journalService.ReverseJournalEntry(c.Request.Context(), entryID, actor)
	if err != nil {
		status := journalWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to reverse journal entry in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to reverse journal entry"})
		} else {
			logger.Warn("Rejected journal entry reversal", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Journal entry reversed successfully", slog.String("reversing_entry_id", reversing.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversing))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Retrieves entries matching date range and status filters, newest first
// @Tags journal
// @Produce  json
// @Param   dateFrom query string false "Start date, inclusive (RFC 3339)"
// @Param   dateTo query string false "End date, exclusive (RFC 3339)"
// @Param   status query string false "Entry status filter (DRAFT, POSTED, REVERSED)"
// @Param   limit query int false "Page size; omit for the full result set"
// @Param   nextToken query string false "Pagination token from a previous response"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /journal-entries [get]
func (h *journalHandler) listJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params, err := parseListJournalEntriesParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.journalService.ListJournalEntries(c.Request.Context(), *params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list journal entries from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list journal entries"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listJournalEntriesByPeriod godoc
// @Summary List journal entries in a calendar period
// @Description Retrieves entries for a year, or a single month when month is given
// @Tags journal
// @Produce  json
// @Param   year query int true "Calendar year"
// @Param   month query int false "Calendar month (1-12); omit for the whole year"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /journal-entries/period [get]
func (h *journalHandler) listJournalEntriesByPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing year"})
		return
	}
	month := 0
	if monthParam := c.Query("month"); monthParam != "" {
		month, err = strconv.Atoi(monthParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return
		}
	}

	resp, err := h.journalService.ListJournalEntriesByPeriod(c.Request.Context(), year, month)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list journal entries by period", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list journal entries"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateJournalEntry godoc
// @Summary Update a draft journal entry
// @Description Updates the date and memo of a DRAFT entry
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   id path string true "Entry ID"
// @Param   entry body dto.UpdateJournalEntryRequest true "Fields to update"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to update entry"
// @Router /journal-entries/{id} [put]
func (h *journalHandler) updateJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	var req dto.UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	entry, err := h.journalService.UpdateJournalEntry(c.Request.Context(), entryID, req, actor)
	if err != nil {
		status := journalWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to update journal entry in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to update journal entry"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Journal entry updated successfully", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteJournalEntry godoc
// @Summary Delete a draft journal entry
// @Description Removes a DRAFT entry and its lines; posted entries can only be reversed
// @Tags journal
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 204 "Entry deleted"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to delete entry"
// @Router /journal-entries/{id} [delete]
func (h *journalHandler) deleteJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("id")

	if err := h.journalService.DeleteJournalEntry(c.Request.Context(), entryID); err != nil {
		status := journalWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to delete journal entry in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to delete journal entry"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Journal entry deleted successfully", slog.String("entry_id", entryID))
	c.Status(http.StatusNoContent)
}

// parseListJournalEntriesParams reads the listing filters from the query string.
func parseListJournalEntriesParams(c *gin.Context) (*dto.ListJournalEntriesParams, error) {
	params := dto.ListJournalEntriesParams{}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		t, err := time.Parse(time.RFC3339, dateFrom)
		if err != nil {
			return nil, errors.New("invalid dateFrom, expected RFC 3339")
		}
		params.DateFrom = &t
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		t, err := time.Parse(time.RFC3339, dateTo)
		if err != nil {
			return nil, errors.New("invalid dateTo, expected RFC 3339")
		}
		params.DateTo = &t
	}
	if statusParam := c.Query("status"); statusParam != "" {
		s := domain.EntryStatus(statusParam)
		if !domain.ValidEntryStatus(s) {
			return nil, errors.New("invalid status: " + statusParam)
		}
		params.Status = &s
	}
	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			return nil, errors.New("invalid limit")
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	return &params, nil
}
