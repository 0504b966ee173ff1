package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmaledger/pharma_ledger_app/internal/apperrors"
	portssvc "github.com/pharmaledger/pharma_ledger_app/internal/core/ports/services"
	"github.com/pharmaledger/pharma_ledger_app/internal/dto"
	"github.com/pharmaledger/pharma_ledger_app/internal/middleware"
)

// paymentHandler handles HTTP requests related to customer payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// registerPaymentRoutes registers routes related to customer payments.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.createPayment)
		payments.GET("", h.listPayments)
		payments.GET("/:id", h.getPayment)
		payments.PUT("/:id", h.updatePayment)
		payments.DELETE("/:id", h.deletePayment)
		payments.GET("/:id/allocations", h.getAllocations)
		payments.POST("/:id/allocations", h.createAllocation)
	}
}

// paymentWriteStatus maps a payment service error to an HTTP status.
func paymentWriteStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrOverAllocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// createPayment godoc
// @Summary Record a customer payment
// @Description Records a new incoming customer payment
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.CreateCustomerPaymentRequest true "Payment details"
// @Success 201 {object} dto.CustomerPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Router /payments [post]
func (h *paymentHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCustomerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("actor", actor))
	logger.Info("Received request to record payment", slog.String("customer_id", req.CustomerID))

	payment, err := h.paymentService.CreateCustomerPayment(c.Request.Context(), req, actor)
	if err != nil {
		status := paymentWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to record payment in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to record payment"})
		} else {
			logger.Warn("Rejected payment", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Payment recorded successfully", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToCustomerPaymentResponse(payment))
}

// getPayment godoc
// @Summary Get a payment by ID
// @Description Retrieves a payment with its allocations
// @Tags payments
// @Produce  json
// @Param   id path string true "Payment ID"
// @Success 200 {object} dto.CustomerPaymentResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 500 {object} map[string]string "Failed to retrieve payment"
// @Router /payments/{id} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	payment, err := h.paymentService.GetCustomerPayment(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Payment not found", slog.String("payment_id", paymentID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to get payment from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerPaymentResponse(payment))
}

// listPayments godoc
// @Summary List customer payments
// @Description Retrieves payments matching customer and date filters, newest first
// @Tags payments
// @Produce  json
// @Param   customerID query string false "Customer filter"
// @Param   dateFrom query string false "Start date (RFC 3339)"
// @Param   dateTo query string false "End date (RFC 3339)"
// @Success 200 {object} dto.ListCustomerPaymentsResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListCustomerPaymentsParams{}
	if customerID := c.Query("customerID"); customerID != "" {
		params.CustomerID = &customerID
	}
	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		t, err := time.Parse(time.RFC3339, dateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateFrom, expected RFC 3339"})
			return
		}
		params.DateFrom = &t
	}
	if dateTo := c.Query("dateTo"); dateTo != "" {
		t, err := time.Parse(time.RFC3339, dateTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateTo, expected RFC 3339"})
			return
		}
		params.DateTo = &t
	}

	payments, err := h.paymentService.ListCustomerPayments(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list payments from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}

	c.JSON(http.StatusOK, dto.ListCustomerPaymentsResponse{Payments: dto.ToCustomerPaymentResponses(payments)})
}

// createAllocation godoc
// @Summary Allocate part of a payment
// @Description Allocates part of a payment to a journal entry. The allocation total can never exceed the payment amount.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   id path string true "Payment ID"
// @Param   allocation body dto.CreatePaymentAllocationRequest true "Allocation details"
// @Success 201 {object} dto.PaymentAllocationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Payment or target entry not found"
// @Failure 422 {object} map[string]string "Allocation would exceed the payment amount"
// @Failure 500 {object} map[string]string "Failed to create allocation"
// @Router /payments/{id}/allocations [post]
func (h *paymentHandler) createAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	var req dto.CreatePaymentAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAllocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	logger = logger.With(slog.String("payment_id", paymentID), slog.String("actor", actor))
	logger.Info("Received request to allocate payment", slog.String("target_entry_id", req.TargetEntryID))

	allocation, err := h.paymentService.CreatePaymentAllocation(c.Request.Context(), paymentID, req, actor)
	if err != nil {
		status := paymentWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to create allocation in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to create allocation"})
		} else {
			logger.Warn("Rejected allocation", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Allocation created successfully", slog.String("allocation_id", allocation.AllocationID))
	c.JSON(http.StatusCreated, dto.ToPaymentAllocationResponse(allocation))
}

// getAllocations godoc
// @Summary List the allocations of a payment
// @Description Retrieves all allocations for a payment, oldest first
// @Tags payments
// @Produce  json
// @Param   id path string true "Payment ID"
// @Success 200 {array} dto.PaymentAllocationResponse
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 500 {object} map[string]string "Failed to retrieve allocations"
// @Router /payments/{id}/allocations [get]
func (h *paymentHandler) getAllocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	allocations, err := h.paymentService.GetPaymentAllocations(c.Request.Context(), paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to get allocations from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve allocations"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentAllocationResponses(allocations))
}

// updatePayment godoc
// @Summary Update a payment
// @Description Updates a payment's date, amount or reference. The amount can never drop below the allocated total.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   id path string true "Payment ID"
// @Param   payment body dto.UpdateCustomerPaymentRequest true "Fields to update"
// @Success 200 {object} dto.CustomerPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Amount below allocated total"
// @Failure 500 {object} map[string]string "Failed to update payment"
// @Router /payments/{id} [put]
func (h *paymentHandler) updatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	var req dto.UpdateCustomerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorFromContext(c)
	payment, err := h.paymentService.UpdateCustomerPayment(c.Request.Context(), paymentID, req, actor)
	if err != nil {
		status := paymentWriteStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to update payment in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to update payment"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Payment updated successfully", slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, dto.ToCustomerPaymentResponse(payment))
}

// deletePayment godoc
// @Summary Delete a payment
// @Description Removes a payment and all of its allocations
// @Tags payments
// @Produce  json
// @Param   id path string true "Payment ID"
// @Success 204 "Payment deleted"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 500 {object} map[string]string "Failed to delete payment"
// @Router /payments/{id} [delete]
func (h *paymentHandler) deletePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	if err := h.paymentService.DeleteCustomerPayment(c.Request.Context(), paymentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to delete payment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment"})
		}
		return
	}

	logger.Info("Payment deleted successfully", slog.String("payment_id", paymentID))
	c.Status(http.StatusNoContent)
}
