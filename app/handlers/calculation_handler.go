package handlers

import (
	"context"
	"log"
	"time"

	"github.com/fbopoint/feesched/app/dto"
	"github.com/fbopoint/feesched/app/middleware"
	businessflow "github.com/fbopoint/feesched/business_flow"
	"github.com/fbopoint/feesched/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CalculationHandlerInterface defines the fee calculation endpoint.
type CalculationHandlerInterface interface {
	CalculateFees(c fiber.Ctx) error
}

// CalculationHandler implements the fee calculation endpoint.
type CalculationHandler struct {
	flow      businessflow.FeeCalculationFlow
	validator *validator.Validate
}

func NewCalculationHandler(flow businessflow.FeeCalculationFlow) CalculationHandlerInterface {
	return &CalculationHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CalculationHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *CalculationHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CalculateFees runs the fee calculation pipeline for a fueling transaction.
// @Summary Calculate Fees
// @Description Calculate fuel, fee, waiver, and tax line items for a fueling transaction
// @Tags Calculations
// @Accept json
// @Produce json
// @Param request body dto.CalculateFeesRequest true "Calculation payload"
// @Success 200 {object} dto.APIResponse{data=dto.CalculateFeesResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Unknown aircraft, customer, or fee code"
// @Failure 500 {object} dto.APIResponse "Calculation failed"
// @Router /api/v1/billing/calculate [post]
func (h *CalculationHandler) CalculateFees(c fiber.Ctx) error {
	var req dto.CalculateFeesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.CalculateFees(h.createRequestContext(c, "/api/v1/billing/calculate"), &req)
	if err != nil {
		middleware.ObserveFeeCalculation(false)
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid calculation input", "CALCULATION_INVALID", err.Error())
		}
		if businessflow.IsReferenceError(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Referenced entity not found", "CALCULATION_REFERENCE_NOT_FOUND", err.Error())
		}
		log.Println("Fee calculation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Fee calculation failed", "CALCULATION_FAILED", nil)
	}

	middleware.ObserveFeeCalculation(true)
	return h.SuccessResponse(c, fiber.StatusOK, "Calculation completed", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *CalculationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
