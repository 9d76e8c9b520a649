package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/fbopoint/feesched/app/dto"
	businessflow "github.com/fbopoint/feesched/business_flow"
	"github.com/fbopoint/feesched/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// FeeScheduleHandlerInterface defines the admin endpoints for fee schedule configuration.
type FeeScheduleHandlerInterface interface {
	ListClassifications(c fiber.Ctx) error
	CreateClassification(c fiber.Ctx) error
	UpdateClassification(c fiber.Ctx) error
	DeleteClassification(c fiber.Ctx) error

	ListAircraftTypes(c fiber.Ctx) error
	CreateAircraftType(c fiber.Ctx) error
	UpdateAircraftType(c fiber.Ctx) error
	DeleteAircraftType(c fiber.Ctx) error

	ListFeeRules(c fiber.Ctx) error
	CreateFeeRule(c fiber.Ctx) error
	UpdateFeeRule(c fiber.Ctx) error
	DeleteFeeRule(c fiber.Ctx) error

	ListOverrides(c fiber.Ctx) error
	CreateOverride(c fiber.Ctx) error
	UpdateOverride(c fiber.Ctx) error
	DeleteOverride(c fiber.Ctx) error

	ListWaiverTiers(c fiber.Ctx) error
	CreateWaiverTier(c fiber.Ctx) error
	UpdateWaiverTier(c fiber.Ctx) error
	DeleteWaiverTier(c fiber.Ctx) error
	ReorderWaiverTiers(c fiber.Ctx) error
}

// FeeScheduleHandler implements the admin configuration endpoints.
type FeeScheduleHandler struct {
	flow      businessflow.FeeScheduleFlow
	validator *validator.Validate
}

func NewFeeScheduleHandler(flow businessflow.FeeScheduleFlow) FeeScheduleHandlerInterface {
	return &FeeScheduleHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *FeeScheduleHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *FeeScheduleHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// flowErrorResponse maps business flow errors to HTTP status codes:
// validation problems are 400, missing references 404, in-use and store
// conflicts 409, everything else 500.
func (h *FeeScheduleHandler) flowErrorResponse(c fiber.Ctx, err error, action string) error {
	var businessErr *businessflow.BusinessError
	code := "FEE_SCHEDULE_ERROR"
	if errors.As(err, &businessErr) {
		code = businessErr.Code
	}
	switch {
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", code, err.Error())
	case businessflow.IsClassificationInUse(err), businessflow.IsAircraftTypeInUse(err), businessflow.IsFeeRuleInUse(err), businessflow.IsConfigurationConflict(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Configuration conflict", code, err.Error())
	case businessflow.IsReferenceError(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Referenced entity not found", code, err.Error())
	default:
		log.Printf("%s failed: %v", action, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, action+" failed", code, nil)
	}
}

func (h *FeeScheduleHandler) bindAndValidate(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	return nil
}

func (h *FeeScheduleHandler) pathID(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid id in path", "INVALID_ID", nil)
	}
	return uint(id), nil
}

func (h *FeeScheduleHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// ListClassifications lists aircraft classifications.
// @Summary List Classifications (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.ClassificationItem}
// @Router /api/v1/admin/classifications [get]
func (h *FeeScheduleHandler) ListClassifications(c fiber.Ctx) error {
	classifications, err := h.flow.ListClassifications(h.createRequestContext(c, "/api/v1/admin/classifications"))
	if err != nil {
		return h.flowErrorResponse(c, err, "List classifications")
	}
	items := make([]dto.ClassificationItem, 0, len(classifications))
	for _, classification := range classifications {
		items = append(items, toClassificationItem(classification))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Classifications retrieved", items)
}

// CreateClassification creates an aircraft classification.
// @Summary Create Classification (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateClassificationRequest true "Classification payload"
// @Success 201 {object} dto.APIResponse{data=dto.ClassificationItem}
// @Router /api/v1/admin/classifications [post]
func (h *FeeScheduleHandler) CreateClassification(c fiber.Ctx) error {
	var req dto.CreateClassificationRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	classification, err := h.flow.CreateClassification(h.createRequestContext(c, "/api/v1/admin/classifications"), req.Name)
	if err != nil {
		return h.flowErrorResponse(c, err, "Create classification")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Classification created", toClassificationItem(classification))
}

// UpdateClassification renames an aircraft classification.
// @Summary Update Classification (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param id path int true "Classification id"
// @Param request body dto.UpdateClassificationRequest true "Classification payload"
// @Success 200 {object} dto.APIResponse{data=dto.ClassificationItem}
// @Router /api/v1/admin/classifications/{id} [put]
func (h *FeeScheduleHandler) UpdateClassification(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateClassificationRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	classification, err := h.flow.UpdateClassification(h.createRequestContext(c, "/api/v1/admin/classifications/:id"), id, req.Name)
	if err != nil {
		return h.flowErrorResponse(c, err, "Update classification")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Classification updated", toClassificationItem(classification))
}

// DeleteClassification removes a classification that nothing references.
// @Summary Delete Classification (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Param id path int true "Classification id"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Classification still referenced"
// @Router /api/v1/admin/classifications/{id} [delete]
func (h *FeeScheduleHandler) DeleteClassification(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	if err := h.flow.DeleteClassification(h.createRequestContext(c, "/api/v1/admin/classifications/:id"), id); err != nil {
		return h.flowErrorResponse(c, err, "Delete classification")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Classification deleted", nil)
}

// ListAircraftTypes lists aircraft types.
// @Summary List Aircraft Types (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.AircraftTypeItem}
// @Router /api/v1/admin/aircraft-types [get]
func (h *FeeScheduleHandler) ListAircraftTypes(c fiber.Ctx) error {
	aircraftTypes, err := h.flow.ListAircraftTypes(h.createRequestContext(c, "/api/v1/admin/aircraft-types"))
	if err != nil {
		return h.flowErrorResponse(c, err, "List aircraft types")
	}
	items := make([]dto.AircraftTypeItem, 0, len(aircraftTypes))
	for _, aircraftType := range aircraftTypes {
		items = append(items, toAircraftTypeItem(aircraftType))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Aircraft types retrieved", items)
}

// CreateAircraftType creates an aircraft type.
// @Summary Create Aircraft Type (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateAircraftTypeRequest true "Aircraft type payload"
// @Success 201 {object} dto.APIResponse{data=dto.AircraftTypeItem}
// @Router /api/v1/admin/aircraft-types [post]
func (h *FeeScheduleHandler) CreateAircraftType(c fiber.Ctx) error {
	var req dto.CreateAircraftTypeRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	aircraftType := &models.AircraftType{
		Name:                        req.Name,
		ClassificationID:            req.ClassificationID,
		BaseMinFuelGallonsForWaiver: req.BaseMinFuelGallonsForWaiver,
	}
	if err := h.flow.CreateAircraftType(h.createRequestContext(c, "/api/v1/admin/aircraft-types"), aircraftType); err != nil {
		return h.flowErrorResponse(c, err, "Create aircraft type")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Aircraft type created", toAircraftTypeItem(aircraftType))
}

// UpdateAircraftType updates an aircraft type.
// @Summary Update Aircraft Type (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param id path int true "Aircraft type id"
// @Param request body dto.UpdateAircraftTypeRequest true "Aircraft type payload"
// @Success 200 {object} dto.APIResponse{data=dto.AircraftTypeItem}
// @Router /api/v1/admin/aircraft-types/{id} [put]
func (h *FeeScheduleHandler) UpdateAircraftType(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAircraftTypeRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	aircraftType := &models.AircraftType{
		ID:                          id,
		Name:                        req.Name,
		ClassificationID:            req.ClassificationID,
		BaseMinFuelGallonsForWaiver: req.BaseMinFuelGallonsForWaiver,
	}
	if err := h.flow.UpdateAircraftType(h.createRequestContext(c, "/api/v1/admin/aircraft-types/:id"), aircraftType); err != nil {
		return h.flowErrorResponse(c, err, "Update aircraft type")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Aircraft type updated", toAircraftTypeItem(aircraftType))
}

// DeleteAircraftType removes an aircraft type that nothing references.
// @Summary Delete Aircraft Type (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Param id path int true "Aircraft type id"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Aircraft type still referenced"
// @Router /api/v1/admin/aircraft-types/{id} [delete]
func (h *FeeScheduleHandler) DeleteAircraftType(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	if err := h.flow.DeleteAircraftType(h.createRequestContext(c, "/api/v1/admin/aircraft-types/:id"), id); err != nil {
		return h.flowErrorResponse(c, err, "Delete aircraft type")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Aircraft type deleted", nil)
}

// ListFeeRules lists global fee rules.
// @Summary List Fee Rules (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.FeeRuleItem}
// @Router /api/v1/admin/fee-rules [get]
func (h *FeeScheduleHandler) ListFeeRules(c fiber.Ctx) error {
	rules, err := h.flow.ListFeeRules(h.createRequestContext(c, "/api/v1/admin/fee-rules"))
	if err != nil {
		return h.flowErrorResponse(c, err, "List fee rules")
	}
	items := make([]dto.FeeRuleItem, 0, len(rules))
	for _, rule := range rules {
		items = append(items, toFeeRuleItem(rule))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Fee rules retrieved", items)
}

// CreateFeeRule creates a global fee rule.
// @Summary Create Fee Rule (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateFeeRuleRequest true "Fee rule payload"
// @Success 201 {object} dto.APIResponse{data=dto.FeeRuleItem}
// @Failure 409 {object} dto.APIResponse "Duplicate fee code"
// @Router /api/v1/admin/fee-rules [post]
func (h *FeeScheduleHandler) CreateFeeRule(c fiber.Ctx) error {
	var req dto.CreateFeeRuleRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	rule := feeRuleFromRequest(&req, 0)
	if err := h.flow.CreateFeeRule(h.createRequestContext(c, "/api/v1/admin/fee-rules"), rule); err != nil {
		return h.flowErrorResponse(c, err, "Create fee rule")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Fee rule created", toFeeRuleItem(rule))
}

// UpdateFeeRule updates a global fee rule.
// @Summary Update Fee Rule (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param id path int true "Fee rule id"
// @Param request body dto.UpdateFeeRuleRequest true "Fee rule payload"
// @Success 200 {object} dto.APIResponse{data=dto.FeeRuleItem}
// @Router /api/v1/admin/fee-rules/{id} [put]
func (h *FeeScheduleHandler) UpdateFeeRule(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateFeeRuleRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	rule := feeRuleFromRequest(&req, id)
	if err := h.flow.UpdateFeeRule(h.createRequestContext(c, "/api/v1/admin/fee-rules/:id"), rule); err != nil {
		return h.flowErrorResponse(c, err, "Update fee rule")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Fee rule updated", toFeeRuleItem(rule))
}

// DeleteFeeRule removes a fee rule that no override references.
// @Summary Delete Fee Rule (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Param id path int true "Fee rule id"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse "Fee rule still referenced"
// @Router /api/v1/admin/fee-rules/{id} [delete]
func (h *FeeScheduleHandler) DeleteFeeRule(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	if err := h.flow.DeleteFeeRule(h.createRequestContext(c, "/api/v1/admin/fee-rules/:id"), id); err != nil {
		return h.flowErrorResponse(c, err, "Delete fee rule")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Fee rule deleted", nil)
}

// ListOverrides lists overrides for one fee rule.
// @Summary List Fee Rule Overrides (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Param id path int true "Fee rule id"
// @Success 200 {object} dto.APIResponse{data=[]dto.OverrideItem}
// @Router /api/v1/admin/fee-rules/{id}/overrides [get]
func (h *FeeScheduleHandler) ListOverrides(c fiber.Ctx) error {
	feeRuleID, err := h.pathID(c)
	if err != nil {
		return err
	}
	overrides, err := h.flow.ListOverrides(h.createRequestContext(c, "/api/v1/admin/fee-rules/:id/overrides"), feeRuleID)
	if err != nil {
		return h.flowErrorResponse(c, err, "List overrides")
	}
	items := make([]dto.OverrideItem, 0, len(overrides))
	for _, override := range overrides {
		items = append(items, toOverrideItem(override))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Overrides retrieved", items)
}

// CreateOverride creates a classification- or aircraft-specific override.
// @Summary Create Fee Rule Override (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateOverrideRequest true "Override payload"
// @Success 201 {object} dto.APIResponse{data=dto.OverrideItem}
// @Failure 409 {object} dto.APIResponse "Duplicate override target"
// @Router /api/v1/admin/overrides [post]
func (h *FeeScheduleHandler) CreateOverride(c fiber.Ctx) error {
	var req dto.CreateOverrideRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	override := overrideFromRequest(&req, 0)
	if err := h.flow.CreateOverride(h.createRequestContext(c, "/api/v1/admin/overrides"), override); err != nil {
		return h.flowErrorResponse(c, err, "Create override")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Override created", toOverrideItem(override))
}

// UpdateOverride updates an override.
// @Summary Update Fee Rule Override (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param id path int true "Override id"
// @Param request body dto.UpdateOverrideRequest true "Override payload"
// @Success 200 {object} dto.APIResponse{data=dto.OverrideItem}
// @Router /api/v1/admin/overrides/{id} [put]
func (h *FeeScheduleHandler) UpdateOverride(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOverrideRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	override := overrideFromRequest(&req, id)
	if err := h.flow.UpdateOverride(h.createRequestContext(c, "/api/v1/admin/overrides/:id"), override); err != nil {
		return h.flowErrorResponse(c, err, "Update override")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Override updated", toOverrideItem(override))
}

// DeleteOverride removes an override.
// @Summary Delete Fee Rule Override (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Param id path int true "Override id"
// @Success 200 {object} dto.APIResponse
// @Router /api/v1/admin/overrides/{id} [delete]
func (h *FeeScheduleHandler) DeleteOverride(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	if err := h.flow.DeleteOverride(h.createRequestContext(c, "/api/v1/admin/overrides/:id"), id); err != nil {
		return h.flowErrorResponse(c, err, "Delete override")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Override deleted", nil)
}

// ListWaiverTiers lists waiver tiers.
// @Summary List Waiver Tiers (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.WaiverTierItem}
// @Router /api/v1/admin/waiver-tiers [get]
func (h *FeeScheduleHandler) ListWaiverTiers(c fiber.Ctx) error {
	tiers, err := h.flow.ListWaiverTiers(h.createRequestContext(c, "/api/v1/admin/waiver-tiers"))
	if err != nil {
		return h.flowErrorResponse(c, err, "List waiver tiers")
	}
	items := make([]dto.WaiverTierItem, 0, len(tiers))
	for _, tier := range tiers {
		items = append(items, toWaiverTierItem(tier))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waiver tiers retrieved", items)
}

// CreateWaiverTier creates a waiver tier.
// @Summary Create Waiver Tier (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateWaiverTierRequest true "Waiver tier payload"
// @Success 201 {object} dto.APIResponse{data=dto.WaiverTierItem}
// @Failure 400 {object} dto.APIResponse "Priority conflict"
// @Router /api/v1/admin/waiver-tiers [post]
func (h *FeeScheduleHandler) CreateWaiverTier(c fiber.Ctx) error {
	var req dto.CreateWaiverTierRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	tier := waiverTierFromRequest(&req, 0)
	if err := h.flow.CreateWaiverTier(h.createRequestContext(c, "/api/v1/admin/waiver-tiers"), tier); err != nil {
		return h.flowErrorResponse(c, err, "Create waiver tier")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Waiver tier created", toWaiverTierItem(tier))
}

// UpdateWaiverTier updates a waiver tier.
// @Summary Update Waiver Tier (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param id path int true "Waiver tier id"
// @Param request body dto.UpdateWaiverTierRequest true "Waiver tier payload"
// @Success 200 {object} dto.APIResponse{data=dto.WaiverTierItem}
// @Router /api/v1/admin/waiver-tiers/{id} [put]
func (h *FeeScheduleHandler) UpdateWaiverTier(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateWaiverTierRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	tier := waiverTierFromRequest(&req, id)
	if err := h.flow.UpdateWaiverTier(h.createRequestContext(c, "/api/v1/admin/waiver-tiers/:id"), tier); err != nil {
		return h.flowErrorResponse(c, err, "Update waiver tier")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waiver tier updated", toWaiverTierItem(tier))
}

// DeleteWaiverTier removes a waiver tier.
// @Summary Delete Waiver Tier (Admin)
// @Tags Admin Fee Schedule
// @Produce json
// @Param id path int true "Waiver tier id"
// @Success 200 {object} dto.APIResponse
// @Router /api/v1/admin/waiver-tiers/{id} [delete]
func (h *FeeScheduleHandler) DeleteWaiverTier(c fiber.Ctx) error {
	id, err := h.pathID(c)
	if err != nil {
		return err
	}
	if err := h.flow.DeleteWaiverTier(h.createRequestContext(c, "/api/v1/admin/waiver-tiers/:id"), id); err != nil {
		return h.flowErrorResponse(c, err, "Delete waiver tier")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waiver tier deleted", nil)
}

// ReorderWaiverTiers reassigns tier priorities atomically.
// @Summary Reorder Waiver Tiers (Admin)
// @Tags Admin Fee Schedule
// @Accept json
// @Produce json
// @Param request body dto.ReorderWaiverTiersRequest true "Priority assignments by tier id"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.APIResponse "Priority conflict"
// @Router /api/v1/admin/waiver-tiers/reorder [post]
func (h *FeeScheduleHandler) ReorderWaiverTiers(c fiber.Ctx) error {
	var req dto.ReorderWaiverTiersRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.flow.ReorderWaiverTiers(h.createRequestContext(c, "/api/v1/admin/waiver-tiers/reorder"), req.Priorities); err != nil {
		return h.flowErrorResponse(c, err, "Reorder waiver tiers")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waiver tiers reordered", nil)
}

func toClassificationItem(classification *models.AircraftClassification) dto.ClassificationItem {
	return dto.ClassificationItem{
		ID:   classification.ID,
		UUID: classification.UUID.String(),
		Name: classification.Name,
	}
}

func toAircraftTypeItem(aircraftType *models.AircraftType) dto.AircraftTypeItem {
	return dto.AircraftTypeItem{
		ID:                          aircraftType.ID,
		UUID:                        aircraftType.UUID.String(),
		Name:                        aircraftType.Name,
		ClassificationID:            aircraftType.ClassificationID,
		BaseMinFuelGallonsForWaiver: aircraftType.BaseMinFuelGallonsForWaiver,
	}
}

func feeRuleFromRequest(req *dto.CreateFeeRuleRequest, id uint) *models.FeeRule {
	rule := &models.FeeRule{
		ID:                                id,
		FeeCode:                           req.FeeCode,
		FeeName:                           req.FeeName,
		Amount:                            req.Amount,
		Currency:                          req.Currency,
		IsTaxable:                         req.IsTaxable,
		IsManuallyWaivable:                req.IsManuallyWaivable,
		WaiverStrategy:                    models.WaiverStrategy(req.WaiverStrategy),
		SimpleWaiverMultiplier:            req.SimpleWaiverMultiplier,
		HasCAAOverride:                    req.HasCAAOverride,
		CAAOverrideAmount:                 req.CAAOverrideAmount,
		CAASimpleWaiverMultiplierOverride: req.CAASimpleWaiverMultiplierOverride,
	}
	if req.CAAWaiverStrategyOverride != nil {
		strategy := models.WaiverStrategy(*req.CAAWaiverStrategyOverride)
		rule.CAAWaiverStrategyOverride = &strategy
	}
	return rule
}

func toFeeRuleItem(rule *models.FeeRule) dto.FeeRuleItem {
	item := dto.FeeRuleItem{
		ID:                                rule.ID,
		UUID:                              rule.UUID.String(),
		FeeCode:                           rule.FeeCode,
		FeeName:                           rule.FeeName,
		Amount:                            rule.Amount,
		Currency:                          rule.Currency,
		IsTaxable:                         rule.IsTaxable,
		IsManuallyWaivable:                rule.IsManuallyWaivable,
		WaiverStrategy:                    string(rule.WaiverStrategy),
		SimpleWaiverMultiplier:            rule.SimpleWaiverMultiplier,
		HasCAAOverride:                    rule.HasCAAOverride,
		CAAOverrideAmount:                 rule.CAAOverrideAmount,
		CAASimpleWaiverMultiplierOverride: rule.CAASimpleWaiverMultiplierOverride,
	}
	if rule.CAAWaiverStrategyOverride != nil {
		strategy := string(*rule.CAAWaiverStrategyOverride)
		item.CAAWaiverStrategyOverride = &strategy
	}
	return item
}

func overrideFromRequest(req *dto.CreateOverrideRequest, id uint) *models.FeeRuleOverride {
	return &models.FeeRuleOverride{
		ID:                id,
		FeeRuleID:         req.FeeRuleID,
		ClassificationID:  req.ClassificationID,
		AircraftTypeID:    req.AircraftTypeID,
		OverrideAmount:    req.OverrideAmount,
		OverrideCAAAmount: req.OverrideCAAAmount,
	}
}

func toOverrideItem(override *models.FeeRuleOverride) dto.OverrideItem {
	return dto.OverrideItem{
		ID:                override.ID,
		UUID:              override.UUID.String(),
		FeeRuleID:         override.FeeRuleID,
		ClassificationID:  override.ClassificationID,
		AircraftTypeID:    override.AircraftTypeID,
		OverrideAmount:    override.OverrideAmount,
		OverrideCAAAmount: override.OverrideCAAAmount,
	}
}

func waiverTierFromRequest(req *dto.CreateWaiverTierRequest, id uint) *models.WaiverTier {
	return &models.WaiverTier{
		ID:                   id,
		Name:                 req.Name,
		FuelUpliftMultiplier: req.FuelUpliftMultiplier,
		FeesWaivedCodes:      req.FeesWaivedCodes,
		TierPriority:         req.TierPriority,
		IsCAASpecificTier:    req.IsCAASpecificTier,
	}
}

func toWaiverTierItem(tier *models.WaiverTier) dto.WaiverTierItem {
	return dto.WaiverTierItem{
		ID:                   tier.ID,
		UUID:                 tier.UUID.String(),
		Name:                 tier.Name,
		FuelUpliftMultiplier: tier.FuelUpliftMultiplier,
		FeesWaivedCodes:      tier.FeesWaivedCodes,
		TierPriority:         tier.TierPriority,
		IsCAASpecificTier:    tier.IsCAASpecificTier,
	}
}
