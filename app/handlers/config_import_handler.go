package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/fbopoint/feesched/app/dto"
	"github.com/fbopoint/feesched/app/middleware"
	businessflow "github.com/fbopoint/feesched/business_flow"
	"github.com/fbopoint/feesched/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ConfigImportHandlerInterface defines snapshot export, version, and
// import/restore endpoints.
type ConfigImportHandlerInterface interface {
	ExportSnapshot(c fiber.Ctx) error
	ExportWorkbook(c fiber.Ctx) error
	ImportSnapshot(c fiber.Ctx) error
	CreateVersion(c fiber.Ctx) error
	ListVersions(c fiber.Ctx) error
	RestoreVersion(c fiber.Ctx) error
}

// ConfigImportHandler implements configuration export, import, and versioning.
type ConfigImportHandler struct {
	flow      businessflow.ConfigImportFlow
	validator *validator.Validate
}

func NewConfigImportHandler(flow businessflow.ConfigImportFlow) ConfigImportHandlerInterface {
	return &ConfigImportHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ConfigImportHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *ConfigImportHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

func (h *ConfigImportHandler) flowErrorResponse(c fiber.Ctx, err error, action string) error {
	var businessErr *businessflow.BusinessError
	code := "CONFIG_IMPORT_ERROR"
	if errors.As(err, &businessErr) {
		code = businessErr.Code
	}
	switch {
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Snapshot document is invalid", code, err.Error())
	case businessflow.IsConfigurationConflict(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Configuration conflict while applying snapshot", code, err.Error())
	case businessflow.IsReferenceError(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Referenced entity not found", code, err.Error())
	default:
		log.Printf("%s failed: %v", action, err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, action+" failed", code, nil)
	}
}

func (h *ConfigImportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}

// ExportSnapshot returns the full live configuration as a JSON document.
// @Summary Export Configuration Snapshot (Admin)
// @Tags Admin Configuration
// @Produce json
// @Success 200 {object} businessflow.ConfigurationSnapshot
// @Router /api/v1/admin/schedule/export [get]
func (h *ConfigImportHandler) ExportSnapshot(c fiber.Ctx) error {
	snapshot, err := h.flow.ExportSnapshot(h.createRequestContext(c, "/api/v1/admin/schedule/export"))
	if err != nil {
		middleware.ObserveConfigImport("export", false)
		return h.flowErrorResponse(c, err, "Export snapshot")
	}
	middleware.ObserveConfigImport("export", true)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="fee_schedule.json"`)
	return c.Status(fiber.StatusOK).JSON(snapshot)
}

// ExportWorkbook returns the live configuration as an Excel workbook.
// @Summary Export Configuration Workbook (Admin)
// @Tags Admin Configuration
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/v1/admin/schedule/export/workbook [get]
func (h *ConfigImportHandler) ExportWorkbook(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/admin/schedule/export/workbook")
	snapshot, err := h.flow.ExportSnapshot(ctx)
	if err != nil {
		middleware.ObserveConfigImport("export", false)
		return h.flowErrorResponse(c, err, "Export workbook")
	}
	filename, content, err := businessflow.ExportScheduleWorkbook(snapshot)
	if err != nil {
		middleware.ObserveConfigImport("export", false)
		return h.flowErrorResponse(c, err, "Export workbook")
	}
	middleware.ObserveConfigImport("export", true)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(content)
}

// ImportSnapshot applies an uploaded snapshot document to the live
// configuration. Accepts either a multipart "file" field or a raw JSON body.
// @Summary Import Configuration Snapshot (Admin)
// @Tags Admin Configuration
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ImportResultResponse}
// @Failure 400 {object} dto.APIResponse "Malformed or invalid snapshot"
// @Failure 409 {object} dto.APIResponse "Configuration conflict"
// @Router /api/v1/admin/schedule/import [post]
func (h *ConfigImportHandler) ImportSnapshot(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/admin/schedule/import")

	document := c.Body()
	if fileHeader, err := c.FormFile("file"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Cannot read uploaded file", "UPLOAD_READ_ERROR", err.Error())
		}
		defer file.Close()
		result, err := h.flow.ImportFromFile(ctx, file)
		return h.importResponse(c, result, err, "import", "Import snapshot")
	}
	if len(document) == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "No snapshot document provided", "EMPTY_DOCUMENT", nil)
	}
	result, err := h.flow.ImportFromFile(ctx, bytes.NewReader(document))
	return h.importResponse(c, result, err, "import", "Import snapshot")
}

func (h *ConfigImportHandler) importResponse(c fiber.Ctx, result *businessflow.ImportResult, err error, kind, action string) error {
	if err != nil {
		middleware.ObserveConfigImport(kind, false)
		return h.flowErrorResponse(c, err, action)
	}
	middleware.ObserveConfigImport(kind, true)
	return h.SuccessResponse(c, fiber.StatusOK, action+" applied", toImportResultResponse(result, action+" applied"))
}

// CreateVersion stores a named snapshot of the live configuration.
// @Summary Create Configuration Version (Admin)
// @Tags Admin Configuration
// @Accept json
// @Produce json
// @Param request body dto.CreateVersionRequest true "Version payload"
// @Success 201 {object} dto.APIResponse{data=dto.VersionItem}
// @Router /api/v1/admin/schedule/versions [post]
func (h *ConfigImportHandler) CreateVersion(c fiber.Ctx) error {
	var req dto.CreateVersionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	version, err := h.flow.CreateVersion(h.createRequestContext(c, "/api/v1/admin/schedule/versions"), req.Name, req.Notes)
	if err != nil {
		return h.flowErrorResponse(c, err, "Create version")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Version created", toVersionItem(version))
}

// ListVersions lists stored configuration versions, newest first.
// @Summary List Configuration Versions (Admin)
// @Tags Admin Configuration
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} dto.APIResponse{data=dto.ListVersionsResponse}
// @Router /api/v1/admin/schedule/versions [get]
func (h *ConfigImportHandler) ListVersions(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	versions, err := h.flow.ListVersions(h.createRequestContext(c, "/api/v1/admin/schedule/versions"), limit, offset)
	if err != nil {
		return h.flowErrorResponse(c, err, "List versions")
	}
	items := make([]dto.VersionItem, 0, len(versions))
	for _, version := range versions {
		items = append(items, toVersionItem(version))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Versions retrieved", dto.ListVersionsResponse{
		Message: "Versions retrieved",
		Items:   items,
	})
}

// RestoreVersion replays a stored version over the live configuration.
// @Summary Restore Configuration Version (Admin)
// @Tags Admin Configuration
// @Accept json
// @Produce json
// @Param request body dto.RestoreVersionRequest true "Version to restore"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResultResponse}
// @Failure 404 {object} dto.APIResponse "Version not found"
// @Router /api/v1/admin/schedule/versions/restore [post]
func (h *ConfigImportHandler) RestoreVersion(c fiber.Ctx) error {
	var req dto.RestoreVersionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}
	result, err := h.flow.RestoreFromVersion(h.createRequestContext(c, "/api/v1/admin/schedule/versions/restore"), req.VersionID)
	return h.importResponse(c, result, err, "restore", "Restore version")
}

func toVersionItem(version *models.FeeScheduleVersion) dto.VersionItem {
	return dto.VersionItem{
		ID:        version.ID,
		UUID:      version.UUID.String(),
		Name:      version.Name,
		Notes:     version.Notes,
		Source:    version.Source,
		CreatedAt: version.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toImportResultResponse(result *businessflow.ImportResult, message string) dto.ImportResultResponse {
	resp := dto.ImportResultResponse{
		Message:         message,
		BackupVersionID: result.BackupVersionID,
		Operations:      result.Operations,
		Creates:         result.Creates,
		Updates:         result.Updates,
		Deletes:         result.Deletes,
	}
	if result.Report != nil {
		resp.CollectionRenames = result.Report.CollectionRenames
		resp.FieldRenames = result.Report.FieldRenames
		resp.Repairs = result.Report.Repairs
	}
	return resp
}
