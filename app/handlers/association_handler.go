package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/partnerincentives/engagements-config/app/dto"
	"github.com/partnerincentives/engagements-config/app/middleware"
	businessflow "github.com/partnerincentives/engagements-config/business_flow"
	"github.com/partnerincentives/engagements-config/utils"
)

// AssociationHandlerInterface defines the contract for customer-association handlers
type AssociationHandlerInterface interface {
	GetAssociation(c fiber.Ctx) error
	SaveAssociation(c fiber.Ctx) error
	DeleteAssociation(c fiber.Ctx) error
}

// AssociationHandler handles customer-association HTTP requests
type AssociationHandler struct {
	associationFlow businessflow.AssociationFlow
	validator       *validator.Validate
}

// NewAssociationHandler creates a new association handler
func NewAssociationHandler(associationFlow businessflow.AssociationFlow) *AssociationHandler {
	return &AssociationHandler{
		associationFlow: associationFlow,
		validator:       validator.New(),
	}
}

func (h *AssociationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AssociationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetAssociation returns the engagement's customer association with derived end dates
// @Summary Get Customer Association
// @Description Get the customer association configuration for an engagement
// @Tags Customer Association
// @Produce json
// @Param engagementId path string true "Engagement ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetAssociationResponse}
// @Failure 404 {object} dto.APIResponse "Engagement not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/engagements/{engagementId}/customer-association [get]
func (h *AssociationHandler) GetAssociation(c fiber.Ctx) error {
	engagementID := c.Params("engagementId")
	if engagementID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Engagement ID is required", "MISSING_ENGAGEMENT_ID", nil)
	}

	req := &dto.GetAssociationRequest{
		EngagementID: engagementID,
		CanEdit:      middleware.GetCanEditFromContext(c),
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.associationFlow.GetCustomerAssociation(h.createRequestContext(c, "/api/v1/engagements/:engagementId/customer-association"), req, metadata)
	if err != nil {
		if businessflow.IsEngagementNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Engagement not found", "ENGAGEMENT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidEngagementWindow(err) || businessflow.IsInvalidConfigSet(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Stored association configuration is invalid", "INVALID_ASSOCIATION_DATA", nil)
		}

		log.Println("Get customer association failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Get customer association failed", "ASSOCIATION_GET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Customer association retrieved", result)
}

// SaveAssociation validates and persists the submitted configuration sets
// @Summary Save Customer Association
// @Description Create or replace the customer association configuration for an engagement
// @Tags Customer Association
// @Accept json
// @Produce json
// @Param engagementId path string true "Engagement ID"
// @Param request body dto.SaveAssociationRequest true "Configuration sets"
// @Success 200 {object} dto.APIResponse{data=dto.SaveAssociationResponse} "Association saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Engagement not found"
// @Failure 409 {object} dto.APIResponse "Engagement not editable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/engagements/{engagementId}/customer-association [put]
func (h *AssociationHandler) SaveAssociation(c fiber.Ctx) error {
	engagementID := c.Params("engagementId")
	if engagementID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Engagement ID is required", "MISSING_ENGAGEMENT_ID", nil)
	}

	var req dto.SaveAssociationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	req.EngagementID = engagementID
	req.CanEdit = middleware.GetCanEditFromContext(c)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.associationFlow.SaveCustomerAssociation(h.createRequestContext(c, "/api/v1/engagements/:engagementId/customer-association"), &req, metadata)
	if err != nil {
		middleware.RecordAssociationSave("rejected")

		if businessflow.IsEngagementNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Engagement not found", "ENGAGEMENT_NOT_FOUND", nil)
		}
		if businessflow.IsEngagementNotEditable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Engagement is not editable in its current state", "ENGAGEMENT_NOT_EDITABLE", nil)
		}
		if businessflow.IsInvalidEngagementWindow(err) || businessflow.IsInvalidConfigSet(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Submitted configuration sets are invalid", "INVALID_CONFIG_SETS", nil)
		}

		log.Println("Save customer association failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Save customer association failed", "ASSOCIATION_SAVE_FAILED", nil)
	}

	if result.Created {
		middleware.RecordAssociationSave("created")
	} else {
		middleware.RecordAssociationSave("updated")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Customer association saved", result)
}

// DeleteAssociation removes the engagement's stored association configuration
// @Summary Delete Customer Association
// @Description Delete the customer association configuration for an engagement
// @Tags Customer Association
// @Produce json
// @Param engagementId path string true "Engagement ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteAssociationResponse} "Association deleted successfully"
// @Failure 404 {object} dto.APIResponse "Engagement not found"
// @Failure 409 {object} dto.APIResponse "Engagement not editable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/engagements/{engagementId}/customer-association [delete]
func (h *AssociationHandler) DeleteAssociation(c fiber.Ctx) error {
	engagementID := c.Params("engagementId")
	if engagementID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Engagement ID is required", "MISSING_ENGAGEMENT_ID", nil)
	}

	req := &dto.DeleteAssociationRequest{EngagementID: engagementID}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.associationFlow.DeleteCustomerAssociation(h.createRequestContext(c, "/api/v1/engagements/:engagementId/customer-association"), req, metadata)
	if err != nil {
		if businessflow.IsEngagementNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Engagement not found", "ENGAGEMENT_NOT_FOUND", nil)
		}
		if businessflow.IsEngagementNotEditable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Engagement is not editable in its current state", "ENGAGEMENT_NOT_EDITABLE", nil)
		}

		log.Println("Delete customer association failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Delete customer association failed", "ASSOCIATION_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Customer association deleted", result)
}

func (h *AssociationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AssociationHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
