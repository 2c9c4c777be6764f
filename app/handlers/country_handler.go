package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/partnerincentives/engagements-config/app/dto"
	businessflow "github.com/partnerincentives/engagements-config/business_flow"
	"github.com/partnerincentives/engagements-config/utils"
)

type CountryHandlerInterface interface {
	ListCountries(c fiber.Ctx) error
}

type CountryHandler struct {
	flow businessflow.CountryFlow
}

func NewCountryHandler(flow businessflow.CountryFlow) CountryHandlerInterface {
	return &CountryHandler{flow: flow}
}

func (h *CountryHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *CountryHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListCountries returns the country reference list for the customer-limit editor.
// @Summary List Countries
// @Description List countries available for per-country customer limits
// @Tags Countries
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCountriesResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/countries [get]
func (h *CountryHandler) ListCountries(c fiber.Ctx) error {
	res, err := h.flow.ListCountries(h.createRequestContext(c, "/api/v1/countries"))
	if err != nil {
		log.Println("List countries failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List countries failed", "COUNTRY_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Countries retrieved", res)
}

func (h *CountryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CountryHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
