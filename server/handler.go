package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wirebind/wirebind/binder"
	"github.com/wirebind/wirebind/config"
)

// APIResponse represents the standardized API response format.
type APIResponse struct {
	Data  any               `json:"data,omitempty"`
	Error *APIErrorResponse `json:"error,omitempty"`
	Meta  map[string]any    `json:"meta"`
}

// APIErrorResponse represents the error portion of an API response.
type APIErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HandlerFunc defines the handler signature that focuses on business logic.
// The request value arrives fully bound and validated.
type HandlerFunc[T any, R any] func(request T, ctx HandlerContext) (R, IAPIError)

// HandlerContext provides access to the Echo context and configuration
// when a handler needs more than its bound request.
type HandlerContext struct {
	Echo   echo.Context
	Config *config.Config
}

// WrapHandler wraps a business logic handler into an Echo-compatible handler.
// It binds the request through the shared binder, renders binding failures as
// itemized 400 responses, and formats success and error payloads uniformly.
func WrapHandler[T any, R any](
	handlerFunc HandlerFunc[T, R],
	rb *RequestBinder,
	cfg *config.Config,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		var request T

		if err := rb.BindRequest(c, &request); err != nil {
			var bf *binder.BindFailure
			if errors.As(err, &bf) {
				vErr := NewBadRequestError("Validation failed")
				_ = vErr.WithDetails("validationErrors", bf.Errors)
				return formatErrorResponse(c, vErr, cfg)
			}
			return formatErrorResponse(c, NewBadRequestError("Invalid request data").WithDetails("error", err.Error()), cfg)
		}

		handlerCtx := HandlerContext{
			Echo:   c,
			Config: cfg,
		}

		response, apiErr := handlerFunc(request, handlerCtx)
		if apiErr != nil {
			return formatErrorResponse(c, apiErr, cfg)
		}

		if rl, ok := any(response).(ResultLike); ok {
			status, headers, data := rl.ResultMeta()
			return formatSuccessResponseWithStatus(c, data, status, headers)
		}

		return formatSuccessResponse(c, response)
	}
}

// ResultLike exposes status, headers, and payload for successful responses.
type ResultLike interface {
	ResultMeta() (status int, headers http.Header, data any)
}

// Result lets a handler control the response status and headers while
// keeping the standard envelope.
type Result[R any] struct {
	Data    R
	Status  int
	Headers http.Header
}

// ResultMeta implements ResultLike for Result[R].
func (r Result[R]) ResultMeta() (status int, headers http.Header, data any) {
	return r.Status, r.Headers, r.Data
}

// NoContentResult produces an empty 204 response.
type NoContentResult struct{}

// ResultMeta implements ResultLike for NoContentResult.
func (NoContentResult) ResultMeta() (status int, headers http.Header, data any) {
	return http.StatusNoContent, nil, nil
}

// formatSuccessResponse formats a successful response with standardized structure.
func formatSuccessResponse(c echo.Context, data any) error {
	response := APIResponse{
		Data: data,
		Meta: buildMeta(c),
	}
	return c.JSON(http.StatusOK, response)
}

// formatSuccessResponseWithStatus formats a successful response with a custom status and headers.
func formatSuccessResponseWithStatus(c echo.Context, data any, status int, headers http.Header) error {
	if status == 0 {
		status = http.StatusOK
	}
	for k, vals := range headers {
		for _, v := range vals {
			c.Response().Header().Add(k, v)
		}
	}
	if status == http.StatusNoContent {
		return c.NoContent(http.StatusNoContent)
	}
	response := APIResponse{
		Data: data,
		Meta: buildMeta(c),
	}
	return c.JSON(status, response)
}

// formatErrorResponse formats an error response with standardized structure.
func formatErrorResponse(c echo.Context, apiErr IAPIError, cfg *config.Config) error {
	errorResp := &APIErrorResponse{
		Code:    apiErr.ErrorCode(),
		Message: apiErr.Message(),
	}

	if details := apiErr.Details(); details != nil {
		// Validation errors are part of the contract and always surface;
		// everything else is exposed only in development.
		if ve, ok := details["validationErrors"]; ok {
			errorResp.Details = map[string]any{"validationErrors": ve}
		}
		if cfg != nil && isDevelopmentEnv(cfg.App.Env) {
			errorResp.Details = details
		}
	}

	response := APIResponse{
		Error: errorResp,
		Meta:  buildMeta(c),
	}
	return c.JSON(apiErr.HTTPStatus(), response)
}

func buildMeta(c echo.Context) map[string]any {
	return map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"requestId": getRequestID(c),
	}
}

// getRequestID returns the request identifier, preferring the inbound
// X-Request-Id header and generating one when absent.
func getRequestID(c echo.Context) string {
	if requestID := c.Request().Header.Get(echo.HeaderXRequestID); requestID != "" {
		return requestID
	}
	if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
		return requestID
	}
	newID := uuid.New().String()
	c.Response().Header().Set(echo.HeaderXRequestID, newID)
	return newID
}

func isDevelopmentEnv(env string) bool {
	switch env {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
