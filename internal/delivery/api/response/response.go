// Package response renders the JSON envelope every API response uses:
//
//	{"success": true,  "data": ...,  "meta": {"request_id": "..."}}
//	{"success": false, "error": {"code", "message", "details"}, "meta": {...}}
package response

import (
	"net/http"

	deliverycontext "ventas/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Meta    *MetaInfo `json:"meta"`
}

type ErrorResponse struct {
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error"`
	Meta    *MetaInfo  `json:"meta"`
}

type ErrorInfo struct {
	Code    string `json:"code"`              // Stable machine-readable code, e.g. "INVALID_QUANTITY"
	Message string `json:"message"`           // Safe to show to the operator
	Details any    `json:"details,omitempty"` // Field-level context, client errors only
}

// MetaInfo lets the dashboard quote the request id when reporting a problem.
type MetaInfo struct {
	RequestID string `json:"request_id"`
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}

// Success writes data inside the success envelope.
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{Success: true, Data: data, Meta: meta(c)})
}

// Error writes the error envelope. Details are withheld on 401, 403 and 5xx
// so token and store failures cannot be told apart from the outside.
func Error(c echo.Context, statusCode int, code, message string, details any) error {
	if withholdDetails(statusCode) {
		details = nil
	}
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{Code: code, Message: message, Details: details},
		Meta:  meta(c),
	})
}

func withholdDetails(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError ||
		statusCode == http.StatusUnauthorized ||
		statusCode == http.StatusForbidden
}

func TooManyRequests(c echo.Context, code, message string) error {
	return Error(c, http.StatusTooManyRequests, code, message, nil)
}

func InternalServerError(c echo.Context, code, message string) error {
	return Error(c, http.StatusInternalServerError, code, message, nil)
}
