package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Akshat120/Book-Review-API/internal/logging"
)

// Client-facing messages shared by several controllers.
const (
	msgInternalError = "Internal server error"
	msgBadPage       = "Bad Page Number!"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// respondUnauthorized sends a 401 Unauthorized response.
func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	logging.FromContext(c).WithError(err).Errorf("Internal error (%s)", context)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error carrying message and returns 0, false.
func parseIDParam(c *gin.Context, paramName, message string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, message)
		return 0, false
	}
	return uint(id), true
}

// parsePageQuery reads the mandatory ?page= parameter. A missing, non-numeric
// or non-positive page is answered with 400.
func parsePageQuery(c *gin.Context) (int, bool) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		respondBadRequest(c, msgBadPage)
		return 0, false
	}
	return page, true
}

// --- Request Binding ---

// bindJSON decodes the body into req and answers 400 when decoding or the
// binding tags reject it. An empty body leaves req zeroed so the domain
// validation can report which fields are missing.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondBadRequest(c, bindingErrorMessage(err))
	return false
}

// bindingErrorMessage turns decoder and validator errors into a single
// client-facing sentence.
func bindingErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "max":
			return fmt.Sprintf("%s must be at most %s characters long.", field, fe.Param())
		case "required":
			return fmt.Sprintf("%s is required.", field)
		default:
			return fmt.Sprintf("%s is invalid.", field)
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s has the wrong type.", typeErr.Field)
	}

	return "Malformed JSON body."
}

// clientInfo returns the values recorded alongside audit events.
func clientInfo(c *gin.Context) (ip, userAgent string) {
	return c.ClientIP(), c.Request.UserAgent()
}
