package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	authdomain "github.com/orgfolio/gatekeeper/internal/auth/domain"
	entitlementdomain "github.com/orgfolio/gatekeeper/internal/entitlement/domain"
	organizationdomain "github.com/orgfolio/gatekeeper/internal/organization/domain"
	quotadomain "github.com/orgfolio/gatekeeper/internal/quota/domain"
	reportjobdomain "github.com/orgfolio/gatekeeper/internal/reportjob"
	"github.com/orgfolio/gatekeeper/internal/subject"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeQueryError      = "QUERY_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeScanFailed      = "SCAN_FAILED"
	CodeJobFailed       = "JOB_FAILED"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successEnvelope{Success: true, Data: data})
}

func respondOKMeta(c *gin.Context, data, meta any) {
	c.JSON(http.StatusOK, successEnvelope{Success: true, Data: data, Meta: meta})
}

func respondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, successEnvelope{Success: true, Data: data})
}

// ErrorHandlingMiddleware converts handler errors into the API error
// envelope. Unexpected errors get an opaque id; internals never reach the
// client.
func ErrorHandlingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, envelope := mapError(lastErr.Err)
		if status >= http.StatusInternalServerError {
			errorID := ""
			if details, ok := envelope.Details.(gin.H); ok {
				errorID, _ = details["error_id"].(string)
			}
			log.Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("error_id", errorID),
				zap.Error(lastErr.Err),
			)
		}
		c.AbortWithStatusJSON(status, envelope)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorEnvelope) {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked),
		errors.Is(err, organizationdomain.ErrPreviewUnauthorized):
		return http.StatusUnauthorized, errorEnvelope{
			ErrorCode: CodeUnauthorized,
			Message:   "unauthorized",
		}

	case errors.Is(err, ErrForbidden),
		errors.Is(err, organizationdomain.ErrPreviewForbidden):
		return http.StatusForbidden, errorEnvelope{
			ErrorCode: CodeForbidden,
			Message:   "forbidden",
		}

	case errors.Is(err, quotadomain.ErrStoreUnavailable):
		// Quota-store failures propagate as a denial, never as silent
		// permission.
		return http.StatusForbidden, errorEnvelope{
			ErrorCode: CodeForbidden,
			Message:   "quota unavailable, action denied",
		}

	case errors.Is(err, ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound):
		return http.StatusNotFound, errorEnvelope{
			ErrorCode: CodeNotFound,
			Message:   "not found",
		}

	case isValidationError(err):
		return http.StatusBadRequest, errorEnvelope{
			ErrorCode: CodeValidationError,
			Message:   "validation error",
			Details:   gin.H{"reason": err.Error()},
		}

	case errors.Is(err, reportjobdomain.ErrScanFailed):
		return http.StatusInternalServerError, errorEnvelope{
			ErrorCode: CodeScanFailed,
			Message:   "report payload scan failed",
			Details:   gin.H{"error_id": uuid.NewString()},
		}

	case errors.Is(err, reportjobdomain.ErrJobFailed):
		return http.StatusInternalServerError, errorEnvelope{
			ErrorCode: CodeJobFailed,
			Message:   "report job could not be accepted",
			Details:   gin.H{"error_id": uuid.NewString()},
		}

	case isQueryError(err):
		return http.StatusInternalServerError, errorEnvelope{
			ErrorCode: CodeQueryError,
			Message:   "query failed",
			Details:   gin.H{"error_id": uuid.NewString()},
		}

	default:
		return http.StatusInternalServerError, errorEnvelope{
			ErrorCode: CodeInternalError,
			Message:   "internal server error",
			Details:   gin.H{"error_id": uuid.NewString()},
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, subject.ErrInvalidType),
		errors.Is(err, subject.ErrInvalidID),
		errors.Is(err, organizationdomain.ErrInvalidSlug),
		errors.Is(err, quotadomain.ErrInvalidFeatureKey),
		errors.Is(err, quotadomain.ErrInvalidLimitKey),
		errors.Is(err, quotadomain.ErrInvalidAmount),
		errors.Is(err, quotadomain.ErrInvalidPeriod):
		return true
	default:
		return false
	}
}

func isQueryError(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Repos translate this to domain not-found; reaching here means a
		// raw query leaked, still a server-side problem.
		return true
	case errors.Is(err, gorm.ErrInvalidTransaction),
		errors.Is(err, gorm.ErrInvalidDB),
		errors.Is(err, entitlementdomain.ErrPolicyUnavailable):
		return true
	default:
		return false
	}
}
