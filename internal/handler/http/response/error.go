package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var computationErr *summary.ComputationError
	if errors.As(err, &computationErr) {
		slog.Error("Attendance summary computation failed", "op", computationErr.Op, "error", computationErr.Err)
		InternalServerError(w, computationErr.Error())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, user.ErrTenantRequired):
		Forbidden(w, "No tenant associated with this token")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Calendar domain errors
	case errors.Is(err, calendar.ErrShiftPolicyNotFound):
		NotFound(w, "Shift policy not found")

	// Summary domain errors
	case errors.Is(err, summary.ErrSummaryAlreadyExists):
		Conflict(w, "Attendance summary already exists for this period, recalculate it instead")
	case errors.Is(err, summary.ErrSummaryNotFound):
		NotFound(w, "Attendance summary not found")
	case errors.Is(err, summary.ErrNoAttendanceData):
		NotFound(w, "No attendance data found for this period")
	case errors.Is(err, summary.ErrNoSummariesToRecalculate):
		NotFound(w, "No attendance summaries to recalculate for this period")
	case errors.Is(err, summary.ErrInvalidWorkbook):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, summary.ErrImportFileTooLarge):
		PayloadTooLarge(w, "Import file too large")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
