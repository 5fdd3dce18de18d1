package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/asset"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/auth"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/exception"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/supply"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/user"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAccountInactive),
		errors.Is(err, auth.ErrOAuthAccountUnknown):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		BadRequest(w, err.Error(), nil)

	// Not found
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, exception.ErrExceptionNotFound),
		errors.Is(err, vacation.ErrVacationNotFound),
		errors.Is(err, asset.ErrAssetNotFound),
		errors.Is(err, asset.ErrAssignmentNotFound),
		errors.Is(err, asset.ErrRequestNotFound),
		errors.Is(err, supply.ErrSupplyNotFound),
		errors.Is(err, supply.ErrRequestNotFound),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrAllocationNotFound),
		errors.Is(err, project.ErrUpdateNotFound):
		NotFound(w, err.Error())

	// Forbidden
	case errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, attendance.ErrForbidden),
		errors.Is(err, exception.ErrExceptionAccessDenied),
		errors.Is(err, vacation.ErrVacationAccessDenied),
		errors.Is(err, asset.ErrAssignmentForbidden),
		errors.Is(err, asset.ErrRequestAccessDenied),
		errors.Is(err, supply.ErrRequestForbidden),
		errors.Is(err, project.ErrAllocationForbidden),
		errors.Is(err, project.ErrUpdateForbidden):
		Forbidden(w, err.Error())

	// Uniqueness and state conflicts
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, attendance.ErrAlreadyClockedIn),
		errors.Is(err, attendance.ErrNotClockedIn),
		errors.Is(err, attendance.ErrAlreadyClockedOut),
		errors.Is(err, attendance.ErrAlreadyOnBreak),
		errors.Is(err, attendance.ErrNotOnBreak),
		errors.Is(err, attendance.ErrOvertimeAlreadyStarted),
		errors.Is(err, attendance.ErrOvertimeNotActive),
		errors.Is(err, exception.ErrExceptionNotPending),
		errors.Is(err, exception.ErrExceptionDuplicate),
		errors.Is(err, vacation.ErrVacationOverlap),
		errors.Is(err, vacation.ErrVacationNotPending),
		errors.Is(err, vacation.ErrVacationNotCancelable),
		errors.Is(err, vacation.ErrVacationNotRejected),
		errors.Is(err, vacation.ErrAlreadyResubmitted),
		errors.Is(err, vacation.ErrStatusConflict),
		errors.Is(err, asset.ErrSerialNumberExists),
		errors.Is(err, asset.ErrAssetNotAvailable),
		errors.Is(err, asset.ErrAssetHasActiveAssignment),
		errors.Is(err, asset.ErrAssignmentNotActive),
		errors.Is(err, asset.ErrRequestNotPending),
		errors.Is(err, asset.ErrRequestNotApproved),
		errors.Is(err, supply.ErrSupplyNameExists),
		errors.Is(err, supply.ErrSupplyInUse),
		errors.Is(err, supply.ErrInsufficientStock),
		errors.Is(err, supply.ErrRequestNotPending),
		errors.Is(err, supply.ErrRequestNotApproved),
		errors.Is(err, project.ErrProjectCodeExists),
		errors.Is(err, project.ErrProjectNotActive),
		errors.Is(err, project.ErrProjectHasUpdates),
		errors.Is(err, project.ErrAllocationExists),
		errors.Is(err, project.ErrAllocationInactive),
		errors.Is(err, project.ErrUpdateExists):
		Conflict(w, err.Error())

	// Rule violations on otherwise well-formed input
	case errors.Is(err, user.ErrUserInactive),
		errors.Is(err, user.ErrCannotDeactivateSelf),
		errors.Is(err, attendance.ErrClockInAfterOfficeEnd),
		errors.Is(err, attendance.ErrOvertimeNotAvailable),
		errors.Is(err, exception.ErrExceptionFutureDate),
		errors.Is(err, asset.ErrInvalidStatusChange),
		errors.Is(err, asset.ErrCategoryMismatch),
		errors.Is(err, asset.ErrUserNotEligible),
		errors.Is(err, project.ErrUpdateFutureDay),
		errors.Is(err, project.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
