package asset

import "errors"

var (
	ErrAssetNotFound            = errors.New("asset not found")
	ErrSerialNumberExists       = errors.New("an asset with this serial number already exists")
	ErrAssetNotAvailable        = errors.New("asset is not available for assignment")
	ErrAssetHasActiveAssignment = errors.New("asset is currently assigned and must be returned first")
	ErrInvalidStatusChange      = errors.New("asset status can only be set to Available, Maintenance or Retired")

	ErrAssignmentNotFound  = errors.New("asset assignment not found")
	ErrAssignmentNotActive = errors.New("asset assignment has already been returned")
	ErrAssignmentForbidden = errors.New("you are not allowed to return this asset")

	ErrRequestNotFound     = errors.New("asset request not found")
	ErrRequestNotPending   = errors.New("asset request has already been decided")
	ErrRequestNotApproved  = errors.New("only approved asset requests can be fulfilled")
	ErrRequestAccessDenied = errors.New("you are not allowed to access this asset request")
	ErrCategoryMismatch    = errors.New("asset category does not match the request")

	ErrUserNotEligible = errors.New("assets can only be assigned to active users")
)
