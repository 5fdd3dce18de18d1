package supply

import "errors"

var (
	ErrSupplyNotFound     = errors.New("office supply not found")
	ErrSupplyNameExists   = errors.New("an office supply with this name already exists")
	ErrSupplyInUse        = errors.New("office supply has open requests and cannot be deleted")
	ErrInsufficientStock  = errors.New("insufficient stock to fulfil this request")
	ErrRequestNotFound    = errors.New("supply request not found")
	ErrRequestNotPending  = errors.New("supply request has already been decided")
	ErrRequestNotApproved = errors.New("only approved supply requests can be fulfilled")
	ErrRequestForbidden   = errors.New("you are not allowed to access this supply request")
)
