package calls

import "CoachingAPI/pkg/response"

var (
	ErrCallNotFound       = response.NewError(404, "call not found")
	ErrObjectionNotFound  = response.NewError(404, "objection not found")
	ErrInvalidCallID      = response.NewError(400, "invalid call id")
	ErrInvalidObjectionID = response.NewError(400, "invalid objection id")
	ErrInvalidPagination  = response.NewError(400, "page and limit must be integers")
)
