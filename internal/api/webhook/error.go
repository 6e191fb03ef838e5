package webhooks

import "CoachingAPI/pkg/response"

var (
	ErrEmptyPayload = response.NewError(400, "webhook payload is empty")
)
