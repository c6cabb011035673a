package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeValidationFailed   = "validation_error"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeCapacityExhausted  = "capacity_exhausted"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"
	CodeServiceUnavailable = "service_unavailable"

	CodeEmailAlreadyExists   = "email_already_exists"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeRefreshTokenRequired = "refresh_token_required"
	CodeInvalidRefreshToken  = "invalid_refresh_token"

	CodeMissingAuth       = "missing_auth"
	CodeInvalidAuthHeader = "invalid_auth_header"
	CodeInvalidToken      = "invalid_token"
	CodeTokenExpired      = "token_expired"
)
