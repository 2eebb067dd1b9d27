package middlewares

const (
	// gin context keys
	CtxRequestID = "request_id"

	RequestIDHeader = "X-Request-Id"
)
