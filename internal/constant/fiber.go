package constant

const (
	ContextKeyRequestID = "requestid"

	RequestIDHeader = "X-Request-ID"

	IdempotencyHeader    = "X-Idempotency"
	IdempotencyKeyHeader = "Idempotency-Key"

	IdempotencyKeyLengthLimit = 128

	// ViewKeyHeader identifies one client view (a dashboard tab, an entry list) so that a newer
	// request from the same view supersedes an older one still in flight.
	ViewKeyHeader = "X-View-Key"

	// SlimHeaderKey is to indicate whether the current request shall be ignored by Sentry transaction tracing.
	SlimHeaderKey = "X-Slim"
)
