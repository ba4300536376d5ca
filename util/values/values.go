package values

// response statuses
const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	BadRequestBody = "bad-request-body"
	NotAllowed     = "not-allowed"
	Conflict       = "conflict"
	NotFound       = "not-found"
	NotAuthorised  = "not-authorised"
	TokenExpired   = "token-expired"
	Unavailable    = "unavailable"
)

const (
	SystemErr = "We are unable to process your request at the moment, please try again"
	TryAgain  = "Something went wrong on our side, please try again in a moment"
)

// headers
const (
	HeaderRequestSource = "X-Request-Source"
	HeaderRequestID     = "X-Request-ID"
)

type contextKey string

const (
	ContextTracingKey contextKey = "tracing-context"
	ContextUserKey    contextKey = "user_id"
)
