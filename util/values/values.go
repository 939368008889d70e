package values

// Response statuses shared across handlers.
const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	BadRequestBody = "bad-request-body"
	Unprocessable  = "unprocessable"
	NotAllowed     = "not-allowed"
	NotAuthorised  = "not-authorised"
	NotFound       = "not-found"
	Conflict       = "conflict"
	TokenExpired   = "token-expired"
	ActiveLogin    = "active-login"
)

const (
	HeaderRequestID     = "X-Request-Id"
	HeaderRequestSource = "X-Request-Source"
)

type ContextKey string

const (
	ContextTracingKey ContextKey = "tracing-context"
	ContextActorKey   ContextKey = "actor"
)

// Notification deep-link screens understood by the mobile app.
const (
	ScreenIssueDetail = "issueDetail"
	ScreenOfficial    = "officialIssues"
)
