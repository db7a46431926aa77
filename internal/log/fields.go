package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldReferer       = "referer"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldSessionID     = "session_id"
	FieldEntryKind     = "entry_kind"
	FieldEntryUUID     = "entry_uuid"
	FieldAccountUUID   = "account_uuid"
	FieldAmountCents   = "amount_cents"
	FieldEventTopic    = "event_topic"
	FieldEventID       = "event_id"
	FieldBackendPath   = "backend_path"
	FieldBackendStatus = "backend_status"
)

// Components
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAPI       = "api"
	ComponentAuth      = "auth"
	ComponentLedger    = "ledger"
	ComponentAccounts  = "accounts"
	ComponentDashboard = "dashboard"
	ComponentCards     = "cards"
	ComponentEvents    = "events"
	ComponentRealtime  = "realtime"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentMirror    = "mirror"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Operations
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpActivate   = "activate"
	OpDeactivate = "deactivate"
	OpTransfer   = "transfer"
	OpPay        = "pay"
	OpLogin      = "login"
	OpLogout     = "logout"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpMirror     = "mirror"
	OpValidate   = "validate"
	OpRender     = "render"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// Error categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeAuth          = "auth_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeBackend       = "backend_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithSession(id string) LogFields {
	if id != "" {
		f[FieldSessionID] = id
	}
	return f
}

// WithEntry adds ledger-entry fields
func (f LogFields) WithEntry(kind, uuid, account string, amountCents int64) LogFields {
	f[FieldEntryKind] = kind
	if uuid != "" {
		f[FieldEntryUUID] = uuid
	}
	if account != "" {
		f[FieldAccountUUID] = account
	}
	f[FieldAmountCents] = amountCents
	return f
}

// WithBackendCall adds fields describing a call to the REST backend
func (f LogFields) WithBackendCall(method, path string, status int) LogFields {
	f[FieldMethod] = method
	f[FieldBackendPath] = path
	f[FieldBackendStatus] = status
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
