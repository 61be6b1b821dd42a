package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/text/language"
)

// HTTPErrorAdapter writes taxonomy values as HTTP responses.
type HTTPErrorAdapter struct {
	logger  *slog.Logger
	matcher language.Matcher
}

// NewHTTPErrorAdapter creates a new HTTP error adapter with an optional slog logger.
// If logger is nil, the default package logger will be used.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger, matcher: language.NewMatcher(SupportedLanguages())}
}

// HTTPErrorResponse is the JSON error payload.
type HTTPErrorResponse struct {
	Error        string            `json:"error"`
	Code         string            `json:"code,omitempty"`
	Kind         string            `json:"kind,omitempty"`
	Severity     string            `json:"severity,omitempty"`
	RequestID    string            `json:"request_id,omitempty"`
	Retryable    bool              `json:"retryable,omitempty"`
	RetryAfterMS *int64            `json:"retry_after_ms,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

type statusCodes struct{}

func (statusCodes) Network(*NetworkError) int               { return http.StatusBadGateway }
func (statusCodes) Authentication(e *AuthenticationError) int {
	if e.Code() == CodeForbidden {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}
func (statusCodes) API(e *APIError) int                     { return e.Status() }
func (statusCodes) Validation(*ValidationError) int         { return http.StatusBadRequest }
func (statusCodes) Configuration(*ConfigurationError) int   { return http.StatusInternalServerError }
func (statusCodes) Serialization(*SerializationError) int   { return http.StatusBadGateway }
func (statusCodes) Business(e *BusinessError) int {
	if e.Code() == CodeConflict {
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}
func (statusCodes) Timeout(*TimeoutError) int                       { return http.StatusGatewayTimeout }
func (statusCodes) RateLimit(*RateLimitError) int                   { return http.StatusTooManyRequests }
func (statusCodes) ServiceUnavailable(*ServiceUnavailableError) int { return http.StatusServiceUnavailable }
func (statusCodes) Internal(*InternalError) int                     { return http.StatusInternalServerError }

// StatusCodeFor determines the HTTP status for err. Foreign errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if e, ok := As(err); ok {
		return Visit[int](e, statusCodes{})
	}
	return http.StatusInternalServerError
}

// FormatErrorResponse builds the payload for err in language tag. Diagnostic
// messages never leave the process; only the user message does.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error, tag language.Tag) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	e, ok := As(err)
	if !ok {
		return HTTPErrorResponse{Error: DefaultUserMessage(KindInternal), Code: string(CodeInternal)}
	}
	rec := e.Record()
	resp := HTTPErrorResponse{
		Error:        LocalizedUserMessage(e, tag),
		Code:         string(rec.Code),
		Kind:         rec.Kind,
		Severity:     rec.Severity.String(),
		Retryable:    rec.Retryable,
		RetryAfterMS: rec.RetryDelayMS,
	}
	if rec.RequestID != nil {
		resp.RequestID = *rec.RequestID
	}
	if len(rec.Context) > 0 {
		resp.Details = rec.Context
	}
	return resp
}

// WriteErrorResponse writes a JSON error response and logs with appropriate level.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	tag, _ := language.MatchStrings(a.matcher, r.Header.Get("Accept-Language"))
	status := a.StatusCodeFor(err)
	payload := a.FormatErrorResponse(err, tag)

	b, jerr := json.Marshal(payload)
	if jerr != nil {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{\"error\":\"internal error\"}"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if payload.RetryAfterMS != nil && payload.Retryable {
		secs := (*payload.RetryAfterMS + 999) / 1000
		w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	}
	w.WriteHeader(status)
	_, _ = w.Write(b)

	if e, ok := As(err); ok {
		a.logger.LogAttrs(r.Context(), slogLevelFor(e.Severity()), e.Message(), e.Record().Attrs()...)
		return
	}
	a.logger.ErrorContext(r.Context(), err.Error())
}
