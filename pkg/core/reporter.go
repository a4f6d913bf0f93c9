package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// messageTemplates holds the user-facing text for each code.
var messageTemplates = map[Code]string{
	CodeInvalidRepository:     "The path is not a valid git repository. Ensure you are running inside a repository.",
	CodeRepositoryNotFound:    "The repository could not be found. Please check the path.",
	CodeGitOperationFailed:    "Reading the commit history failed. Please check that git is installed and the range exists.",
	CodeThemeValidationFailed: "The theme configuration is invalid. Please check its name, vocabulary and patterns.",
	CodeThemeNotFound:         "The requested theme does not exist. The default theme was used instead.",
	CodeThemeLoadFailed:       "The theme could not be loaded.",
	CodeExportFailed:          "The patch notes could not be exported.",
	CodeInvalidFormat:         "The export format is not supported. Please use markdown, html, json, yaml or csv.",
	CodeFileWriteFailed:       "The output file could not be written. Please check permissions.",
	CodeValidationError:       "The input is invalid.",
	CodeMissingParameter:      "A required parameter is missing.",
	CodeUnknownError:          "An unexpected error occurred.",
	CodeInternalError:         "An internal error occurred while reporting a failure.",
}

// substringRule maps message fragments to a code. All fragments must be present.
type substringRule struct {
	fragments []string
	code      Code
}

var substringRules = []substringRule{
	{[]string{"repository", "not found"}, CodeRepositoryNotFound},
	{[]string{"repository", "invalid"}, CodeInvalidRepository},
	{[]string{"not a git repository"}, CodeInvalidRepository},
	{[]string{"git"}, CodeGitOperationFailed},
	{[]string{"theme", "not found"}, CodeThemeNotFound},
	{[]string{"theme"}, CodeThemeLoadFailed},
	{[]string{"format"}, CodeInvalidFormat},
	{[]string{"export"}, CodeExportFailed},
	{[]string{"validation"}, CodeValidationError},
	{[]string{"required"}, CodeMissingParameter},
}

// Reporter normalizes arbitrary failures into SystemError envelopes.
type Reporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewReporter creates a Reporter. A nil logger disables logging and a nil
// clock falls back to time.Now.
func NewReporter(logger *zap.Logger, now func() time.Time) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Reporter{logger: logger, now: now}
}

// Report is Handle for the common case: nil stays nil.
func (r *Reporter) Report(err error, component string, ctx map[string]any) error {
	if err == nil {
		return nil
	}
	return r.Handle(err, component, ctx)
}

// Handle converts v into a SystemError. It never panics, whatever v is.
func (r *Reporter) Handle(v any, component string, ctx map[string]any) (se *SystemError) {
	ts := r.clock()
	defer func() {
		if rec := recover(); rec != nil {
			se = &SystemError{
				ID:        uuid.NewString(),
				Code:      CodeInternalError,
				Message:   messageTemplates[CodeInternalError],
				Component: component,
				Details:   map[string]any{"panic": fmt.Sprint(rec)},
				Timestamp: ts,
			}
		}
	}()

	err, raw := normalize(v)

	var existing *SystemError
	if err != nil && errors.As(err, &existing) {
		out := *existing
		out.Details = mergeDetails(existing.Details, ctx)
		return &out
	}

	code := deriveCode(err, raw)
	details := map[string]any{"originalMessage": raw}
	if err != nil {
		details["stack"] = fmt.Sprintf("%+v", err)
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			details["hints"] = hints
		}
	}

	se = &SystemError{
		ID:        uuid.NewString(),
		Code:      code,
		Message:   userMessage(code, raw),
		Component: component,
		Details:   mergeDetails(details, ctx),
		Timestamp: ts,
		cause:     err,
	}
	r.log(se)
	return se
}

func (r *Reporter) clock() time.Time {
	if r == nil || r.now == nil {
		return time.Now()
	}
	return r.now()
}

func (r *Reporter) log(se *SystemError) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.Error("operation failed",
		zap.String("id", se.ID),
		zap.String("code", string(se.Code)),
		zap.String("component", se.Component),
		zap.Any("originalMessage", se.Details["originalMessage"]),
	)
}

// normalize returns v as an error (nil when v was not one) and its raw message.
func normalize(v any) (error, string) {
	switch t := v.(type) {
	case nil:
		return nil, ""
	case error:
		return t, t.Error()
	case string:
		return nil, t
	case fmt.Stringer:
		return nil, t.String()
	default:
		return nil, fmt.Sprintf("%v", t)
	}
}

func deriveCode(err error, raw string) Code {
	if err != nil {
		var coded interface{ ErrorCode() Code }
		if errors.As(err, &coded) {
			return coded.ErrorCode()
		}
		var ve *ValidationError
		if errors.As(err, &ve) {
			if ve.Subject == "theme" {
				return CodeThemeValidationFailed
			}
			return CodeValidationError
		}
	}

	lower := strings.ToLower(raw)
	for _, rule := range substringRules {
		if containsAll(lower, rule.fragments) {
			return rule.code
		}
	}
	return CodeUnknownError
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}

// userMessage passes through text that already reads as end-user guidance.
func userMessage(code Code, raw string) string {
	if strings.Contains(raw, "Please") || strings.Contains(raw, "Ensure") {
		return raw
	}
	if msg, ok := messageTemplates[code]; ok {
		return msg
	}
	return messageTemplates[CodeUnknownError]
}

func mergeDetails(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
