package validator

import (
	"encoding/base64"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUUID accepts any RFC 4122 UUID in canonical form.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}

var dataURLRegex = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,(.+)$`)

// Proof-of-purchase documents are stored inline, so only these types are
// accepted.
var allowedDocumentTypes = []string{"image/png", "image/jpeg", "application/pdf"}

// MaxDocumentBytes bounds the decoded size of an inline document.
const MaxDocumentBytes = 5 << 20

// IsValidDocumentDataURL reports whether s is a base64 data URL holding an
// allowed document type within MaxDocumentBytes.
func IsValidDocumentDataURL(s string) bool {
	m := dataURLRegex.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	if !IsInSlice(strings.ToLower(m[1]), allowedDocumentTypes) {
		return false
	}
	if base64.StdEncoding.DecodedLen(len(m[2])) > MaxDocumentBytes+3 {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(m[2])
	return err == nil
}

// Pagination applies the list defaults (page 1, limit 20) and rejects
// negative values or a limit above 100.
func Pagination(page, limit *int) ValidationErrors {
	var errs ValidationErrors
	if *page < 0 {
		errs = append(errs, ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if *page == 0 {
		*page = 1
	}
	if *limit < 0 {
		errs = append(errs, ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs = append(errs, ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	return errs
}

// DateRange validates optional YYYY-MM-DD bounds and that start is not after end.
func DateRange(start, end *string) ValidationErrors {
	var errs ValidationErrors
	var s, e time.Time
	var okS, okE bool
	if start != nil && *start != "" {
		if s, okS = IsValidDate(*start); !okS {
			errs = append(errs, ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if end != nil && *end != "" {
		if e, okE = IsValidDate(*end); !okE {
			errs = append(errs, ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}
	if okS && okE && s.After(e) {
		errs = append(errs, ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	return errs
}

// TotalPages returns the page count for a result set.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
