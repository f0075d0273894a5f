package domain

import (
	"fmt"
	"time"
)

// Placeholders written into a CheckResult when a field could not be observed.
const (
	Unknown       = "Bilinmiyor"
	NotApplicable = "-"
)

// ExcerptLimit is the number of characters of body kept in Content.
const ExcerptLimit = 200

// CheckResult is the report for one checked URL. Every field is always set;
// error paths use the placeholders above.
type CheckResult struct {
	URL          string `json:"url"`
	Status       string `json:"status"`
	Working      bool   `json:"working"`
	ResponseTime string `json:"response_time"`
	ContentType  string `json:"content_type"`
	Server       string `json:"server"`
	Content      string `json:"content"`
}

// WorkingLabel renders the status label of a result that passed or failed
// with a known HTTP code.
func WorkingLabel(working bool, code int) string {
	if working {
		return fmt.Sprintf("Çalışıyor (%d)", code)
	}
	return fmt.Sprintf("Çalışmıyor (%d)", code)
}

// FailureLabel renders the status label for a failure category.
func FailureLabel(category string) string {
	return fmt.Sprintf("Çalışmıyor (%s)", category)
}

func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.2f saniye", d.Seconds())
}

// Exceeded renders the response time of an attempt that ran out of budget.
func Exceeded(budget time.Duration) string {
	return "> " + Elapsed(budget)
}

// Excerpt returns the first ExcerptLimit characters of body, or fallback
// when body is empty.
func Excerpt(body, fallback string) string {
	if body == "" {
		return fallback
	}
	r := []rune(body)
	if len(r) > ExcerptLimit {
		r = r[:ExcerptLimit]
	}
	return string(r)
}

// OrUnknown returns v, or Unknown when v is blank.
func OrUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}
