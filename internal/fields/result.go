package fields

import (
	"strconv"
	"time"

	"github.com/johbar/docx-field-service/pkg/ooxmldate"
)

// Result is the typed answer for one field. Only the member matching Kind is set.
// Err carries the cause for KindFileError and, where one exists, for KindFieldEmpty.
type Result struct {
	Kind Kind
	Int  int32
	Bool bool
	Text string
	Time time.Time
	Err  error
}

func intResult(v int) Result {
	return Result{Kind: KindInt, Int: int32(v)}
}

func boolResult(v bool) Result {
	return Result{Kind: KindBool, Bool: v}
}

func stringResult(s string) Result {
	if s == "" {
		return empty(nil)
	}
	return Result{Kind: KindString, Text: s}
}

func empty(err error) Result {
	return Result{Kind: KindFieldEmpty, Err: err}
}

func fileError(err error) Result {
	return Result{Kind: KindFileError, Err: err}
}

// HasValue is true for every kind that carries a value.
func (r Result) HasValue() bool {
	switch r.Kind {
	case KindInt, KindBool, KindString, KindWideString, KindDateTime:
		return true
	}
	return false
}

// String renders the value for display. Instants are written as RFC 3339 in UTC,
// kinds without value yield an empty string.
func (r Result) String() string {
	switch r.Kind {
	case KindInt:
		return strconv.FormatInt(int64(r.Int), 10)
	case KindBool:
		return strconv.FormatBool(r.Bool)
	case KindString, KindWideString:
		return r.Text
	case KindDateTime:
		return r.Time.UTC().Format(time.RFC3339)
	}
	return ""
}

// FileTime returns the instant of a KindDateTime result as Windows FILETIME.
func (r Result) FileTime() int64 {
	return ooxmldate.FileTime(r.Time)
}
