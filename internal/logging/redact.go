package logging

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/k-code-yt/cashpay-ipn/internal/domain/notification"
)

const hashPrefixLen = 16

// Redactor turns an untrusted callback payload into something safe to log.
type Redactor struct {
	MaxValue int
}

func NewRedactor(maxValue int) *Redactor {
	if maxValue <= 0 {
		maxValue = 128
	}
	return &Redactor{MaxValue: maxValue}
}

// Redact keeps only protocol fields, masks the customer email, shortens the
// hash and truncates every value. The number of dropped keys is reported
// under "_dropped_keys".
func (r *Redactor) Redact(payload url.Values) map[string]any {
	out := make(map[string]any, len(notification.Fields)+1)
	known := make(map[string]struct{}, len(notification.Fields))
	for _, f := range notification.Fields {
		known[f] = struct{}{}
		vals, ok := payload[f]
		if !ok {
			continue
		}
		redacted := make([]string, 0, len(vals))
		for _, v := range vals {
			switch f {
			case notification.Field_CustomerEmail:
				v = maskEmail(v)
			case notification.Field_Hash:
				v = truncate(v, hashPrefixLen)
			}
			redacted = append(redacted, truncate(v, r.MaxValue))
		}
		if len(redacted) == 1 {
			out[f] = redacted[0]
		} else {
			out[f] = redacted
		}
	}

	dropped := 0
	for k := range payload {
		if _, ok := known[k]; !ok {
			dropped++
		}
	}
	if dropped > 0 {
		out["_dropped_keys"] = dropped
	}
	return out
}

func maskEmail(v string) string {
	at := strings.LastIndexByte(v, '@')
	if at <= 0 {
		return "***"
	}
	_, first := utf8.DecodeRuneInString(v)
	return v[:first] + "***" + v[at:]
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
