package summarize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/utils/text"
)

// validate checks every field and reports all problems at once. Unknown
// fields are ignored.
func validate(req request, minLength, maxLength int) (Input, []entity.FieldError) {
	var errs []entity.FieldError
	in := Input{Length: entity.DefaultLength, Format: FormatText}

	switch s, present, ok := stringField(req.Text); {
	case !present:
		errs = append(errs, entity.FieldError{Field: "text", Message: "Text is required"})
	case !ok:
		errs = append(errs, entity.FieldError{Field: "text", Message: "Text must be a string"})
	case s == "":
		errs = append(errs, entity.FieldError{Field: "text", Message: "Text is required"})
	case text.CountRunes(s) < minLength:
		errs = append(errs, entity.FieldError{
			Field:   "text",
			Message: fmt.Sprintf("Text must be at least %s characters long", groupThousands(minLength)),
		})
	case text.CountRunes(s) > maxLength:
		errs = append(errs, entity.FieldError{
			Field:   "text",
			Message: fmt.Sprintf("Text must be no more than %s characters long", groupThousands(maxLength)),
		})
	default:
		in.Text = s
	}

	if s, present, ok := stringField(req.Length); present {
		pref, err := entity.ParseLengthPreference(s)
		if !ok || err != nil || strings.TrimSpace(s) == "" {
			errs = append(errs, entity.FieldError{Field: "length", Message: "Length must be one of: short, medium, long"})
		} else {
			in.Length = pref
		}
	}

	if s, present, ok := stringField(req.Format); present {
		switch f := strings.ToLower(strings.TrimSpace(s)); {
		case ok && (f == FormatText || f == FormatHTML):
			in.Format = f
		default:
			errs = append(errs, entity.FieldError{Field: "format", Message: "Format must be one of: text, html"})
		}
	}

	return in, errs
}

// stringField decodes a raw JSON value. present is false for an absent or
// null field; ok is false when the value is not a string.
func stringField(raw json.RawMessage) (s string, present, ok bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, false
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, false
	}
	return s, true, true
}

// groupThousands formats n as 15,000.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if n < 0 || len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
