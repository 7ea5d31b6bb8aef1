package respond

import (
	"regexp"
)

var (
	// More specific key prefixes must be replaced first.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	cerebrasKeyPattern  = regexp.MustCompile(`csk-[a-zA-Z0-9]{10,}`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	bearerPattern       = regexp.MustCompile(`(?i)bearer [a-zA-Z0-9._-]+`)

	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError masks API keys, bearer tokens and DSN passwords in err's message.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = cerebrasKeyPattern.ReplaceAllString(msg, "csk-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
