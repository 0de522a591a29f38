package api

import (
	"strings"

	"github.com/tidwall/gjson"
)

// detailMessage turns a non-2xx body into a user-facing message.
// A string detail is used as is; a list of {loc, msg} entries becomes
// "loc.joined: msg" lines joined by newlines.
func detailMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists() || detail.Type == gjson.Null:
		return ""
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		var lines []string
		detail.ForEach(func(_, entry gjson.Result) bool {
			lines = append(lines, validationLine(entry))
			return true
		})
		return strings.Join(lines, "\n")
	default:
		return detail.Raw
	}
}

func validationLine(entry gjson.Result) string {
	var loc []string
	entry.Get("loc").ForEach(func(_, part gjson.Result) bool {
		loc = append(loc, part.String())
		return true
	})
	return strings.Join(loc, ".") + ": " + entry.Get("msg").String()
}
