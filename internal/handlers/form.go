package handlers

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formString returns a pointer to the value of key, or nil when the form
// does not carry the field at all.
func formString(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// formList reads a repeated field. A single value holding a JSON array is
// decoded too.
func formList(form *multipart.Form, key string) (*[]string, error) {
	vals, ok := form.Value[key]
	if !ok {
		return nil, nil
	}
	out := []string{}
	if len(vals) == 1 && strings.HasPrefix(strings.TrimSpace(vals[0]), "[") {
		if err := json.Unmarshal([]byte(vals[0]), &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return &out, nil
}

func formFiles(form *multipart.Form, key string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	return form.File[key]
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
