// Package respond writes the JSON envelope every route returns. The flash in
// an envelope belongs to that one response only.
package respond

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Flash is the one-shot status message shown with a response.
type Flash struct {
	Status      string              `json:"status,omitempty"`
	Message     string              `json:"message,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
}

type Envelope struct {
	Flash    *Flash `json:"flash,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
}

func Success(message string) *Flash {
	return &Flash{Status: StatusSuccess, Message: message}
}

func Failure(message string, fieldErrors map[string][]string) *Flash {
	return &Flash{Status: StatusFailure, Message: message, FieldErrors: fieldErrors}
}

// Render writes data with an optional flash.
func Render(c *gin.Context, status int, flash *Flash, data any) {
	c.JSON(status, Envelope{Flash: flash, Data: data})
}

// Redirect answers 303 See Other, pointing at location, and aborts the chain.
func Redirect(c *gin.Context, location string, flash *Flash) {
	c.Header("Location", location)
	c.AbortWithStatusJSON(http.StatusSeeOther, Envelope{Flash: flash, Redirect: location})
}

// Fail writes a failure flash with no data and aborts the chain.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Flash: Failure(message, nil)})
}

// Back returns the path of the request's Referer when it points at this
// host, or fallback otherwise.
func Back(r *http.Request, fallback string) string {
	ref := r.Referer()
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil {
		return fallback
	}
	if u.Host != "" && u.Host != r.Host {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	return u.RequestURI()
}
