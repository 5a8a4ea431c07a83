package handlers

import (
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindingErrors turns a request-binding failure into a field error map.
func bindingErrors(c *gin.Context, err error) map[string][]string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{typeErr.Field: {"is invalid"}}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if fields := formFieldsWithValue(c, numErr.Num); len(fields) > 0 {
			out := make(map[string][]string, len(fields))
			for _, name := range fields {
				out[name] = []string{"is invalid"}
			}
			return out
		}
		return map[string][]string{"base": {"contains a value that is not a number"}}
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make(map[string][]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			name := strings.ToLower(fe.Field())
			out[name] = append(out[name], bindingMessage(fe))
		}
		return out
	}

	return map[string][]string{"base": {"could not be read"}}
}

// formFieldsWithValue lists the posted form keys carrying value. Form binding
// does not name the field behind a bad number.
func formFieldsWithValue(c *gin.Context, value string) []string {
	var names []string
	for name, values := range c.Request.PostForm {
		if slices.Contains(values, value) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "min":
		return "is too short (minimum is " + fe.Param() + " characters)"
	case "max":
		return "is too long (maximum is " + fe.Param() + " characters)"
	default:
		return "is invalid"
	}
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
