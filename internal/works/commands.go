package works

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/media-ranker/backend/internal/models"
)

// WorkCommand is the full set of fields a user may set on a work.
type WorkCommand struct {
	Category        string `json:"category" form:"category" validate:"required,oneof=album book movie"`
	Title           string `json:"title" form:"title" validate:"required,max=255"`
	Creator         string `json:"creator" form:"creator" validate:"max=255"`
	Description     string `json:"description" form:"description" validate:"max=2000"`
	PublicationYear int    `json:"publication_year" form:"publication_year" validate:"omitempty,min=1,max=9999"`
}

// WorkPatch carries only the fields present in an update request.
type WorkPatch struct {
	Category        *string `json:"category" form:"category"`
	Title           *string `json:"title" form:"title"`
	Creator         *string `json:"creator" form:"creator"`
	Description     *string `json:"description" form:"description"`
	PublicationYear *int    `json:"publication_year" form:"publication_year"`
}

// CommandFromWork captures the editable fields of an existing work.
func CommandFromWork(w *models.Work) WorkCommand {
	return WorkCommand{
		Category:        string(w.Category),
		Title:           w.Title,
		Creator:         w.Creator,
		Description:     w.Description,
		PublicationYear: w.PublicationYear,
	}
}

// Apply overwrites cmd's fields with the ones present in the patch.
func (p WorkPatch) Apply(cmd WorkCommand) WorkCommand {
	if p.Category != nil {
		cmd.Category = *p.Category
	}
	if p.Title != nil {
		cmd.Title = *p.Title
	}
	if p.Creator != nil {
		cmd.Creator = *p.Creator
	}
	if p.Description != nil {
		cmd.Description = *p.Description
	}
	if p.PublicationYear != nil {
		cmd.PublicationYear = *p.PublicationYear
	}
	return cmd
}

// Normalize trims surrounding whitespace and lowercases the category.
func (c WorkCommand) Normalize() WorkCommand {
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	c.Title = strings.TrimSpace(c.Title)
	c.Creator = strings.TrimSpace(c.Creator)
	c.Description = strings.TrimSpace(c.Description)
	return c
}

// ApplyTo copies the command onto w.
func (c WorkCommand) ApplyTo(w *models.Work) {
	w.Category = models.Category(c.Category)
	w.Title = c.Title
	w.Creator = c.Creator
	w.Description = c.Description
	w.PublicationYear = c.PublicationYear
}

// CategoryLabel is the category name used in messages, "work" when the
// category is not a known one.
func (c WorkCommand) CategoryLabel() string {
	if models.Category(c.Category).Valid() {
		return c.Category
	}
	return "work"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field rules only; uniqueness is checked by the service.
func (c WorkCommand) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), messageFor(fe))
	}
	return verr
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "oneof":
		return "is not included in the list"
	case "max":
		if fe.Kind() == reflect.String {
			return "is too long (maximum is " + fe.Param() + " characters)"
		}
		return "must be less than or equal to " + fe.Param()
	case "min":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
