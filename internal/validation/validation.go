// Package validation registers request field rules on gin's validator.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/field-task-api/internal/models"
)

var registerOnce sync.Once

// Register installs the custom rules. It is safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		err = RegisterOn(v)
	})
	return err
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"slug":      isSlug,
		"status":    isStatus,
		"priority":  isPriority,
		"fibertype": isFiberType,
		"role":      isRole,
		"notblank":  notBlank,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func isSlug(fl validator.FieldLevel) bool {
	_, err := models.NormalizeSlug(fl.Field().String())
	return err == nil
}

func isStatus(fl validator.FieldLevel) bool {
	_, err := models.ParseAssignmentStatus(fl.Field().String())
	return err == nil
}

func isPriority(fl validator.FieldLevel) bool {
	_, err := models.ParsePriority(fl.Field().String())
	return err == nil
}

func isFiberType(fl validator.FieldLevel) bool {
	_, err := models.ParseFiberType(fl.Field().String())
	return err == nil
}

func isRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Describe turns binding errors into a single client-facing message.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := toSnake(fe.Field())
		switch fe.Tag() {
		case "required", "notblank":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
