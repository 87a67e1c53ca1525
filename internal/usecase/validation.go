package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

// getValidator returns the shared validator with the custom rules:
// notblank (non-whitespace), weburl (domain.IsValidWebURL), uuidset (not uuid.Nil).
// Field names come from the `field` tag so messages key on the public names.
func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("field"); name != "" {
				return name
			}
			return f.Name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
			return domain.IsValidWebURL(fl.Field().String())
		})
		_ = v.RegisterValidation("uuidset", func(fl validator.FieldLevel) bool {
			id, ok := fl.Field().Interface().(uuid.UUID)
			return ok && id != uuid.Nil
		})
		vld = v
	})
	return vld
}

// ruleMessages maps "Field.tag" to the message reported for that failure.
type ruleMessages map[string]string

// checkRules runs the struct tags of s and translates failures to messages.
func checkRules(s any, msgs ruleMessages) ([]domain.FieldError, error) {
	err := getValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("op=usecase.checkRules: %w", err)
	}
	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := msgs[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid.", fe.Field())
		}
		out = append(out, domain.FieldError{Field: fe.Field(), Message: msg})
	}
	return out, nil
}

// checkUpdateRules is checkRules for update commands. A nil id also fails
// its second rule, so both Id messages are reported together.
func checkUpdateRules(s any, id uuid.UUID, msgs ruleMessages, nilIDMsg string) ([]domain.FieldError, error) {
	out, err := checkRules(s, msgs)
	if err != nil || id != uuid.Nil {
		return out, err
	}
	return append(out, domain.FieldError{Field: "Id", Message: nilIDMsg}), nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
