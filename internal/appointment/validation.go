package appointment

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
)

var contactPattern = regexp.MustCompile(`^[0-9+\-() ]+$`)

// FieldValidator is the default PatientValidator. Rules live in the
// validate tags of PatientInfo.
type FieldValidator struct {
	validate *validator.Validate
}

func NewFieldValidator() *FieldValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return contactPattern.MatchString(fl.Field().String())
	})
	return &FieldValidator{validate: v}
}

// ValidatePatient reports every failing field as one InvalidInput error.
func (v *FieldValidator) ValidatePatient(p PatientInfo) error {
	err := v.validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Invalid("patient: %v", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problem := fe.Field() + " " + fe.Tag()
		if fe.Param() != "" {
			problem += "=" + fe.Param()
		}
		problems = append(problems, problem)
	}
	return apperr.Invalid("patient fields failed validation: %s", strings.Join(problems, ", "))
}
