package domain

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(assignmentStructLevel, Assignment{})
	})
	return validate
}

// assignmentStructLevel keeps the staffing count in step with the roster.
func assignmentStructLevel(sl validator.StructLevel) {
	a := sl.Current().Interface().(Assignment)
	if len(a.AssignedVolunteers) != a.VolunteersAssigned {
		sl.ReportError(a.AssignedVolunteers, "AssignedVolunteers", "AssignedVolunteers", "roster_size", "")
	}
	seen := make(map[string]struct{}, len(a.AssignedVolunteers))
	for _, id := range a.AssignedVolunteers {
		if _, dup := seen[id]; dup {
			sl.ReportError(a.AssignedVolunteers, "AssignedVolunteers", "AssignedVolunteers", "unique", "")
			return
		}
		seen[id] = struct{}{}
	}
}

// Validate checks field constraints on a record and returns an Invalid error
// naming every failing field.
func Validate(entity EntityType, id string, record any) error {
	err := recordValidator().Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return Invalid(entity, id, strings.Join(fields, "; "))
}
