package service

import (
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/iut-charges-api/internal/models"
)

var (
	academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
	hhmmPattern         = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// NewValidator returns a validator with the planning tags registered:
// academic_year (YYYY-YYYY, consecutive years), hhmm, isodate and course_kind.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return validAcademicYear(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("course_kind", func(fl validator.FieldLevel) bool {
		switch models.CourseKind(fl.Field().String()) {
		case models.CourseKindLecture, models.CourseKindTutorial, models.CourseKindPractice:
			return true
		}
		return false
	})
	return v
}

func validAcademicYear(raw string) bool {
	m := academicYearPattern.FindStringSubmatch(raw)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	return v
}
