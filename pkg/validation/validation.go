package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v *validator.Validate

var periodRe = regexp.MustCompile(`^\d{4}\s+[Qq][1-4]$`)

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	if v == nil {
		v = validator.New()
		// Custom: Excel file path must have supported extension
		_ = v.RegisterValidation("filepath_ext", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			s = strings.ToLower(s)
			return strings.HasSuffix(s, ".xlsx") || strings.HasSuffix(s, ".xlsm") || strings.HasSuffix(s, ".xltx") || strings.HasSuffix(s, ".xltm")
		})
		// Custom: A1-style range or a plausible defined name
		_ = v.RegisterValidation("a1orname", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return false
			}
			if strings.Contains(s, ":") {
				parts := strings.Split(s, ":")
				if len(parts) != 2 {
					return false
				}
				a1 := regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)
				return a1.MatchString(parts[0]) && a1.MatchString(parts[1])
			}
			nameRe := regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\. ]{0,63}$`)
			return nameRe.MatchString(s)
		})
		// Custom: canonical "YYYY Qn" period label
		_ = v.RegisterValidation("periodlabel", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if !periodRe.MatchString(s) {
				return false
			}
			year, err := strconv.Atoi(strings.Fields(s)[0])
			return err == nil && year > 0
		})
	}
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "filepath_ext":
				return "VALIDATION: path must be an Excel file (.xlsx, .xlsm, .xltx, .xltm)"
			case "a1orname":
				return "VALIDATION: invalid range; use A1:D50 or a defined name"
			case "periodlabel":
				return fmt.Sprintf("PERIOD_FORMAT: %s must be a 'YYYY Qn' label, e.g. '2023 Q1'", field)
			case "min", "max", "gte", "lte":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}
