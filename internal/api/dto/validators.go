package dto

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	maxSkills      = 50
	maxSkillLength = 50
)

// RegisterValidators registers the custom binding tags used by request DTOs
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("skills", ValidSkills)
}

// ValidSkills accepts an empty list, or up to 50 non-blank skills of at most 50 characters each
func ValidSkills(fl validator.FieldLevel) bool {
	skills, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	if len(skills) > maxSkills {
		return false
	}
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > maxSkillLength {
			return false
		}
	}
	return true
}

// NormalizeSkills trims whitespace and drops case-insensitive duplicates, keeping first spelling
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		key := strings.ToLower(trimmed)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
