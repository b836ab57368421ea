package models

import (
	"fmt"
	"strings"
)

type Strictness string

const (
	StrictnessLow    Strictness = "low"
	StrictnessMedium Strictness = "medium"
	StrictnessHigh   Strictness = "high"
)

// ParseStrictness maps user input to a Strictness. Empty input selects medium.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return StrictnessMedium, nil
	case StrictnessLow:
		return StrictnessLow, nil
	case StrictnessMedium:
		return StrictnessMedium, nil
	case StrictnessHigh:
		return StrictnessHigh, nil
	default:
		return "", fmt.Errorf("invalid strictness %q: expected low, medium or high", s)
	}
}

type JobDescription struct {
	Title           string     `json:"job_title"`
	Description     string     `json:"job_description" validate:"required"`
	RequiredSkills  []string   `json:"required_skills,omitempty"`
	Strictness      Strictness `json:"strictness" validate:"oneof=low medium high"`
	PositiveFactors string     `json:"positive_factors,omitempty"`
	NegativeFactors string     `json:"negative_factors,omitempty"`
}

// ParseSkills splits a comma or newline separated skill list, dropping blanks
// and duplicates while keeping the original order.
func ParseSkills(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	seen := make(map[string]struct{}, len(fields))
	var skills []string
	for _, f := range fields {
		skill := strings.TrimSpace(f)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}
