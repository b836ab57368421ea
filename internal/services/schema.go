package services

import "google.golang.org/genai"

func scoreRange() (*float64, *float64) {
	lo, hi := 0.0, 10.0
	return &lo, &hi
}

func intScore(description string) *genai.Schema {
	lo, hi := scoreRange()
	return &genai.Schema{Type: genai.TypeInteger, Description: description, Minimum: lo, Maximum: hi}
}

func str(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func boolean(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeBoolean, Description: description}
}

var screeningSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":                            str("The name of the candidate found in the resume."),
		"technical_score":                 intScore("Score from 0-10 for technical skills."),
		"technical_reason":                str("A single, succinct sentence explaining the technical score."),
		"softskills_score":                intScore("Score from 0-10 for soft skills."),
		"softskills_reason":               str("A single, succinct sentence explaining the soft skills score."),
		"experience_and_alignment_score":  intScore("Score from 0-10 for relevant experience and alignment with employer needs."),
		"experience_and_alignment_reason": str("A single, succinct sentence explaining the experience and alignment score."),
		"positive_highlights":             str("A single sentence highlighting strengths based on the positive factors."),
		"negative_highlights":             str("A single sentence highlighting weaknesses based on the negative factors."),
		"aggregate_score":                 {Type: genai.TypeNumber, Description: "Overall weighted aggregate score of the resume (0-10)."},
		"red_flags": {
			Type:        genai.TypeArray,
			Description: "Short phrases naming each red flag; empty when none were found.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"estimated_salary_range": str("Estimated annual salary range, e.g. '$70,000 - $90,000'."),
		"consistency_notes":      str("A single sentence on inconsistencies in dates, titles or education, or confirming consistency."),
		"culture_fit_note":       str("A single sentence assessing culture fit."),
		"justification":          str("A single sentence justifying the overall score."),
	},
	Required: []string{
		"name", "technical_score", "technical_reason", "softskills_score", "softskills_reason",
		"experience_and_alignment_score", "experience_and_alignment_reason", "aggregate_score",
		"red_flags", "estimated_salary_range", "consistency_notes", "culture_fit_note", "justification",
	},
	PropertyOrdering: []string{
		"name", "technical_score", "technical_reason", "softskills_score", "softskills_reason",
		"experience_and_alignment_score", "experience_and_alignment_reason", "positive_highlights",
		"negative_highlights", "red_flags", "estimated_salary_range", "consistency_notes",
		"culture_fit_note", "justification", "aggregate_score",
	},
}

var recommendationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recommendations": {
			Type:        genai.TypeArray,
			Description: "List of recommended candidates.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":   str("Name of the recommended candidate."),
					"score":  {Type: genai.TypeNumber, Description: "Aggregate score of the candidate."},
					"reason": str("Reason for recommending this candidate."),
				},
				Required: []string{"name", "score", "reason"},
			},
		},
	},
	Required: []string{"recommendations"},
}

var redFlagsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"red_flags_found": boolean("True if any red flags were found, False otherwise."),
		"summary":         str("A concise, single-paragraph summary (max 80 words) of any red flags detected, or a confirmation that none were found."),
	},
	Required: []string{"red_flags_found", "summary"},
}

var salarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"estimated_salary_range": str("Estimated annual salary range (e.g., '$70,000 - $90,000')."),
		"summary":                str("A concise, single-paragraph summary (max 80 words) justifying the salary estimation."),
	},
	Required: []string{"estimated_salary_range", "summary"},
}

var consistencySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"inconsistencies_found": boolean("True if any inconsistencies were found, False otherwise."),
		"summary":               str("A concise, single-paragraph summary (max 80 words) of any background inconsistencies, or a confirmation of consistency."),
	},
	Required: []string{"inconsistencies_found", "summary"},
}

var fitSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"role_fit_score":    intScore("Score from 0-10 for role fit."),
		"culture_fit_score": intScore("Score from 0-10 for culture fit."),
		"summary":           str("A concise, single-paragraph summary (max 80 words) assessing the candidate's overall fit for the role and culture."),
	},
	Required: []string{"role_fit_score", "culture_fit_score", "summary"},
}
