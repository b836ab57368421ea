package models

// ScoreResult is the parsed scoring reply for one resume.
type ScoreResult struct {
	Name               string   `json:"name"`
	FitScore           float64  `json:"aggregate_score"`
	TechnicalScore     int      `json:"technical_score"`
	TechnicalReason    string   `json:"technical_reason"`
	SoftSkillsScore    int      `json:"softskills_score"`
	SoftSkillsReason   string   `json:"softskills_reason"`
	ExperienceScore    int      `json:"experience_and_alignment_score"`
	ExperienceReason   string   `json:"experience_and_alignment_reason"`
	PositiveHighlights string   `json:"positive_highlights,omitempty"`
	NegativeHighlights string   `json:"negative_highlights,omitempty"`
	RedFlags           []string `json:"red_flags"`
	SalaryRange        string   `json:"estimated_salary_range"`
	ConsistencyNotes   string   `json:"consistency_notes"`
	CultureFitNote     string   `json:"culture_fit_note"`
	Justification      string   `json:"justification"`
}

type ErrorKind string

const (
	ErrorKindExtraction ErrorKind = "extraction"
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindProvider   ErrorKind = "provider"
	ErrorKindInvalid    ErrorKind = "invalid"
)

// BatchItem is the outcome for one document of a batch: either Score or Error is set.
type BatchItem struct {
	Filename   string       `json:"filename"`
	Score      *ScoreResult `json:"score,omitempty"`
	ResumeText string       `json:"resume_text,omitempty"`
	Error      string       `json:"error,omitempty"`
	ErrorKind  ErrorKind    `json:"error_kind,omitempty"`
}

func (b BatchItem) Failed() bool {
	return b.Score == nil
}

type Recommendation struct {
	Name   string  `json:"name" validate:"required"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason" validate:"required"`
}

type RecommendationList struct {
	Recommendations []Recommendation `json:"recommendations" validate:"required,dive"`
}

type RedFlagReport struct {
	Found   bool   `json:"red_flags_found"`
	Summary string `json:"summary"`
}

type SalaryEstimate struct {
	Range   string `json:"estimated_salary_range"`
	Summary string `json:"summary"`
}

type ConsistencyReport struct {
	Found   bool   `json:"inconsistencies_found"`
	Summary string `json:"summary"`
}

type FitReport struct {
	RoleFitScore    int    `json:"role_fit_score"`
	CultureFitScore int    `json:"culture_fit_score"`
	Summary         string `json:"summary"`
}
