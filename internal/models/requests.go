package models

type RecommendRequest struct {
	CandidateScores    []ScoreResult `json:"candidate_scores" validate:"required,min=1"`
	NumRecommendations int           `json:"num_recommendations" validate:"required,min=1"`
}

type ResumeTextRequest struct {
	ResumeText string `json:"resume_text" validate:"required"`
}

type JobResumeRequest struct {
	JobDescription string `json:"job_description" validate:"required"`
	ResumeText     string `json:"resume_text" validate:"required"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Details   []string  `json:"details,omitempty"`
}
