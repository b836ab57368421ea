package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

// Prompt is a system instruction plus the user turn sent with it.
type Prompt struct {
	System string
	User   string
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

var strictnessGuidance = map[models.Strictness]string{
	models.StrictnessLow: "Be lenient. Give credit for transferable skills and adjacent experience, " +
		"and only penalize gaps that clearly block the candidate from doing the job.",
	models.StrictnessMedium: "Be balanced. Reward direct evidence of the required skills and give partial " +
		"credit for closely related experience.",
	models.StrictnessHigh: "Be strict. Only credit skills and experience that the resume states explicitly, " +
		"treat every missing required skill as a significant gap and keep scores above 7 for clear matches only.",
}

// BuildScreeningPrompt creates the prompt for scoring one resume against a job.
func (pb *PromptBuilder) BuildScreeningPrompt(job models.JobDescription, resumeText string) Prompt {
	strictness := job.Strictness
	if _, ok := strictnessGuidance[strictness]; !ok {
		strictness = models.StrictnessMedium
	}

	system := fmt.Sprintf(`You are an expert AI resume screener. Evaluate a resume against a job description with extreme conciseness.

Output rules:
- Every "reason", "highlights", "note" and "justification" field is a single, succinct sentence.
- Do not speculate or add any information not directly supported by the resume.
- Scores are integers from 0 to 10.
- Calculate a weighted aggregate score: Technical (50%%), Experience & Alignment (30%%), Soft Skills (20%%).
- List red flags (employment gaps, frequent job changes, vague buzzwords, contradictions) as short phrases; use an empty list when there are none.
- Estimate an annual salary range for this candidate in this role.
- Note any inconsistencies in dates, titles or education, or confirm consistency.

Evaluation criteria:
- Strictness level (%s): %s
- Positive factors to reward: %s
- Negative factors to penalize: %s

Return only the JSON object described by the response schema.`,
		strictness,
		strictnessGuidance[strictness],
		orDefault(job.PositiveFactors, "No specific positive factors provided."),
		orDefault(job.NegativeFactors, "No specific negative factors provided."),
	)

	var user strings.Builder
	if job.Title != "" {
		fmt.Fprintf(&user, "JOB TITLE:\n%s\n\n", job.Title)
	}
	fmt.Fprintf(&user, "JOB DESCRIPTION:\n%s\n\n", job.Description)
	if len(job.RequiredSkills) > 0 {
		fmt.Fprintf(&user, "REQUIRED SKILLS:\n- %s\n\n", strings.Join(job.RequiredSkills, "\n- "))
	}
	fmt.Fprintf(&user, "---\nCANDIDATE RESUME TEXT:\n%s\n---\n", resumeText)
	user.WriteString("Evaluate the resume and provide the structured output, adhering strictly to the conciseness rules.")

	return Prompt{System: system, User: user.String()}
}

// BuildRecommendationPrompt asks for exactly n recommendations out of the ranked candidates.
func (pb *PromptBuilder) BuildRecommendationPrompt(candidateJSON string, n int) Prompt {
	return Prompt{
		System: fmt.Sprintf("You are an AI HR assistant. Based on the sorted list of candidates, provide exactly %d recommendations with concise reasons. Use each candidate's name and aggregate score as given.", n),
		User:   fmt.Sprintf("Candidate Scores: %s", candidateJSON),
	}
}

func (pb *PromptBuilder) BuildRedFlagsPrompt(resumeText string) Prompt {
	return Prompt{
		System: "You are an HR compliance AI. Analyze the resume for red flags (job hopping, gaps, buzzwords, inconsistencies). Provide a boolean `red_flags_found` and a concise, single-paragraph summary (max 80 words) of your findings.",
		User:   fmt.Sprintf("Resume Text: %s", resumeText),
	}
}

func (pb *PromptBuilder) BuildSalaryPrompt(jobDescription, resumeText string) Prompt {
	return Prompt{
		System: "You are a salary estimation AI. Based on the job and resume, provide an estimated annual salary range. Then, provide a concise, single-paragraph summary (max 80 words) justifying your estimate.",
		User:   fmt.Sprintf("Job Description: %s\nResume Text: %s", jobDescription, resumeText),
	}
}

func (pb *PromptBuilder) BuildConsistencyPrompt(resumeText string) Prompt {
	return Prompt{
		System: "You are an HR verification AI. Analyze the resume for inconsistencies in education, job titles, and dates. Provide a boolean `inconsistencies_found` and a concise, single-paragraph summary (max 80 words) of your findings.",
		User:   fmt.Sprintf("Resume Text: %s", resumeText),
	}
}

func (pb *PromptBuilder) BuildFitPrompt(jobDescription, resumeText string) Prompt {
	return Prompt{
		System: "You are a candidate fit AI. Provide a Role Fit score (0-10) and a Culture Fit score (0-10). Then, provide a concise, single-paragraph summary (max 80 words) explaining your overall assessment.",
		User:   fmt.Sprintf("Job Description: %s\nResume Text: %s", jobDescription, resumeText),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
