package services

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

type ScreeningService interface {
	ScreenResume(ctx context.Context, job models.JobDescription, doc models.ResumeDocument) (*models.ScoreResult, error)
	ScreenBatch(ctx context.Context, job models.JobDescription, docs []models.ResumeDocument) []models.BatchItem
	Recommend(ctx context.Context, scores []models.ScoreResult, n int) (*models.RecommendationList, error)
	DetectRedFlags(ctx context.Context, resumeText string) (*models.RedFlagReport, error)
	EstimateSalary(ctx context.Context, jobDescription, resumeText string) (*models.SalaryEstimate, error)
	CheckConsistency(ctx context.Context, resumeText string) (*models.ConsistencyReport, error)
	CalculateFit(ctx context.Context, jobDescription, resumeText string) (*models.FitReport, error)
}

type screeningService struct {
	llm           LLMService
	extractor     DocumentExtractor
	promptBuilder *PromptBuilder
	validate      *validator.Validate
	recorder      *metrics.Recorder
}

func NewScreeningService(llm LLMService, extractor DocumentExtractor, recorder *metrics.Recorder) ScreeningService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	return &screeningService{
		llm:           llm,
		extractor:     extractor,
		promptBuilder: NewPromptBuilder(),
		validate:      validate,
		recorder:      recorder,
	}
}

// scoreReply mirrors the screening schema. Pointers tell a missing field from a zero one.
type scoreReply struct {
	Name               *string   `json:"name" validate:"required,notblank"`
	TechnicalScore     *int      `json:"technical_score" validate:"required,min=0,max=10"`
	TechnicalReason    *string   `json:"technical_reason" validate:"required,notblank"`
	SoftSkillsScore    *int      `json:"softskills_score" validate:"required,min=0,max=10"`
	SoftSkillsReason   *string   `json:"softskills_reason" validate:"required,notblank"`
	ExperienceScore    *int      `json:"experience_and_alignment_score" validate:"required,min=0,max=10"`
	ExperienceReason   *string   `json:"experience_and_alignment_reason" validate:"required,notblank"`
	PositiveHighlights *string   `json:"positive_highlights"`
	NegativeHighlights *string   `json:"negative_highlights"`
	AggregateScore     *float64  `json:"aggregate_score" validate:"required"`
	RedFlags           *[]string `json:"red_flags" validate:"required"`
	SalaryRange        *string   `json:"estimated_salary_range" validate:"required,notblank"`
	ConsistencyNotes   *string   `json:"consistency_notes" validate:"required,notblank"`
	CultureFitNote     *string   `json:"culture_fit_note" validate:"required,notblank"`
	Justification      *string   `json:"justification" validate:"required,notblank"`
}

type redFlagsReply struct {
	Found   *bool   `json:"red_flags_found" validate:"required"`
	Summary *string `json:"summary" validate:"required"`
}

type salaryReply struct {
	Range   *string `json:"estimated_salary_range" validate:"required"`
	Summary *string `json:"summary" validate:"required"`
}

type consistencyReply struct {
	Found   *bool   `json:"inconsistencies_found" validate:"required"`
	Summary *string `json:"summary" validate:"required"`
}

type fitReply struct {
	RoleFitScore    *int    `json:"role_fit_score" validate:"required,min=0,max=10"`
	CultureFitScore *int    `json:"culture_fit_score" validate:"required,min=0,max=10"`
	Summary         *string `json:"summary" validate:"required"`
}

// ScreenResume extracts the resume text when needed and scores it with one model call.
func (s *screeningService) ScreenResume(ctx context.Context, job models.JobDescription, doc models.ResumeDocument) (*models.ScoreResult, error) {
	if doc.Text == "" {
		text, err := s.extractor.ExtractText(doc.Filename, doc.Content)
		if err != nil {
			s.recorder.ObserveDocument(string(Classify(err)))
			return nil, err
		}
		doc.Text = text
	}

	score, err := s.score(ctx, job, doc)
	if err != nil {
		s.recorder.ObserveDocument(string(Classify(err)))
		return nil, err
	}
	s.recorder.ObserveDocument("scored")
	return score, nil
}

func (s *screeningService) score(ctx context.Context, job models.JobDescription, doc models.ResumeDocument) (*models.ScoreResult, error) {
	prompt := s.promptBuilder.BuildScreeningPrompt(job, doc.Text)
	log.WithFields(log.Fields{
		"filename":      doc.Filename,
		"prompt_length": len(prompt.System) + len(prompt.User),
	}).Info("🤖 Scoring resume with LLM...")

	raw, err := s.llm.GenerateJSON(ctx, GenerateRequest{
		Operation: "screen",
		Prompt:    prompt,
		Schema:    screeningSchema,
	})
	if err != nil {
		return nil, err
	}

	var reply scoreReply
	if err := s.parseReply("screen", raw, &reply); err != nil {
		return nil, err
	}

	return reply.toScoreResult(), nil
}

// ScreenBatch scores documents one after another. A failure is recorded on
// that document's item and never stops the rest of the batch.
func (s *screeningService) ScreenBatch(ctx context.Context, job models.JobDescription, docs []models.ResumeDocument) []models.BatchItem {
	items := make([]models.BatchItem, 0, len(docs))
	start := time.Now()

	for i, doc := range docs {
		entry := log.WithFields(log.Fields{"filename": doc.Filename, "position": i + 1, "total": len(docs)})
		item := models.BatchItem{Filename: doc.Filename}

		text, err := s.extractor.ExtractText(doc.Filename, doc.Content)
		if err != nil {
			entry.WithError(err).Warn("⚠️ Skipping unreadable document")
			s.fail(&item, err)
			items = append(items, item)
			continue
		}
		doc.Text = text

		score, err := s.score(ctx, job, doc)
		if err != nil {
			entry.WithError(err).Warn("⚠️ Resume could not be scored")
			s.fail(&item, err)
			items = append(items, item)
			continue
		}

		item.Score = score
		item.ResumeText = text
		s.recorder.ObserveDocument("scored")
		items = append(items, item)
		entry.WithField("aggregate_score", score.FitScore).Info("✅ Resume scored")
	}

	log.WithFields(log.Fields{
		"documents":   len(docs),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("📋 Batch screening finished")
	return items
}

func (s *screeningService) fail(item *models.BatchItem, err error) {
	item.ErrorKind = Classify(err)
	item.Error = err.Error()
	s.recorder.ObserveDocument(string(item.ErrorKind))
}

// Recommend ranks candidates locally and asks the model to explain the top n.
func (s *screeningService) Recommend(ctx context.Context, scores []models.ScoreResult, n int) (*models.RecommendationList, error) {
	if n <= 0 {
		return nil, errors.New("number of recommendations must be positive")
	}
	ranked := RankScores(scores)
	if len(ranked) == 0 {
		return &models.RecommendationList{Recommendations: []models.Recommendation{}}, nil
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	top := ranked[:n]

	candidateJSON, err := json.MarshalIndent(top, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode candidate scores")
	}

	raw, err := s.llm.GenerateJSON(ctx, GenerateRequest{
		Operation: "recommend",
		Prompt:    s.promptBuilder.BuildRecommendationPrompt(string(candidateJSON), n),
		Schema:    recommendationSchema,
	})
	if err != nil {
		return nil, err
	}

	var list models.RecommendationList
	if err := s.parseReply("recommend", raw, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *screeningService) DetectRedFlags(ctx context.Context, resumeText string) (*models.RedFlagReport, error) {
	var reply redFlagsReply
	if err := s.analyze(ctx, "red_flags", s.promptBuilder.BuildRedFlagsPrompt(resumeText), redFlagsSchema, &reply); err != nil {
		return nil, err
	}
	return &models.RedFlagReport{Found: *reply.Found, Summary: strings.TrimSpace(*reply.Summary)}, nil
}

func (s *screeningService) EstimateSalary(ctx context.Context, jobDescription, resumeText string) (*models.SalaryEstimate, error) {
	var reply salaryReply
	if err := s.analyze(ctx, "salary_estimation", s.promptBuilder.BuildSalaryPrompt(jobDescription, resumeText), salarySchema, &reply); err != nil {
		return nil, err
	}
	return &models.SalaryEstimate{Range: strings.TrimSpace(*reply.Range), Summary: strings.TrimSpace(*reply.Summary)}, nil
}

func (s *screeningService) CheckConsistency(ctx context.Context, resumeText string) (*models.ConsistencyReport, error) {
	var reply consistencyReply
	if err := s.analyze(ctx, "background_consistency", s.promptBuilder.BuildConsistencyPrompt(resumeText), consistencySchema, &reply); err != nil {
		return nil, err
	}
	return &models.ConsistencyReport{Found: *reply.Found, Summary: strings.TrimSpace(*reply.Summary)}, nil
}

func (s *screeningService) CalculateFit(ctx context.Context, jobDescription, resumeText string) (*models.FitReport, error) {
	var reply fitReply
	if err := s.analyze(ctx, "candidate_fit", s.promptBuilder.BuildFitPrompt(jobDescription, resumeText), fitSchema, &reply); err != nil {
		return nil, err
	}
	return &models.FitReport{
		RoleFitScore:    *reply.RoleFitScore,
		CultureFitScore: *reply.CultureFitScore,
		Summary:         strings.TrimSpace(*reply.Summary),
	}, nil
}

func (s *screeningService) analyze(ctx context.Context, operation string, prompt Prompt, schema *genai.Schema, target interface{}) error {
	raw, err := s.llm.GenerateJSON(ctx, GenerateRequest{Operation: operation, Prompt: prompt, Schema: schema})
	if err != nil {
		return err
	}
	return s.parseReply(operation, raw, target)
}

// parseReply decodes a model reply into target and validates it, returning a *ParseError on any mismatch.
func (s *screeningService) parseReply(operation, raw string, target interface{}) error {
	jsonStr := extractJSON(raw)

	decoder := json.NewDecoder(strings.NewReader(jsonStr))
	if err := decoder.Decode(target); err != nil {
		parseErr := &ParseError{Operation: operation, Reason: "reply is not valid JSON for the expected schema", Raw: raw, Err: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			parseErr.Field = typeErr.Field
			parseErr.Reason = "has type " + typeErr.Value + ", expected " + typeErr.Type.String()
		}
		return parseErr
	}

	if err := s.validate.Struct(target); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			return &ParseError{
				Operation: operation,
				Field:     jsonFieldName(fe),
				Reason:    validationReason(fe),
				Raw:       raw,
				Err:       err,
			}
		}
		return &ParseError{Operation: operation, Reason: err.Error(), Raw: raw, Err: err}
	}
	return nil
}

func (r *scoreReply) toScoreResult() *models.ScoreResult {
	result := &models.ScoreResult{
		Name:             strings.TrimSpace(*r.Name),
		TechnicalScore:   *r.TechnicalScore,
		TechnicalReason:  strings.TrimSpace(*r.TechnicalReason),
		SoftSkillsScore:  *r.SoftSkillsScore,
		SoftSkillsReason: strings.TrimSpace(*r.SoftSkillsReason),
		ExperienceScore:  *r.ExperienceScore,
		ExperienceReason: strings.TrimSpace(*r.ExperienceReason),
		RedFlags:         append([]string{}, (*r.RedFlags)...),
		SalaryRange:      strings.TrimSpace(*r.SalaryRange),
		ConsistencyNotes: strings.TrimSpace(*r.ConsistencyNotes),
		CultureFitNote:   strings.TrimSpace(*r.CultureFitNote),
		Justification:    strings.TrimSpace(*r.Justification),
	}
	if r.PositiveHighlights != nil {
		result.PositiveHighlights = strings.TrimSpace(*r.PositiveHighlights)
	}
	if r.NegativeHighlights != nil {
		result.NegativeHighlights = strings.TrimSpace(*r.NegativeHighlights)
	}
	// recomputed from the sub-scores; the model's aggregate is ignored
	result.FitScore = WeightedScore(result.TechnicalScore, result.ExperienceScore, result.SoftSkillsScore)
	return result
}

// WeightedScore combines the sub-scores as technical 50%, experience 30%, soft skills 20%.
func WeightedScore(technical, experience, softSkills int) float64 {
	score := float64(technical)*0.5 + float64(experience)*0.3 + float64(softSkills)*0.2
	return math.Round(score*100) / 100
}

// RankScores returns a copy of scores ordered by fit score, highest first.
func RankScores(scores []models.ScoreResult) []models.ScoreResult {
	ranked := append([]models.ScoreResult(nil), scores...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FitScore > ranked[j].FitScore
	})
	return ranked
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}

func jsonFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return ns
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is missing"
	case "notblank":
		return "is blank"
	case "min", "max":
		return "is out of range (" + fe.Tag() + "=" + fe.Param() + ")"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
