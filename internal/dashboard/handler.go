package dashboard

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	client      APIClient
	store       *RunStore
	exporter    services.ReportExporter
	maxFileSize int64
	maxFiles    int
}

func NewHandler(client APIClient, store *RunStore, exporter services.ReportExporter, maxFileSize int64, maxFiles int) *Handler {
	return &Handler{
		client:      client,
		store:       store,
		exporter:    exporter,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
	}
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.HandleIndex)
	app.Post("/runs", h.HandleCreateRun)
	app.Get("/runs/:id", h.HandleShowRun)
	app.Post("/runs/:id/recommend", h.HandleRecommend)
	app.Post("/runs/:id/candidates/:idx/modules/:module", h.HandleModule)
	app.Get("/runs/:id/export.xlsx", h.HandleExport)
}

// candidateRow is a scored item with its position in the original upload.
type candidateRow struct {
	Index int
	Rank  int
	Item  models.BatchItem
}

func (h *Handler) HandleIndex(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Title":      "AI Resume Screener",
		"Skills":     "",
		"Strictness": models.StrictnessMedium,
		"MaxFiles":   h.maxFiles,
	}, "layout")
}

// HandleCreateRun uploads the resumes to the API and stores the batch result.
func (h *Handler) HandleCreateRun(c *fiber.Ctx) error {
	job, intake, err := h.parseRunForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).Render("index", fiber.Map{
			"Title":      "AI Resume Screener",
			"Error":      err.Error(),
			"Job":        job,
			"Skills":     strings.Join(job.RequiredSkills, ", "),
			"Strictness": job.Strictness,
			"MaxFiles":   h.maxFiles,
		}, "layout")
	}

	run := h.store.Create(job)
	docs := intake.Documents()
	entry := log.WithFields(log.Fields{"run_id": run.ID, "documents": len(docs), "rejected": intake.Len() - len(docs)})
	entry.Info("📤 Sending resumes to screening API")

	var screened []models.BatchItem
	if len(docs) > 0 {
		screened, err = h.client.BatchScreen(job, docs)
	}
	items := intake.Merge(screened)
	run, updateErr := h.store.Update(run.ID, func(r *Run) {
		if err != nil {
			r.Status = RunFailed
			r.Error = err.Error()
			return
		}
		r.Status = RunDone
		r.Items = items
	})
	if updateErr != nil {
		return errors.Wrap(updateErr, "failed to store run")
	}

	if err != nil {
		entry.WithError(err).Error("❌ Screening run failed")
	} else {
		entry.Info("✅ Screening run finished")
	}
	return c.Redirect("/runs/"+run.ID, fiber.StatusSeeOther)
}

func (h *Handler) HandleShowRun(c *fiber.Ctx) error {
	run, err := h.store.Get(c.Params("id"))
	if err != nil {
		return h.notFound(c, "Run not found or expired.")
	}

	ranked, failed := rankRun(run.Items)
	data := fiber.Map{
		"Title":   "Screening results",
		"Run":     run,
		"Ranked":  ranked,
		"Failed":  failed,
		"Modules": analysisModules,
	}

	if len(ranked) > 0 {
		selected := ranked[0]
		if idx, err := strconv.Atoi(c.Query("candidate")); err == nil {
			for _, row := range ranked {
				if row.Index == idx {
					selected = row
				}
			}
		}

		var analyses []Analysis
		for _, m := range analysisModules {
			if a, ok := run.Analysis(selected.Index, m.Name); ok {
				analyses = append(analyses, a)
			}
		}
		data["Selected"] = selected
		data["Analyses"] = analyses
	}

	return c.Render("run", data, "layout")
}

func (h *Handler) HandleRecommend(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.store.Get(id)
	if err != nil {
		return h.notFound(c, "Run not found or expired.")
	}

	n, err := strconv.Atoi(c.FormValue("num_recommendations", "3"))
	if err != nil || n < 1 {
		n = 1
	}

	var scores []models.ScoreResult
	for _, item := range run.Items {
		if !item.Failed() {
			scores = append(scores, *item.Score)
		}
	}

	var (
		list    *models.RecommendationList
		callErr error
	)
	if len(scores) == 0 {
		callErr = errors.New("no candidates were scored in this run")
	} else {
		list, callErr = h.client.Recommend(scores, n)
	}

	if _, err := h.store.Update(id, func(r *Run) {
		if callErr != nil {
			r.Recommendations = nil
			r.RecommendError = callErr.Error()
			return
		}
		r.Recommendations = list.Recommendations
		r.RecommendError = ""
	}); err != nil {
		return h.notFound(c, "Run not found or expired.")
	}

	if callErr != nil {
		log.WithField("run_id", id).WithError(callErr).Warn("⚠️ Recommendations failed")
	}
	return c.Redirect("/runs/"+id, fiber.StatusSeeOther)
}

// HandleModule runs one analysis module for the candidate at upload index idx.
func (h *Handler) HandleModule(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.store.Get(id)
	if err != nil {
		return h.notFound(c, "Run not found or expired.")
	}

	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil || idx < 0 || idx >= len(run.Items) || run.Items[idx].Failed() {
		return h.notFound(c, "Candidate not found.")
	}
	module, ok := findModule(c.Params("module"))
	if !ok {
		return h.notFound(c, fmt.Sprintf("Unknown analysis module %q.", c.Params("module")))
	}

	analysis, err := runModule(h.client, module, run.Job, run.Items[idx].ResumeText)
	if err != nil {
		log.WithFields(log.Fields{"run_id": id, "module": module.Name}).WithError(err).Warn("⚠️ Analysis module failed")
		analysis.Error = err.Error()
	}

	if err := h.store.SetAnalysis(id, idx, analysis); err != nil {
		return h.notFound(c, "Run not found or expired.")
	}
	return c.Redirect(fmt.Sprintf("/runs/%s?candidate=%d", id, idx), fiber.StatusSeeOther)
}

func (h *Handler) HandleExport(c *fiber.Ctx) error {
	run, err := h.store.Get(c.Params("id"))
	if err != nil {
		return h.notFound(c, "Run not found or expired.")
	}

	buf, err := h.exporter.ExportBatch(run.Items)
	if err != nil {
		return errors.Wrap(err, "failed to export run")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="screening-%s.xlsx"`, run.ID[:8]))
	return c.Send(buf.Bytes())
}

func (h *Handler) notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
		"Title":   "Not found",
		"Message": message,
	}, "layout")
}

func (h *Handler) parseRunForm(c *fiber.Ctx) (models.JobDescription, *models.BatchIntake, error) {
	job := models.JobDescription{
		Title:           strings.TrimSpace(c.FormValue("job_title")),
		Description:     strings.TrimSpace(c.FormValue("job_description")),
		RequiredSkills:  models.ParseSkills(c.FormValue("required_skills")),
		PositiveFactors: strings.TrimSpace(c.FormValue("positive_factors")),
		NegativeFactors: strings.TrimSpace(c.FormValue("negative_factors")),
	}

	strictness, err := models.ParseStrictness(c.FormValue("strictness"))
	if err != nil {
		job.Strictness = models.StrictnessMedium
		return job, nil, err
	}
	job.Strictness = strictness

	if job.Description == "" {
		return job, nil, errors.New("Please provide a job description.")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return job, nil, errors.New("Please upload at least one resume.")
	}
	files := form.File["resumes"]
	if len(files) == 0 {
		return job, nil, errors.New("Please upload at least one resume.")
	}
	if len(files) > h.maxFiles {
		return job, nil, errors.Errorf("Too many files. Max files per run: %d", h.maxFiles)
	}

	intake := &models.BatchIntake{}
	for _, fh := range files {
		doc, err := readFile(fh, h.maxFileSize)
		if err != nil {
			intake.Reject(fh.Filename, err)
			continue
		}
		intake.Accept(doc)
	}
	return job, intake, nil
}

func readFile(fh *multipart.FileHeader, maxFileSize int64) (models.ResumeDocument, error) {
	if fh.Size > maxFileSize {
		return models.ResumeDocument{}, errors.Errorf("%s is too large. Max size: %d bytes", fh.Filename, maxFileSize)
	}

	file, err := fh.Open()
	if err != nil {
		return models.ResumeDocument{}, errors.Wrapf(err, "failed to open %s", fh.Filename)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.ResumeDocument{}, errors.Wrapf(err, "failed to read %s", fh.Filename)
	}
	return models.ResumeDocument{Filename: fh.Filename, Content: content}, nil
}

// rankRun splits a batch into scored rows, best first, and failed items.
func rankRun(items []models.BatchItem) ([]candidateRow, []models.BatchItem) {
	var ranked []candidateRow
	var failed []models.BatchItem
	for _, i := range services.RankOrder(items) {
		if items[i].Failed() {
			failed = append(failed, items[i])
			continue
		}
		ranked = append(ranked, candidateRow{Index: i, Rank: len(ranked) + 1, Item: items[i]})
	}
	return ranked, failed
}
