package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

func main() {
	dir := flag.String("dir", "./resumes", "directory containing resumes")
	jobPath := flag.String("job", "./job_description.txt", "job description file (PDF, DOCX or text)")
	title := flag.String("title", "", "job title")
	skills := flag.String("skills", "", "comma separated required skills")
	strictness := flag.String("strictness", "medium", "low, medium or high")
	out := flag.String("out", "screening_report.xlsx", "output spreadsheet")
	flag.Parse()

	cfg := config.Load()
	config.InitLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	level, err := models.ParseStrictness(*strictness)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	extractor := services.NewDocumentExtractor(cfg.Upload.MaxTextChars)

	jobData, err := os.ReadFile(*jobPath)
	if err != nil {
		log.Fatalf("❌ Failed to read job description: %v", err)
	}
	description, err := extractor.ExtractText(filepath.Base(*jobPath), jobData)
	if err != nil {
		log.Fatalf("❌ Failed to extract job description: %v", err)
	}

	job := models.JobDescription{
		Title:          *title,
		Description:    description,
		RequiredSkills: models.ParseSkills(*skills),
		Strictness:     level,
	}

	intake, err := loadResumes(*dir, cfg.Upload.MaxFileSize)
	if err != nil {
		log.Fatalf("❌ Failed to read resumes: %v", err)
	}
	if intake.Len() == 0 {
		log.Fatalf("❌ No resumes found in %s", *dir)
	}
	docs := intake.Documents()
	log.Infof("🚀 Screening %d resumes from %s", len(docs), *dir)

	ctx := context.Background()
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, nil)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	screening := services.NewScreeningService(geminiService, extractor, nil)

	var screened []models.BatchItem
	if len(docs) > 0 {
		screened = screening.ScreenBatch(ctx, job, docs)
	}
	items := intake.Merge(screened)

	buf, err := services.NewReportExporter().ExportBatch(items)
	if err != nil {
		log.Fatalf("❌ Failed to build report: %v", err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("❌ Failed to write report: %v", err)
	}

	successCount, failCount := 0, 0
	for _, item := range services.RankItems(items) {
		if item.Failed() {
			failCount++
			log.Warnf("   ❌ %s: %s", item.Filename, item.Error)
			continue
		}
		successCount++
		log.Infof("   %d. %s (%s): %.2f", successCount, item.Score.Name, item.Filename, item.Score.FitScore)
	}

	log.Info(strings.Repeat("=", 60))
	log.Info("📊 Screening Summary:")
	log.Infof("   ✅ Scored: %d documents", successCount)
	log.Infof("   ❌ Failed: %d documents", failCount)
	log.Infof("   📄 Report: %s", *out)
	log.Info(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Warn("⚠️  Some resumes could not be scored. Please check the report's Errors sheet.")
		os.Exit(1)
	}
}

// loadResumes reads every supported file directly under dir, sorted by name.
// Oversized files are kept as rejected items so they reach the report.
func loadResumes(dir string, maxFileSize int64) (*models.BatchIntake, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	intake := &models.BatchIntake{}
	for _, entry := range entries {
		if entry.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if info.Size() > maxFileSize {
			log.Warnf("⚠️  Skipping %s: larger than %d bytes", entry.Name(), maxFileSize)
			intake.Reject(entry.Name(), errors.Errorf("%s is too large. Max size: %d bytes", entry.Name(), maxFileSize))
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		intake.Accept(models.ResumeDocument{Filename: entry.Name(), Content: content})
	}
	return intake, nil
}
