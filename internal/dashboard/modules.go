package dashboard

import (
	"fmt"

	"alfredoptarigan/resume-screener/internal/models"
)

type moduleInfo struct {
	Name  string
	Title string
}

// analysisModules are offered for every scored candidate, in display order.
var analysisModules = []moduleInfo{
	{Name: "red_flags", Title: "Red Flag Detection"},
	{Name: "salary_estimation", Title: "Salary Estimation"},
	{Name: "background_consistency", Title: "Background Consistency"},
	{Name: "candidate_fit", Title: "Candidate Fit"},
}

func findModule(name string) (moduleInfo, bool) {
	for _, m := range analysisModules {
		if m.Name == name {
			return m, true
		}
	}
	return moduleInfo{}, false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// runModule calls the API for one module and flattens the reply for display.
func runModule(client APIClient, module moduleInfo, job models.JobDescription, resumeText string) (Analysis, error) {
	analysis := Analysis{Module: module.Name, Title: module.Title}

	switch module.Name {
	case "red_flags":
		report, err := client.RedFlags(resumeText)
		if err != nil {
			return analysis, err
		}
		analysis.Facts = []string{"Red flags found: " + yesNo(report.Found)}
		analysis.Summary = report.Summary
	case "salary_estimation":
		estimate, err := client.SalaryEstimation(job.Description, resumeText)
		if err != nil {
			return analysis, err
		}
		analysis.Facts = []string{"Estimated range: " + estimate.Range}
		analysis.Summary = estimate.Summary
	case "background_consistency":
		report, err := client.BackgroundConsistency(resumeText)
		if err != nil {
			return analysis, err
		}
		analysis.Facts = []string{"Inconsistencies found: " + yesNo(report.Found)}
		analysis.Summary = report.Summary
	case "candidate_fit":
		report, err := client.CandidateFit(job.Description, resumeText)
		if err != nil {
			return analysis, err
		}
		analysis.Facts = []string{
			fmt.Sprintf("Role fit: %d/10", report.RoleFitScore),
			fmt.Sprintf("Culture fit: %d/10", report.CultureFitScore),
		}
		analysis.Summary = report.Summary
	default:
		return analysis, fmt.Errorf("unknown module %q", module.Name)
	}
	return analysis, nil
}
