package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageLogin     = "login"
	PageSignup    = "signup"
	PageDashboard = "dashboard"

	// Student and HR analysis flows.
	PageAnalyze    = "analyze"
	PageInterview  = "interview"
	PageEvaluation = "evaluation"
	PageReport     = "report"
	PageBatch      = "batch"

	PageAdminLogs = "admin-logs"

	// Public assessment pages reached by shared link; no session required.
	PageAssessment     = "assessment"
	PageAssessmentDone = "assessment-done"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageLogin:          "login-content",
	PageSignup:         "signup-content",
	PageDashboard:      "dashboard-content",
	PageAnalyze:        "analyze-content",
	PageInterview:      "interview-content",
	PageEvaluation:     "evaluation-content",
	PageReport:         "report-content",
	PageBatch:          "batch-content",
	PageAdminLogs:      "admin-logs-content",
	PageAssessment:     "assessment-content",
	PageAssessmentDone: "assessment-done-content",
}

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
