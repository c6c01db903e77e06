package audithook

// Audit event actions. Each constant corresponds to one lifecycle hook and
// becomes the Action field of the audit event.
const (
	ActionReportEnqueued  = "report.enqueued"
	ActionReportSubmitted = "report.submitted"
	ActionReportRetrying  = "report.retrying"
	ActionReportDropped   = "report.dropped"
)

// CategoryReport groups all report actions.
const CategoryReport = "reporting.report"

// ResourceReport is the Resource field of every audit event.
const ResourceReport = "report"

// AllActions returns every action this hook can emit.
func AllActions() []string {
	return []string{
		ActionReportEnqueued,
		ActionReportSubmitted,
		ActionReportRetrying,
		ActionReportDropped,
	}
}
