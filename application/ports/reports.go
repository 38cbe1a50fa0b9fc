package ports

// ReportRenderer renders an analytics payload into a standalone HTML
// document
type ReportRenderer interface {
	// Render produces the HTML body for one report type
	Render(reportType, userName string, data interface{}) ([]byte, error)
}
