package api

// GenerateReportRequest is the payload of POST /api/v1/reports.
type GenerateReportRequest struct {
	Title   string              `json:"title,omitempty"`
	Records []map[string]string `json:"records"`
}
