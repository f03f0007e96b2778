package common

import (
	"github.com/google/uuid"
)

// NewReportID generates a unique report ID with the "report_" prefix
// Format: report_<uuid>
func NewReportID() string {
	return "report_" + uuid.New().String()
}
