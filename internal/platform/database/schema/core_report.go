// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CoreReportTable represents the 'core.report' table
type CoreReportTable struct {
	Table         string
	ID            string
	LessonID      string
	ReporterUID   string
	ReporterEmail string
	Reason        string
	Resolved      string
	Status        string
	HandledBy     string
	HandledAt     string
	CreatedAt     string
}

// CoreReport is the schema definition for core.report
var CoreReport = CoreReportTable{
	Table:         "core.report",
	ID:            "id",
	LessonID:      "lessonid",
	ReporterUID:   "reporteruid",
	ReporterEmail: "reporteremail",
	Reason:        "reason",
	Resolved:      "resolved",
	Status:        "status",
	HandledBy:     "handledby",
	HandledAt:     "handledat",
	CreatedAt:     "createdat",
}

// Columns returns all standard column names
func (t CoreReportTable) Columns() []string {
	return []string{
		t.ID, t.LessonID, t.ReporterUID, t.ReporterEmail, t.Reason,
		t.Resolved, t.Status, t.HandledBy, t.HandledAt, t.CreatedAt,
	}
}
