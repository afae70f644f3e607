package table

// Well-known column names of the issue export.
const (
	ColumnKey         = "Key"
	ColumnIssueType   = "Issue Type"
	ColumnProjects    = "Projects"
	ColumnSummary     = "Summary"
	ColumnStatus      = "Status"
	ColumnPriority    = "Priority"
	ColumnSprint      = "Sprint"
	ColumnStoryPoints = "Story Points"
	ColumnCreated     = "Created"
	ColumnUpdated     = "Updated"
	ColumnResolved    = "Resolved"
	ColumnDueDate     = "Due date"
)

// SemanticKind is the metadata classification reported for a column.
type SemanticKind string

const (
	SemanticDate   SemanticKind = "date"
	SemanticNumber SemanticKind = "number"
	SemanticString SemanticKind = "string"
)

var dateColumns = map[string]struct{}{
	ColumnCreated:  {},
	ColumnUpdated:  {},
	ColumnResolved: {},
	ColumnDueDate:  {},
}

var numberColumns = map[string]struct{}{
	ColumnStoryPoints: {},
	"BusinessPoints":  {},
	"T-Size":          {},
	"Confidence":      {},
}

// ClassifyColumn maps a column name to its semantic kind. Unknown names are
// strings.
func ClassifyColumn(name string) SemanticKind {
	if IsDateColumn(name) {
		return SemanticDate
	}
	if _, ok := numberColumns[name]; ok {
		return SemanticNumber
	}
	return SemanticString
}

// IsDateColumn reports whether cells of the column are parsed as date-times.
func IsDateColumn(name string) bool {
	_, ok := dateColumns[name]
	return ok
}
