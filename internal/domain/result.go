package domain

// NullDisplay is the sentinel rendered for null or missing cell values.
const NullDisplay = "-"

// ResultValue pairs a raw warehouse cell value with its display string.
type ResultValue struct {
	Raw       interface{} `json:"raw"`
	Formatted string      `json:"formatted"`
}

// ResultRow maps field identifiers to shaped cell values. Rows are built
// once per raw row, consumed by renderers, and discarded; never persisted.
type ResultRow map[FieldID]ResultValue

// QueryResult is what the execution collaborator returns: raw rows plus the
// engine-reported type per field.
type QueryResult struct {
	Rows       []map[FieldID]interface{} `json:"rows"`
	FieldTypes map[FieldID]string        `json:"fieldTypes"`
	RowCount   int                       `json:"rowCount"`
}
