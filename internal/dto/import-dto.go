package dto

type RowError struct {
	Row     int               `json:"row"`
	RowData map[string]string `json:"rowData"`
	Message string            `json:"message"`
}

// BulkUpsertResultDTO reports partial success; one bad row never fails
// the batch.
type BulkUpsertResultDTO struct {
	CreatedCount int        `json:"createdCount"`
	UpdatedCount int        `json:"updatedCount"`
	Errors       []RowError `json:"errors"`
}
