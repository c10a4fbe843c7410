package dto

type CreateCompanyDTO struct {
	Name string `json:"name" validate:"required,max=200"`
}

type UpdateCompanyDTO struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CompanyImportRow is one parsed line of a company import file.
type CompanyImportRow struct {
	Row     int
	Name    string
	RowData map[string]string
}
