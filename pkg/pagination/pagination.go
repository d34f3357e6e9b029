package pagination

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 20
	// MaxPerPage caps how many rows any page query can request.
	MaxPerPage = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Meta describes the page that was returned.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	PerPage    int   `json:"perPage"`
}

// NormalizePage clamps the page number to 1 or above.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// NormalizePerPage enforces the configured default and maximum page sizes.
func NormalizePerPage(perPage int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// Offset returns the row offset for the normalized parameters.
func Offset(params Params) int {
	return (NormalizePage(params.Page) - 1) * NormalizePerPage(params.PerPage)
}

// BuildMeta computes the response metadata for a page of results.
func BuildMeta(params Params, total int64) Meta {
	perPage := NormalizePerPage(params.PerPage)
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Meta{
		Total:      total,
		Page:       NormalizePage(params.Page),
		TotalPages: totalPages,
		PerPage:    perPage,
	}
}
