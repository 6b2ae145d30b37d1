package pagination

const (
	// DefaultPageSize is the standard history page size when one is not provided.
	DefaultPageSize = 10
	// MaxPageSize caps how many records any history query can request.
	MaxPageSize = 50
	// FirstPage is the page number the upstream history API starts at.
	FirstPage = 1
)

// Page holds page-number pagination inputs for the upstream history API.
type Page struct {
	Number int
	Size   int
}

// NormalizePageSize enforces the configured default and maximum sizes.
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NormalizePageNumber clamps page numbers to the upstream's 1-based scheme.
func NormalizePageNumber(number int) int {
	if number < FirstPage {
		return FirstPage
	}
	return number
}

// Normalize returns a page with both fields clamped to valid values.
func Normalize(p Page) Page {
	return Page{
		Number: NormalizePageNumber(p.Number),
		Size:   NormalizePageSize(p.Size),
	}
}

// Next returns the page that follows p.
func (p Page) Next() Page {
	n := Normalize(p)
	n.Number++
	return n
}
