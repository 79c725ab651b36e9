package models

// Page is an offset/limit window over a list.
type Page struct {
	From int
	Size int
}

// Normalize replaces invalid bounds with defaults.
func (p Page) Normalize() Page {
	if p.From < 0 {
		p.From = DefaultFrom
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}
