package domain

// PageParams is the limit/offset window over the newest-first feed.
// An offset past the end of the feed yields an empty page, not an
// error.
type PageParams struct {
	Limit  int `json:"limit" query:"limit"`
	Offset int `json:"offset" query:"offset"`
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

func (p *PageParams) Validate() {
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
