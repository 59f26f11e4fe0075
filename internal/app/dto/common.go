package dto

// PageRequest carries pagination inputs through commands and queries.
type PageRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (p PageRequest) Normalized(defaultLimit, maxLimit int) PageRequest {
	out := p
	if out.Limit <= 0 {
		out.Limit = defaultLimit
	}
	if out.Limit > maxLimit {
		out.Limit = maxLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}
