package entity

// FetchResult is the outcome of a single fetch attempt. It is never mutated after creation.
type FetchResult struct {
	OK         bool   `json:"ok"`
	StatusCode *int   `json:"status_code,omitempty"`
	FinalURL   string `json:"url"`
	HTML       string `json:"-"`
	Error      string `json:"error,omitempty"`
	// Timeout is set when the attempt failed because its deadline expired.
	Timeout bool `json:"-"`
}

// Status returns the HTTP status code, or 0 when none was obtained.
func (r FetchResult) Status() int {
	if r.StatusCode == nil {
		return 0
	}
	return *r.StatusCode
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int {
	return &v
}
