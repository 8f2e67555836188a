package domain

import "time"

// AuditFields holds standard creation/modification metadata for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // Actor reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// RequestMeta carries the network provenance of the call that triggered a
// mutation. It is captured by whatever presentation layer sits in front of the
// core and travels explicitly with each operation, never via globals.
type RequestMeta struct {
	SourceIP  string `json:"sourceIP"`
	UserAgent string `json:"userAgent"`
	Endpoint  string `json:"endpoint"`
	Method    string `json:"method"`
}
