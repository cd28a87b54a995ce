package handler

import (
	"schemegate/internal/content"
	"schemegate/internal/resolver"
)

// ResolveResponse is the HTTP response for POST /gps-detect and GET /scheme.
type ResolveResponse struct {
	Resolved  bool           `json:"resolved"`
	Source    string         `json:"source,omitempty"`
	Defaulted bool           `json:"defaulted,omitempty"`
	Scheme    SchemeResponse `json:"scheme"`
}

// SchemeResponse is the content portion of the response.
type SchemeResponse struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Document string `json:"document"`
}

// FromOutcome converts a resolution outcome plus its registry entry to an
// HTTP response.
func FromOutcome(out resolver.Outcome, scheme content.Scheme) *ResolveResponse {
	return &ResolveResponse{
		Resolved:  out.Resolved,
		Source:    string(out.Source),
		Defaulted: out.Defaulted,
		Scheme:    FromScheme(scheme),
	}
}

// FromScheme converts a registry entry to its HTTP shape.
func FromScheme(scheme content.Scheme) SchemeResponse {
	return SchemeResponse{
		Code:     scheme.Code.String(),
		Title:    scheme.Title,
		Document: scheme.Document,
	}
}
