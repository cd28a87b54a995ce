// Package content holds the jurisdiction-to-content mapping the resolution
// engine hands resolved codes to. The engine never inspects the payloads; it
// only needs membership checks and lookups.
package content

import (
	"schemegate/internal/jurisdiction"
	"schemegate/pkg/platform/sentinel"
)

// Scheme is the opaque content handle served for a jurisdiction. The engine
// treats it as a black box owned by the rendering side.
type Scheme struct {
	Code     jurisdiction.Code `json:"code"`
	Title    string            `json:"title"`
	Document string            `json:"document"`
}

// Registry is an immutable mapping from jurisdiction codes to scheme content.
// It is built once at startup and injected into the pipeline, never mutated,
// so tests can run against a minimal fixture.
type Registry struct {
	schemes map[jurisdiction.Code]Scheme
}

// NewRegistry builds a registry from the given schemes. Entries keyed by an
// invalid code are dropped so the pipeline invariant (every resolvable code
// has content) holds by construction.
func NewRegistry(schemes []Scheme) *Registry {
	m := make(map[jurisdiction.Code]Scheme, len(schemes))
	for _, s := range schemes {
		if s.Code.Valid() {
			m[s.Code] = s
		}
	}
	return &Registry{schemes: m}
}

// Lookup returns the scheme for a code, or sentinel.ErrNotFound when no
// content exists for it ("scheme not available").
func (r *Registry) Lookup(code jurisdiction.Code) (Scheme, error) {
	if s, ok := r.schemes[code]; ok {
		return s, nil
	}
	return Scheme{}, sentinel.ErrNotFound
}

// Has reports whether the registry can serve the given code. The resolution
// pipeline treats codes without content as unknown.
func (r *Registry) Has(code jurisdiction.Code) bool {
	_, ok := r.schemes[code]
	return ok
}

// Default returns the registry used in production: one scheme document per
// supported jurisdiction.
func Default() *Registry {
	schemes := make([]Scheme, 0, len(jurisdiction.All()))
	for _, c := range jurisdiction.All() {
		schemes = append(schemes, Scheme{
			Code:     c,
			Title:    "State welfare scheme: " + c.String(),
			Document: "/static/pdfs/" + c.String() + ".pdf",
		})
	}
	return NewRegistry(schemes)
}
