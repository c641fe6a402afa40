package postgrest

import "strings"

// Pair is one query parameter.
type Pair struct {
	Key   string
	Value string
}

// Params is an order-preserving query-parameter multimap. PostgREST output is
// compared as strings in tests, so parameters are emitted exactly in append
// order and never sorted.
type Params struct {
	pairs []Pair
}

// Add appends a parameter.
func (p *Params) Add(key, value string) {
	p.pairs = append(p.pairs, Pair{Key: key, Value: value})
}

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.pairs) }

// Pairs returns the parameters in append order.
func (p *Params) Pairs() []Pair { return p.pairs }

// Encode renders the parameters as a query string, percent-encoding keys and
// values while leaving PostgREST filter syntax readable.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(pair.Key))
		b.WriteByte('=')
		b.WriteString(escape(pair.Value))
	}
	return b.String()
}

// Request is the rendered form of one statement: an HTTP method, a resource
// path, ordered query parameters, and an optional JSON body.
type Request struct {
	Method string
	Path   string
	Params Params
	Body   string
}

// FullPath returns the path with the encoded query string appended, or the
// bare path when there are no parameters.
func (r *Request) FullPath() string {
	if r.Params.Len() == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Params.Encode()
}

// escape percent-encodes a key or value for the query string. The characters
// PostgREST treats as filter syntax stay literal so the output remains
// readable; spaces encode as %20, never "+".
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isQuerySafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func isQuerySafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '~', '*', ',', '(', ')', '"', ':', '!':
		return true
	}
	return false
}
