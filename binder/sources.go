package binder

import "net/url"

// Sources carries the raw per-source request data handed over by the
// routing layer. The binder performs no I/O; everything here is already
// parsed or decoded.
type Sources struct {
	// Query holds query parameters; repeated keys keep every occurrence in
	// appearance order.
	Query url.Values

	// Path holds matched path parameters.
	Path map[string]string

	// Headers holds request headers, first value per name.
	Headers map[string]string

	// Cookies holds request cookies.
	Cookies map[string]string

	// Body is the decoded JSON-like payload: a mapping, sequence, or
	// scalar. Nil when the request carried no body.
	Body any
}
