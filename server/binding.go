package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wirebind/wirebind/binder"
	"github.com/wirebind/wirebind/schema"
)

// ExtractSources pulls the raw per-source buckets out of an Echo context:
// query parameters, matched path parameters, headers (first value), cookies,
// and the decoded JSON body when the content type announces one.
func ExtractSources(c echo.Context) (binder.Sources, error) {
	req := c.Request()

	src := binder.Sources{
		Query:   url.Values(c.QueryParams()),
		Path:    make(map[string]string),
		Headers: make(map[string]string),
		Cookies: make(map[string]string),
	}

	names := c.ParamNames()
	values := c.ParamValues()
	for i, name := range names {
		if i < len(values) {
			src.Path[name] = values[i]
		}
	}

	for name, vals := range req.Header {
		if len(vals) > 0 {
			src.Headers[name] = vals[0]
		}
	}

	for _, cookie := range req.Cookies() {
		src.Cookies[cookie.Name] = cookie.Value
	}

	if ct := req.Header.Get(echo.HeaderContentType); ct != "" && req.Body != nil {
		if mt, _, _ := mime.ParseMediaType(ct); mt == echo.MIMEApplicationJSON || strings.HasSuffix(mt, "+json") {
			payload, err := io.ReadAll(req.Body)
			if err != nil {
				return src, fmt.Errorf("failed to read request body: %w", err)
			}
			if len(payload) > 0 {
				var body any
				if err := json.Unmarshal(payload, &body); err != nil {
					return src, fmt.Errorf("failed to decode JSON body: %w", err)
				}
				src.Body = body
			}
		}
	}

	return src, nil
}

// RequestBinder binds incoming requests onto typed structures using a
// shared registry and transform policy.
type RequestBinder struct {
	binder   *binder.Binder
	registry *schema.Registry
	cfg      *schema.Config
}

// NewRequestBinder creates a request binder with the given transform
// policy. A nil policy means defaults.
func NewRequestBinder(cfg *schema.Config) *RequestBinder {
	return &RequestBinder{
		binder:   binder.New(),
		registry: schema.Default,
		cfg:      cfg,
	}
}

// Binder exposes the underlying binder, e.g. for registering custom
// constraint tags.
func (rb *RequestBinder) Binder() *binder.Binder { return rb.binder }

// BindRequest binds the request data onto target. Validation failures are
// reported as *binder.BindFailure.
func (rb *RequestBinder) BindRequest(c echo.Context, target any) error {
	src, err := ExtractSources(c)
	if err != nil {
		return err
	}
	descriptors, err := rb.registry.Resolve(targetType(target), rb.cfg)
	if err != nil {
		return err
	}
	return rb.binder.Bind(target, descriptors, src)
}

func targetType(target any) reflect.Type {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
