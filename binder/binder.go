// Package binder populates typed structures from raw per-source request
// data (query, path, header, cookie, body) according to a resolved field
// descriptor set. Failures across a whole pass are aggregated, never
// fail-fast, and reported as one BindFailure.
package binder

import (
	"errors"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wirebind/wirebind/schema"
)

// Binder binds raw source data onto descriptor sets. A Binder is stateless
// apart from its validator and safe for concurrent use.
type Binder struct {
	validate *validator.Validate
}

// New creates a Binder with a fresh validator instance.
func New() *Binder {
	return &Binder{validate: validator.New()}
}

// RegisterValidation registers a custom constraint tag with the underlying
// validator, making it usable in `validate` struct tags.
func (b *Binder) RegisterValidation(tag string, fn validator.Func) error {
	return b.validate.RegisterValidation(tag, fn)
}

// Bind binds the sources onto target, which must be a non-nil pointer to a
// struct matching the descriptor set. On validation failure the returned
// error is a *BindFailure carrying every field error in visitation order
// and the target is left untouched.
func (b *Binder) Bind(target any, descriptors []schema.FieldDescriptor, src Sources) error {
	values, err := b.BindValues(descriptors, src)
	if err != nil {
		return err
	}
	return Materialize(target, descriptors, values)
}

// BindValues performs the binding pass and returns the bound values as a
// plain mapping keyed by declared field name, with nested structures as
// nested mappings. This is the deferred-materialization entry point used by
// the dto package.
func (b *Binder) BindValues(descriptors []schema.FieldDescriptor, src Sources) (map[string]any, error) {
	agg := NewAggregator()
	values := b.bindTopLevel(descriptors, src, agg)
	if err := agg.Failure(); err != nil {
		return nil, err
	}
	return values, nil
}

func (b *Binder) bindTopLevel(descriptors []schema.FieldDescriptor, src Sources, agg *Aggregator) map[string]any {
	body, _ := src.Body.(map[string]any)
	values := make(map[string]any, len(descriptors))

	for i := range descriptors {
		desc := &descriptors[i]
		if !desc.Bindable() {
			if desc.ReadOnly && desc.HasDefault {
				values[desc.Name] = desc.Default
			}
			continue
		}

		switch desc.Source {
		case schema.SourceQuery:
			b.bindQuery(desc, src.Query[desc.WireName], values, agg)
		case schema.SourcePath:
			b.bindString(desc, src.Path, values, agg)
		case schema.SourceHeader:
			b.bindHeader(desc, src.Headers, values, agg)
		case schema.SourceCookie:
			b.bindString(desc, src.Cookies, values, agg)
		default:
			b.bindBody(desc, body, values, agg)
		}
	}

	return values
}

// bindBody binds one top-level body field. Source is attached only to the
// immediate error; failures below the top level of a nested structure omit
// it.
func (b *Binder) bindBody(desc *schema.FieldDescriptor, body map[string]any, values map[string]any, agg *Aggregator) {
	raw, ok := body[desc.WireName]
	if !ok {
		b.absent(desc, desc.WireName, schema.SourceBody, values, agg)
		return
	}
	if raw == nil && desc.Optional {
		values[desc.Name] = nil
		return
	}

	v, errs := b.coerceJSON(&desc.Spec, raw, desc.WireName)
	if len(errs) > 0 {
		for i := range errs {
			if errs[i].Key == desc.WireName {
				errs[i].Source = schema.SourceBody
			}
		}
		agg.Extend(errs)
		return
	}
	b.finish(desc, desc.WireName, schema.SourceBody, v, values, agg)
}

// bindQuery binds one query field. Repeated occurrences collect into
// sequences in appearance order; zero occurrences of an optional field bind
// to the declared default, not an empty sequence.
func (b *Binder) bindQuery(desc *schema.FieldDescriptor, raw []string, values map[string]any, agg *Aggregator) {
	if len(raw) == 0 {
		b.absent(desc, desc.WireName, schema.SourceQuery, values, agg)
		return
	}

	if desc.Spec.Tag == schema.TagSlice {
		b.bindStringSeq(desc, raw, values, agg)
		return
	}

	v, errs := coerceString(&desc.Spec, raw[0], desc.WireName)
	if len(errs) > 0 {
		agg.Extend(withSource(errs, schema.SourceQuery))
		return
	}
	b.finish(desc, desc.WireName, schema.SourceQuery, v, values, agg)
}

// bindHeader binds one header field. Sequence headers split the raw value
// on commas.
func (b *Binder) bindHeader(desc *schema.FieldDescriptor, headers map[string]string, values map[string]any, agg *Aggregator) {
	raw, ok := headers[desc.WireName]
	if !ok {
		// header names are case-insensitive; retry with the canonical form
		raw, ok = headers[textproto.CanonicalMIMEHeaderKey(desc.WireName)]
	}
	if !ok {
		b.absent(desc, desc.WireName, schema.SourceHeader, values, agg)
		return
	}

	if desc.Spec.Tag == schema.TagSlice {
		parts := make([]string, 0, 4)
		for p := range strings.SplitSeq(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		b.bindStringSeq(desc, parts, values, agg)
		return
	}

	v, errs := coerceString(&desc.Spec, raw, desc.WireName)
	if len(errs) > 0 {
		agg.Extend(withSource(errs, schema.SourceHeader))
		return
	}
	b.finish(desc, desc.WireName, schema.SourceHeader, v, values, agg)
}

// bindString binds a single-valued string bucket (path or cookie).
func (b *Binder) bindString(desc *schema.FieldDescriptor, bucket map[string]string, values map[string]any, agg *Aggregator) {
	raw, ok := bucket[desc.WireName]
	if !ok {
		b.absent(desc, desc.WireName, desc.Source, values, agg)
		return
	}
	v, errs := coerceString(&desc.Spec, raw, desc.WireName)
	if len(errs) > 0 {
		agg.Extend(withSource(errs, desc.Source))
		return
	}
	b.finish(desc, desc.WireName, desc.Source, v, values, agg)
}

func (b *Binder) bindStringSeq(desc *schema.FieldDescriptor, raw []string, values map[string]any, agg *Aggregator) {
	out := make([]any, 0, len(raw))
	failed := false
	for i, item := range raw {
		v, errs := coerceString(desc.Spec.Elem, item, desc.WireName+"."+strconv.Itoa(i))
		if len(errs) > 0 {
			agg.Extend(withSource(errs, desc.Source))
			failed = true
			continue
		}
		out = append(out, v)
	}
	if !failed {
		b.finish(desc, desc.WireName, desc.Source, out, values, agg)
	}
}

// bindNested binds a nested structure from its body mapping, prefixing
// every error key with the parent path. Unknown keys in the mapping are
// ignored, which is how excluded nested fields vanish silently.
func (b *Binder) bindNested(fields []schema.FieldDescriptor, body map[string]any, prefix string) (map[string]any, []ValidationError) {
	values := make(map[string]any, len(fields))
	var errs []ValidationError

	for i := range fields {
		desc := &fields[i]
		if !desc.Bindable() {
			if desc.ReadOnly && desc.HasDefault {
				values[desc.Name] = desc.Default
			}
			continue
		}

		key := prefix + "." + desc.WireName
		raw, ok := body[desc.WireName]
		if !ok {
			if desc.HasDefault {
				values[desc.Name] = desc.Default
			} else if !desc.Optional {
				errs = append(errs, ValidationError{Key: key, Message: msgFieldRequired})
			}
			continue
		}
		if raw == nil && desc.Optional {
			values[desc.Name] = nil
			continue
		}

		v, verrs := b.coerceJSON(&desc.Spec, raw, key)
		if len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		if cerrs := b.checkConstraints(desc, key, "", v); len(cerrs) > 0 {
			errs = append(errs, cerrs...)
			continue
		}
		values[desc.Name] = v
	}

	return values, errs
}

// absent handles a missing raw value: default, silent skip for optional
// fields, or a required-field error.
func (b *Binder) absent(desc *schema.FieldDescriptor, key string, source schema.Source, values map[string]any, agg *Aggregator) {
	switch {
	case desc.HasDefault:
		values[desc.Name] = desc.Default
	case desc.Optional:
		// absent marker: no entry in the values map
	default:
		agg.Append(ValidationError{Key: key, Message: msgFieldRequired, Source: source})
	}
}

// finish runs constraint checks on a successfully coerced value and assigns
// it.
func (b *Binder) finish(desc *schema.FieldDescriptor, key string, source schema.Source, v any, values map[string]any, agg *Aggregator) {
	if errs := b.checkConstraints(desc, key, source, v); len(errs) > 0 {
		agg.Extend(errs)
		return
	}
	values[desc.Name] = v
}

// checkConstraints evaluates the field's validate-tag constraints against
// the coerced value. Violations aggregate like any other field error.
func (b *Binder) checkConstraints(desc *schema.FieldDescriptor, key string, source schema.Source, v any) []ValidationError {
	if desc.Constraints == "" || v == nil {
		return nil
	}
	err := b.validate.Var(v, desc.Constraints)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []ValidationError{{Key: key, Message: err.Error(), Source: source}}
	}
	out := make([]ValidationError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{Key: key, Message: constraintMessage(fe), Source: source})
	}
	return out
}

func withSource(errs []ValidationError, source schema.Source) []ValidationError {
	for i := range errs {
		errs[i].Source = source
	}
	return errs
}
