package binder

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebind/wirebind/rename"
	"github.com/wirebind/wirebind/schema"
)

func mustResolve(t *testing.T, target any, cfg *schema.Config) []schema.FieldDescriptor {
	t.Helper()
	descriptors, err := schema.Resolve(reflect.TypeOf(target), cfg)
	require.NoError(t, err)
	return descriptors
}

type child struct {
	Val      int `json:"val" validate:"required"`
	OtherVal int `json:"other_val" validate:"required"`
}

type parent struct {
	Child      child   `json:"child"`
	OtherChild sibling `json:"other_child"`
}

type sibling struct {
	Val []int `json:"val" validate:"required"`
}

func TestBindSimpleBody(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
		Age  int    `json:"age" validate:"required"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"name": "alice", "age": float64(30)},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Name)
	assert.Equal(t, 30, out.Age)
}

func TestBindAggregatesNestedErrors(t *testing.T) {
	b := New()
	var out parent
	err := b.Bind(&out, mustResolve(t, parent{}, nil), Sources{
		Body: map[string]any{
			"child":       map[string]any{"val": "foo"},
			"other_child": map[string]any{"val": []any{float64(1), "bar"}},
		},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 3)

	assert.Equal(t, ValidationError{
		Key:     "child.val",
		Message: "Expected `int`, got `str`",
	}, bf.Errors[0])
	assert.Equal(t, ValidationError{
		Key:     "child.other_val",
		Message: "field required",
	}, bf.Errors[1])
	assert.Equal(t, ValidationError{
		Key:     "other_child.val.1",
		Message: "Expected `int`, got `str`",
	}, bf.Errors[2])
}

func TestBindNeverFailsFast(t *testing.T) {
	type payload struct {
		A int `json:"a" validate:"required"`
		B int `json:"b" validate:"required"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"a": "x", "b": true},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 2)
	assert.Equal(t, "a", bf.Errors[0].Key)
	assert.Equal(t, "Expected `int`, got `str`", bf.Errors[0].Message)
	assert.Equal(t, schema.SourceBody, bf.Errors[0].Source)
	assert.Equal(t, "b", bf.Errors[1].Key)
	assert.Equal(t, "Expected `int`, got `bool`", bf.Errors[1].Message)
}

func TestBindMissingRequiredTopLevel(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 1)
	assert.Equal(t, ValidationError{
		Key:     "name",
		Message: "field required",
		Source:  schema.SourceBody,
	}, bf.Errors[0])
}

func TestBindRepeatedQueryParams(t *testing.T) {
	type params struct {
		A []int `query:"a"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Query: url.Values{"a": {"1", "2", "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out.A)
}

func TestBindQueryScalarTakesFirstValue(t *testing.T) {
	type params struct {
		Limit int `query:"limit"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Query: url.Values{"limit": {"5", "9"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Limit)
}

func TestBindQuerySequenceElementErrors(t *testing.T) {
	type params struct {
		A []int `query:"a"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Query: url.Values{"a": {"1", "x", "y"}},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 2)
	assert.Equal(t, "a.1", bf.Errors[0].Key)
	assert.Equal(t, schema.SourceQuery, bf.Errors[0].Source)
	assert.Equal(t, "a.2", bf.Errors[1].Key)
}

func TestBindQueryDefault(t *testing.T) {
	type params struct {
		Limit int `query:"limit" default:"10"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{})
	require.NoError(t, err)
	assert.Equal(t, 10, out.Limit)
}

func TestBindPathParams(t *testing.T) {
	type params struct {
		ID  uuid.UUID `param:"id"`
		Rev int       `param:"rev"`
	}

	id := uuid.New()
	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Path: map[string]string{"id": id.String(), "rev": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.Equal(t, 7, out.Rev)
}

func TestBindPathParamBadUUID(t *testing.T) {
	type params struct {
		ID uuid.UUID `param:"id"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Path: map[string]string{"id": "not-a-uuid"},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 1)
	assert.Equal(t, "id", bf.Errors[0].Key)
	assert.Equal(t, "Expected `uuid`, got `str`", bf.Errors[0].Message)
	assert.Equal(t, schema.SourcePath, bf.Errors[0].Source)
}

func TestBindHeaders(t *testing.T) {
	type params struct {
		Count int      `header:"X-Some-Int"`
		Codes []string `header:"X-Codes"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Headers: map[string]string{
			"X-Some-Int": "42",
			"X-Codes":    "a, b ,c",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out.Count)
	assert.Equal(t, []string{"a", "b", "c"}, out.Codes)
}

func TestBindHeaderCaseInsensitive(t *testing.T) {
	type params struct {
		Count int `header:"X-SOME-INT"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Headers: map[string]string{"X-Some-Int": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out.Count)
}

func TestBindCookies(t *testing.T) {
	type params struct {
		Session string `cookie:"session" validate:"required"`
	}

	b := New()
	var out params
	err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
		Cookies: map[string]string{"session": "abc123"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", out.Session)

	err = b.Bind(&out, mustResolve(t, params{}, nil), Sources{})
	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	assert.Equal(t, schema.SourceCookie, bf.Errors[0].Source)
}

func TestBindBoolTokens(t *testing.T) {
	type params struct {
		Flag bool `query:"flag"`
	}

	valid := map[string]bool{
		"1": true, "true": true, "TRUE": true, "True": true,
		"0": false, "false": false, "FALSE": false, "False": false,
	}
	for token, want := range valid {
		b := New()
		var out params
		err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
			Query: url.Values{"flag": {token}},
		})
		require.NoError(t, err, "token %q", token)
		assert.Equal(t, want, out.Flag, "token %q", token)
	}

	for _, token := range []string{"yes", "no", "on", "off", "2", ""} {
		b := New()
		var out params
		err := b.Bind(&out, mustResolve(t, params{}, nil), Sources{
			Query: url.Values{"flag": {token}},
		})
		var bf *BindFailure
		require.ErrorAs(t, err, &bf, "token %q", token)
		assert.Equal(t, "Expected `bool`, got `str`", bf.Errors[0].Message)
	}
}

func TestBindReadOnlyIgnoredWithDefault(t *testing.T) {
	type payload struct {
		Name      string `json:"name" validate:"required"`
		CreatedBy string `json:"created_by" dto:"readonly" default:"system"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"name": "alice", "created_by": "mallory"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Name)
	assert.Equal(t, "system", out.CreatedBy)
}

func TestBindPrivateFieldIgnored(t *testing.T) {
	type payload struct {
		Name   string `json:"name" validate:"required"`
		Secret string `json:"_secret"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"name": "alice", "_secret": "boo"},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Secret)
}

func TestBindUnknownBodyKeysIgnored(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"name": "alice", "extra": 1, "more": map[string]any{"x": 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", out.Name)
}

func TestBindNullOptional(t *testing.T) {
	type payload struct {
		Nickname *string `json:"nickname"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"nickname": nil},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Nickname)
}

func TestBindNullRequired(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"name": nil},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	assert.Equal(t, "Expected `str`, got `null`", bf.Errors[0].Message)
}

func TestBindConstraints(t *testing.T) {
	type payload struct {
		Name  string `json:"name" validate:"required,min=3"`
		Age   int    `json:"age" validate:"gte=0,lte=120"`
		Email string `json:"email" validate:"email"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"name": "al", "age": float64(150), "email": "nope"},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 3)
	assert.Equal(t, "name", bf.Errors[0].Key)
	assert.Equal(t, "must be at least 3 characters", bf.Errors[0].Message)
	assert.Equal(t, "age", bf.Errors[1].Key)
	assert.Equal(t, "must be less than or equal to 120", bf.Errors[1].Message)
	assert.Equal(t, "email", bf.Errors[2].Key)
	assert.Equal(t, "must be a valid email address", bf.Errors[2].Message)
}

func TestBindCustomConstraint(t *testing.T) {
	type payload struct {
		Code string `json:"code" validate:"even_length"`
	}

	b := New()
	require.NoError(t, b.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String())%2 == 0
	}))

	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"code": "ab"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", out.Code)

	err = b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"code": "abc"},
	})
	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	assert.Equal(t, "failed even_length validation", bf.Errors[0].Message)
}

func TestBindTimeFormats(t *testing.T) {
	type payload struct {
		When time.Time `json:"when" validate:"required"`
	}

	for _, raw := range []string{
		"2026-08-30T12:00:00Z",
		"2026-08-30T12:00:00.123456Z",
		"2026-08-30 12:00:00",
		"2026-08-30",
	} {
		b := New()
		var out payload
		err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
			Body: map[string]any{"when": raw},
		})
		require.NoError(t, err, "format %q", raw)
		assert.False(t, out.When.IsZero())
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"when": "30/08/2026"},
	})
	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	assert.Equal(t, "Expected `datetime`, got `str`", bf.Errors[0].Message)
}

func TestBindNumberOutOfRange(t *testing.T) {
	type payload struct {
		N int64  `json:"n"`
		U uint64 `json:"u"`
	}

	tests := []struct {
		name string
		body map[string]any
		key  string
		msg  string
	}{
		{
			name: "huge_positive",
			body: map[string]any{"n": 1e300, "u": float64(1)},
			key:  "n",
			msg:  "Expected `int`, got `float`",
		},
		{
			name: "huge_negative",
			body: map[string]any{"n": -1e300, "u": float64(1)},
			key:  "n",
			msg:  "Expected `int`, got `float`",
		},
		{
			name: "just_past_int64",
			body: map[string]any{"n": 9.3e18, "u": float64(1)},
			key:  "n",
			msg:  "Expected `int`, got `float`",
		},
		{
			name: "huge_uint",
			body: map[string]any{"n": float64(1), "u": 1e300},
			key:  "u",
			msg:  "Expected `uint`, got `float`",
		},
		{
			name: "negative_uint",
			body: map[string]any{"n": float64(1), "u": float64(-1)},
			key:  "u",
			msg:  "Expected `uint`, got `int`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			var out payload
			err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{Body: tt.body})

			var bf *BindFailure
			require.ErrorAs(t, err, &bf)
			require.Len(t, bf.Errors, 1)
			assert.Equal(t, tt.key, bf.Errors[0].Key)
			assert.Equal(t, tt.msg, bf.Errors[0].Message)
			assert.Zero(t, out.N)
			assert.Zero(t, out.U)
		})
	}
}

func TestBindMapField(t *testing.T) {
	type payload struct {
		Attrs map[string]int `json:"attrs"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"attrs": map[string]any{"a": float64(1), "b": float64(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, out.Attrs)
}

func TestBindMapValueErrorsDeterministic(t *testing.T) {
	type payload struct {
		Attrs map[string]int `json:"attrs"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"attrs": map[string]any{"b": "x", "a": "y"}},
	})

	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 2)
	assert.Equal(t, "attrs.a", bf.Errors[0].Key)
	assert.Equal(t, "attrs.b", bf.Errors[1].Key)
}

func TestBindAnyPassthrough(t *testing.T) {
	type payload struct {
		Raw any `json:"raw"`
	}

	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, nil), Sources{
		Body: map[string]any{"raw": map[string]any{"nested": []any{float64(1)}}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nested": []any{float64(1)}}, out.Raw)
}

func TestBindRenameStrategyRoundTrip(t *testing.T) {
	type payload struct {
		SpamBar string `json:"spam_bar" validate:"required"`
	}

	tests := []struct {
		name     string
		strategy rename.Strategy
		wireKey  string
	}{
		{name: "camel", strategy: rename.Camel, wireKey: "spamBar"},
		{name: "pascal", strategy: rename.Pascal, wireKey: "SpamBar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &schema.Config{RenameStrategy: tt.strategy}
			b := New()
			var out payload
			err := b.Bind(&out, mustResolve(t, payload{}, cfg), Sources{
				Body: map[string]any{tt.wireKey: "v"},
			})
			require.NoError(t, err)
			assert.Equal(t, "v", out.SpamBar)

			// the declared name no longer matches
			err = b.Bind(&out, mustResolve(t, payload{}, cfg), Sources{
				Body: map[string]any{"spam_bar": "v"},
			})
			var bf *BindFailure
			require.ErrorAs(t, err, &bf)
			assert.Equal(t, tt.wireKey, bf.Errors[0].Key)
		})
	}
}

func TestBindExcludedNestedFieldIgnored(t *testing.T) {
	type foo struct {
		Bar string `json:"bar"`
		Baz string `json:"baz"`
	}
	type payload struct {
		Foo foo `json:"foo"`
	}

	cfg := &schema.Config{Exclude: []string{"foo.baz"}}
	b := New()
	var out payload
	err := b.Bind(&out, mustResolve(t, payload{}, cfg), Sources{
		Body: map[string]any{"foo": map[string]any{"bar": "b", "baz": "ignored"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", out.Foo.Bar)
	assert.Empty(t, out.Foo.Baz)
}

func TestBindFailureError(t *testing.T) {
	none := &BindFailure{}
	assert.Equal(t, "binding failed", none.Error())

	one := &BindFailure{Errors: []ValidationError{{Key: "name", Message: "field required"}}}
	assert.Equal(t, "binding failed: name: field required", one.Error())

	many := &BindFailure{Errors: []ValidationError{{Key: "a"}, {Key: "b"}}}
	assert.Equal(t, "binding failed: 2 validation errors", many.Error())
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator()
	assert.True(t, agg.IsEmpty())
	assert.NoError(t, agg.Failure())

	agg.Append(ValidationError{Key: "a"})
	agg.Extend([]ValidationError{{Key: "b"}, {Key: "c"}})
	assert.False(t, agg.IsEmpty())

	err := agg.Failure()
	var bf *BindFailure
	require.ErrorAs(t, err, &bf)
	require.Len(t, bf.Errors, 3)
	assert.Equal(t, "a", bf.Errors[0].Key)
	assert.True(t, agg.IsEmpty())
}
