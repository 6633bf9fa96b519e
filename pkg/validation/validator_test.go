package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Operator string  `json:"operator" validate:"oneof=>= <="`
	Target   float64 `json:"target" validate:"gt=0"`
}

type payload struct {
	Symbol string   `json:"symbol" validate:"required"`
	Limit  int      `json:"limit" validate:"min=1,max=100"`
	Rule   *inner   `json:"rule" validate:"omitempty"`
	Tags   []string `json:"tags" validate:"dive,oneof=a b"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(payload{Symbol: "AAA", Limit: 10}))
	require.NoError(t, v.Struct(payload{Symbol: "AAA", Limit: 1, Rule: &inner{Operator: ">=", Target: 1}, Tags: []string{"a"}}))

	err := v.Struct(payload{Limit: 0, Rule: &inner{Operator: "==", Target: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{
		{Field: "limit", Tag: "min", Param: "1"},
		{Field: "rule.operator", Tag: "oneof", Param: ">= <="},
		{Field: "symbol", Tag: "required"},
	}, verr.Fields)
	assert.Contains(t, err.Error(), "symbol: required")
}

func TestValidator_Dive(t *testing.T) {
	err := New().Struct(payload{Symbol: "AAA", Limit: 5, Tags: []string{"a", "z"}})

	var verr *Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "tags[1]", verr.Fields[0].Field)
}
