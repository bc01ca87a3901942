package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Name  string   `json:"name" validate:"required,min=2"`
	CPF   string   `json:"cpf" validate:"required,cpf"`
	Tags  []string `json:"tags" validate:"max=2"`
	Notes string   `json:"-" validate:"max=3"`
}

func TestCPFTag(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		cpf   string
		valid bool
	}{
		{"11144477735", true},
		{"52998224725", true},
		{"111.444.777-35", false},
		{"11144477736", false},
		{"11111111111", false},
		{"1114447773", false},
	}
	for _, tt := range tests {
		err := v.Struct(registration{Name: "Ana", CPF: tt.cpf})
		assert.Equal(t, tt.valid, err == nil, "cpf %q: %v", tt.cpf, err)
	}
}

func TestTranslate(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	err = Translate(v.Struct(registration{Name: "A", CPF: "123", Tags: []string{"a", "b", "c"}}), map[string]string{
		"max": "too many",
	})

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.Fields()
	assert.Equal(t, "name must be at least 2 characters", fields["name"])
	assert.Equal(t, "cpf must be a valid CPF", fields["cpf"])
	assert.Equal(t, "too many", fields["tags"])
	assert.Contains(t, err.Error(), "validation failed: 3 error(s)")
}

func TestTranslate_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("not a validation error")
	assert.Same(t, plain, Translate(plain, nil))
}
