package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	type sample struct {
		Endpoint string `validate:"required,url"`
		Depth    int    `validate:"gte=1"`
	}

	t.Run("valid struct passes", func(t *testing.T) {
		err := Validate(sample{Endpoint: "http://localhost:8545", Depth: 64})

		assert.NoError(t, err)
	})

	t.Run("failures are rooted at ErrValidationFailed", func(t *testing.T) {
		err := Validate(sample{Endpoint: "", Depth: 0})

		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.ErrorContains(t, err, "Endpoint")
		assert.ErrorContains(t, err, "Depth")
	})

	t.Run("constraint name appears in the message", func(t *testing.T) {
		err := Validate(sample{Endpoint: "not a url", Depth: 1})

		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.ErrorContains(t, err, "url")
	})
}
