package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	err := fmt.Errorf("export: %w", &ConfigurationError{Keys: []string{"KINTONE_DOMAIN", "KINTONE_API_TOKEN_JM"}})

	assert.True(t, IsConfiguration(err))
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.Contains(t, err.Error(), "KINTONE_DOMAIN, KINTONE_API_TOKEN_JM")
	assert.False(t, IsUpstream(err))
}

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("page 2: %w", &UpstreamError{Service: "kintone", StatusCode: 520, Body: "GAIA_IL23"})

	assert.True(t, IsUpstream(err))
	assert.Equal(t, http.StatusBadGateway, HTTPStatusCode(err))
	assert.Contains(t, err.Error(), "520 GAIA_IL23")
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad"), http.StatusUnprocessableEntity},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("sig: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}
