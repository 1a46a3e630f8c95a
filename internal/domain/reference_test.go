package domain

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey_Canonical(t *testing.T) {
	assert.Equal(t, "moon-sun", PairKey("sun", "moon"))
	assert.Equal(t, "moon-sun", PairKey("Moon", "SUN"))
	assert.Equal(t, "mars-venus", PairKey("venus", "mars"))
}

func TestIsLuminary(t *testing.T) {
	assert.True(t, IsLuminary("sun"))
	assert.True(t, IsLuminary("Moon"))
	assert.False(t, IsLuminary("mercury"))
}

func TestSignForLongitude(t *testing.T) {
	signs := DefaultSigns()

	tests := []struct {
		longitude float64
		want      string
	}{
		{0, "aries"},
		{29.999999, "aries"},
		{30, "taurus"},
		{117.963169, "cancer"},
		{359.999999, "pisces"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SignForLongitude(tt.longitude, signs))
	}
}

func TestDefaultOrbFor(t *testing.T) {
	assert.Equal(t, 8.0, DefaultOrbFor("conjunction"))
	assert.Equal(t, 4.0, DefaultOrbFor("sextile"))
	assert.Equal(t, 6.0, DefaultOrbFor("quincunx"))
}

func TestEngineError_CodeAndStatus(t *testing.T) {
	err := NewEngineError(ErrCodeReferenceVersionNotFound, "reference version not found").
		WithDetail("version", "9.9.9")

	assert.Equal(t, ErrCodeReferenceVersionNotFound, ErrorCode(err))
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())

	timeout := NewEngineError(ErrCodeNatalTimeout, "natal calculation budget exceeded")
	assert.Equal(t, http.StatusGatewayTimeout, timeout.HTTPStatus())

	invalid := NewEngineError(ErrCodeInvalidOrbOverride, "orb override out of range")
	assert.Equal(t, http.StatusUnprocessableEntity, invalid.HTTPStatus())

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "9.9.9", engErr.Details["version"])
}
