package natal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

func TestComputeInputHash_Deterministic(t *testing.T) {
	input := domain.BirthInput{
		BirthDate:     "1990-06-15",
		BirthTime:     strPtr("10:30"),
		BirthPlace:    "Paris, France",
		BirthTimezone: "Europe/Paris",
		BirthLat:      floatPtr(48.8588897),
		BirthLon:      floatPtr(2.320041),
	}

	first, err := ComputeInputHash(input, "1.0.0", "1.0.0")
	require.NoError(t, err)
	second, err := ComputeInputHash(input, "1.0.0", "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex SHA-256
}

func TestComputeInputHash_SensitiveToVersions(t *testing.T) {
	input := domain.BirthInput{
		BirthDate:     "1990-06-15",
		BirthTime:     strPtr("10:30"),
		BirthTimezone: "Europe/Paris",
	}

	base, err := ComputeInputHash(input, "1.0.0", "1.0.0")
	require.NoError(t, err)

	otherRef, err := ComputeInputHash(input, "2.0.0", "1.0.0")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRef)

	otherRuleset, err := ComputeInputHash(input, "1.0.0", "1.1.0")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRuleset)
}

func TestComputeInputHash_SensitiveToInput(t *testing.T) {
	base, err := ComputeInputHash(domain.BirthInput{
		BirthDate:     "1990-06-15",
		BirthTime:     strPtr("10:30"),
		BirthTimezone: "Europe/Paris",
	}, "1.0.0", "1.0.0")
	require.NoError(t, err)

	// отсутствие времени и то же время с дефолтной подстановкой различимы
	other, err := ComputeInputHash(domain.BirthInput{
		BirthDate:     "1990-06-15",
		BirthTimezone: "Europe/Paris",
	}, "1.0.0", "1.0.0")
	require.NoError(t, err)
	assert.NotEqual(t, base, other)
}
