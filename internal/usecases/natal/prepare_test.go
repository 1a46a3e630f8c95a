package natal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestPrepareBirth_ModernDate(t *testing.T) {
	prepared, err := PrepareBirth(domain.BirthInput{
		BirthDate:     "1990-06-15",
		BirthTime:     strPtr("10:30"),
		BirthTimezone: "Europe/Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, "1990-06-15T10:30:00+02:00", prepared.BirthDatetimeLocal)
	assert.Equal(t, "1990-06-15T08:30:00+00:00", prepared.BirthDatetimeUTC)
	assert.Equal(t, int64(645438600), prepared.TimestampUTC)
	assert.InDelta(t, 2448057.8541666665, prepared.JulianDay, 1e-9)
	assert.Equal(t, "Europe/Paris", prepared.TimezoneUsed)
	assert.Equal(t, domain.TimeScaleUT, prepared.TimeScale)
	assert.False(t, prepared.MissingBirthTime)
	assert.Nil(t, prepared.DeltaTSec)
	assert.Nil(t, prepared.JDTT)
}

func TestPrepareBirth_HistoricalOffset(t *testing.T) {
	// в 1973 во Франции не было летнего времени: круглый год +01:00
	prepared, err := PrepareBirth(domain.BirthInput{
		BirthDate:     "1973-07-04",
		BirthTime:     strPtr("09:00"),
		BirthTimezone: "Europe/Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, "1973-07-04T09:00:00+01:00", prepared.BirthDatetimeLocal)
	assert.Equal(t, "1973-07-04T08:00:00+00:00", prepared.BirthDatetimeUTC)
	assert.InDelta(t, 2441867.8333333333, prepared.JulianDay, 1e-9)
}

func TestPrepareBirth_DSTGap(t *testing.T) {
	// 2001-03-25 02:30 в Париже не существует: в 02:00 стрелки прыгают на 03:00.
	// Несуществующее время разрешается офсетом после перехода.
	prepared, err := PrepareBirth(domain.BirthInput{
		BirthDate:     "2001-03-25",
		BirthTime:     strPtr("02:30"),
		BirthTimezone: "Europe/Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, "2001-03-25T00:30:00+00:00", prepared.BirthDatetimeUTC)
	assert.Equal(t, int64(985480200), prepared.TimestampUTC)
}

func TestPrepareBirth_DSTOverlap(t *testing.T) {
	// 2001-10-28 02:30 в Париже случается дважды; берём более ранний момент (+02:00)
	prepared, err := PrepareBirth(domain.BirthInput{
		BirthDate:     "2001-10-28",
		BirthTime:     strPtr("02:30"),
		BirthTimezone: "Europe/Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, "2001-10-28T02:30:00+02:00", prepared.BirthDatetimeLocal)
	assert.Equal(t, "2001-10-28T00:30:00+00:00", prepared.BirthDatetimeUTC)
}

func TestPrepareBirth_MissingBirthTime(t *testing.T) {
	prepared, err := PrepareBirth(domain.BirthInput{
		BirthDate:     "1985-03-10",
		BirthTimezone: "UTC",
	})
	require.NoError(t, err)

	assert.True(t, prepared.MissingBirthTime)
	assert.Equal(t, "1985-03-10T12:00:00+00:00", prepared.BirthDatetimeUTC)
}

func TestPrepareBirth_TerrestrialTime(t *testing.T) {
	prepared, err := PrepareBirth(domain.BirthInput{
		BirthDate:     "1990-06-15",
		BirthTime:     strPtr("10:30"),
		BirthTimezone: "Europe/Paris",
		TTEnabled:     true,
	})
	require.NoError(t, err)

	require.NotNil(t, prepared.DeltaTSec)
	require.NotNil(t, prepared.JDTT)
	assert.Equal(t, domain.TimeScaleTT, prepared.TimeScale)
	// для 1990 года ΔT порядка 57 секунд
	assert.InDelta(t, 57.0, *prepared.DeltaTSec, 3.0)
	assert.InDelta(t, prepared.JulianDay+*prepared.DeltaTSec/86400.0, *prepared.JDTT, 1e-12)
}

func TestPrepareBirth_InvalidInputs(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.BirthInput
		wantCode string
	}{
		{
			name:     "malformed date",
			input:    domain.BirthInput{BirthDate: "15/06/1990", BirthTimezone: "UTC"},
			wantCode: domain.ErrCodeInvalidBirthInput,
		},
		{
			name:     "nonexistent date",
			input:    domain.BirthInput{BirthDate: "1990-02-30", BirthTimezone: "UTC"},
			wantCode: domain.ErrCodeInvalidBirthInput,
		},
		{
			name:     "year zero",
			input:    domain.BirthInput{BirthDate: "0000-01-01", BirthTimezone: "UTC"},
			wantCode: domain.ErrCodeInvalidBirthInput,
		},
		{
			name:     "bad birth time",
			input:    domain.BirthInput{BirthDate: "1990-06-15", BirthTime: strPtr("25:00"), BirthTimezone: "UTC"},
			wantCode: domain.ErrCodeInvalidBirthTime,
		},
		{
			name:     "unpadded birth time",
			input:    domain.BirthInput{BirthDate: "1990-06-15", BirthTime: strPtr("9:30"), BirthTimezone: "UTC"},
			wantCode: domain.ErrCodeInvalidBirthTime,
		},
		{
			name:     "unknown timezone",
			input:    domain.BirthInput{BirthDate: "1990-06-15", BirthTimezone: "Mars/Olympus"},
			wantCode: domain.ErrCodeInvalidTimezone,
		},
		{
			name:     "empty timezone",
			input:    domain.BirthInput{BirthDate: "1990-06-15"},
			wantCode: domain.ErrCodeInvalidTimezone,
		},
		{
			name:     "latitude without longitude",
			input:    domain.BirthInput{BirthDate: "1990-06-15", BirthTimezone: "UTC", BirthLat: floatPtr(48.85)},
			wantCode: domain.ErrCodeInvalidBirthInput,
		},
		{
			name: "latitude out of range",
			input: domain.BirthInput{
				BirthDate: "1990-06-15", BirthTimezone: "UTC",
				BirthLat: floatPtr(95.0), BirthLon: floatPtr(2.32),
			},
			wantCode: domain.ErrCodeInvalidBirthInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PrepareBirth(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}
