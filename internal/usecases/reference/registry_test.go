package reference

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/repository/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(memory.NewReferenceRepo(), "1.0.0", log)
}

func TestSeed_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, "1.0.0"))
	require.NoError(t, svc.Seed(ctx, "1.0.0"))

	snapshot, err := svc.GetActive(ctx, "1.0.0")
	require.NoError(t, err)
	assert.Len(t, snapshot.Planets, 10)
	assert.Len(t, snapshot.Signs, 12)
	assert.Len(t, snapshot.Houses, 12)
	assert.Len(t, snapshot.Aspects, 5)
}

func TestGetActive_DefaultVersion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, "1.0.0"))

	snapshot, err := svc.GetActive(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", snapshot.Version)

	_, err = svc.GetActive(ctx, "9.9.9")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeReferenceVersionNotFound, domain.ErrorCode(err))
}

func TestLock_MakesVersionImmutable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, "1.0.0"))

	require.NoError(t, svc.RenamePlanet(ctx, "1.0.0", "sun", "Sol"))
	require.NoError(t, svc.Lock(ctx, "1.0.0"))

	err := svc.RenamePlanet(ctx, "1.0.0", "sun", "Helios")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeReferenceVersionImmutable, domain.ErrorCode(err))

	err = svc.SetAspectOrbs(ctx, "1.0.0", "square", 5, nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeReferenceVersionImmutable, domain.ErrorCode(err))

	// срез сохраняет правку, сделанную до лока
	snapshot, err := svc.GetActive(ctx, "1.0.0")
	require.NoError(t, err)
	for _, p := range snapshot.Planets {
		if p.Code == "sun" {
			assert.Equal(t, "Sol", p.Name)
		}
	}
}

func TestClone_ProducesMutableCopy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, "1.0.0"))
	require.NoError(t, svc.Lock(ctx, "1.0.0"))

	require.NoError(t, svc.Clone(ctx, "1.0.0", "2.0.0"))

	// клон мутируем независимо от залоченного источника
	require.NoError(t, svc.RenamePlanet(ctx, "2.0.0", "moon", "Luna"))

	source, err := svc.GetActive(ctx, "1.0.0")
	require.NoError(t, err)
	for _, p := range source.Planets {
		if p.Code == "moon" {
			assert.Equal(t, "Moon", p.Name)
		}
	}

	err = svc.Clone(ctx, "1.0.0", "2.0.0")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeReferenceTargetExists, domain.ErrorCode(err))

	err = svc.Clone(ctx, "0.0.1", "3.0.0")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeReferenceSourceNotFound, domain.ErrorCode(err))
}

func TestValidateOrbOverrides(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name       string
		overrides  map[string]float64
		wantReason string
	}{
		{
			name:      "valid bounds",
			overrides: map[string]float64{"moon-sun": 0.1, "mars-venus": 15},
		},
		{
			name:       "zero is rejected",
			overrides:  map[string]float64{"moon-sun": 0},
			wantReason: "must_be_gt_0",
		},
		{
			name:       "negative is rejected",
			overrides:  map[string]float64{"moon-sun": -1},
			wantReason: "must_be_gt_0",
		},
		{
			name:       "above fifteen is rejected",
			overrides:  map[string]float64{"moon-sun": 15.1},
			wantReason: "must_be_lte_15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateOrbOverrides(tt.overrides)
			if tt.wantReason == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.ErrCodeInvalidOrbOverride, domain.ErrorCode(err))

			var engErr *domain.EngineError
			require.ErrorAs(t, err, &engErr)
			assert.Equal(t, tt.wantReason, engErr.Details["reason"])
		})
	}
}

func TestSetAspectOrbs_NormalizesPairKeys(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, "1.0.0"))

	lum := 9.0
	err := svc.SetAspectOrbs(ctx, "1.0.0", "conjunction", 8, &lum, map[string]float64{
		"Sun-Mercury": 2.5,
	})
	require.NoError(t, err)

	snapshot, err := svc.GetActive(ctx, "1.0.0")
	require.NoError(t, err)

	for _, a := range snapshot.Aspects {
		if a.Code != "conjunction" {
			continue
		}
		require.NotNil(t, a.OrbLuminaries)
		assert.Equal(t, 9.0, *a.OrbLuminaries)
		// ключ приведён к канонической форме: lowercase, сортировка
		assert.Equal(t, 2.5, a.OrbOverrides["mercury-sun"])
	}
}

func TestSetAspectOrbs_RejectsBadDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx, "1.0.0"))

	err := svc.SetAspectOrbs(ctx, "1.0.0", "square", 0, nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidOrbOverride, domain.ErrorCode(err))

	err = svc.SetAspectOrbs(ctx, "1.0.0", "square", 16, nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidOrbOverride, domain.ErrorCode(err))
}
