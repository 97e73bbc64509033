package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/gridmem/internal/model"
)

func newTestSQLite(t *testing.T) Backend {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "gridmem.db"))
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func newTestFlat(t *testing.T) Backend {
	t.Helper()
	f := NewFlatStore(t.TempDir())
	require.NoError(t, f.Init(context.Background()))
	return f
}

// Both adapters must satisfy one behavioral contract.
func TestBackendContract(t *testing.T) {
	backends := map[string]func(*testing.T) Backend{
		"sqlite": newTestSQLite,
		"flat":   newTestFlat,
	}
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)

			_, found, err := b.Get(ctx, "g4-t500-a0-n5")
			require.NoError(t, err)
			require.False(t, found)

			rec := model.StatsRecord{
				TotalChallenges: 7,
				RecentAnswers:   []bool{true, false, true},
				MaxStreak:       4,
				CurrentStreak:   1,
				BestAccuracy:    80,
			}
			require.NoError(t, b.Put(ctx, "g4-t500-a0-n5", rec))
			require.NoError(t, b.Put(ctx, "g5-t500-a0-n5", model.StatsRecord{TotalChallenges: 1}))

			got, found, err := b.Get(ctx, "g4-t500-a0-n5")
			require.NoError(t, err)
			require.True(t, found)
			require.Empty(t, cmp.Diff(rec, got))

			n, err := b.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 2, n)

			// Put overwrites in place.
			rec.TotalChallenges = 8
			require.NoError(t, b.Put(ctx, "g4-t500-a0-n5", rec))
			n, err = b.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 2, n)

			all, err := b.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			require.Empty(t, cmp.Diff(rec, all["g4-t500-a0-n5"]))

			require.NoError(t, b.Delete(ctx, "g5-t500-a0-n5"))
			require.NoError(t, b.Delete(ctx, "never-stored"))
			n, err = b.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, n)

			require.NoError(t, b.Clear(ctx))
			all, err = b.GetAll(ctx)
			require.NoError(t, err)
			require.Empty(t, all)
			_, found, err = b.Get(ctx, "g4-t500-a0-n5")
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}

func TestBackendSettingsEnvelope(t *testing.T) {
	backends := map[string]func(*testing.T) Backend{
		"sqlite": newTestSQLite,
		"flat":   newTestFlat,
	}
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)

			_, found, err := b.GetSettings(ctx)
			require.NoError(t, err)
			require.False(t, found)

			env := model.SettingsEnvelope{
				Settings:    model.Settings{GridSize: 5, ShowTimeMs: 700, AnswerTimeMs: 0, ActiveCells: 6, TargetStreak: 12},
				LastUpdated: time.Now().UTC().Truncate(time.Second),
				Version:     1,
			}
			require.NoError(t, b.PutSettings(ctx, env))

			got, found, err := b.GetSettings(ctx)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, env.Settings, got.Settings)
			require.Equal(t, env.Version, got.Version)
		})
	}
}

func TestSQLiteInitIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "gridmem.db"))
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Put(ctx, "g4-t500-a0-n5", model.StatsRecord{TotalChallenges: 1}))
	require.NoError(t, s.Close())
}

func TestSQLiteNotInitialized(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "gridmem.db"))
	_, _, err := s.Get(ctx, "g4-t500-a0-n5")
	require.ErrorIs(t, err, ErrNotInitialized)
	err = s.Put(ctx, "g4-t500-a0-n5", model.StatsRecord{})
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gridmem.db")

	s := NewSQLiteStore(path)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Put(ctx, "g4-t500-a0-n5", model.StatsRecord{TotalChallenges: 3}))
	require.NoError(t, s.Close())

	s = NewSQLiteStore(path)
	require.NoError(t, s.Init(ctx))
	defer func() {
		require.NoError(t, s.Close())
	}()
	got, found, err := s.Get(ctx, "g4-t500-a0-n5")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 3, got.TotalChallenges)
}
