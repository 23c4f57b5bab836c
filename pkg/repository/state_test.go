package repository

import (
	"context"
	"testing"

	"github.com/medreza/honcho-coupon-card/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRepository(t *testing.T) {
	t.Run("get set remove", func(t *testing.T) {
		repo := NewStateRepository(database.NewMemory(), "")

		_, ok := repo.Get("custom_title_v1")
		assert.False(t, ok)

		repo.Set("custom_title_v1", "Otsikko")
		v, ok := repo.Get("custom_title_v1")
		assert.True(t, ok)
		assert.Equal(t, "Otsikko", v)
		assert.True(t, repo.Has("custom_title_v1"))

		repo.Remove("custom_title_v1")
		assert.False(t, repo.Has("custom_title_v1"))
	})

	t.Run("namespace prefixes keys", func(t *testing.T) {
		mem := database.NewMemory()
		repo := NewStateRepository(mem, "texmex")
		repo.Set("coupon_saved_v1", "1")

		v, err := mem.Get(context.Background(), "texmex:coupon_saved_v1")
		require.NoError(t, err)
		assert.Equal(t, "1", v)

		other := NewStateRepository(mem, "pizza")
		assert.False(t, other.Has("coupon_saved_v1"))
	})

	t.Run("read failures are absent", func(t *testing.T) {
		mem := database.NewMemory()
		repo := NewStateRepository(mem, "")
		repo.Set("custom_legal_v1", "Ehdot")

		mem.FailReads(true)
		_, ok := repo.Get("custom_legal_v1")
		assert.False(t, ok)
	})

	t.Run("failed writes stay visible in memory", func(t *testing.T) {
		mem := database.NewMemory()
		repo := NewStateRepository(mem, "")
		repo.Set("custom_title_v1", "Vanha")

		mem.FailWrites(true)
		repo.Set("custom_title_v1", "Uusi")
		repo.Remove("custom_legal_v1")

		v, ok := repo.Get("custom_title_v1")
		assert.True(t, ok)
		assert.Equal(t, "Uusi", v)

		stored, err := mem.Get(context.Background(), "custom_title_v1")
		require.NoError(t, err)
		assert.Equal(t, "Vanha", stored, "backend keeps the last successful write")

		repo.Remove("custom_title_v1")
		assert.False(t, repo.Has("custom_title_v1"))

		mem.FailWrites(false)
		repo.Set("custom_title_v1", "Kolmas")
		stored, err = mem.Get(context.Background(), "custom_title_v1")
		require.NoError(t, err)
		assert.Equal(t, "Kolmas", stored)
		v, _ = repo.Get("custom_title_v1")
		assert.Equal(t, "Kolmas", v)
	})

	t.Run("fresh repository over failed backend sees old state", func(t *testing.T) {
		mem := database.NewMemory()
		NewStateRepository(mem, "").Set("coupon_redeemed_at_v1", "1")
		mem.FailWrites(true)

		repo := NewStateRepository(mem, "")
		repo.Remove("coupon_redeemed_at_v1")
		assert.False(t, repo.Has("coupon_redeemed_at_v1"))

		reloaded := NewStateRepository(mem, "")
		assert.True(t, reloaded.Has("coupon_redeemed_at_v1"), "unpersisted remove does not survive a reload")
	})
}
