package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileCreatedOnFirstView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.profiles.GetOrCreate(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "User", u.Name)
	assert.Equal(t, "", u.PhotoURL)

	again, err := f.profiles.GetOrCreate(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.CreatedAt.Unix(), again.CreatedAt.Unix())

	_, err = f.profiles.GetOrCreate(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
}
