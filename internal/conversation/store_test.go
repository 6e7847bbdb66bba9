package conversation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	user := "test-" + uuid.NewString()

	_, ok, err := s.Get(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	want := PendingAction{
		Kind:        AwaitingFileDestination,
		Name:        "Notas.txt",
		Suggestions: []string{"Documentos", "Escritorio"},
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(ctx, user, want))

	got, ok, err := s.Get(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Suggestions, got.Suggestions)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, s.Put(ctx, user, PendingAction{Kind: AwaitingFolderName, Location: "Escritorio"}))
	got, _, err = s.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, AwaitingFolderName, got.Kind)

	require.NoError(t, s.Delete(ctx, user))
	_, ok, err = s.Get(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, user))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("MURMUR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MURMUR_TEST_REDIS_URL not set")
	}

	s, err := NewRedisStore(url, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	exerciseStore(t, s)
}

func TestRedisStoreWithoutTTLKeepsPending(t *testing.T) {
	url := os.Getenv("MURMUR_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MURMUR_TEST_REDIS_URL not set")
	}

	s, err := NewRedisStore(url, 0)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	user := "test-" + uuid.NewString()
	require.NoError(t, s.Put(ctx, user, PendingAction{Kind: AwaitingFolderName}))
	defer s.Delete(ctx, user)

	ttl, err := s.client.TTL(ctx, s.key(user)).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url", 0)
	assert.Error(t, err)
}
