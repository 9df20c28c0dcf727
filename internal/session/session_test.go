package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/storage"
)

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk error")
}
func (failingStorage) Set(context.Context, string, string) error { return errors.New("disk error") }
func (failingStorage) Delete(context.Context, string) error     { return errors.New("disk error") }

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	want := model.Session{AccessToken: "tok", UserName: "U", UserEmail: "user@example.com"}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGate(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		wantProtected Decision
		wantPublic    Decision
	}{
		{
			name:          "no token",
			wantProtected: Decision{Status: StatusUnauthorized, Redirect: RouteLogin},
			wantPublic:    Decision{Status: StatusUnauthorized},
		},
		{
			name:          "token present",
			token:         "expired-but-present",
			wantProtected: Decision{Status: StatusAuthorized},
			wantPublic:    Decision{Status: StatusAuthorized, Redirect: RouteDashboard},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := storage.NewMemory()
			if tt.token != "" {
				require.NoError(t, mem.Set(ctx, storage.KeyAccessToken, tt.token))
			}
			g := NewGate(NewStore(mem))

			got, err := g.Protected(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantProtected, got)
			assert.Equal(t, tt.wantProtected.Redirect == "", got.Render())

			got, err = g.Public(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPublic, got)
		})
	}
}

func TestGate_StorageError(t *testing.T) {
	g := NewGate(NewStore(failingStorage{}))

	d, err := g.Protected(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StatusLoading, d.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "unauthorized", StatusUnauthorized.String())
	assert.Equal(t, "authorized", StatusAuthorized.String())
}
