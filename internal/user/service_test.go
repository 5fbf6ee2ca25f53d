// AngelaMos | 2026
// service_test.go

package user

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

func TestConfirmEmailWorksOnce(t *testing.T) {
	svc, repo, _, _ := fixture()
	ctx := context.Background()

	u, err := svc.ConfirmEmail(ctx, "confirm-hash")
	require.NoError(t, err)
	assert.True(t, u.EmailConfirmed)
	assert.Nil(t, repo.users["u-1"].URLHash)

	_, err = svc.ConfirmEmail(ctx, "confirm-hash")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRequestPasswordRestore(t *testing.T) {
	svc, repo, mailer, _ := fixture()
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordRestore(ctx, "  Alice@Example.com "))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Equal(t, *repo.users["u-1"].URLHash, mailer.sent[0].urlHash)
	assert.NotEqual(t, "confirm-hash", mailer.sent[0].urlHash)

	err := svc.RequestPasswordRestore(ctx, "nobody@example.com")
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotAcceptable, appErr.StatusCode)
}

func TestRestorePasswordConsumesHash(t *testing.T) {
	svc, repo, mailer, _ := fixture()
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordRestore(ctx, "alice@example.com"))
	hash := mailer.sent[0].urlHash

	require.NoError(t, svc.RestorePassword(ctx, hash, "brand-new-pass"))

	stored := repo.users["u-1"]
	ok, _, err := core.VerifyPassword("brand-new-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, stored.TokenVersion)

	err = svc.RestorePassword(ctx, hash, "another-pass")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateAvatarStoresThumbnail(t *testing.T) {
	svc, repo, _, objects := fixture()

	u, err := svc.UpdateAvatar(context.Background(), "u-1", bytes.NewReader(pngBytes(t, 300, 200)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(u.Avatar, "avatars/u-1/"))
	assert.True(t, strings.HasPrefix(u.Thumbnail, "thumbnails/u-1/"))
	assert.Equal(t, u.Avatar, repo.users["u-1"].Avatar)

	thumb, ok := objects.objects[u.Thumbnail]
	require.True(t, ok)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	_, ok = objects.objects[u.Avatar]
	assert.True(t, ok)

	next, err := svc.UpdateAvatar(context.Background(), "u-1", bytes.NewReader(pngBytes(t, 50, 50)))
	require.NoError(t, err)
	assert.NotContains(t, objects.objects, u.Avatar)
	assert.NotContains(t, objects.objects, u.Thumbnail)
	assert.Contains(t, objects.objects, next.Avatar)
	assert.Len(t, objects.objects, 2)
}

func TestUpdateAvatarCleansUpFailedUploads(t *testing.T) {
	t.Run("thumbnail put fails", func(t *testing.T) {
		svc, repo, _, objects := fixture()
		objects.failPrefix = "thumbnails/"

		_, err := svc.UpdateAvatar(context.Background(), "u-1", bytes.NewReader(pngBytes(t, 20, 20)))
		require.Error(t, err)
		assert.Empty(t, objects.objects)
		assert.Equal(t, DefaultAvatar, repo.users["u-1"].Avatar)
	})

	t.Run("save fails", func(t *testing.T) {
		svc, repo, _, objects := fixture()
		repo.avatarErr = errors.New("db down")

		_, err := svc.UpdateAvatar(context.Background(), "u-1", bytes.NewReader(pngBytes(t, 20, 20)))
		require.Error(t, err)
		assert.Empty(t, objects.objects)
		assert.Equal(t, DefaultThumbnail, repo.users["u-1"].Thumbnail)
	})
}

func TestUpdateAvatarRejectsNonImage(t *testing.T) {
	svc, repo, _, objects := fixture()

	_, err := svc.UpdateAvatar(context.Background(), "u-1", strings.NewReader("plain text"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, DefaultAvatar, repo.users["u-1"].Avatar)
	assert.Empty(t, objects.objects)
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc, _, _, _ := fixture()
	ctx := context.Background()

	info, err := svc.Create(ctx, " Bob@Example.COM", "hash", "bob-hash")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", info.Email)
	assert.Equal(t, access.DefaultLevel, info.Level)
	assert.Equal(t, RoleUser, info.Role)

	_, err = svc.Create(ctx, "bob@example.com", "hash", "")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestUserLevel(t *testing.T) {
	svc, _, _, _ := fixture()
	ctx := context.Background()

	lvl, err := svc.UserLevel(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, access.LevelBasic, lvl)

	_, err = svc.UpdateUserLevel(ctx, "u-1", access.LevelAdvanced)
	require.NoError(t, err)

	lvl, err = svc.UserLevel(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, access.LevelAdvanced, lvl)

	_, err = svc.UpdateUserLevel(ctx, "u-1", access.Level(9))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCanDeleteUser(t *testing.T) {
	svc, repo, _, _ := fixture()
	ctx := context.Background()
	repo.users["u-2"] = &User{ID: "u-2", Email: "eve@example.com"}
	repo.users["admin-2"] = &User{ID: "admin-2", Email: "ops@example.com", IsSuperuser: true}

	tests := []struct {
		name      string
		requester string
		target    string
		wantErr   error
	}{
		{name: "self", requester: "u-1", target: "u-1"},
		{name: "admin removes user", requester: "admin-1", target: "u-1"},
		{name: "user removes other", requester: "u-1", target: "u-2", wantErr: core.ErrForbidden},
		{name: "admin target", requester: "admin-1", target: "admin-2", wantErr: core.ErrForbidden},
		{name: "missing target", requester: "admin-1", target: "ghost", wantErr: core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CanDeleteUser(ctx, tt.requester, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
