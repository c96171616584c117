package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/auth"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func newTestUserAdminService(repo *fakeUserRepo) *UserAdminService {
	return NewUserAdminService(testAuthConfig(), repo, zap.NewNop())
}

func TestAdminCreateAssignsRoleVerbatim(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserAdminService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, UserUpdateInput{
		Username: "ned", Name: "Ned", Email: "ned@x.com", Role: "ADMIN", Password: "pw123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", user.Role, "admin-assigned role is taken as-is, no first-user promotion")
	assert.NotEmpty(t, user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "pw123456"))

	// A second admin-created account keeps whatever role was assigned too.
	second, err := svc.Create(ctx, UserUpdateInput{Name: "Olga", Email: "olga@x.com", Role: "USER"})
	require.NoError(t, err)
	assert.Equal(t, "USER", second.Role)
	assert.Empty(t, second.PasswordHash, "password is optional for admin-created accounts")
}

func TestAdminCreateConflictNamesTheField(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserAdminService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, UserUpdateInput{Username: "pat", Name: "Pat", Email: "pat@x.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, UserUpdateInput{Username: "pat2", Name: "Pat", Email: "pat@x.com"})
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Contains(t, de.Details, "email")

	_, err = svc.Create(ctx, UserUpdateInput{Username: "pat", Name: "Pat", Email: "pat2@x.com"})
	require.Error(t, err)
	de = apperrors.ToDomainError(err)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Contains(t, de.Details, "username")
}

func TestAdminUpdateLeavesEmptyFieldsUnchanged(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserAdminService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, UserUpdateInput{
		Username: "quinn", Name: "Quinn", Email: "quinn@x.com", Role: "USER", Password: "original",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UserUpdateInput{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", updated.Role)
	assert.Equal(t, "quinn", updated.Username)
	assert.Equal(t, "Quinn", updated.Name)
	assert.Equal(t, "quinn@x.com", updated.Email)
	assert.NoError(t, auth.ComparePassword(updated.PasswordHash, "original"), "password untouched when not provided")

	updated, err = svc.Update(ctx, created.ID, UserUpdateInput{Password: "replaced"})
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(updated.PasswordHash, "replaced"))
}

func TestAdminUpdateRejectsTakenIdentifiers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserAdminService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, UserUpdateInput{Username: "rita", Name: "Rita", Email: "rita@x.com"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, UserUpdateInput{Username: "sam", Name: "Sam", Email: "sam@x.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, UserUpdateInput{Email: "rita@x.com"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	_, err = svc.Update(ctx, other.ID, UserUpdateInput{Username: "rita"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestAdminListAndDelete(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestUserAdminService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, UserUpdateInput{Name: "Tom", Email: "tom@x.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UserUpdateInput{Name: "Una", Email: "una@x.com"})
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, svc.Delete(ctx, first.ID))

	users, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	err = svc.Delete(ctx, first.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	_, err = svc.Get(ctx, first.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
