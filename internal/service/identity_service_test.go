package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// fakeUserRepo is an in-memory UserRepository honoring the same uniqueness
// contract as the Postgres schema: email, username and google_id are unique
// (empty values excluded).
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User

	failNextCreate bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failNextCreate {
		r.failNextCreate = false
		return uniqueViolation()
	}
	for _, existing := range r.users {
		if existing.Email == user.Email ||
			(user.Username != "" && existing.Username == user.Username) ||
			(user.GoogleID != "" && existing.GoogleID == user.GoogleID) {
			return uniqueViolation()
		}
	}

	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email ||
			(user.Username != "" && existing.Username == user.Username) ||
			(user.GoogleID != "" && existing.GoogleID == user.GoogleID) {
			return uniqueViolation()
		}
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return username != "" && u.Username == username })
}

func (r *fakeUserRepo) FindByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		TokenTTLMinutes:   60,
		BcryptCost:        bcrypt.MinCost,
		DefaultRole:       "USER",
		BootstrapUsername: "admin",
		BootstrapPassword: "admin123456@",
	}
}

func newTestIdentityService(repo *fakeUserRepo) *IdentityService {
	return NewIdentityService(repo, nil, zap.NewNop(), testAuthConfig())
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestFirstUserBecomesAdminSecondBecomesUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	first, err := svc.CreateLocal(ctx, "alice", "Alice", "alice@x.com", mustHash(t, "pw1"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, err := svc.CreateLocal(ctx, "bob", "Bob", "bob@x.com", mustHash(t, "pw2"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, second.Role)
}

func TestFirstExternalUserBecomesAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	user, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-1", Email: "first@x.com", Name: "First", PictureURL: "http://pic/1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestResolveOrProvisionExternalIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.CreateLocal(ctx, "admin", "Admin", "admin@x.com", mustHash(t, "pw"))
	require.NoError(t, err)

	first, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-42", Email: "carol@x.com", Name: "Carol", PictureURL: "http://pic/a",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, first.Role)

	second, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-42", Email: "carol@new.com", Name: "Carol Renamed", PictureURL: "http://pic/b",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "second call must not create a duplicate")
	assert.Equal(t, "carol@new.com", second.Email)
	assert.Equal(t, "Carol Renamed", second.Name)
	assert.Equal(t, "http://pic/b", second.PictureURL)
	assert.Equal(t, first.Role, second.Role, "role never refreshed from the provider")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestExternalLoginMergesExistingAccountByEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	local, err := svc.CreateLocal(ctx, "dave", "Dave", "dave@x.com", mustHash(t, "pw"))
	require.NoError(t, err)

	merged, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-7", Email: "dave@x.com", Name: "Dave G", PictureURL: "http://pic/d",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, merged.ID)
	assert.Equal(t, "g-7", merged.GoogleID)
	assert.Equal(t, "Dave G", merged.Name)
}

func TestProvisionRaceLoserFallsBackToLookup(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	winner, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-9", Email: "eve@x.com", Name: "Eve", PictureURL: "",
	})
	require.NoError(t, err)

	// Simulate losing the insert race: the create fails with a unique
	// violation even though the pre-insert lookups missed.
	repo.failNextCreate = true
	loser, err := svc.provisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-9", Email: "eve@x.com", Name: "Eve", PictureURL: "",
	})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, loser.ID)
}

func TestResolveByCredentialsUsernameAndEmailFallback(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.CreateLocal(ctx, "frank", "Frank", "frank@x.com", mustHash(t, "secret"))
	require.NoError(t, err)

	byUsername, err := svc.ResolveByCredentials(ctx, "frank", "secret")
	require.NoError(t, err)

	byEmail, err := svc.ResolveByCredentials(ctx, "frank@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, byUsername.ID, byEmail.ID)
}

func TestResolveByCredentialsUniformFailure(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.CreateLocal(ctx, "grace", "Grace", "grace@x.com", mustHash(t, "right"))
	require.NoError(t, err)

	_, wrongPw := svc.ResolveByCredentials(ctx, "grace", "wrong")
	_, unknown := svc.ResolveByCredentials(ctx, "nobody", "whatever")

	require.Error(t, wrongPw)
	require.Error(t, unknown)
	// Same message for both failure modes so accounts cannot be enumerated.
	assert.Equal(t,
		apperrors.ToDomainError(wrongPw).Message,
		apperrors.ToDomainError(unknown).Message)
}

func TestPasswordlessAccountCannotLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-3", Email: "henry@x.com", Name: "Henry",
	})
	require.NoError(t, err)

	_, err = svc.ResolveByCredentials(ctx, "henry@x.com", "")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(err).Code)
}

func TestBootstrapCredentialsOverrideStoredHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	// Seed the bootstrap account with a hash that does NOT match the
	// bootstrap password and a role that drifted away from ADMIN.
	seeded := &domain.User{
		Username:     "admin",
		Name:         "Admin User",
		Email:        "admin@example.com",
		Role:         domain.RoleUser,
		PasswordHash: mustHash(t, "a completely different password"),
	}
	require.NoError(t, repo.Create(ctx, seeded))

	user, err := svc.ResolveByCredentials(ctx, "admin", "admin123456@")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	persisted, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, persisted.Role, "forced role must be persisted")
}

func TestBootstrapCredentialsWorkViaEmailIdentifier(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	seeded := &domain.User{
		Username:     "admin",
		Name:         "Admin User",
		Email:        "admin@example.com",
		Role:         domain.RoleUser,
		PasswordHash: mustHash(t, "something else entirely"),
	}
	require.NoError(t, repo.Create(ctx, seeded))

	// The escape hatch keys off the stored username, not the identifier the
	// caller typed, so the bootstrap account is reachable by email too.
	user, err := svc.ResolveByCredentials(ctx, "admin@example.com", "admin123456@")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestExternalRefreshConflictingEmailIsConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-1", Email: "ivy@x.com", Name: "Ivy",
	})
	require.NoError(t, err)

	_, err = svc.CreateLocal(ctx, "judy", "Judy", "judy@x.com", mustHash(t, "pw"))
	require.NoError(t, err)

	// The provider now reports Ivy's email as judy@x.com, which another
	// account already owns. The uniqueness violation must surface as a
	// conflict, not a server fault.
	_, err = svc.ResolveOrProvisionExternal(ctx, ExternalIdentity{
		ExternalID: "g-1", Email: "judy@x.com", Name: "Ivy",
	})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestBootstrapOverrideOnlyAppliesToBootstrapAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.CreateLocal(ctx, "mallory", "Mallory", "mallory@x.com", mustHash(t, "other"))
	require.NoError(t, err)

	_, err = svc.ResolveByCredentials(ctx, "mallory", "admin123456@")
	require.Error(t, err, "bootstrap secret must not open other accounts")
}

func TestResolveBySubjectNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestIdentityService(repo)
	ctx := context.Background()

	_, err := svc.ResolveBySubject(ctx, "ghost@x.com")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
