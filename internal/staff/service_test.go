package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/auth"
	"github.com/defactolounge/lounge-backend/pkg/config"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/security"
)

func setupStaffTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS staff_users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  display_name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

type fakeSessionGenerator struct {
	accessIDs []string
	err       error
}

func (f *fakeSessionGenerator) Generate(ctx context.Context, accessID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.accessIDs = append(f.accessIDs, accessID)
	return "refresh-" + accessID, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "lounge-backend-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

type staffFixture struct {
	db       *gorm.DB
	svc      Service
	sessions *fakeSessionGenerator
}

func newStaffFixture(t *testing.T) *staffFixture {
	t.Helper()

	db := setupStaffTestDB(t)
	sessions := &fakeSessionGenerator{}
	svc, err := NewService(Params{
		Repo:     NewRepository(db),
		Sessions: sessions,
		JWT:      testJWTConfig(),
		Password: testPasswordConfig(),
	})
	require.NoError(t, err)
	return &staffFixture{db: db, svc: svc, sessions: sessions}
}

func (f *staffFixture) seedUser(t *testing.T, email, password string, role enums.ActorRole, active bool) *models.StaffUser {
	t.Helper()

	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	user := &models.StaffUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Test User",
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, f.db.Create(user).Error)
	require.NoError(t, f.db.Model(&models.StaffUser{}).Where("id = ?", user.ID).Update("is_active", active).Error)
	return user
}

func TestLoginMintsTokenAndOpensSession(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "manager@defactolounge.com", "s3cret-pass", enums.ActorRoleManager, true)

	result, err := f.svc.Login(ctx, LoginInput{
		Email:    " Manager@DefactoLounge.com ",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.Len(t, f.sessions.accessIDs, 1)
	assert.Equal(t, "refresh-"+f.sessions.accessIDs[0], result.RefreshToken)

	claims, err := auth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.ActorRoleManager, claims.Role)
	assert.Equal(t, f.sessions.accessIDs[0], claims.ID)

	stored := &models.StaffUser{}
	require.NoError(t, f.db.Where("id = ?", user.ID).First(stored).Error)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()
	f.seedUser(t, "staff@defactolounge.com", "right-pass", enums.ActorRoleStaff, true)

	cases := []LoginInput{
		{Email: "staff@defactolounge.com", Password: "wrong-pass"},
		{Email: "nobody@defactolounge.com", Password: "right-pass"},
	}
	for _, input := range cases {
		_, err := f.svc.Login(ctx, input)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, "invalid credentials", typed.Message())
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	f := newStaffFixture(t)
	f.seedUser(t, "former@defactolounge.com", "still-knows-it", enums.ActorRoleStaff, false)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "former@defactolounge.com",
		Password: "still-knows-it",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestEnsureSeedUsersIsIdempotent(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureSeedUsers(ctx))

	var count int64
	require.NoError(t, f.db.Model(&models.StaffUser{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	require.NoError(t, f.svc.EnsureSeedUsers(ctx))
	require.NoError(t, f.db.Model(&models.StaffUser{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	ceo := &models.StaffUser{}
	require.NoError(t, f.db.Where("email = ?", "ceo@defactolounge.com").First(ceo).Error)
	assert.Equal(t, enums.ActorRoleCEO, ceo.Role)
	assert.True(t, ceo.IsActive)
}
