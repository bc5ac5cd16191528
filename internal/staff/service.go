package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/auth"
	"github.com/defactolounge/lounge-backend/pkg/auth/session"
	"github.com/defactolounge/lounge-backend/pkg/config"
	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
	"github.com/defactolounge/lounge-backend/pkg/security"
)

const seedPasswordLen = 12

type sessionGenerator interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

// Service authenticates venue staff and manages their accounts.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	EnsureSeedUsers(ctx context.Context) error
}

// LoginInput carries the credentials presented at the login route.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the authenticated session handed back to the client.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.StaffUser
}

// Params collects the staff service dependencies.
type Params struct {
	Repo     Repository
	Sessions sessionGenerator
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	sessions sessionGenerator
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the staff identity service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		jwtCfg:   params.JWT,
		pwCfg:    params.Password,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Login verifies the credentials and opens a refresh session. Unknown email,
// bad password, and deactivated account all read the same to the caller.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	accessID := session.NewAccessID()
	now := s.now().UTC()
	accessToken, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	if err := s.repo.Update(ctx, user.ID, map[string]any{"last_login_at": now}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp last login")
	}
	user.LastLoginAt = &now

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff user")
	}
	return user, nil
}

// EnsureSeedUsers creates one account per role on an empty database so a
// fresh environment is immediately usable. Generated passwords are logged
// once; rotate them after first login.
func (s *service) EnsureSeedUsers(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count staff users")
	}
	if count > 0 {
		return nil
	}

	seeds := []struct {
		email       string
		displayName string
		role        enums.ActorRole
	}{
		{"ceo@defactolounge.com", "Owner", enums.ActorRoleCEO},
		{"manager@defactolounge.com", "Floor Manager", enums.ActorRoleManager},
		{"staff@defactolounge.com", "Service Staff", enums.ActorRoleStaff},
	}

	for _, seed := range seeds {
		password, err := security.GenerateTempPassword(seedPasswordLen)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate seed password")
		}
		hash, err := security.HashPassword(password, s.pwCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash seed password")
		}
		user := &models.StaffUser{
			ID:           uuid.New(),
			Email:        seed.email,
			PasswordHash: hash,
			DisplayName:  seed.displayName,
			Role:         seed.role,
			IsActive:     true,
		}
		if _, err := s.repo.Create(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seed user")
		}
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"email":    seed.email,
				"role":     seed.role.String(),
				"password": password,
			})
			s.logg.Warn(logCtx, "seeded staff account; rotate this password")
		}
	}
	return nil
}
