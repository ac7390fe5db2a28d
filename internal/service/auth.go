package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/auth"
	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// AuthService authenticates users within a tenant and issues session
// tokens. Federated login is optional; when no verifier is configured the
// endpoint reports ErrFederatedDisabled.
type AuthService struct {
	users     store.UserStore
	employees store.EmployeeStore
	secret    []byte
	verifier  *auth.FederatedVerifier
	now       func() time.Time
}

// NewAuthService creates an auth service. verifier may be nil.
func NewAuthService(users store.UserStore, employees store.EmployeeStore, secret []byte, verifier *auth.FederatedVerifier) *AuthService {
	return &AuthService{
		users:     users,
		employees: employees,
		secret:    secret,
		verifier:  verifier,
		now:       time.Now,
	}
}

// LoginResult is a successful authentication with the issued token.
type LoginResult struct {
	User      *models.User
	FirstName string
	LastName  string
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials for (email, tenant). Missing user, inactive
// account, absent local password and wrong password all collapse into
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (in *RegisterInput) validate() error {
	verr := &ValidationError{}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		verr.add("email", "email", "must be a valid email address")
	}
	if len(in.Password) < 8 {
		verr.add("password", "min_length", "must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.add("firstName", "required", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.add("lastName", "required", "is required")
	}
	return verr.errOrNil()
}

// Register atomically creates a user and its employee profile in the
// tenant. The hire date defaults to today.
func (s *AuthService) Register(ctx context.Context, tenantID uuid.UUID, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		UserID:       uuid.New(),
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         models.RoleUser,
		IsActive:     true,
		PasswordHash: hash,
		Provider:     models.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	employee := &models.Employee{
		EmployeeID: uuid.New(),
		UserID:     user.UserID,
		TenantID:   tenantID,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		HireDate:   models.NormalizeDate(now),
		Status:     models.EmployeeStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.users.CreateWithEmployee(ctx, user, employee, nil); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.UserID.String()).
		Str("tenant_id", tenantID.String()).
		Msg("Registered user")

	return user, nil
}

// FederatedLogin exchanges a verified external identity token for a local
// session. Unknown users are provisioned on first sight; a LOCAL account
// seen again through the provider gets the external identity linked.
func (s *AuthService) FederatedLogin(ctx context.Context, tenantID uuid.UUID, externalToken string) (*LoginResult, error) {
	if s.verifier == nil {
		return nil, ErrFederatedDisabled
	}

	identity, err := s.verifier.Verify(ctx, externalToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, tenantID, identity.Email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		user, err = s.provision(ctx, tenantID, identity)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if user.Provider == models.ProviderLocal {
			if err := s.users.LinkProvider(ctx, tenantID, user.UserID, models.ProviderMicrosoft, identity.Subject); err != nil {
				return nil, err
			}
			user.Provider = models.ProviderMicrosoft
		}
	}

	return s.issueSession(ctx, user)
}

// provision creates the user and an empty employee profile from the
// external identity claims, with least privilege.
func (s *AuthService) provision(ctx context.Context, tenantID uuid.UUID, identity *auth.ExternalIdentity) (*models.User, error) {
	firstName, lastName := splitName(identity.Name)

	now := s.now()
	providerID := identity.Subject
	user := &models.User{
		UserID:     uuid.New(),
		TenantID:   tenantID,
		Email:      identity.Email,
		Role:       models.RoleUser,
		IsActive:   true,
		Provider:   models.ProviderMicrosoft,
		ProviderID: &providerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	email := identity.Email
	employee := &models.Employee{
		EmployeeID:    uuid.New(),
		UserID:        user.UserID,
		TenantID:      tenantID,
		FirstName:     firstName,
		LastName:      lastName,
		HireDate:      models.NormalizeDate(now),
		Status:        models.EmployeeStatusActive,
		PersonalEmail: &email,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.CreateWithEmployee(ctx, user, employee, nil); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.UserID.String()).
		Str("tenant_id", tenantID.String()).
		Msg("Provisioned federated user")

	return user, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "Usuario", "Nuevo"
	case 1:
		return parts[0], "Nuevo"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, err := auth.IssueToken(s.secret, user.UserID, user.TenantID, user.Role, user.Email)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(auth.SessionTTL),
	}

	// Names are display sugar; a user without a profile still logs in.
	if emp, err := s.employees.GetByUserID(ctx, user.TenantID, user.UserID); err == nil {
		result.FirstName = emp.FirstName
		result.LastName = emp.LastName
	}

	return result, nil
}

// Profile returns the user and employee profile, always filtered by both
// user id and tenant id.
type Profile struct {
	User     *models.User
	Employee *models.Employee
}

// GetProfile loads the caller's profile.
func (s *AuthService) GetProfile(ctx context.Context, tenantID, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.Get(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	profile := &Profile{User: user}
	if emp, err := s.employees.GetByUserID(ctx, tenantID, userID); err == nil {
		profile.Employee = emp
	}

	return profile, nil
}
