package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ntumia/mediahub/internal/database/models"
	"github.com/ntumia/mediahub/internal/policy"
	"github.com/ntumia/mediahub/pkg/crypto"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrOrgNotFound        = errors.New("organization not found")
	ErrInvalidInvite      = errors.New("invalid invite token")
	ErrExpiredInvite      = errors.New("invite token has expired")
)

type Service struct {
	db           *gorm.DB
	jwt          *JWTService
	sealer       *crypto.Sealer
	inviteExpiry time.Duration
}

func NewService(db *gorm.DB, jwt *JWTService, sealer *crypto.Sealer, inviteExpiry time.Duration) *Service {
	return &Service{db: db, jwt: jwt, sealer: sealer, inviteExpiry: inviteExpiry}
}

// RegisterInput carries the collapsed multi-step signup: organization
// details, the responsible contact, and the owner account credentials.
type RegisterInput struct {
	OrgName         string
	OrgType         models.OrgType
	Description     string
	ContactName     string
	ContactEmail    string
	ContactPhone    string
	ContactPosition string
	Email           string
	Password        string
	Name            string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a pending media organization and its first user inside a
// transaction. The organization stays pending until a moderator approves it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	org := models.MediaOrganization{
		Name:            input.OrgName,
		Type:            input.OrgType,
		Description:     input.Description,
		Status:          models.OrgStatusPending,
		ContactName:     input.ContactName,
		ContactEmail:    input.ContactEmail,
		ContactPhone:    input.ContactPhone,
		ContactPosition: input.ContactPosition,
		Subscription:    models.SubscriptionFree,
		Version:         1,
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		user = models.User{
			Email:          input.Email,
			PasswordHash:   hash,
			Name:           input.Name,
			OrganizationID: &org.ID,
			Role:           string(policy.RoleEditor),
			Status:         models.UserStatusActive,
		}

		return tx.Create(&user).Error
	})

	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, org.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	user.Organization = &org

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Status != models.UserStatusActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	orgID := uuid.Nil
	if user.OrganizationID != nil {
		orgID = *user.OrganizationID
	}

	token, err := s.jwt.GenerateToken(user.ID, orgID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// invitePayload is the sealed content of an invite token.
type invitePayload struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ExpiresAt      int64     `json:"expires_at"`
}

// CreateInvite seals a team-member invite for the given organization.
// Platform admins may invite into any organization; anyone else only into
// their own, and never at a role above their own capability set.
func (s *Service) CreateInvite(ctx context.Context, actor *models.User, orgID uuid.UUID, email string, role policy.Role) (string, error) {
	perms := policy.For(policy.Role(actor.Role))
	if !perms.CanManageUsers {
		if actor.OrganizationID == nil || *actor.OrganizationID != orgID || !perms.CanWrite {
			return "", ErrInvalidCredentials
		}
	}
	if !policy.Known(role) || role == policy.RoleAdmin {
		return "", ErrInvalidInvite
	}

	var org models.MediaOrganization
	if err := s.db.WithContext(ctx).First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrOrgNotFound
		}
		return "", err
	}

	payload, err := json.Marshal(invitePayload{
		OrganizationID: orgID,
		Email:          email,
		Role:           string(role),
		ExpiresAt:      time.Now().Add(s.inviteExpiry).Unix(),
	})
	if err != nil {
		return "", err
	}

	return s.sealer.Seal(payload)
}

// AcceptInvite creates an active user from a sealed invite token.
func (s *Service) AcceptInvite(ctx context.Context, token, name, password string) (*AuthResponse, error) {
	data, err := s.sealer.Open(token)
	if err != nil {
		return nil, ErrInvalidInvite
	}

	var payload invitePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrInvalidInvite
	}

	if time.Now().Unix() > payload.ExpiresAt {
		return nil, ErrExpiredInvite
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", payload.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:          payload.Email,
		PasswordHash:   hash,
		Name:           name,
		OrganizationID: &payload.OrganizationID,
		Role:           payload.Role,
		Status:         models.UserStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	jwtToken, err := s.jwt.GenerateToken(user.ID, payload.OrganizationID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: jwtToken, User: &user}, nil
}
