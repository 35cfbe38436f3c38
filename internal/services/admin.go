package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-cms/internal/access"
	"github.com/diewo77/go-cms/internal/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MinPasswordLength is the shortest password accepted on sign-up and reset.
const MinPasswordLength = 6

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPasswordTooShort    = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrMissingFields       = errors.New("email, password and full name are required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountPending      = errors.New("account awaiting approval")
	ErrAccountRejected     = errors.New("account access revoked")
	ErrNotSuperadmin       = errors.New("account is not a superadmin")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrProfileNotReady     = errors.New("profile row not created yet")
	ErrNotFound            = errors.New("not found")
	ErrProtectedSuperadmin = errors.New("superadmin accounts cannot be changed here")
)

// ProfileInvalidator drops cached profiles after a change.
type ProfileInvalidator interface {
	Invalidate(id uuid.UUID)
}

// AdminService manages admin identities and their profiles.
type AdminService struct {
	db    *gorm.DB
	cache ProfileInvalidator

	// ProfileRetries and ProfileRetryDelay bound the wait for the profile row
	// after an identity is created.
	ProfileRetries    uint64
	ProfileRetryDelay time.Duration
}

// NewAdminService returns a service writing through db. cache may be nil.
func NewAdminService(db *gorm.DB, cache ProfileInvalidator) *AdminService {
	return &AdminService{db: db, cache: cache, ProfileRetries: 2, ProfileRetryDelay: time.Second}
}

func (s *AdminService) invalidate(id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(id)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *AdminService) emailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	Email    string
	Password string
	Confirm  string
	FullName string
}

// Register creates an identity whose profile starts as a pending admin.
func (s *AdminService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, ErrMissingFields
	}
	if err := checkPassword(in.Password, in.Confirm); err != nil {
		return nil, err
	}
	return s.createIdentity(ctx, email, in.Password, strings.TrimSpace(in.FullName))
}

func (s *AdminService) createIdentity(ctx context.Context, email, password, fullName string) (*models.User, error) {
	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Email: email, FullName: fullName, Password: hash, RequestedRole: access.RoleAdmin}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CreateAdminInput is the superadmin's "new admin" form.
type CreateAdminInput struct {
	Email    string
	Password string
	FullName string
}

// CreateAdmin creates an identity and promotes its profile to an approved admin.
func (s *AdminService) CreateAdmin(ctx context.Context, in CreateAdminInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || in.Password == "" || fullName == "" {
		return nil, ErrMissingFields
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	u, err := s.createIdentity(ctx, email, in.Password, fullName)
	if err != nil {
		return nil, err
	}
	if err := s.PromoteToApprovedAdmin(ctx, u.ID, email, fullName); err != nil {
		return nil, err
	}
	return u, nil
}

// PromoteToApprovedAdmin marks the profile of id as an approved admin. The
// profile row may lag behind the identity, so the update is retried and,
// when the row never shows up, written with an upsert.
func (s *AdminService) PromoteToApprovedAdmin(ctx context.Context, id uuid.UUID, email, fullName string) error {
	updates := map[string]any{
		"role":      access.RoleAdmin,
		"status":    access.StatusApproved,
		"full_name": fullName,
	}
	backoff := retry.WithMaxRetries(s.ProfileRetries, retry.NewConstant(s.retryDelay()))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return retry.RetryableError(res.Error)
		}
		if res.RowsAffected == 0 {
			return retry.RetryableError(ErrProfileNotReady)
		}
		return nil
	})
	if err == nil {
		s.invalidate(id)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p := models.Profile{
		ID:       id,
		Role:     access.RoleAdmin,
		Status:   access.StatusApproved,
		FullName: fullName,
		Email:    email,
	}
	uerr := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "status", "full_name", "updated_at"}),
	}).Create(&p).Error
	if uerr != nil {
		return fmt.Errorf("upsert profile after %v: %w", err, uerr)
	}
	s.invalidate(id)
	return nil
}

func (s *AdminService) retryDelay() time.Duration {
	if s.ProfileRetryDelay <= 0 {
		return time.Millisecond
	}
	return s.ProfileRetryDelay
}

// Authenticate checks credentials and the account status. A pending or
// rejected admin gets ErrAccountPending or ErrAccountRejected along with the
// loaded records.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*models.User, *models.Profile, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Profile").Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if u.Profile == nil {
		return &u, nil, nil
	}
	switch u.Profile.ToAccess().EffectiveStatus() {
	case access.StatusPending:
		return &u, u.Profile, ErrAccountPending
	case access.StatusRejected:
		return &u, u.Profile, ErrAccountRejected
	}
	return &u, u.Profile, nil
}

// LandingPath is where a freshly signed-in profile goes.
func LandingPath(p *models.Profile) string {
	if p == nil {
		return access.HomePath
	}
	switch p.Role {
	case access.RoleSuperadmin:
		return access.SuperadminDashboardPath
	case access.RoleAdmin:
		return access.AdminDashboardPath
	}
	return access.HomePath
}

func (s *AdminService) adminProfile(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	res := tx.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, fmt.Errorf("load profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if p.Role == access.RoleSuperadmin {
		return nil, ErrProtectedSuperadmin
	}
	return &p, nil
}

// SetStatus approves or rejects an admin.
func (s *AdminService) SetStatus(ctx context.Context, id uuid.UUID, status access.Status) error {
	if status != access.StatusApproved && status != access.StatusRejected {
		return ErrInvalidStatus
	}
	if _, err := s.adminProfile(ctx, s.db, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	s.invalidate(id)
	return nil
}

// ResetPassword replaces an admin's password.
func (s *AdminService) ResetPassword(ctx context.Context, id uuid.UUID, password, confirm string) error {
	if password == "" || confirm == "" {
		return ErrMissingFields
	}
	if err := checkPassword(password, confirm); err != nil {
		return err
	}
	if _, err := s.adminProfile(ctx, s.db, id); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an admin identity and its profile.
func (s *AdminService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.adminProfile(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// ListAdmins returns admin profiles, newest first. An empty status lists all.
func (s *AdminService) ListAdmins(ctx context.Context, status access.Status) ([]models.Profile, error) {
	q := s.db.WithContext(ctx).Where("role = ?", access.RoleAdmin)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Profile
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return out, nil
}

// Profile returns the profile of id, or ErrNotFound.
func (s *AdminService) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	res := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, fmt.Errorf("load profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}
