package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db"
	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
)

const maxSavedAddresses = 20

// Profile is the transport shape of a customer account.
type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Addresses []string  `json:"addresses"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfilePatch carries the editable profile fields. Nil fields are left
// untouched.
type ProfilePatch struct {
	Name      *string   `json:"name"`
	Phone     *string   `json:"phone"`
	Addresses *[]string `json:"addresses"`
}

// Service defines the behavior needed by the profile controller and the
// checkout flow.
type Service interface {
	Get(ctx context.Context, id int64) (*Profile, error)
	UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*Profile, error)
	AppendAddresses(ctx context.Context, userID int64, addresses []string) error
	FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

// NewService constructs a users service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err)
	}
	return toProfile(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, patch ProfilePatch) (*Profile, error) {
	changes, fieldErrors := buildChanges(patch)
	if len(fieldErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid profile fields").WithDetails(fieldErrors)
	}

	user, err := s.repo.UpdateProfile(ctx, id, changes)
	if err != nil {
		return nil, mapUserError(err)
	}
	return toProfile(user), nil
}

// AppendAddresses merges new delivery addresses into the saved list,
// skipping duplicates. The list is capped at maxSavedAddresses.
func (s *service) AppendAddresses(ctx context.Context, userID int64, addresses []string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return mapUserError(err)
	}

	existing := []string(user.Addresses)
	seen := make(map[string]struct{}, len(existing))
	for _, addr := range existing {
		seen[addr] = struct{}{}
	}

	merged := existing
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		merged = append(merged, addr)
	}
	if len(merged) == len(existing) {
		return nil
	}
	if len(merged) > maxSavedAddresses {
		merged = merged[len(merged)-maxSavedAddresses:]
	}

	if err := s.repo.ReplaceAddresses(ctx, userID, merged); err != nil {
		return mapUserError(err)
	}
	return nil
}

// FindOrCreateByEmail returns the customer for the given email, creating an
// empty profile on first login.
func (s *service) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}

	created := &models.User{Email: email, Addresses: pq.StringArray{}}
	if err := s.repo.Create(ctx, created); err != nil {
		// A concurrent first login may have inserted the same email.
		if db.IsUniqueViolation(err, "") {
			return s.repo.FindByEmail(ctx, email)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapUserError(err)
	}
	return nil
}

func buildChanges(patch ProfilePatch) (ProfileChanges, map[string]string) {
	fieldErrors := map[string]string{}
	changes := ProfileChanges{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			fieldErrors["name"] = "name cannot be empty"
		} else {
			changes.Name = &name
		}
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		if phone != "" && !plausiblePhone(phone) {
			fieldErrors["phone"] = "invalid phone number"
		} else {
			changes.Phone = &phone
		}
	}
	if patch.Addresses != nil {
		cleaned := make([]string, 0, len(*patch.Addresses))
		for _, addr := range *patch.Addresses {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				cleaned = append(cleaned, addr)
			}
		}
		if len(cleaned) > maxSavedAddresses {
			fieldErrors["addresses"] = fmt.Sprintf("at most %d addresses can be saved", maxSavedAddresses)
		} else {
			changes.Addresses = &cleaned
		}
	}

	return changes, fieldErrors
}

// plausiblePhone accepts any value carrying 10 to 15 digits so stored
// profiles are not rejected for formatting alone.
func plausiblePhone(raw string) bool {
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10 && digits <= 15
}

func toProfile(user *models.User) *Profile {
	addresses := make([]string, len(user.Addresses))
	copy(addresses, user.Addresses)
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Addresses: addresses,
		CreatedAt: user.CreatedAt,
	}
}

func mapUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "users storage")
}
