package users

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pizzaro/pizzaro-backend/pkg/db/models"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
)

type stubUserRepo struct {
	byID      map[int64]*models.User
	byEmail   map[string]*models.User
	nextID    int64
	createErr error
	replaced  map[int64][]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:     map[int64]*models.User{},
		byEmail:  map[string]*models.User{},
		nextID:   1,
		replaced: map[int64][]string{},
	}
}

func (s *stubUserRepo) add(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return user
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.add(user)
	return nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, id int64, changes ProfileChanges) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Phone != nil {
		user.Phone = *changes.Phone
	}
	if changes.Addresses != nil {
		user.Addresses = pq.StringArray(*changes.Addresses)
	}
	return user, nil
}

func (s *stubUserRepo) ReplaceAddresses(ctx context.Context, id int64, addresses []string) error {
	user, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Addresses = pq.StringArray(addresses)
	s.replaced[id] = addresses
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.byID, id)
	return nil
}

func mustService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestUpdateProfileValidation(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Email: "ivan@example.com", Name: "Ivan"})
	svc := mustService(t, repo)

	empty := " "
	badPhone := "12"
	_, err := svc.UpdateProfile(context.Background(), 1, ProfilePatch{Name: &empty, Phone: &badPhone})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field errors, got %#v", typed.Details())
	}
	if fields["name"] == "" || fields["phone"] == "" {
		t.Fatalf("missing field errors: %#v", fields)
	}
}

func TestUpdateProfileAppliesPatch(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Email: "ivan@example.com", Name: "Ivan", Phone: "79991234567"})
	svc := mustService(t, repo)

	name := "  Ivan Petrov  "
	addresses := []string{" Main street 1 ", "", "Oak lane 5"}
	profile, err := svc.UpdateProfile(context.Background(), 1, ProfilePatch{Name: &name, Addresses: &addresses})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if profile.Name != "Ivan Petrov" {
		t.Fatalf("unexpected name %q", profile.Name)
	}
	if len(profile.Addresses) != 2 || profile.Addresses[0] != "Main street 1" || profile.Addresses[1] != "Oak lane 5" {
		t.Fatalf("unexpected addresses %v", profile.Addresses)
	}
	if profile.Phone != "79991234567" {
		t.Fatalf("phone should be untouched, got %q", profile.Phone)
	}
}

func TestUpdateProfileNotFound(t *testing.T) {
	svc := mustService(t, newStubUserRepo())

	name := "Ghost"
	_, err := svc.UpdateProfile(context.Background(), 404, ProfilePatch{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAppendAddressesDeduplicates(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Email: "ivan@example.com", Addresses: pq.StringArray{"Main street 1"}})
	svc := mustService(t, repo)

	err := svc.AppendAddresses(context.Background(), 1, []string{"Main street 1", " Oak lane 5 ", ""})
	if err != nil {
		t.Fatalf("AppendAddresses: %v", err)
	}
	got := repo.replaced[1]
	if len(got) != 2 || got[0] != "Main street 1" || got[1] != "Oak lane 5" {
		t.Fatalf("unexpected addresses %v", got)
	}
}

func TestAppendAddressesNoChangesSkipsWrite(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(&models.User{Email: "ivan@example.com", Addresses: pq.StringArray{"Main street 1"}})
	svc := mustService(t, repo)

	err := svc.AppendAddresses(context.Background(), 1, []string{"Main street 1", "  "})
	if err != nil {
		t.Fatalf("AppendAddresses: %v", err)
	}
	if _, wrote := repo.replaced[1]; wrote {
		t.Fatal("expected no replace call when nothing changed")
	}
}

func TestFindOrCreateByEmail(t *testing.T) {
	repo := newStubUserRepo()
	existing := repo.add(&models.User{Email: "ivan@example.com", Name: "Ivan"})
	svc := mustService(t, repo)

	user, err := svc.FindOrCreateByEmail(context.Background(), "  IVAN@example.com ")
	if err != nil {
		t.Fatalf("FindOrCreateByEmail: %v", err)
	}
	if user.ID != existing.ID {
		t.Fatalf("expected existing user %d, got %d", existing.ID, user.ID)
	}

	created, err := svc.FindOrCreateByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("FindOrCreateByEmail: %v", err)
	}
	if created.ID == 0 || created.Email != "new@example.com" {
		t.Fatalf("unexpected created user %+v", created)
	}
}

func TestFindOrCreateByEmailRequiresEmail(t *testing.T) {
	svc := mustService(t, newStubUserRepo())

	_, err := svc.FindOrCreateByEmail(context.Background(), "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
