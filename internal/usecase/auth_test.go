package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/coursemarket/backend/internal/identity"
	"github.com/coursemarket/backend/internal/token"
	"github.com/coursemarket/backend/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, user *domain.User) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	list        func(ctx context.Context, limit, offset int) ([]*domain.User, error)
	updateRole  func(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	deactivate  func(ctx context.Context, id string) (bool, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return r.list(ctx, limit, offset)
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	return r.updateRole(ctx, id, role)
}

func (r *fakeUserRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	return r.deactivate(ctx, id)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

var testCodec = token.NewCodec([]byte(testJWTKey), 24*time.Hour)

func newAuthUsecase(repo *fakeUserRepo, sender *fakeEmailSender) *usecase.AuthUsecase {
	if sender == nil {
		sender = &fakeEmailSender{}
	}
	return usecase.NewAuthUsecase(repo, testCodec, sender, slog.Default())
}

// echoCreate returns the stored user the way the DB would: id and timestamps filled in.
func echoCreate(_ context.Context, user *domain.User) (*domain.User, error) {
	stored := *user
	stored.ID = "user-1"
	stored.IsActive = true
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	return &stored, nil
}

var adminActor = &identity.Identity{ID: "admin-1", Email: "admin@example.com", Role: domain.RoleAdmin}

// ---- Register ----

func TestRegister_HashesPasswordAndIssuesToken(t *testing.T) {
	var capturedHash string
	repo := &fakeUserRepo{
		create: func(ctx context.Context, user *domain.User) (*domain.User, error) {
			capturedHash = user.PasswordHash
			return echoCreate(ctx, user)
		},
	}

	user, signed, err := newAuthUsecase(repo, nil).Register(context.Background(), usecase.RegisterInput{
		Email:     "a@x.com",
		Password:  "secret1",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturedHash == "secret1" || capturedHash == "" {
		t.Fatal("raw password reached the store")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(capturedHash), []byte("secret1")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}

	claims, err := testCodec.Verify(signed)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != user.ID || claims.Email != "a@x.com" {
		t.Errorf("token claims = {%s %s}, want {%s a@x.com}", claims.Subject, claims.Email, user.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, _, err := newAuthUsecase(repo, nil).Register(context.Background(), usecase.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	}, nil)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("error = %v, want ErrEmailTaken", err)
	}
}

func TestRegister_AdminRoleDowngradedForAnonymous(t *testing.T) {
	var capturedRole domain.Role
	repo := &fakeUserRepo{
		create: func(ctx context.Context, user *domain.User) (*domain.User, error) {
			capturedRole = user.Role
			return echoCreate(ctx, user)
		},
	}

	_, _, err := newAuthUsecase(repo, nil).Register(context.Background(), usecase.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
		Role:     domain.RoleAdmin,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedRole != domain.RoleUser {
		t.Errorf("role = %s, want silent downgrade to user", capturedRole)
	}
}

func TestRegister_AdminRoleHonoredForAdminActor(t *testing.T) {
	var capturedRole domain.Role
	repo := &fakeUserRepo{
		create: func(ctx context.Context, user *domain.User) (*domain.User, error) {
			capturedRole = user.Role
			return echoCreate(ctx, user)
		},
	}

	_, _, err := newAuthUsecase(repo, nil).Register(context.Background(), usecase.RegisterInput{
		Email:    "b@x.com",
		Password: "secret1",
		Role:     domain.RoleAdmin,
	}, adminActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedRole != domain.RoleAdmin {
		t.Errorf("role = %s, want admin", capturedRole)
	}
}

func TestRegister_EmailFailureDoesNotFailRegistration(t *testing.T) {
	repo := &fakeUserRepo{create: echoCreate}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp down")
		},
	}

	_, _, err := newAuthUsecase(repo, sender).Register(context.Background(), usecase.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	}, nil)
	if err != nil {
		t.Fatalf("registration failed on email error: %v", err)
	}
}

// ---- Login ----

func activeUser(password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &domain.User{
		ID:           "user-1",
		Email:        "a@x.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	stored := activeUser("secret1")
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return stored, nil
		},
	}

	user, signed, err := newAuthUsecase(repo, nil).Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != stored.ID {
		t.Errorf("user.ID = %s, want %s", user.ID, stored.ID)
	}
	if _, err := testCodec.Verify(signed); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return activeUser("secret1"), nil
		},
	}

	_, _, err := newAuthUsecase(repo, nil).Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("error = %v, want ErrInvalidPassword", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, _, err := newAuthUsecase(repo, nil).Login(context.Background(), "nobody@x.com", "secret1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestLogin_DeactivatedAccountBehavesAsNotFound(t *testing.T) {
	stored := activeUser("secret1")
	stored.IsActive = false
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return stored, nil
		},
	}

	_, _, err := newAuthUsecase(repo, nil).Login(context.Background(), "a@x.com", "secret1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

// ---- admin operations ----

func TestListUsers_NonAdminDenied(t *testing.T) {
	repo := &fakeUserRepo{}
	actor := &identity.Identity{ID: "user-1", Role: domain.RoleUser}

	_, err := newAuthUsecase(repo, nil).ListUsers(context.Background(), actor, 1, 20)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("error = %v, want ErrAccessDenied", err)
	}
}

func TestListUsers_PaginationNormalized(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &fakeUserRepo{
		list: func(_ context.Context, limit, offset int) ([]*domain.User, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}

	if _, err := newAuthUsecase(repo, nil).ListUsers(context.Background(), adminActor, 0, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 100 || gotOffset != 0 {
		t.Errorf("limit/offset = %d/%d, want 100/0", gotLimit, gotOffset)
	}

	if _, err := newAuthUsecase(repo, nil).ListUsers(context.Background(), adminActor, 3, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Errorf("limit/offset = %d/%d, want 10/20", gotLimit, gotOffset)
	}
}

func TestUpdateUserRole_NonAdminDenied(t *testing.T) {
	repo := &fakeUserRepo{}

	_, err := newAuthUsecase(repo, nil).UpdateUserRole(context.Background(), nil, "user-2", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("error = %v, want ErrAccessDenied", err)
	}
}

func TestDeactivateUser_ReportsAffectedRow(t *testing.T) {
	repo := &fakeUserRepo{
		deactivate: func(_ context.Context, id string) (bool, error) {
			return id == "user-2", nil
		},
	}

	ok, err := newAuthUsecase(repo, nil).DeactivateUser(context.Background(), adminActor, "user-2")
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = newAuthUsecase(repo, nil).DeactivateUser(context.Background(), adminActor, "ghost")
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}
