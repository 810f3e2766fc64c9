package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/media-backlog/internal/model"
	"github.com/iliyamo/media-backlog/internal/repository"
	"github.com/iliyamo/media-backlog/internal/utils"
)

func newUsersFixture() (*UsersService, *repository.Stores) {
	stores := repository.NewMemoryStores()
	return NewUsersService(stores.Users, 4, zap.NewNop()), stores
}

func TestCreateUser(t *testing.T) {
	svc, stores := newUsersFixture()
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserParams{Name: "alice", Email: "alice@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("no id assigned")
	}
	if u.PasswordHash != "" {
		t.Fatal("returned user carries the password hash")
	}
	if len(u.Roles) != 1 || u.Roles[0] != model.RoleUser {
		t.Fatalf("roles = %v, want default USER", u.Roles)
	}

	// the stored hash verifies against the plaintext
	stored, err := stores.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !utils.VerifyPassword(stored.PasswordHash, "longenough") {
		t.Fatal("stored hash does not verify")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newUsersFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		p    CreateUserParams
	}{
		{"empty name", CreateUserParams{Email: "a@x.io", Password: "longenough"}},
		{"empty email", CreateUserParams{Name: "a", Password: "longenough"}},
		{"short password", CreateUserParams{Name: "a", Email: "a@x.io", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.p); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newUsersFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserParams{Name: "a", Email: "a@x.io", Password: "longenough"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateUserParams{Name: "b", Email: "A@X.IO", Password: "longenough"}); !errors.Is(err, repository.ErrEmailExists) {
		t.Fatalf("got %v, want ErrEmailExists", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	svc, stores := newUsersFixture()
	ctx := context.Background()

	u, _ := svc.Create(ctx, CreateUserParams{Name: "a", Email: "a@x.io", Password: "oldpassword"})

	cases := []struct {
		name string
		p    UpdateUserParams
	}{
		{"missing current", UpdateUserParams{NewPassword: "brand-new-pass"}},
		{"wrong current", UpdateUserParams{Password: "not-it", NewPassword: "brand-new-pass"}},
		{"same as current", UpdateUserParams{Password: "oldpassword", NewPassword: "oldpassword"}},
		{"too short", UpdateUserParams{Password: "oldpassword", NewPassword: "tiny"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, u.ID, tc.p); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("got %v, want ErrInvalidArgument", err)
			}
		})
	}

	if _, err := svc.Update(ctx, u.ID, UpdateUserParams{Password: "oldpassword", NewPassword: "brand-new-pass"}); err != nil {
		t.Fatalf("valid change: %v", err)
	}
	stored, _ := stores.Users.GetByID(ctx, u.ID)
	if !utils.VerifyPassword(stored.PasswordHash, "brand-new-pass") {
		t.Fatal("new password does not verify after change")
	}
}

func TestUpdateUserProfileFields(t *testing.T) {
	svc, _ := newUsersFixture()
	ctx := context.Background()

	u, _ := svc.Create(ctx, CreateUserParams{Name: "a", Email: "a@x.io", Password: "longenough"})

	name := "renamed"
	upd, err := svc.Update(ctx, u.ID, UpdateUserParams{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Name != "renamed" || upd.Email != "a@x.io" {
		t.Fatalf("after update: name=%q email=%q", upd.Name, upd.Email)
	}
}

func TestListUsersIsSanitized(t *testing.T) {
	svc, _ := newUsersFixture()
	ctx := context.Background()

	svc.Create(ctx, CreateUserParams{Name: "a", Email: "a@x.io", Password: "longenough"})
	svc.Create(ctx, CreateUserParams{Name: "b", Email: "b@x.io", Password: "longenough"})

	page, err := svc.List(ctx, repository.ListQuery{}, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 2 {
		t.Fatalf("TotalItems = %d, want 2", page.TotalItems)
	}
	for _, u := range page.Data {
		if u.PasswordHash != "" {
			t.Fatalf("user %s leaked its hash", u.ID)
		}
	}
}
