package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

func newAdminFixture(t *testing.T) (*UserAdminService, *fakeUserRepo, *domain.User) {
	t.Helper()
	users := newFakeUserRepo()
	admin := users.add(&domain.User{Username: "root", Email: "root@example.com", DisplayName: "Root", Role: domain.RoleAdmin, Active: true})
	service := NewUserAdminService(users, config.AuthConfig{BcryptCost: 4})
	return service, users, admin
}

func TestAdminCreateUser(t *testing.T) {
	service, _, _ := newAdminFixture(t)

	user, err := service.Create(context.Background(), AdminUserInput{
		Username: "tech3",
		Email:    "Tech3@Example.com",
		Password: "Password1!",
		Role:     domain.RoleITStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, "tech3@example.com", user.Email)
	assert.Equal(t, "tech3", user.DisplayName, "display name falls back to the username")
	assert.Equal(t, domain.RoleITStaff, user.Role)
	assert.True(t, user.Active)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "Password1!"))
}

func TestAdminCreateUserRejectsDuplicates(t *testing.T) {
	service, _, _ := newAdminFixture(t)
	ctx := context.Background()

	_, err := service.Create(ctx, AdminUserInput{Username: "Root", Email: "new@example.com", Password: "Password1!", Role: domain.RoleUser})
	assertErrorCode(t, err, "CONFLICT")

	_, err = service.Create(ctx, AdminUserInput{Username: "fresh", Email: "ROOT@example.com", Password: "Password1!", Role: domain.RoleUser})
	assertErrorCode(t, err, "CONFLICT")
}

func TestAdminUpdateLeavesEmptyFieldsAlone(t *testing.T) {
	service, users, _ := newAdminFixture(t)
	target := users.add(&domain.User{Username: "carol", Email: "carol@example.com", DisplayName: "Carol C", Role: domain.RoleUser, Active: true})

	inactive := false
	updated, err := service.Update(context.Background(), target.ID, AdminUserInput{
		DisplayName: "Carol Chen",
		Active:      &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", updated.Username)
	assert.Equal(t, "carol@example.com", updated.Email)
	assert.Equal(t, "Carol Chen", updated.DisplayName)
	assert.False(t, updated.Active)
}

func TestChangeRole(t *testing.T) {
	service, users, _ := newAdminFixture(t)
	target := users.add(&domain.User{Username: "dave", Email: "dave@example.com", DisplayName: "Dave", Role: domain.RoleUser, Active: true})

	updated, err := service.ChangeRole(context.Background(), target.ID, domain.RoleSupport)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, updated.Role)

	_, err = service.ChangeRole(context.Background(), target.ID, domain.Role("czar"))
	assertErrorCode(t, err, "VALIDATION_FAILED")
}

func TestDeleteGuardsSelfAndMissing(t *testing.T) {
	service, users, admin := newAdminFixture(t)
	ctx := context.Background()

	err := service.Delete(ctx, admin, admin.ID)
	assertErrorCode(t, err, "VALIDATION_FAILED")

	err = service.Delete(ctx, admin, "no-such-id")
	assertErrorCode(t, err, "NOT_FOUND")

	target := users.add(&domain.User{Username: "eva", Email: "eva@example.com", DisplayName: "Eva", Role: domain.RoleUser, Active: true})
	require.NoError(t, service.Delete(ctx, admin, target.ID))
	_, err = users.GetByID(ctx, target.ID)
	assert.Error(t, err)
}

func TestUserStats(t *testing.T) {
	service, users, _ := newAdminFixture(t)
	users.add(&domain.User{Username: "f1", Email: "f1@example.com", Role: domain.RoleUser, Active: true})
	users.add(&domain.User{Username: "f2", Email: "f2@example.com", Role: domain.RoleUser, Active: false})

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Active)
	assert.EqualValues(t, 1, stats.Inactive)
	assert.EqualValues(t, 2, stats.ByRole[domain.RoleUser])
	assert.EqualValues(t, 1, stats.ByRole[domain.RoleAdmin])
}

func TestRoleStats(t *testing.T) {
	service, users, _ := newAdminFixture(t)
	users.add(&domain.User{Username: "s1", Email: "s1@example.com", Role: domain.RoleSupport, Active: true})

	groups, err := service.RoleStats(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 4)

	byRole := make(map[domain.Role]RoleMembers, len(groups))
	for _, group := range groups {
		byRole[group.Role] = group
	}
	assert.Equal(t, 1, byRole[domain.RoleAdmin].Count)
	assert.Equal(t, 1, byRole[domain.RoleSupport].Count)
	assert.Equal(t, 0, byRole[domain.RoleITStaff].Count)
	assert.NotEmpty(t, byRole[domain.RoleAdmin].Permissions)
}

func TestListCountsWithFilter(t *testing.T) {
	service, users, _ := newAdminFixture(t)
	users.add(&domain.User{Username: "g1", Email: "g1@example.com", Role: domain.RoleUser, Active: true})
	users.add(&domain.User{Username: "g2", Email: "g2@example.com", Role: domain.RoleUser, Active: true})

	list, total, err := service.List(context.Background(), repository.UserFilter{Roles: []domain.Role{domain.RoleUser}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 2, total, "count ignores the page limit")
}
