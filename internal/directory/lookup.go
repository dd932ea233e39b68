package directory

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/pkg/apperrors"
)

// Lookup resolves a free-text person reference to a registered user.
// Implementations return (nil, nil) when nothing matches so callers can
// decide whether a miss is an error.
type Lookup interface {
	Resolve(ctx context.Context, ref string) (*domain.User, error)
}

// repoLookup resolves against the user table in three passes: exact
// username, configured nickname alias, then a loose name/email scan.
type repoLookup struct {
	users     repository.UserRepository
	nicknames map[string]string
}

// NewRepoLookup builds a Lookup backed by the user repository. The nickname
// table maps lowercase aliases to canonical usernames.
func NewRepoLookup(users repository.UserRepository, nicknames map[string]string) Lookup {
	return &repoLookup{users: users, nicknames: nicknames}
}

func (l *repoLookup) Resolve(ctx context.Context, ref string) (*domain.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	user, err := l.users.GetByUsername(ctx, ref)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	if alias, ok := l.nicknames[strings.ToLower(ref)]; ok {
		user, err = l.users.GetByUsername(ctx, alias)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}

	user, err = l.users.FindLoose(ctx, ref)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	return user, nil
}
