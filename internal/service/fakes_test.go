package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// passTx satisfies repository.TxRunner without a database. The fakes are
// already atomic per call, which is enough for the scenarios under test.
type passTx struct{}

func (passTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	clone := *user
	r.users[user.ID] = &clone
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.add(user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (r *fakeUserRepo) GetActiveByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.Active && (strings.EqualFold(u.Username, identifier) || strings.EqualFold(u.Email, identifier))
	})
}

func (r *fakeUserRepo) FindLoose(ctx context.Context, term string) (*domain.User, error) {
	lowered := strings.ToLower(term)
	matches := r.all(func(u *domain.User) bool {
		return strings.Contains(strings.ToLower(u.DisplayName), lowered) ||
			strings.Contains(strings.ToLower(u.Email), lowered)
	})
	if len(matches) == 0 {
		return nil, pgx.ErrNoRows
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return &matches[0], nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	matches := r.all(func(u *domain.User) bool {
		if filter.Active != nil && u.Active != *filter.Active {
			return false
		}
		if len(filter.Roles) == 0 {
			return true
		}
		for _, role := range filter.Roles {
			if u.Role == role {
				return true
			}
		}
		return false
	})
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	filter.Limit = 0
	matches, _ := r.List(ctx, filter)
	return int64(len(matches)), nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	result := make(map[domain.Role]int64)
	for _, u := range r.all(func(*domain.User) bool { return true }) {
		result[u.Role]++
	}
	return result, nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LastLoginAt = &at
	return nil
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) all(match func(*domain.User) bool) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if match(user) {
			result = append(result, *user)
		}
	}
	return result
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

// UpdateStatusIf mirrors the conditional update: the write only lands when
// the stored status still matches expected.
func (r *fakeTicketRepo) UpdateStatusIf(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok || stored.Status != expected {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[id]; ok {
		clone := *ticket
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	matches := r.matching(filter)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return nil, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (r *fakeTicketRepo) CountWithFilter(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *fakeTicketRepo) StatusCounts(ctx context.Context, involvedUserID *string) (domain.TicketStats, error) {
	var stats domain.TicketStats
	for _, t := range r.matching(repository.TicketFilter{InvolvedUserID: involvedUserID}) {
		stats.Total++
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusPending:
			stats.Pending++
		case domain.TicketStatusRejected:
			stats.Rejected++
		}
		switch t.Type {
		case domain.TicketTypeIncidental:
			stats.Incidental++
		case domain.TicketTypeReplacement:
			stats.Replacement++
		}
	}
	return stats, nil
}

func (r *fakeTicketRepo) ListTouchedByStaff(ctx context.Context, staffID string, from, to time.Time) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, t := range r.tickets {
		if t.CreatedAt.Before(from) || !t.CreatedAt.Before(to) {
			continue
		}
		if t.AssignedTo != nil && *t.AssignedTo == staffID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) matching(filter repository.TicketFilter) []domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, t := range r.tickets {
		if filter.InvolvedUserID != nil {
			involved := t.RaisedBy == *filter.InvolvedUserID ||
				(t.RaisedFor != nil && *t.RaisedFor == *filter.InvolvedUserID)
			if !involved {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, t.Type) {
			continue
		}
		result = append(result, *t)
	}
	return result
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsType(list []domain.TicketType, tt domain.TicketType) bool {
	for _, candidate := range list {
		if candidate == tt {
			return true
		}
	}
	return false
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (r *fakeHistoryRepo) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.HistoryEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) forTicket(ticketID string) []domain.HistoryEntry {
	result, _ := r.ListByTicket(context.Background(), ticketID)
	return result
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []domain.TicketLog
}

func (r *fakeLogRepo) Append(ctx context.Context, log *domain.TicketLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeLogRepo) ListByTicket(ctx context.Context, ticketID string, limit int) ([]domain.TicketLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].TicketID == ticketID {
			result = append(result, r.logs[i])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now()
	r.items = append(r.items, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Recipient == recipient {
			result = append(result, r.items[i])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].Recipient == recipient {
			r.items[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipient string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// recorderMailer captures outbound mail for assertions.
type recorderMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	to       string
	username string
	password string
}

func (m *recorderMailer) SendNewPassword(to, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, sentMail{to: to, username: username, password: password})
	return nil
}
