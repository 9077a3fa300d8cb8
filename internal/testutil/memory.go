// Package testutil holds in-memory stand-ins for the repositories and the
// ledger. They keep the same concurrency contracts as the Postgres versions:
// version CAS on services, a single payout claim, conditional debits and
// idempotent event keys.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MemoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func NewMemoryUsers(users ...*models.User) *MemoryUsers {
	m := &MemoryUsers{users: make(map[uuid.UUID]*models.User)}
	for _, user := range users {
		m.Put(user)
	}
	return m
}

func (m *MemoryUsers) Put(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	m.users[user.ID] = &clone
}

func (m *MemoryUsers) Balance(id uuid.UUID) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		return user.Balance
	}
	return decimal.Zero
}

func (m *MemoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MemoryUsers) GetFresh(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByID(ctx, id)
}

func (m *MemoryUsers) Create(_ context.Context, user *models.User) error {
	m.Put(user)
	return nil
}

func (m *MemoryUsers) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return types.ErrNotFound
	}
	clone := *user
	clone.Balance = existing.Balance
	m.users[user.ID] = &clone
	return nil
}

func (m *MemoryUsers) UpdateStreak(_ context.Context, id uuid.UUID, hasStreak bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return types.ErrNotFound
	}
	user.HasAStreak = hasStreak
	return nil
}

func (m *MemoryUsers) UpdateReviewStats(_ context.Context, id uuid.UUID, stats models.ReviewStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return types.ErrNotFound
	}
	user.NumberOfReviews = stats.NumberOfReviews
	user.AverageRating = stats.AverageRating
	return nil
}

func (m *MemoryUsers) ClearCache(context.Context, uuid.UUID) {}

// MemoryLedger applies movements to MemoryUsers balances.
type MemoryLedger struct {
	mu      sync.Mutex
	users   *MemoryUsers
	entries []models.LedgerEntry
	byKey   map[string]int
	// FailNext makes the next movement fail with a persistence error.
	FailNext bool
}

var _ services.Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger(users *MemoryUsers) *MemoryLedger {
	return &MemoryLedger{users: users, byKey: make(map[string]int)}
}

func (l *MemoryLedger) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, key string, serviceID *uuid.UUID) (*models.LedgerEntry, error) {
	entry, _, err := l.apply(models.LedgerDebit, userID, amount, key, serviceID, "")
	return entry, err
}

func (l *MemoryLedger) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, key string, serviceID *uuid.UUID) (*models.LedgerEntry, error) {
	entry, _, err := l.apply(models.LedgerCredit, userID, amount, key, serviceID, "")
	return entry, err
}

func (l *MemoryLedger) Refund(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, key string, serviceID *uuid.UUID) (*models.LedgerEntry, error) {
	entry, _, err := l.apply(models.LedgerRefund, userID, amount, key, serviceID, "")
	return entry, err
}

func (l *MemoryLedger) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, key string, description string) (*models.LedgerEntry, bool, error) {
	return l.apply(models.LedgerCredit, userID, amount, key, nil, description)
}

func (l *MemoryLedger) HasEntry(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.byKey[key]
	return ok, nil
}

func (l *MemoryLedger) History(_ context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.LedgerEntry
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].UserID == userID {
			out = append(out, l.entries[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Entries returns every entry of the given kind.
func (l *MemoryLedger) Entries(kind models.LedgerEntryKind) []models.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.LedgerEntry
	for _, entry := range l.entries {
		if entry.Kind == kind {
			out = append(out, entry)
		}
	}
	return out
}

func (l *MemoryLedger) Entry(key string) (models.LedgerEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.byKey[key]
	if !ok {
		return models.LedgerEntry{}, false
	}
	return l.entries[i], true
}

func (l *MemoryLedger) apply(kind models.LedgerEntryKind, userID uuid.UUID, amount decimal.Decimal, key string, serviceID *uuid.UUID, description string) (*models.LedgerEntry, bool, error) {
	if !amount.IsPositive() {
		return nil, false, types.Validationf("%s amount must be positive", kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailNext {
		l.FailNext = false
		return nil, false, types.Persistence(errors.New("ledger unavailable"))
	}

	if i, ok := l.byKey[key]; ok {
		entry := l.entries[i]
		return &entry, false, nil
	}

	l.users.mu.Lock()
	defer l.users.mu.Unlock()

	user, ok := l.users.users[userID]
	if !ok {
		return nil, false, types.ErrNotFound
	}

	if kind.IsIncrease() {
		user.Balance = user.Balance.Add(amount)
	} else {
		if user.Balance.LessThan(amount) {
			return nil, false, &types.InsufficientFundsError{Required: amount, Current: user.Balance}
		}
		user.Balance = user.Balance.Sub(amount)
	}

	entry := models.LedgerEntry{
		UserID:       userID,
		ServiceID:    serviceID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: user.Balance,
		EventKey:     key,
		Description:  description,
	}
	entry.ID = uuid.New()
	l.entries = append(l.entries, entry)
	l.byKey[key] = len(l.entries) - 1
	return &entry, true, nil
}

// MemoryServices is a cleaning service store with version CAS.
type MemoryServices struct {
	mu       sync.Mutex
	services map[uuid.UUID]*models.CleaningService
	// FailCreate makes every Create fail with a persistence error.
	FailCreate bool
}

func NewMemoryServices() *MemoryServices {
	return &MemoryServices{services: make(map[uuid.UUID]*models.CleaningService)}
}

func (m *MemoryServices) Put(service *models.CleaningService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	if service.Version == 0 {
		service.Version = 1
	}
	m.services[service.ID] = service.Clone()
}

func (m *MemoryServices) Get(id uuid.UUID) *models.CleaningService {
	m.mu.Lock()
	defer m.mu.Unlock()
	if service, ok := m.services[id]; ok {
		return service.Clone()
	}
	return nil
}

func (m *MemoryServices) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.services)
}

func (m *MemoryServices) Create(_ context.Context, service *models.CleaningService) error {
	if m.FailCreate {
		return types.Persistence(errors.New("insert failed"))
	}
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	now := time.Now().UTC()
	service.CreatedAt, service.UpdatedAt = now, now
	service.Version = 1
	m.Put(service)
	return nil
}

func (m *MemoryServices) GetByID(_ context.Context, id uuid.UUID) (*models.CleaningService, error) {
	if service := m.Get(id); service != nil {
		return service, nil
	}
	return nil, types.ErrNotFound
}

func (m *MemoryServices) Update(_ context.Context, service *models.CleaningService) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.services[service.ID]
	if !ok || stored.Version != service.Version {
		return types.ErrConflict
	}
	service.Version++
	service.UpdatedAt = time.Now().UTC()
	m.services[service.ID] = service.Clone()
	return nil
}

func (m *MemoryServices) MarkPaidToCleaner(_ context.Context, id uuid.UUID, amount decimal.Decimal, payments []models.Payment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.services[id]
	if !ok || stored.PaidToCleaner || stored.ServiceStatus != models.ServiceStatusCompleted {
		return false, nil
	}
	stored.PaidToCleaner = true
	stored.PayoutAmount = amount
	stored.Payments = append(stored.Payments[:0:0], payments...)
	stored.Version++
	return true, nil
}

func (m *MemoryServices) Delete(_ context.Context, service *models.CleaningService) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.services[service.ID]
	if !ok || stored.Version != service.Version {
		return types.ErrConflict
	}
	delete(m.services, service.ID)
	return nil
}

func (m *MemoryServices) list(match func(*models.CleaningService) bool) []models.CleaningService {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CleaningService
	for _, service := range m.services {
		if match(service) {
			out = append(out, *service.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out
}

func (m *MemoryServices) ListForUser(_ context.Context, userID uuid.UUID) ([]models.CleaningService, error) {
	return m.list(func(s *models.CleaningService) bool { return s.IsParticipant(userID) }), nil
}

func (m *MemoryServices) ListForUserByStatus(_ context.Context, userID uuid.UUID, status models.ServiceStatus) ([]models.CleaningService, error) {
	return m.list(func(s *models.CleaningService) bool {
		return s.ServiceStatus == status && s.IsParticipant(userID)
	}), nil
}

func (m *MemoryServices) ListPending(context.Context) ([]models.CleaningService, error) {
	return m.list(func(s *models.CleaningService) bool {
		return s.ServiceStatus == models.ServiceStatusPending && s.CleanerID == nil
	}), nil
}

func (m *MemoryServices) ListRatedForCleanerBetween(_ context.Context, cleanerID uuid.UUID, start, end time.Time) ([]models.CleaningService, error) {
	return m.list(func(s *models.CleaningService) bool {
		return s.CleanerID != nil && *s.CleanerID == cleanerID &&
			s.ServiceStatus == models.ServiceStatusCompleted &&
			s.Rating.Score != nil &&
			!s.UpdatedAt.Before(start) && s.UpdatedAt.Before(end)
	}), nil
}

func (m *MemoryServices) ListExpired(_ context.Context, now time.Time, _ int) ([]models.CleaningService, error) {
	return m.list(func(s *models.CleaningService) bool {
		return (s.ServiceStatus == models.ServiceStatusPending || s.ServiceStatus == models.ServiceStatusAssigned) &&
			s.ExpiresAt != nil && s.ExpiresAt.Before(now)
	}), nil
}

func (m *MemoryServices) ListSettlementCandidates(context.Context, time.Time, int) ([]models.CleaningService, error) {
	return m.list(func(s *models.CleaningService) bool {
		switch s.ServiceStatus {
		case models.ServiceStatusCompleted:
			return true
		case models.ServiceStatusCancelled, models.ServiceStatusExpired:
			return s.RefundAmount.IsPositive()
		}
		return false
	}), nil
}

// RecordingNotifier keeps every pushed notification.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

type Notification struct {
	UserID uuid.UUID
	Input  services.NotificationInput
}

func (n *RecordingNotifier) Push(_ context.Context, userID uuid.UUID, input services.NotificationInput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{UserID: userID, Input: input})
}

func (n *RecordingNotifier) Titles(userID uuid.UUID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var titles []string
	for _, item := range n.items {
		if item.UserID == userID {
			titles = append(titles, item.Input.Title)
		}
	}
	return titles
}

func (n *RecordingNotifier) Count(title string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, item := range n.items {
		if item.Input.Title == title {
			count++
		}
	}
	return count
}

type MemoryProperties struct {
	mu         sync.Mutex
	properties map[uuid.UUID]models.Property
}

func NewMemoryProperties(properties ...*models.Property) *MemoryProperties {
	m := &MemoryProperties{properties: make(map[uuid.UUID]models.Property)}
	for _, property := range properties {
		_ = m.Create(context.Background(), property)
	}
	return m
}

func (m *MemoryProperties) Create(_ context.Context, property *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}
	m.properties[property.ID] = *property
	return nil
}

func (m *MemoryProperties) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	property, ok := m.properties[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &property, nil
}

func (m *MemoryProperties) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Property
	for _, property := range m.properties {
		if property.OwnerID == ownerID {
			out = append(out, property)
		}
	}
	return out, nil
}

// MemoryStreakCache counts its hits so tests can tell a cached read from a
// computed one.
type MemoryStreakCache struct {
	mu      sync.Mutex
	entries map[string]types.StreakSummary
	Hits    int
}

func NewMemoryStreakCache() *MemoryStreakCache {
	return &MemoryStreakCache{entries: make(map[string]types.StreakSummary)}
}

func (c *MemoryStreakCache) Get(_ context.Context, cleanerID uuid.UUID, weekStart time.Time) (types.StreakSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	summary, ok := c.entries[repositories.StreakCacheKey(cleanerID, weekStart)]
	if ok {
		c.Hits++
	}
	return summary, ok
}

func (c *MemoryStreakCache) Set(_ context.Context, cleanerID uuid.UUID, weekStart time.Time, summary types.StreakSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[repositories.StreakCacheKey(cleanerID, weekStart)] = summary
}

func (c *MemoryStreakCache) Invalidate(_ context.Context, cleanerID uuid.UUID, weekStart time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, repositories.StreakCacheKey(cleanerID, weekStart))
}

var (
	_ repositories.UserRepository            = (*MemoryUsers)(nil)
	_ repositories.CleaningServiceRepository = (*MemoryServices)(nil)
	_ repositories.PropertyRepository        = (*MemoryProperties)(nil)
	_ repositories.StreakCache               = (*MemoryStreakCache)(nil)
	_ services.Notifier                      = (*RecordingNotifier)(nil)
)

type MemoryNotifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func (m *MemoryNotifications) Create(_ context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now().UTC()
	m.items = append(m.items, *notification)
	return nil
}

func (m *MemoryNotifications) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		item := m.items[i]
		if item.UserID != userID || (unreadOnly && item.IsRead) {
			continue
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryNotifications) MarkRead(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var marked int64
	for i := range m.items {
		item := &m.items[i]
		if item.UserID != userID || item.IsRead || (len(ids) > 0 && !wanted[item.ID]) {
			continue
		}
		item.IsRead = true
		marked++
	}
	return marked, nil
}

var _ repositories.NotificationRepository = (*MemoryNotifications)(nil)

// MemoryMessages keeps messages in send order.
type MemoryMessages struct {
	mu    sync.Mutex
	items []models.Message
}

func cloneMessage(message models.Message) models.Message {
	message.Recipients = append([]models.MessageRecipient(nil), message.Recipients...)
	return message
}

func (m *MemoryMessages) Create(_ context.Context, message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	m.items = append(m.items, cloneMessage(*message))
	return nil
}

func (m *MemoryMessages) GetByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			message := cloneMessage(item)
			return &message, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemoryMessages) ListByService(_ context.Context, serviceID uuid.UUID) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, item := range m.items {
		if item.ServiceID == serviceID {
			out = append(out, cloneMessage(item))
		}
	}
	return out, nil
}

func (m *MemoryMessages) MarkRead(_ context.Context, serviceID, userID uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var marked int64
	for i := range m.items {
		if m.items[i].ServiceID == serviceID && m.items[i].MarkReadBy(userID, at) {
			marked++
		}
	}
	return marked, nil
}

func (m *MemoryMessages) Delete(_ context.Context, message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == message.ID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

// MemoryReviews enforces one review per reviewer and service.
type MemoryReviews struct {
	mu    sync.Mutex
	items []models.Review
}

func (m *MemoryReviews) Create(_ context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ServiceID == review.ServiceID && item.ReviewerID == review.ReviewerID {
			return types.ErrConflict
		}
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	m.items = append(m.items, *review)
	return nil
}

func (m *MemoryReviews) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			review := item
			return &review, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemoryReviews) ListByReceiver(_ context.Context, receiverID uuid.UUID) ([]models.Review, error) {
	return m.list(func(r models.Review) bool { return r.ReceiverID == receiverID }), nil
}

func (m *MemoryReviews) ListByReviewer(_ context.Context, reviewerID uuid.UUID) ([]models.Review, error) {
	return m.list(func(r models.Review) bool { return r.ReviewerID == reviewerID }), nil
}

func (m *MemoryReviews) list(match func(models.Review) bool) []models.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, item := range m.items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

func (m *MemoryReviews) Delete(_ context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == review.ID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

func (m *MemoryReviews) StatsForReceiver(_ context.Context, receiverID uuid.UUID) (models.ReviewStats, error) {
	received := m.list(func(r models.Review) bool { return r.ReceiverID == receiverID })
	stats := models.ReviewStats{NumberOfReviews: len(received), AverageRating: decimal.Zero}
	if len(received) == 0 {
		return stats, nil
	}
	total := 0
	for _, review := range received {
		total += review.Stars
	}
	stats.AverageRating = decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(len(received)))).Round(2)
	return stats, nil
}

var (
	_ repositories.MessageRepository = (*MemoryMessages)(nil)
	_ repositories.ReviewRepository  = (*MemoryReviews)(nil)
)
