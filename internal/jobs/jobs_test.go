package jobs

import (
	"context"
	"testing"
	"time"

	"cleanhub/config"
	"cleanhub/internal/models"
	"cleanhub/internal/repositories"
	"cleanhub/internal/services"
	"cleanhub/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobFixture struct {
	users     *testutil.MemoryUsers
	ledger    *testutil.MemoryLedger
	store     *testutil.MemoryServices
	notifier  *testutil.RecordingNotifier
	settler   *services.SettlementService
	requester *models.User
	cleaner   *models.User
	now       time.Time
}

func newJobFixture() *jobFixture {
	requester := &models.User{Role: models.RoleUser, Balance: decimal.NewFromInt(46)}
	requester.ID = uuid.New()
	cleaner := &models.User{Role: models.RoleCleaner}
	cleaner.ID = uuid.New()

	users := testutil.NewMemoryUsers(requester, cleaner)
	ledger := testutil.NewMemoryLedger(users)
	store := testutil.NewMemoryServices()
	notifier := &testutil.RecordingNotifier{}

	return &jobFixture{
		users:     users,
		ledger:    ledger,
		store:     store,
		notifier:  notifier,
		settler:   services.NewSettlementService(store, ledger, notifier),
		requester: requester,
		cleaner:   cleaner,
		now:       time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC),
	}
}

func (f *jobFixture) put(status models.ServiceStatus, expiresAt time.Time) *models.CleaningService {
	service := &models.CleaningService{
		RequestingUserID: f.requester.ID,
		ServiceFee:       decimal.NewFromInt(54),
		ServiceStatus:    status,
		ExpiresAt:        &expiresAt,
	}
	service.ID = uuid.New()
	service.Payments = append(service.Payments,
		models.NewPendingPayment(service.ServiceFee, service.ID, f.now))
	f.store.Put(service)
	return service
}

func TestServiceExpiryJob_ExpiresAndRefunds(t *testing.T) {
	f := newJobFixture()
	due := f.put(models.ServiceStatusPending, f.now.Add(-time.Hour))
	future := f.put(models.ServiceStatusAssigned, f.now.Add(time.Hour))

	job := NewServiceExpiryJob(f.store, f.settler, f.notifier, Hourly)
	job.now = func() time.Time { return f.now }

	require.NoError(t, job.Execute(context.Background()))

	expired := f.store.Get(due.ID)
	assert.Equal(t, models.ServiceStatusExpired, expired.ServiceStatus)
	assert.Equal(t, "54.00", expired.RefundAmount.StringFixed(2))
	assert.Equal(t, models.PaymentStatusRefunded, expired.Payments[0].Status)
	assert.Equal(t, "100.00", f.users.Balance(f.requester.ID).StringFixed(2))
	assert.Equal(t, 1, f.notifier.Count("Service Expired"))
	assert.Equal(t, 1, f.notifier.Count("Refund Issued"))

	assert.Equal(t, models.ServiceStatusAssigned, f.store.Get(future.ID).ServiceStatus)

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, "100.00", f.users.Balance(f.requester.ID).StringFixed(2), "a second run must not refund again")
}

func TestSettlementReconciliationJob_ReplaysFailedCredit(t *testing.T) {
	f := newJobFixture()
	cleanerID := f.cleaner.ID
	service := f.put(models.ServiceStatusCompleted, f.now.Add(time.Hour))
	service.CleanerID = &cleanerID
	f.store.Put(service)

	f.ledger.FailNext = true
	paid, err := f.settler.Payout(context.Background(), f.store.Get(service.ID))
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
	assert.True(t, f.users.Balance(f.cleaner.ID).IsZero())

	job := NewSettlementReconciliationJob(f.store, f.settler, Hourly)
	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, "54.00", f.users.Balance(f.cleaner.ID).StringFixed(2))

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, "54.00", f.users.Balance(f.cleaner.ID).StringFixed(2))
	assert.Len(t, f.ledger.Entries(models.LedgerCredit), 1)
}

func TestSettlementReconciliationJob_ReportsFailures(t *testing.T) {
	f := newJobFixture()
	cancelled := f.put(models.ServiceStatusCancelled, f.now)
	cancelled.RefundAmount = decimal.NewFromInt(54)
	f.store.Put(cancelled)

	f.ledger.FailNext = true
	job := NewSettlementReconciliationJob(f.store, f.settler, Hourly)

	assert.Error(t, job.Execute(context.Background()))
	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, "100.00", f.users.Balance(f.requester.ID).StringFixed(2))
}

func TestRegisterAllJobs(t *testing.T) {
	scheduler := services.NewSchedulerService()
	f := newJobFixture()
	repos := repositories.Repository{CleaningService: f.store}
	svc := services.Service{Settlement: f.settler}

	require.NoError(t, RegisterAllJobs(scheduler, config.Config{SchedulerEnabled: false}, svc, repos))
	assert.Zero(t, scheduler.GetJobCount())

	require.NoError(t, RegisterAllJobs(scheduler, config.Config{SchedulerEnabled: true}, svc, repos))
	assert.Equal(t, []string{"ServiceExpiry", "SettlementReconciliation"}, scheduler.JobNames())
}
