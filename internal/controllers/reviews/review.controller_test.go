package reviewController

import (
	"context"
	"strings"
	"testing"

	. "cleanhub/internal/models"
	"cleanhub/internal/testutil"
	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	controller *ReviewController
	store      *testutil.MemoryServices
	reviews    *testutil.MemoryReviews
	users      *testutil.MemoryUsers
	notifier   *testutil.RecordingNotifier
	service    *CleaningService
	requester  *User
	cleaner    *User
	stranger   *User
	admin      *User
}

func newUser(role UserRole, name string) *User {
	user := &User{Role: role, DisplayName: name}
	user.ID = uuid.New()
	return user
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     testutil.NewMemoryServices(),
		reviews:   &testutil.MemoryReviews{},
		notifier:  &testutil.RecordingNotifier{},
		requester: newUser(RoleUser, "Rita"),
		cleaner:   newUser(RoleCleaner, "Colin"),
		stranger:  newUser(RoleUser, "Sam"),
		admin:     newUser(RoleAdmin, "Ada"),
	}
	f.users = testutil.NewMemoryUsers(f.requester, f.cleaner, f.stranger, f.admin)
	f.service = f.completedService()

	f.controller = &ReviewController{
		serviceRepo: f.store,
		reviewRepo:  f.reviews,
		userRepo:    f.users,
		notifier:    f.notifier,
		log:         logger.New("reviewController_test"),
	}
	return f
}

func (f *fixture) completedService() *CleaningService {
	cleanerID := f.cleaner.ID
	service := &CleaningService{
		RequestingUserID: f.requester.ID,
		CleanerID:        &cleanerID,
		ServiceStatus:    ServiceStatusCompleted,
	}
	service.ID = uuid.New()
	f.store.Put(service)
	return f.store.Get(service.ID)
}

func (f *fixture) review(t *testing.T, by *User, service *CleaningService, stars int) *Review {
	t.Helper()
	review, err := f.controller.Create(context.Background(), by, &CreateReviewRequest{
		ServiceID: service.ID.String(),
		Stars:     stars,
		Message:   "Spotless kitchen",
	})
	require.NoError(t, err)
	return review
}

func (f *fixture) user(t *testing.T, id uuid.UUID) *User {
	t.Helper()
	user, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

func TestCreate_RequesterReviewsCleaner(t *testing.T) {
	f := newFixture(t)

	review := f.review(t, f.requester, f.service, 5)

	assert.Equal(t, ReviewerUser, review.ReviewerRole)
	assert.Equal(t, f.cleaner.ID, review.ReceiverID)
	cleaner := f.user(t, f.cleaner.ID)
	assert.Equal(t, 1, cleaner.NumberOfReviews)
	assert.True(t, decimal.NewFromInt(5).Equal(cleaner.AverageRating))
	assert.Equal(t, []string{"New Review Received", "First Review Received!"}, f.notifier.Titles(f.cleaner.ID))

	second := f.completedService()
	f.review(t, f.requester, second, 2)

	cleaner = f.user(t, f.cleaner.ID)
	assert.Equal(t, 2, cleaner.NumberOfReviews)
	assert.Equal(t, "3.5", cleaner.AverageRating.String())
	assert.Equal(t, 1, f.notifier.Count("First Review Received!"))
}

func TestCreate_CleanerReviewsRequester(t *testing.T) {
	f := newFixture(t)

	review := f.review(t, f.cleaner, f.service, 4)

	assert.Equal(t, ReviewerCleaner, review.ReviewerRole)
	assert.Equal(t, f.requester.ID, review.ReceiverID)
	assert.Equal(t, 1, f.user(t, f.requester.ID).NumberOfReviews)
	assert.Zero(t, f.user(t, f.cleaner.ID).NumberOfReviews)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		reviewer func(f *fixture) *User
		mutate   func(f *fixture, r *CreateReviewRequest)
		expected error
	}{
		{
			name:     "stranger",
			reviewer: func(f *fixture) *User { return f.stranger },
			expected: types.ErrAuthorization,
		},
		{
			name:     "zero stars",
			mutate:   func(f *fixture, r *CreateReviewRequest) { r.Stars = 0 },
			expected: types.ErrValidation,
		},
		{
			name:     "six stars",
			mutate:   func(f *fixture, r *CreateReviewRequest) { r.Stars = 6 },
			expected: types.ErrValidation,
		},
		{
			name:     "message too short after trim",
			mutate:   func(f *fixture, r *CreateReviewRequest) { r.Message = "  ok  " },
			expected: types.ErrValidation,
		},
		{
			name:     "message too long",
			mutate:   func(f *fixture, r *CreateReviewRequest) { r.Message = strings.Repeat("a", MaxReviewMessageLength+1) },
			expected: types.ErrValidation,
		},
		{
			name:     "malformed service id",
			mutate:   func(f *fixture, r *CreateReviewRequest) { r.ServiceID = "not-a-uuid" },
			expected: types.ErrInvalidReference,
		},
		{
			name: "service not completed",
			mutate: func(f *fixture, r *CreateReviewRequest) {
				service := f.store.Get(f.service.ID)
				service.ServiceStatus = ServiceStatusAssigned
				f.store.Put(service)
			},
			expected: types.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			reviewer := f.requester
			if tt.reviewer != nil {
				reviewer = tt.reviewer(f)
			}
			request := &CreateReviewRequest{
				ServiceID: f.service.ID.String(),
				Stars:     5,
				Message:   "Great work",
			}
			if tt.mutate != nil {
				tt.mutate(f, request)
			}

			_, err := f.controller.Create(context.Background(), reviewer, request)

			assert.ErrorIs(t, err, tt.expected)
			assert.Zero(t, f.user(t, f.cleaner.ID).NumberOfReviews)
			assert.Empty(t, f.notifier.Titles(f.cleaner.ID))
		})
	}
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.review(t, f.requester, f.service, 5)

	_, err := f.controller.Create(context.Background(), f.requester, &CreateReviewRequest{
		ServiceID: f.service.ID.String(),
		Stars:     1,
		Message:   "Changed my mind",
	})

	assert.ErrorIs(t, err, types.ErrConflict)
	cleaner := f.user(t, f.cleaner.ID)
	assert.Equal(t, 1, cleaner.NumberOfReviews)
	assert.True(t, decimal.NewFromInt(5).Equal(cleaner.AverageRating))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		deleter  func(f *fixture) *User
		expected error
	}{
		{name: "author", deleter: func(f *fixture) *User { return f.requester }},
		{name: "admin", deleter: func(f *fixture) *User { return f.admin }},
		{name: "receiver", deleter: func(f *fixture) *User { return f.cleaner }, expected: types.ErrAuthorization},
		{name: "stranger", deleter: func(f *fixture) *User { return f.stranger }, expected: types.ErrAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			review := f.review(t, f.requester, f.service, 4)

			err := f.controller.Delete(ctx, tt.deleter(f), review.ID.String())

			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
				assert.Equal(t, 1, f.user(t, f.cleaner.ID).NumberOfReviews)
				assert.Zero(t, f.notifier.Count("Review Deleted"))
				return
			}
			require.NoError(t, err)
			_, err = f.controller.Get(ctx, review.ID.String())
			assert.ErrorIs(t, err, types.ErrNotFound)
			cleaner := f.user(t, f.cleaner.ID)
			assert.Zero(t, cleaner.NumberOfReviews)
			assert.True(t, cleaner.AverageRating.IsZero())
			assert.Contains(t, f.notifier.Titles(f.cleaner.ID), "Review Deleted")

			f.review(t, f.requester, f.service, 3)
			assert.Equal(t, 1, f.user(t, f.cleaner.ID).NumberOfReviews)
		})
	}
}

func TestListsAndRefreshStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.review(t, f.requester, f.service, 5)
	f.review(t, f.cleaner, f.service, 4)

	received, err := f.controller.ListReceived(ctx, f.cleaner.ID.String())
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, f.requester.ID, received[0].ReviewerID)

	given, err := f.controller.ListGiven(ctx, f.cleaner.ID.String())
	require.NoError(t, err)
	require.Len(t, given, 1)
	assert.Equal(t, f.requester.ID, given[0].ReceiverID)

	_, err = f.controller.ListReceived(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrInvalidReference)

	stats, err := f.controller.RefreshStats(ctx, f.requester)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumberOfReviews)
	assert.Equal(t, "4", stats.AverageRating.String())
}
