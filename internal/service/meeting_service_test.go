package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/config"
	"github.com/workbridge/engagements/internal/model"
)

type MockMeetingStore struct {
	mock.Mock
}

func (m *MockMeetingStore) Get(ctx context.Context, id uuid.UUID) (*model.Meeting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Meeting), args.Error(1)
}

func (m *MockMeetingStore) MarkAwaitingDecision(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingStore) ResolveAccept(ctx context.Context, meetingID uuid.UUID, project *model.Project) (bool, error) {
	args := m.Called(ctx, meetingID, project)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingStore) ResolveReject(ctx context.Context, meetingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, meetingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMeetingStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockMeetingStore) ListUpcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Meeting, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]model.Meeting), args.Error(1)
}

type emittedNotification struct {
	RecipientID      uuid.UUID
	Title            string
	NotificationType string
}

type fakeNotifier struct {
	emitted []emittedNotification
}

func (f *fakeNotifier) Emit(ctx context.Context, recipientID uuid.UUID, title, message, notificationType string, data datatypes.JSON) {
	f.emitted = append(f.emitted, emittedNotification{
		RecipientID:      recipientID,
		Title:            title,
		NotificationType: notificationType,
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Meetings: config.MeetingsConfig{CompletionLeeway: 5 * time.Minute},
	}
}

func discoveryMeeting(client, freelancer uuid.UUID, scheduledAt time.Time) *model.Meeting {
	return &model.Meeting{
		ID:              uuid.New(),
		ClientID:        client,
		FreelancerID:    freelancer,
		Type:            model.MeetingTypeDiscovery,
		ScheduledAt:     scheduledAt,
		DurationMinutes: 30,
		Status:          model.MeetingStatusConfirmed,
	}
}

func TestCompleteDiscoveryTimingGate(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()
	scheduledAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	// 30 minute call, 5 minute leeway: completion opens at 14:25.
	boundary := scheduledAt.Add(25 * time.Minute)

	t.Run("too early before the boundary", func(t *testing.T) {
		store := new(MockMeetingStore)
		meeting := discoveryMeeting(clientID, freelancerID, scheduledAt)
		store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		svc.now = func() time.Time { return boundary.Add(-time.Second) }

		_, err := svc.CompleteDiscovery(context.Background(), meeting.ID, model.Principal{UserID: clientID, Role: model.RoleClient})
		assert.ErrorIs(t, err, ErrTooEarly)
		store.AssertNotCalled(t, "MarkAwaitingDecision", mock.Anything, mock.Anything)
	})

	t.Run("succeeds exactly at the boundary", func(t *testing.T) {
		store := new(MockMeetingStore)
		meeting := discoveryMeeting(clientID, freelancerID, scheduledAt)
		store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)
		store.On("MarkAwaitingDecision", mock.Anything, meeting.ID).Return(true, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		svc.now = func() time.Time { return boundary }

		result, err := svc.CompleteDiscovery(context.Background(), meeting.ID, model.Principal{UserID: clientID, Role: model.RoleClient})
		require.NoError(t, err)
		assert.Equal(t, model.MeetingStatusAwaitingDecision, result.Meeting.Status)
		require.NotNil(t, result.Meeting.ClientDecision)
		assert.Equal(t, model.DecisionPending, *result.Meeting.ClientDecision)
		assert.Equal(t, RedirectDecisionPrompt, result.Redirect)
		store.AssertExpectations(t)
	})
}

func TestCompleteDiscoveryRedirectsFreelancerToMeetingList(t *testing.T) {
	store := new(MockMeetingStore)
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)
	store.On("MarkAwaitingDecision", mock.Anything, meeting.ID).Return(true, nil)

	svc := NewMeetingService(store, &fakeNotifier{}, testConfig())

	result, err := svc.CompleteDiscovery(context.Background(), meeting.ID, model.Principal{UserID: meeting.FreelancerID, Role: model.RoleFreelancer})
	require.NoError(t, err)
	assert.Equal(t, RedirectMeetingList, result.Redirect)
}

func TestCompleteDiscoveryRejectsReentry(t *testing.T) {
	store := new(MockMeetingStore)
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	meeting.Status = model.MeetingStatusAwaitingDecision

	store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

	svc := NewMeetingService(store, &fakeNotifier{}, testConfig())

	_, err := svc.CompleteDiscovery(context.Background(), meeting.ID, model.Principal{UserID: meeting.ClientID, Role: model.RoleClient})
	assert.ErrorIs(t, err, ErrConflict)
	store.AssertNotCalled(t, "MarkAwaitingDecision", mock.Anything, mock.Anything)
}

func TestCompleteDiscoveryGuards(t *testing.T) {
	clientID := uuid.New()
	freelancerID := uuid.New()

	t.Run("missing meeting", func(t *testing.T) {
		store := new(MockMeetingStore)
		id := uuid.New()
		store.On("Get", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		_, err := svc.CompleteDiscovery(context.Background(), id, model.Principal{UserID: clientID})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("project meeting is not eligible", func(t *testing.T) {
		store := new(MockMeetingStore)
		meeting := discoveryMeeting(clientID, freelancerID, time.Now().Add(-time.Hour))
		meeting.Type = model.MeetingTypeProject
		store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		_, err := svc.CompleteDiscovery(context.Background(), meeting.ID, model.Principal{UserID: clientID})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		store := new(MockMeetingStore)
		meeting := discoveryMeeting(clientID, freelancerID, time.Now().Add(-time.Hour))
		store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		_, err := svc.CompleteDiscovery(context.Background(), meeting.ID, model.Principal{UserID: uuid.New()})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestResolveDecisionAccept(t *testing.T) {
	store := new(MockMeetingStore)
	notifier := &fakeNotifier{}
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	meeting.Status = model.MeetingStatusAwaitingDecision

	store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)
	store.On("ResolveAccept", mock.Anything, meeting.ID, mock.AnythingOfType("*model.Project")).Return(true, nil)

	svc := NewMeetingService(store, notifier, testConfig())

	project, err := svc.ResolveDecision(context.Background(), meeting.ID, model.Principal{UserID: meeting.ClientID, Role: model.RoleClient}, ResolveDecisionInput{
		Decision: DecisionAccept,
		Details:  &ProjectDetails{Title: "Site rebuild", Description: "Full redesign", TotalAmount: 4500},
	})
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, model.ProjectStatusActive, project.Status)
	assert.Equal(t, meeting.ClientID, project.ClientID)
	assert.Equal(t, meeting.FreelancerID, project.FreelancerID)
	require.NotNil(t, project.MeetingID)
	assert.Equal(t, meeting.ID, *project.MeetingID)

	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, meeting.FreelancerID, notifier.emitted[0].RecipientID)
	assert.Equal(t, model.NotificationTypeProjectStarted, notifier.emitted[0].NotificationType)
	store.AssertExpectations(t)
}

func TestResolveDecisionAcceptValidation(t *testing.T) {
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	meeting.Status = model.MeetingStatusAwaitingDecision
	principal := model.Principal{UserID: meeting.ClientID, Role: model.RoleClient}

	cases := []struct {
		name    string
		details *ProjectDetails
	}{
		{"missing details", nil},
		{"blank title", &ProjectDetails{Title: "  ", TotalAmount: 100}},
		{"zero amount", &ProjectDetails{Title: "Work", TotalAmount: 0}},
		{"negative amount", &ProjectDetails{Title: "Work", TotalAmount: -50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockMeetingStore)
			store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

			svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
			_, err := svc.ResolveDecision(context.Background(), meeting.ID, principal, ResolveDecisionInput{
				Decision: DecisionAccept,
				Details:  tc.details,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
			store.AssertNotCalled(t, "ResolveAccept", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolveDecisionRejectCreatesNoProject(t *testing.T) {
	store := new(MockMeetingStore)
	notifier := &fakeNotifier{}
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	meeting.Status = model.MeetingStatusAwaitingDecision

	store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)
	store.On("ResolveReject", mock.Anything, meeting.ID).Return(true, nil)

	svc := NewMeetingService(store, notifier, testConfig())

	project, err := svc.ResolveDecision(context.Background(), meeting.ID, model.Principal{UserID: meeting.ClientID, Role: model.RoleClient}, ResolveDecisionInput{Decision: DecisionReject})
	require.NoError(t, err)
	assert.Nil(t, project)
	store.AssertNotCalled(t, "ResolveAccept", mock.Anything, mock.Anything, mock.Anything)

	require.Len(t, notifier.emitted, 1)
	assert.Equal(t, model.NotificationTypeDecisionRejected, notifier.emitted[0].NotificationType)
}

func TestResolveDecisionGuards(t *testing.T) {
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now().Add(-time.Hour))
	meeting.Status = model.MeetingStatusAwaitingDecision

	t.Run("only the client decides", func(t *testing.T) {
		store := new(MockMeetingStore)
		store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		_, err := svc.ResolveDecision(context.Background(), meeting.ID, model.Principal{UserID: meeting.FreelancerID, Role: model.RoleFreelancer}, ResolveDecisionInput{Decision: DecisionReject})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("conflict when not awaiting a decision", func(t *testing.T) {
		store := new(MockMeetingStore)
		confirmed := discoveryMeeting(meeting.ClientID, meeting.FreelancerID, meeting.ScheduledAt)
		store.On("Get", mock.Anything, confirmed.ID).Return(confirmed, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		_, err := svc.ResolveDecision(context.Background(), confirmed.ID, model.Principal{UserID: meeting.ClientID, Role: model.RoleClient}, ResolveDecisionInput{Decision: DecisionReject})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown decision", func(t *testing.T) {
		store := new(MockMeetingStore)
		store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)

		svc := NewMeetingService(store, &fakeNotifier{}, testConfig())
		_, err := svc.ResolveDecision(context.Background(), meeting.ID, model.Principal{UserID: meeting.ClientID, Role: model.RoleClient}, ResolveDecisionInput{Decision: "MAYBE"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAnnotateNotes(t *testing.T) {
	store := new(MockMeetingStore)
	meeting := discoveryMeeting(uuid.New(), uuid.New(), time.Now())
	store.On("Get", mock.Anything, meeting.ID).Return(meeting, nil)
	store.On("UpdateNotes", mock.Anything, meeting.ID, "follow up on scope").Return(nil)

	svc := NewMeetingService(store, &fakeNotifier{}, testConfig())

	err := svc.AnnotateNotes(context.Background(), meeting.ID, model.Principal{UserID: meeting.FreelancerID}, "follow up on scope")
	require.NoError(t, err)

	err = svc.AnnotateNotes(context.Background(), meeting.ID, model.Principal{UserID: uuid.New()}, "not yours")
	assert.ErrorIs(t, err, ErrPermissionDenied)
	store.AssertExpectations(t)
}
