package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workbridge/engagements/internal/model"
)

type stubStatements struct{}

func (stubStatements) Generate(summary model.ProjectSummary) ([]byte, error) {
	return []byte("PK"), nil
}

func TestListProjectsMetrics(t *testing.T) {
	clientID := uuid.New()
	principal := model.Principal{UserID: clientID, Role: model.RoleClient}

	released := time.Now().UTC()
	project := model.Project{
		ID:       uuid.New(),
		ClientID: clientID,
		Title:    "Mobile app",
		Milestones: []model.Milestone{
			{Amount: 500, Status: model.MilestoneStatusApproved},
			{Amount: 1000, Status: model.MilestoneStatusPending},
		},
		Payments: []model.Payment{
			{Amount: 500, Status: model.PaymentStatusReleased, ReleasedAt: &released},
			{Amount: 1000, Status: model.PaymentStatusEscrowed},
		},
	}
	empty := model.Project{ID: uuid.New(), ClientID: clientID, Title: "Retainer"}

	projects := new(MockProjectStore)
	projects.On("ListFor", mock.Anything, clientID, model.RoleClient).Return([]model.Project{project, empty}, nil)

	svc := NewProjectService(projects, new(MockMilestoneStore), stubStatements{})

	summaries, err := svc.ListProjects(context.Background(), principal, model.RoleClient)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.InDelta(t, 50.0, summaries[0].Progress, 0.001)
	assert.InDelta(t, 500.0, summaries[0].TotalEarned, 0.001)
	assert.InDelta(t, 500.0, summaries[0].TotalPaid, 0.001)

	// No milestones means zero progress, not a division by zero.
	assert.Zero(t, summaries[1].Progress)
	assert.Zero(t, summaries[1].TotalEarned)
}

func TestListProjectsRejectsUnknownRole(t *testing.T) {
	svc := NewProjectService(new(MockProjectStore), new(MockMilestoneStore), stubStatements{})

	_, err := svc.ListProjects(context.Background(), model.Principal{UserID: uuid.New()}, model.Role("ADMIN"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMilestoneProgression(t *testing.T) {
	freelancerID := uuid.New()
	projectID := uuid.New()
	milestone := &model.Milestone{ID: uuid.New(), ProjectID: projectID, Status: model.MilestoneStatusPending}
	project := &model.Project{ID: projectID, ClientID: uuid.New(), FreelancerID: freelancerID}
	principal := model.Principal{UserID: freelancerID, Role: model.RoleFreelancer}

	t.Run("freelancer starts pending milestone", func(t *testing.T) {
		milestones := new(MockMilestoneStore)
		projects := new(MockProjectStore)
		milestones.On("Get", mock.Anything, milestone.ID).Return(milestone, nil)
		projects.On("Get", mock.Anything, projectID).Return(project, nil)
		milestones.On("SetStatus", mock.Anything, milestone.ID, model.MilestoneStatusPending, model.MilestoneStatusInProgress).Return(true, nil)

		svc := NewProjectService(projects, milestones, stubStatements{})
		require.NoError(t, svc.StartMilestone(context.Background(), principal, milestone.ID))
		milestones.AssertExpectations(t)
	})

	t.Run("client cannot advance milestones", func(t *testing.T) {
		milestones := new(MockMilestoneStore)
		projects := new(MockProjectStore)
		milestones.On("Get", mock.Anything, milestone.ID).Return(milestone, nil)
		projects.On("Get", mock.Anything, projectID).Return(project, nil)

		svc := NewProjectService(projects, milestones, stubStatements{})
		err := svc.StartMilestone(context.Background(), model.Principal{UserID: project.ClientID, Role: model.RoleClient}, milestone.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("conflict when the milestone is past the requested step", func(t *testing.T) {
		milestones := new(MockMilestoneStore)
		projects := new(MockProjectStore)
		approved := &model.Milestone{ID: milestone.ID, ProjectID: projectID, Status: model.MilestoneStatusApproved}
		milestones.On("Get", mock.Anything, milestone.ID).Return(approved, nil)
		projects.On("Get", mock.Anything, projectID).Return(project, nil)

		svc := NewProjectService(projects, milestones, stubStatements{})
		err := svc.CompleteMilestone(context.Background(), principal, milestone.ID)
		assert.ErrorIs(t, err, ErrConflict)
		milestones.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("conflict when the row guard misses under a stale read", func(t *testing.T) {
		milestones := new(MockMilestoneStore)
		projects := new(MockProjectStore)
		inProgress := &model.Milestone{ID: milestone.ID, ProjectID: projectID, Status: model.MilestoneStatusInProgress}
		milestones.On("Get", mock.Anything, milestone.ID).Return(inProgress, nil)
		projects.On("Get", mock.Anything, projectID).Return(project, nil)
		milestones.On("SetStatus", mock.Anything, milestone.ID, model.MilestoneStatusInProgress, model.MilestoneStatusCompleted).Return(false, nil)

		svc := NewProjectService(projects, milestones, stubStatements{})
		err := svc.CompleteMilestone(context.Background(), principal, milestone.ID)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestEarningsStatement(t *testing.T) {
	clientID := uuid.New()
	project := &model.Project{ID: uuid.New(), ClientID: clientID, FreelancerID: uuid.New(), Title: "API work"}

	projects := new(MockProjectStore)
	projects.On("Get", mock.Anything, project.ID).Return(project, nil)

	svc := NewProjectService(projects, new(MockMilestoneStore), stubStatements{})

	result, err := svc.EarningsStatement(context.Background(), model.Principal{UserID: clientID, Role: model.RoleClient}, project.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Content)
	assert.Contains(t, result.FileName, project.ID.String())

	_, err = svc.EarningsStatement(context.Background(), model.Principal{UserID: uuid.New()}, project.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
