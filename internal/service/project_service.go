package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
	"github.com/workbridge/engagements/internal/workflow"
)

// StatementGenerator renders the earnings statement workbook for a
// project summary.
type StatementGenerator interface {
	Generate(summary model.ProjectSummary) ([]byte, error)
}

type ProjectService struct {
	projects   ProjectStore
	milestones MilestoneStore
	statements StatementGenerator
	flow       workflow.Transitions[model.MilestoneStatus]
}

type StatementResult struct {
	FileName string
	Content  []byte
}

func NewProjectService(projects ProjectStore, milestones MilestoneStore, statements StatementGenerator) *ProjectService {
	return &ProjectService{
		projects:   projects,
		milestones: milestones,
		statements: statements,
		flow:       workflow.Milestones(),
	}
}

// ListProjects returns the caller's projects, newest first, annotated
// with progress and earnings metrics derived from stored state.
func (s *ProjectService) ListProjects(ctx context.Context, principal model.Principal, role model.Role) ([]model.ProjectSummary, error) {
	if role != model.RoleClient && role != model.RoleFreelancer {
		return nil, fmt.Errorf("%w: role must be CLIENT or FREELANCER", ErrInvalidInput)
	}

	projects, err := s.projects.ListFor(ctx, principal.UserID, role)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summaries = append(summaries, model.Summarize(project))
	}
	return summaries, nil
}

// StartMilestone moves a pending milestone into progress. Only the
// project's freelancer works milestones forward.
func (s *ProjectService) StartMilestone(ctx context.Context, principal model.Principal, milestoneID uuid.UUID) error {
	return s.advanceMilestone(ctx, principal, milestoneID, model.MilestoneStatusPending, model.MilestoneStatusInProgress)
}

// CompleteMilestone marks work as done, making the milestone eligible
// for the client's settlement verdict.
func (s *ProjectService) CompleteMilestone(ctx context.Context, principal model.Principal, milestoneID uuid.UUID) error {
	return s.advanceMilestone(ctx, principal, milestoneID, model.MilestoneStatusInProgress, model.MilestoneStatusCompleted)
}

func (s *ProjectService) advanceMilestone(ctx context.Context, principal model.Principal, milestoneID uuid.UUID, from, to model.MilestoneStatus) error {
	milestone, err := s.milestones.Get(ctx, milestoneID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: milestone %s", ErrNotFound, milestoneID)
		}
		return err
	}
	project, err := s.projects.Get(ctx, milestone.ProjectID)
	if err != nil {
		return err
	}
	if project.FreelancerID != principal.UserID {
		return ErrPermissionDenied
	}
	if !s.flow.Can(milestone.Status, to) {
		return fmt.Errorf("%w: milestone is %s, not %s", ErrConflict, milestone.Status, from)
	}

	updated, err := s.milestones.SetStatus(ctx, milestoneID, from, to)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: milestone moved concurrently", ErrConflict)
	}
	return nil
}

// EarningsStatement exports the project's milestones and released
// payments as a workbook for either participant.
func (s *ProjectService) EarningsStatement(ctx context.Context, principal model.Principal, projectID uuid.UUID) (*StatementResult, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
		}
		return nil, err
	}
	if project.ClientID != principal.UserID && project.FreelancerID != principal.UserID {
		return nil, ErrPermissionDenied
	}

	content, err := s.statements.Generate(model.Summarize(*project))
	if err != nil {
		return nil, err
	}
	return &StatementResult{
		FileName: fmt.Sprintf("earnings-%s.xlsx", project.ID),
		Content:  content,
	}, nil
}
