package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/engagements/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, meeting_id, client_id, freelancer_id, title, description,
			total_amount, status, start_date, created_at
		FROM projects
		WHERE id = ?
	`, id).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	if err := r.attachChildren(ctx, []*model.Project{&project}); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListFor returns the user's projects for the given role, newest first.
// Milestones come back chronological so the list reads as the project's
// progress narrative.
func (r *ProjectRepository) ListFor(ctx context.Context, userID uuid.UUID, role model.Role) ([]model.Project, error) {
	column := "freelancer_id"
	if role == model.RoleClient {
		column = "client_id"
	}

	var projects []model.Project
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, meeting_id, client_id, freelancer_id, title, description,
			total_amount, status, start_date, created_at
		FROM projects
		WHERE `+column+` = ?
		ORDER BY created_at DESC
	`, userID).Scan(&projects).Error
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return projects, nil
	}

	refs := make([]*model.Project, len(projects))
	for i := range projects {
		refs[i] = &projects[i]
	}
	if err := r.attachChildren(ctx, refs); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) attachChildren(ctx context.Context, projects []*model.Project) error {
	ids := make([]uuid.UUID, len(projects))
	index := make(map[uuid.UUID]*model.Project, len(projects))
	for i, project := range projects {
		ids[i] = project.ID
		index[project.ID] = project
	}

	var milestones []model.Milestone
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, title, description, amount, status, due_date, created_at
		FROM milestones
		WHERE project_id IN ?
		ORDER BY created_at ASC
	`, ids).Scan(&milestones).Error
	if err != nil {
		return err
	}
	for _, milestone := range milestones {
		if project, ok := index[milestone.ProjectID]; ok {
			project.Milestones = append(project.Milestones, milestone)
		}
	}

	var payments []model.Payment
	err = r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, milestone_id, meeting_id, client_id, freelancer_id,
			amount, status, hold_ref, description, released_at, created_at
		FROM payments
		WHERE project_id IN ?
		ORDER BY created_at ASC
	`, ids).Scan(&payments).Error
	if err != nil {
		return err
	}
	for _, payment := range payments {
		if payment.ProjectID == nil {
			continue
		}
		if project, ok := index[*payment.ProjectID]; ok {
			project.Payments = append(project.Payments, payment)
		}
	}
	return nil
}

type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Get(ctx context.Context, id uuid.UUID) (*model.Milestone, error) {
	var milestone model.Milestone
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, project_id, title, description, amount, status, due_date, created_at
		FROM milestones
		WHERE id = ?
	`, id).Scan(&milestone).Error
	if err != nil {
		return nil, err
	}
	if milestone.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &milestone, nil
}

func (r *MilestoneRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to model.MilestoneStatus) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE milestones SET status = ? WHERE id = ? AND status = ?
	`, string(to), id, string(from))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *MilestoneRepository) SumAmounts(ctx context.Context, projectID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0) FROM milestones WHERE project_id = ?
	`, projectID).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
