package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/workbridge/engagements/internal/model"
)

func TestGenerateStatement(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	released := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	project := model.Project{
		ID:          uuid.New(),
		Title:       "Storefront rebuild",
		Status:      model.ProjectStatusActive,
		TotalAmount: 4000,
		StartDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Milestones: []model.Milestone{
			{Title: "Design", Amount: 1500, Status: model.MilestoneStatusApproved, DueDate: &due},
			{Title: "Build", Amount: 2500, Status: model.MilestoneStatusInProgress},
		},
		Payments: []model.Payment{
			{Amount: 1500, Status: model.PaymentStatusReleased, ReleasedAt: &released, Description: "Escrow for milestone \"Design\""},
		},
	}

	content, err := NewStatementGenerator().Generate(model.Summarize(project))
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Summary", "Milestones", "Payments"}, file.GetSheetList())

	title, err := file.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Storefront rebuild", title)

	progress, err := file.GetCellValue("Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "50", progress)

	milestone, err := file.GetCellValue("Milestones", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Design", milestone)

	dueCell, err := file.GetCellValue("Milestones", "D2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", dueCell)

	paymentStatus, err := file.GetCellValue("Payments", "B2")
	require.NoError(t, err)
	assert.Equal(t, "RELEASED", paymentStatus)
}
