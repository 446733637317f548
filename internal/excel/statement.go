package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/workbridge/engagements/internal/model"
)

type StatementGenerator struct{}

func NewStatementGenerator() *StatementGenerator {
	return &StatementGenerator{}
}

// Generate builds the earnings statement workbook: a summary sheet with
// the project's derived metrics, plus per-milestone and per-payment
// detail sheets.
func (g *StatementGenerator) Generate(summary model.ProjectSummary) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, summary); err != nil {
		return nil, err
	}

	file.NewSheet("Milestones")
	if err := g.writeMilestones(file, "Milestones", summary.Project.Milestones); err != nil {
		return nil, err
	}

	file.NewSheet("Payments")
	if err := g.writePayments(file, "Payments", summary.Project.Payments); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *StatementGenerator) writeSummary(file *excelize.File, sheet string, summary model.ProjectSummary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	project := summary.Project
	set("A1", "Project")
	set("B1", project.Title)
	set("A2", "Status")
	set("B2", string(project.Status))
	set("A3", "Start date")
	set("B3", formatDate(project.StartDate))
	set("A4", "Budget")
	set("B4", project.TotalAmount)
	set("A5", "Progress, %")
	set("B5", summary.Progress)
	set("A6", "Total earned")
	set("B6", summary.TotalEarned)
	set("A7", "Total paid out")
	set("B7", summary.TotalPaid)
	return nil
}

func (g *StatementGenerator) writeMilestones(file *excelize.File, sheet string, milestones []model.Milestone) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Title")
	set("B1", "Amount")
	set("C1", "Status")
	set("D1", "Due date")

	for i, milestone := range milestones {
		row := i + 2
		set(fmt.Sprintf("A%d", row), milestone.Title)
		set(fmt.Sprintf("B%d", row), milestone.Amount)
		set(fmt.Sprintf("C%d", row), string(milestone.Status))
		if milestone.DueDate != nil {
			set(fmt.Sprintf("D%d", row), formatDate(*milestone.DueDate))
		}
	}
	return nil
}

func (g *StatementGenerator) writePayments(file *excelize.File, sheet string, payments []model.Payment) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Amount")
	set("B1", "Status")
	set("C1", "Released at")
	set("D1", "Description")

	for i, payment := range payments {
		row := i + 2
		set(fmt.Sprintf("A%d", row), payment.Amount)
		set(fmt.Sprintf("B%d", row), string(payment.Status))
		if payment.ReleasedAt != nil {
			set(fmt.Sprintf("C%d", row), formatDate(*payment.ReleasedAt))
		}
		set(fmt.Sprintf("D%d", row), payment.Description)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
