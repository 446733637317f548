package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/workbridge/engagements/internal/http/middleware"
	"github.com/workbridge/engagements/internal/model"
	"github.com/workbridge/engagements/internal/service"
)

type Handler struct {
	meetings      *service.MeetingService
	projects      *service.ProjectService
	escrow        *service.EscrowService
	verification  *service.VerificationService
	notifications *service.NotificationService
	log           zerolog.Logger
}

func NewHandler(
	meetings *service.MeetingService,
	projects *service.ProjectService,
	escrow *service.EscrowService,
	verification *service.VerificationService,
	notifications *service.NotificationService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		meetings:      meetings,
		projects:      projects,
		escrow:        escrow,
		verification:  verification,
		notifications: notifications,
		log:           log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/meetings/:id/complete-discovery", h.completeDiscovery)
	protected.POST("/meetings/:id/decision", h.resolveDecision)
	protected.PATCH("/meetings/:id/notes", h.annotateNotes)
	protected.POST("/meetings/:id/fund", h.fundMeeting)
	protected.GET("/meetings/upcoming", h.listUpcomingMeetings)

	protected.GET("/projects", h.listProjects)
	protected.GET("/projects/:id/earnings-statement", h.earningsStatement)

	protected.POST("/milestones/:id/start", h.startMilestone)
	protected.POST("/milestones/:id/complete", h.completeMilestone)
	protected.POST("/milestones/:id/fund", h.fundMilestone)

	protected.POST("/payments/:id/release", h.releaseEscrow)
	protected.POST("/payments/:id/reject", h.rejectMilestone)
	protected.GET("/payments/:id/receipt", h.paymentReceipt)

	protected.GET("/verification/status", h.verificationStatus)

	protected.GET("/notifications", h.listNotifications)
	protected.POST("/notifications/:id/read", h.markNotificationRead)
	protected.DELETE("/notifications/:id", h.deleteNotification)
}

func (h *Handler) completeDiscovery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	meetingID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return
	}

	result, err := h.meetings.CompleteDiscovery(c.Request.Context(), meetingID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meeting":  meetingJSON(result.Meeting),
		"redirect": result.Redirect,
	})
}

type resolveDecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Project  *struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		TotalAmount float64 `json:"total_amount"`
	} `json:"project"`
}

func (h *Handler) resolveDecision(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	meetingID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return
	}

	var req resolveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.ResolveDecisionInput{Decision: req.Decision}
	if req.Project != nil {
		input.Details = &service.ProjectDetails{
			Title:       req.Project.Title,
			Description: req.Project.Description,
			TotalAmount: req.Project.TotalAmount,
		}
	}

	project, err := h.meetings.ResolveDecision(c.Request.Context(), meetingID, principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusOK, gin.H{"decision": service.DecisionReject})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"decision": service.DecisionAccept,
		"project":  projectJSON(*project),
	})
}

type annotateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) annotateNotes(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	meetingID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return
	}

	var req annotateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.meetings.AnnotateNotes(c.Request.Context(), meetingID, principal, req.Notes); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listUpcomingMeetings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	within := 24 * time.Hour
	if raw := strings.TrimSpace(c.Query("within")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid within duration"})
			return
		}
		within = parsed
	}

	meetings, err := h.meetings.ListUpcoming(c.Request.Context(), principal, within)
	if err != nil {
		h.handleError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(meetings))
	for i := range meetings {
		payload = append(payload, meetingJSON(&meetings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"meetings": payload})
}

func (h *Handler) listProjects(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	role := principal.Role
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role = model.Role(strings.ToUpper(raw))
	}

	summaries, err := h.projects.ListProjects(c.Request.Context(), principal, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, summaryJSON(summary))
	}
	c.JSON(http.StatusOK, gin.H{"projects": payload})
}

func (h *Handler) earningsStatement(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	projectID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	result, err := h.projects.EarningsStatement(c.Request.Context(), principal, projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) startMilestone(c *gin.Context) {
	h.advanceMilestone(c, h.projects.StartMilestone)
}

func (h *Handler) completeMilestone(c *gin.Context) {
	h.advanceMilestone(c, h.projects.CompleteMilestone)
}

func (h *Handler) advanceMilestone(c *gin.Context, advance func(ctx context.Context, principal model.Principal, id uuid.UUID) error) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	milestoneID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	if err := advance(c.Request.Context(), principal, milestoneID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type fundRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

func (h *Handler) fundMilestone(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	milestoneID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone id"})
		return
	}

	var req fundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.escrow.FundMilestone(c.Request.Context(), principal, milestoneID, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": paymentJSON(*payment)})
}

func (h *Handler) fundMeeting(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	meetingID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return
	}

	var req fundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.escrow.FundMeeting(c.Request.Context(), principal, meetingID, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": paymentJSON(*payment)})
}

type settlementRequest struct {
	MilestoneID string `json:"milestone_id" binding:"required"`
	Feedback    string `json:"feedback"`
}

func (h *Handler) releaseEscrow(c *gin.Context) {
	h.settle(c, h.escrow.ReleaseEscrow)
}

func (h *Handler) rejectMilestone(c *gin.Context) {
	h.settle(c, h.escrow.RejectMilestone)
}

func (h *Handler) settle(c *gin.Context, settle func(ctx context.Context, principal model.Principal, paymentID, milestoneID uuid.UUID, feedback string) (*model.Payment, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	paymentID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	var req settlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	milestoneID, err := uuid.Parse(strings.TrimSpace(req.MilestoneID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid milestone_id"})
		return
	}

	payment, err := settle(c.Request.Context(), principal, paymentID, milestoneID, req.Feedback)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": paymentJSON(*payment)})
}

func (h *Handler) paymentReceipt(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	paymentID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	result, err := h.escrow.Receipt(c.Request.Context(), principal, paymentID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) verificationStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	status, err := h.verification.GetStatus(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":          status.Score,
		"trust_level":    string(status.TrustLevel),
		"fully_verified": status.FullyVerified,
		"signals": gin.H{
			"id_verification":    string(status.Record.IDVerification),
			"email_verified":     status.Record.EmailVerified,
			"phone_verified":     status.Record.PhoneVerified,
			"portfolio_verified": status.Record.PortfolioVerified,
			"background_check":   string(status.Record.BackgroundCheck),
		},
	})
}

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		payload = append(payload, gin.H{
			"id":         n.ID,
			"title":      n.Title,
			"message":    n.Message,
			"type":       n.Type,
			"is_read":    n.IsRead,
			"created_at": n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": payload})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteNotification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPreconditionFailed):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTooEarly):
		c.JSON(http.StatusTooEarly, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}

func meetingJSON(m *model.Meeting) gin.H {
	payload := gin.H{
		"id":               m.ID,
		"client_id":        m.ClientID,
		"freelancer_id":    m.FreelancerID,
		"type":             string(m.Type),
		"scheduled_at":     m.ScheduledAt,
		"duration_minutes": m.DurationMinutes,
		"status":           string(m.Status),
		"notes":            m.Notes,
	}
	if m.ClientDecision != nil {
		payload["client_decision"] = string(*m.ClientDecision)
	}
	return payload
}

func projectJSON(p model.Project) gin.H {
	return gin.H{
		"id":            p.ID,
		"client_id":     p.ClientID,
		"freelancer_id": p.FreelancerID,
		"title":         p.Title,
		"description":   p.Description,
		"total_amount":  p.TotalAmount,
		"status":        string(p.Status),
		"start_date":    p.StartDate,
	}
}

func summaryJSON(s model.ProjectSummary) gin.H {
	milestones := make([]gin.H, 0, len(s.Project.Milestones))
	for _, m := range s.Project.Milestones {
		entry := gin.H{
			"id":     m.ID,
			"title":  m.Title,
			"amount": m.Amount,
			"status": string(m.Status),
		}
		if m.DueDate != nil {
			entry["due_date"] = *m.DueDate
		}
		milestones = append(milestones, entry)
	}

	payload := projectJSON(s.Project)
	payload["progress"] = s.Progress
	payload["total_earned"] = s.TotalEarned
	payload["total_paid"] = s.TotalPaid
	payload["milestones"] = milestones
	return payload
}

func paymentJSON(p model.Payment) gin.H {
	payload := gin.H{
		"id":            p.ID,
		"client_id":     p.ClientID,
		"freelancer_id": p.FreelancerID,
		"amount":        p.Amount,
		"status":        string(p.Status),
		"description":   p.Description,
		"created_at":    p.CreatedAt,
	}
	if p.ProjectID != nil {
		payload["project_id"] = *p.ProjectID
	}
	if p.MilestoneID != nil {
		payload["milestone_id"] = *p.MilestoneID
	}
	if p.MeetingID != nil {
		payload["meeting_id"] = *p.MeetingID
	}
	if p.ReleasedAt != nil {
		payload["released_at"] = *p.ReleasedAt
	}
	return payload
}
