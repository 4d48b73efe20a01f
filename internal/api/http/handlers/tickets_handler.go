package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-helpdesk/internal/api/dto"
	"github.com/spec-kit/facility-helpdesk/internal/auth"
	"github.com/spec-kit/facility-helpdesk/internal/domain"
	"github.com/spec-kit/facility-helpdesk/internal/service"
	apperrors "github.com/spec-kit/facility-helpdesk/pkg/util"
)

// TicketsHandler exposes the lifecycle engine over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Dispatch POST /api/requests. Action-discriminated engine boundary:
// `createTicket` and `updateStatus` with a flat field payload.
func (h *TicketsHandler) Dispatch(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	switch req.Action {
	case "createTicket":
		return h.create(c, req)
	case "updateStatus":
		if req.Extend {
			return h.extend(c, req)
		}
		return h.setStatus(c, req)
	default:
		return apperrors.NewValidationError("unknown action", map[string]any{"action": req.Action})
	}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.create(c, req)
}

func (h *TicketsHandler) create(c *fiber.Ctx, req dto.ActionRequest) error {
	ticket, err := h.service.CreateTicket(c.UserContext(), service.CreateInput{
		Department:  req.Department,
		Description: req.Description,
		ReportedBy:  req.ReportedBy,
		Unit:        req.Unit,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Success("ticket created", fiber.Map{"id": ticket.ID}))
}

// SetStatus POST /tickets/:id/status.
func (h *TicketsHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.ID = c.Params("id")
	return h.setStatus(c, req)
}

func (h *TicketsHandler) setStatus(c *fiber.Ctx, req dto.ActionRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return apperrors.NewValidationError("id required", nil)
	}
	ticket, err := h.service.SetStatus(c.UserContext(), service.SetStatusInput{
		ID:       req.ID,
		Status:   domain.TicketStatus(req.Status),
		Remark:   req.Remark,
		Rating:   req.Rating,
		ActionBy: actor(c, req),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("ticket updated", dto.FromTicket(ticket)))
}

// Extend POST /tickets/:id/extend.
func (h *TicketsHandler) Extend(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.ID = c.Params("id")
	return h.extend(c, req)
}

func (h *TicketsHandler) extend(c *fiber.Ctx, req dto.ActionRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return apperrors.NewValidationError("id required", nil)
	}
	var target *time.Time
	if strings.TrimSpace(req.TargetDate) != "" {
		parsed, err := parseDate(req.TargetDate)
		if err != nil {
			return apperrors.NewValidationError("invalid targetDate", map[string]any{"targetDate": req.TargetDate})
		}
		target = parsed
	}
	ticket, err := h.service.Extend(c.UserContext(), service.ExtendInput{
		ID:         req.ID,
		TargetDate: target,
		Remark:     req.Remark,
		ActionBy:   actor(c, req),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("ticket extended", dto.FromTicket(ticket)))
}

// ForceClose POST /tickets/:id/force-close. Admin-only; the router guards it.
func (h *TicketsHandler) ForceClose(c *fiber.Ctx) error {
	var req dto.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ForceClose(c.UserContext(), service.ForceCloseInput{
		ID:       c.Params("id"),
		Remark:   req.Remark,
		ActionBy: actor(c, req),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("ticket force closed", dto.FromTicket(ticket)))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Success("", dto.FromTicket(ticket)))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(dto.Success("", items))
}

// GetAudit GET /tickets/:id/audit.
func (h *TicketsHandler) GetAudit(c *fiber.Ctx) error {
	entries, err := h.service.ListAudit(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.FromAuditEntry(entry))
	}
	return c.JSON(dto.Success("", items))
}

// actor prefers the authenticated principal over the payload field.
func actor(c *fiber.Ctx, req dto.ActionRequest) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Staff != nil {
		return principal.Staff.Name
	}
	return req.ActionBy
}

func parseDate(value string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err == nil {
		return &t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339, value); rfcErr == nil {
		return &t, nil
	}
	return nil, err
}
