package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-helpdesk/internal/api/dto"
	"github.com/spec-kit/facility-helpdesk/internal/repository"
)

// EscalationHandler exposes the tier contact directory.
type EscalationHandler struct {
	contacts repository.ContactRepository
}

// NewEscalationHandler constructs the handler.
func NewEscalationHandler(contacts repository.ContactRepository) *EscalationHandler {
	return &EscalationHandler{contacts: contacts}
}

// ListContacts GET /escalation/contacts.
func (h *EscalationHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.contacts.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, dto.ContactResponse{
			Level:  string(contact.Level),
			Name:   contact.Name,
			Mobile: contact.Mobile,
		})
	}
	return c.JSON(dto.Success("", items))
}
