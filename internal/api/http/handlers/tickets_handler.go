package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketsHandler serves ticket endpoints for all three roles. Role guards sit
// on the routes; the service re-checks them.
type TicketsHandler struct {
	tickets *service.TicketService
	reports *service.ReportService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, reports *service.ReportService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, reports: reports}
}

// ListAll GET /tickets.
func (h *TicketsHandler) ListAll(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListAll(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// ListAssigned GET /tickets/assigned.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListAssigned(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// ListMine GET /mytickets.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListMine(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), a, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResponse{
		Message: "Ticket submitted and admin notified.",
		Ticket:  dto.NewTicketResponse(ticket),
	})
}

// Assign PUT /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.AssignTicket(c.UserContext(), a, c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{
		Message: fmt.Sprintf("Ticket assigned to %s and marked In Progress", *ticket.AssignedName),
	})
}

// UpdatePriority PUT /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.tickets.UpdatePriority(c.UserContext(), a, c.Params("id"), req.Priority); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Priority updated successfully"})
}

// Comment POST /tickets/:id/comment.
func (h *TicketsHandler) Comment(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if _, _, err := h.tickets.AddComment(c.UserContext(), a, c.Params("id"), req.Comment); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "Comment added and user notified"})
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if _, err := h.tickets.ResolveTicket(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Ticket marked as resolved"})
}

// Comments GET /tickets/:id/comments.
func (h *TicketsHandler) Comments(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	comments, err := h.tickets.GetComments(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentList(comments))
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Ticket deleted successfully"})
}

// Report GET /tickets/report.
func (h *TicketsHandler) Report(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	report, err := h.reports.GetReport(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
