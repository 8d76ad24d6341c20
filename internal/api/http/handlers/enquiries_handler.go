package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/cloudblitz/enquiry-service/internal/api/dto"
	"github.com/cloudblitz/enquiry-service/internal/auth"
	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/policy"
	"github.com/cloudblitz/enquiry-service/internal/service"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// EnquiriesHandler manages enquiry endpoints.
type EnquiriesHandler struct {
	service *service.EnquiryService
}

// NewEnquiriesHandler constructs handler.
func NewEnquiriesHandler(enquiryService *service.EnquiryService) *EnquiriesHandler {
	return &EnquiriesHandler{service: enquiryService}
}

// Create POST /api/enquiries. Accepts anonymous callers; a bearer token,
// when present, records the creator.
func (h *EnquiriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEnquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRequest(&req); err != nil {
		return err
	}

	input := service.EnquiryCreateInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		AutoAssign:   req.AutoAssign,
	}
	if req.Priority != nil {
		input.Priority = *req.Priority
	}

	enquiry, err := h.service.CreateEnquiry(c.Context(), actorFromContext(c), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   enquiryResponse(enquiry),
	})
}

// List GET /api/enquiries.
func (h *EnquiriesHandler) List(c *fiber.Ctx) error {
	enquiries, err := h.service.ListEnquiries(c.Context(), actorFromContext(c), parseEnquiryQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.EnquiryResponse, 0, len(enquiries))
	for i := range enquiries {
		items = append(items, enquiryResponse(&enquiries[i]))
	}
	return c.JSON(fiber.Map{"status": "success", "data": items})
}

// Get GET /api/enquiries/:id.
func (h *EnquiriesHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "enquiry id")
	if err != nil {
		return err
	}
	enquiry, err := h.service.GetEnquiry(c.Context(), actorFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": enquiryResponse(enquiry)})
}

// Update PUT /api/enquiries/:id.
func (h *EnquiriesHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "enquiry id")
	if err != nil {
		return err
	}
	var req dto.UpdateEnquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRequest(&req); err != nil {
		return err
	}

	// assignedTo and status are not validated here: for plain users both
	// are stripped before the update applies, and rejecting a field that
	// will never take effect would turn a reduced-effect success into an
	// error. The service validates them once sanitization has run.
	changes := policy.EnquiryChanges{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedTo:   req.AssignedTo,
		Notes:        req.Notes,
	}
	enquiry, err := h.service.UpdateEnquiry(c.Context(), actorFromContext(c), id, changes, req.AutoAssign)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": enquiryResponse(enquiry)})
}

// Assign PUT /api/enquiries/:id/assign.
func (h *EnquiriesHandler) Assign(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "enquiry id")
	if err != nil {
		return err
	}
	var req dto.AssignEnquiryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRequest(&req); err != nil {
		return err
	}
	userID, err := parseID(req.UserID, "user id")
	if err != nil {
		return err
	}
	enquiry, err := h.service.AssignEnquiry(c.Context(), actorFromContext(c), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": enquiryResponse(enquiry)})
}

// Delete DELETE /api/enquiries/:id.
func (h *EnquiriesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "enquiry id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteEnquiry(c.Context(), actorFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"deleted": true}})
}

func actorFromContext(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.User
}

// parseID rejects malformed identifiers before any query runs.
func parseID(raw, field string) (string, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewInvalidIdentifier(field)
	}
	return parsed.String(), nil
}

func parseEnquiryQuery(c *fiber.Ctx) service.EnquiryListFilter {
	filter := service.EnquiryListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.EnquiryStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.EnquiryPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func enquiryResponse(enquiry *domain.Enquiry) dto.EnquiryResponse {
	notes := enquiry.Notes
	if notes == nil {
		notes = []string{}
	}
	return dto.EnquiryResponse{
		ID:           enquiry.ID,
		CustomerName: enquiry.CustomerName,
		Email:        enquiry.Email,
		Phone:        enquiry.Phone,
		Message:      enquiry.Message,
		Status:       enquiry.Status,
		Priority:     enquiry.Priority,
		AssignedTo:   enquiry.AssignedTo,
		CreatedBy:    enquiry.CreatedBy,
		Notes:        notes,
		CreatedAt:    enquiry.CreatedAt,
		UpdatedAt:    enquiry.UpdatedAt,
	}
}
