package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	schedsvc "github.com/vetdesk/frontdesk-backend/internal/services/scheduling"
)

// ReferenceHandler serves the front desk's synced reference data. Read-only;
// the owning context is the only place these change.
type ReferenceHandler struct {
	svc schedsvc.Service
}

func NewReferenceHandler(svc schedsvc.Service) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

// GET /api/doctors
func (h *ReferenceHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListDoctors(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"doctors": doctors})
}

// GET /api/rooms
func (h *ReferenceHandler) ListRooms(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"rooms": rooms})
}

// GET /api/appointment-types
func (h *ReferenceHandler) ListAppointmentTypes(c *gin.Context) {
	types, err := h.svc.ListAppointmentTypes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"appointmentTypes": types})
}

// GET /api/clients
func (h *ReferenceHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"clients": clients})
}

// GET /api/clients/:clientId/patients
func (h *ReferenceHandler) ListPatientsByClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	patients, err := h.svc.ListPatientsByClient(c.Request.Context(), clientID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"patients": patients})
}
