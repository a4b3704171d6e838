package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cmsvc "github.com/vetdesk/frontdesk-backend/internal/services/clinicmgmt"
)

// ClinicMgmtHandler exposes the master-data CRUD of the management context.
type ClinicMgmtHandler struct {
	svc cmsvc.Service
}

func NewClinicMgmtHandler(svc cmsvc.Service) *ClinicMgmtHandler {
	return &ClinicMgmtHandler{svc: svc}
}

type namedRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/doctors
func (h *ClinicMgmtHandler) CreateDoctor(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doctor, err := h.svc.CreateDoctor(c.Request.Context(), req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, doctor)
}

// PUT /api/doctors/:id
func (h *ClinicMgmtHandler) RenameDoctor(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doctor, err := h.svc.RenameDoctor(c.Request.Context(), id, req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, doctor)
}

// GET /api/doctors
func (h *ClinicMgmtHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListDoctors(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"doctors": doctors})
}

// POST /api/doctor-assistants
func (h *ClinicMgmtHandler) CreateDoctorAssistant(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assistant, err := h.svc.CreateDoctorAssistant(c.Request.Context(), req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, assistant)
}

// GET /api/doctor-assistants
func (h *ClinicMgmtHandler) ListDoctorAssistants(c *gin.Context) {
	assistants, err := h.svc.ListDoctorAssistants(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"doctorAssistants": assistants})
}

type specialtyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /api/doctor-specialties
func (h *ClinicMgmtHandler) CreateDoctorSpecialtyType(c *gin.Context) {
	var req specialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	specialty, err := h.svc.CreateDoctorSpecialtyType(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, specialty)
}

// GET /api/doctor-specialties
func (h *ClinicMgmtHandler) ListDoctorSpecialtyTypes(c *gin.Context) {
	specialties, err := h.svc.ListDoctorSpecialtyTypes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"doctorSpecialtyTypes": specialties})
}

// POST /api/rooms
func (h *ClinicMgmtHandler) CreateRoom(c *gin.Context) {
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.svc.CreateRoom(c.Request.Context(), req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, room)
}

// PUT /api/rooms/:id
func (h *ClinicMgmtHandler) RenameRoom(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req namedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.svc.RenameRoom(c.Request.Context(), id, req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, room)
}

// GET /api/rooms
func (h *ClinicMgmtHandler) ListRooms(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"rooms": rooms})
}

type appointmentTypeRequest struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code"`
	Duration int    `json:"duration" binding:"required"`
}

// POST /api/appointment-types
func (h *ClinicMgmtHandler) CreateAppointmentType(c *gin.Context) {
	var req appointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.CreateAppointmentType(c.Request.Context(), req.Name, req.Code, req.Duration)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, t)
}

// PUT /api/appointment-types/:id
func (h *ClinicMgmtHandler) UpdateAppointmentType(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req appointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.UpdateAppointmentType(c.Request.Context(), id, req.Name, req.Code, req.Duration)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, t)
}

// GET /api/appointment-types
func (h *ClinicMgmtHandler) ListAppointmentTypes(c *gin.Context) {
	types, err := h.svc.ListAppointmentTypes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"appointmentTypes": types})
}

type clientRequest struct {
	FullName          string `json:"fullName" binding:"required"`
	PreferredName     string `json:"preferredName"`
	Salutation        string `json:"salutation"`
	EmailAddress      string `json:"emailAddress"`
	PreferredDoctorID int    `json:"preferredDoctorId"`
}

func (r clientRequest) toInput() cmsvc.ClientInput {
	return cmsvc.ClientInput{
		FullName:          r.FullName,
		PreferredName:     r.PreferredName,
		Salutation:        r.Salutation,
		EmailAddress:      r.EmailAddress,
		PreferredDoctorID: r.PreferredDoctorID,
	}
}

// POST /api/clients
func (h *ClinicMgmtHandler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.svc.CreateClient(c.Request.Context(), req.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, client)
}

// PUT /api/clients/:id
func (h *ClinicMgmtHandler) UpdateClient(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.svc.UpdateClient(c.Request.Context(), id, req.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, client)
}

// GET /api/clients/:id
func (h *ClinicMgmtHandler) GetClient(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	client, err := h.svc.GetClient(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if client == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
		return
	}
	RespondOK(c, client)
}

// GET /api/clients
func (h *ClinicMgmtHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"clients": clients})
}

type patientRequest struct {
	Name              string `json:"name" binding:"required"`
	Species           string `json:"species"`
	Breed             string `json:"breed"`
	Sex               string `json:"sex"`
	PreferredDoctorID int    `json:"preferredDoctorId"`
}

func (r patientRequest) toInput() cmsvc.PatientInput {
	return cmsvc.PatientInput{
		Name:              r.Name,
		Species:           r.Species,
		Breed:             r.Breed,
		Sex:               r.Sex,
		PreferredDoctorID: r.PreferredDoctorID,
	}
}

// POST /api/clients/:id/patients
func (h *ClinicMgmtHandler) AddPatient(c *gin.Context) {
	clientID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patient, err := h.svc.AddPatient(c.Request.Context(), clientID, req.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, patient)
}

// PUT /api/patients/:id
func (h *ClinicMgmtHandler) UpdatePatient(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}
	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patient, err := h.svc.UpdatePatient(c.Request.Context(), id, req.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, patient)
}

// GET /api/clients/:id/patients
func (h *ClinicMgmtHandler) ListPatientsByClient(c *gin.Context) {
	clientID, ok := pathInt(c, "id")
	if !ok {
		return
	}
	patients, err := h.svc.ListPatientsByClient(c.Request.Context(), clientID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"patients": patients})
}

func pathInt(c *gin.Context, param string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
