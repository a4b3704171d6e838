package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/frontdesk-backend/internal/domain/aggregates"
	"github.com/vetdesk/frontdesk-backend/internal/domain/contracts"
	"github.com/vetdesk/frontdesk-backend/internal/domain/scheduling"
	schedsvc "github.com/vetdesk/frontdesk-backend/internal/services/scheduling"
)

type ScheduleHandler struct {
	svc schedsvc.Service
}

func NewScheduleHandler(svc schedsvc.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

type createScheduleRequest struct {
	ScheduleID string `json:"scheduleId"`
	ClinicID   int    `json:"clinicId" binding:"required"`
}

// POST /api/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	id := uuid.New()
	if req.ScheduleID != "" {
		parsed, err := uuid.Parse(req.ScheduleID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
			return
		}
		id = parsed
	}
	view, err := h.svc.Commands().CreateSchedule(c.Request.Context(), contracts.CreateScheduleInput{
		ScheduleID: id,
		ClinicID:   req.ClinicID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}

// GET /api/clinics/:clinicId/schedule?date=2026-08-29
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	clinicID, ok := pathClinicID(c)
	if !ok {
		return
	}
	window, err := dayWindowParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date window"})
		return
	}
	view, err := h.svc.GetSchedule(c.Request.Context(), clinicID, window)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

// GET /api/clinics/:clinicId/appointments?date=2026-08-29
func (h *ScheduleHandler) ListAppointments(c *gin.Context) {
	clinicID, ok := pathClinicID(c)
	if !ok {
		return
	}
	views, err := h.svc.ListAppointments(c.Request.Context(), clinicID, dayParam(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"appointments": views})
}

type scheduleAppointmentRequest struct {
	AppointmentID     string `json:"appointmentId"`
	AppointmentTypeID int    `json:"appointmentTypeId" binding:"required"`
	ClientID          int    `json:"clientId" binding:"required"`
	DoctorID          int    `json:"doctorId" binding:"required"`
	PatientID         int    `json:"patientId" binding:"required"`
	RoomID            int    `json:"roomId" binding:"required"`
	Start             string `json:"start" binding:"required"`
	Title             string `json:"title" binding:"required"`
	InsuranceID       string `json:"insuranceId" binding:"required"`
	PolicyNumber      string `json:"policyNumber"`
}

// POST /api/schedules/:scheduleId/appointments
func (h *ScheduleHandler) ScheduleAppointment(c *gin.Context) {
	scheduleID, ok := pathUUID(c, "scheduleId", "invalid schedule id")
	if !ok {
		return
	}
	var req scheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time, want RFC3339"})
		return
	}
	insuranceID, err := uuid.Parse(req.InsuranceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid insurance id"})
		return
	}
	appointmentID := uuid.New()
	if req.AppointmentID != "" {
		parsed, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appointment id"})
			return
		}
		appointmentID = parsed
	}
	view, err := h.svc.Commands().ScheduleAppointment(c.Request.Context(), contracts.ScheduleAppointmentInput{
		ScheduleID:        scheduleID,
		AppointmentID:     appointmentID,
		AppointmentTypeID: req.AppointmentTypeID,
		ClientID:          req.ClientID,
		DoctorID:          req.DoctorID,
		PatientID:         req.PatientID,
		RoomID:            req.RoomID,
		Start:             start,
		Title:             req.Title,
		InsuranceID:       insuranceID,
		PolicyNumber:      req.PolicyNumber,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, view)
}

// DELETE /api/schedules/:scheduleId/appointments/:appointmentId
func (h *ScheduleHandler) CancelAppointment(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	if err := h.svc.Commands().CancelAppointment(c.Request.Context(), ref); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type rescheduleRequest struct {
	NewStart string `json:"newStart" binding:"required"`
}

// PUT /api/schedules/:scheduleId/appointments/:appointmentId/start
func (h *ScheduleHandler) RescheduleAppointment(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	newStart, err := time.Parse(time.RFC3339, req.NewStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time, want RFC3339"})
		return
	}
	view, err := h.svc.Commands().RescheduleAppointment(c.Request.Context(), contracts.RescheduleAppointmentInput{
		AppointmentRefInput: ref,
		NewStart:            newStart,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

type changeRoomRequest struct {
	RoomID int `json:"roomId" binding:"required"`
}

// PUT /api/schedules/:scheduleId/appointments/:appointmentId/room
func (h *ScheduleHandler) ChangeRoom(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	var req changeRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	view, err := h.svc.Commands().ChangeRoom(c.Request.Context(), contracts.ChangeRoomInput{
		AppointmentRefInput: ref,
		NewRoomID:           req.RoomID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

type changeDoctorRequest struct {
	DoctorID int `json:"doctorId" binding:"required"`
}

// PUT /api/schedules/:scheduleId/appointments/:appointmentId/doctor
func (h *ScheduleHandler) ChangeDoctor(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	var req changeDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	view, err := h.svc.Commands().ChangeDoctor(c.Request.Context(), contracts.ChangeDoctorInput{
		AppointmentRefInput: ref,
		NewDoctorID:         req.DoctorID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

type changeTypeRequest struct {
	AppointmentTypeID int `json:"appointmentTypeId" binding:"required"`
}

// PUT /api/schedules/:scheduleId/appointments/:appointmentId/type
func (h *ScheduleHandler) ChangeAppointmentType(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	var req changeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	view, err := h.svc.Commands().ChangeAppointmentType(c.Request.Context(), contracts.ChangeAppointmentTypeInput{
		AppointmentRefInput:  ref,
		NewAppointmentTypeID: req.AppointmentTypeID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

type retitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// PUT /api/schedules/:scheduleId/appointments/:appointmentId/title
func (h *ScheduleHandler) RetitleAppointment(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	var req retitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(aggregates.CodeValidation), err)
		return
	}
	view, err := h.svc.Commands().RetitleAppointment(c.Request.Context(), contracts.RetitleAppointmentInput{
		AppointmentRefInput: ref,
		NewTitle:            req.Title,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

// POST /api/schedules/:scheduleId/appointments/:appointmentId/confirm
func (h *ScheduleHandler) ConfirmAppointment(c *gin.Context) {
	ref, ok := appointmentRef(c)
	if !ok {
		return
	}
	view, err := h.svc.Commands().ConfirmAppointment(c.Request.Context(), contracts.ConfirmAppointmentInput{
		AppointmentRefInput: ref,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, view)
}

func appointmentRef(c *gin.Context) (contracts.AppointmentRefInput, bool) {
	var ref contracts.AppointmentRefInput
	scheduleID, ok := pathUUID(c, "scheduleId", "invalid schedule id")
	if !ok {
		return ref, false
	}
	appointmentID, ok := pathUUID(c, "appointmentId", "invalid appointment id")
	if !ok {
		return ref, false
	}
	ref.ScheduleID = scheduleID
	ref.AppointmentID = appointmentID
	return ref, true
}

func pathUUID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return uuid.Nil, false
	}
	return id, true
}

func pathClinicID(c *gin.Context) (int, bool) {
	clinicID, err := strconv.Atoi(c.Param("clinicId"))
	if err != nil || clinicID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clinic id"})
		return 0, false
	}
	return clinicID, true
}

// dayWindowParam builds the midnight-to-midnight window for ?date.
func dayWindowParam(c *gin.Context) (scheduling.TimeRange, error) {
	day := dayParam(c)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return scheduling.NewTimeRange(start, start.Add(24*time.Hour))
}

// dayParam reads ?date=YYYY-MM-DD, defaulting to today.
func dayParam(c *gin.Context) time.Time {
	raw := c.Query("date")
	if raw == "" {
		return time.Now()
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Now()
	}
	return day
}
