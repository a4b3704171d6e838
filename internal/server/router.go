package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vetdesk/frontdesk-backend/internal/handlers"
	"github.com/vetdesk/frontdesk-backend/internal/middleware"
	"github.com/vetdesk/frontdesk-backend/internal/observability"
)

type FrontDeskRouterConfig struct {
	ServiceName      string
	AllowOrigins     []string
	Metrics          *observability.Metrics
	ScheduleHandler  *handlers.ScheduleHandler
	ReferenceHandler *handlers.ReferenceHandler
	MetricsHandler   *handlers.MetricsHandler
}

func NewFrontDeskRouter(cfg FrontDeskRouterConfig) *gin.Engine {
	router := newEngine(cfg.ServiceName, cfg.AllowOrigins, cfg.Metrics)

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/metrics", cfg.MetricsHandler.Snapshot)

	api := router.Group("/api")
	{
		api.POST("/schedules", cfg.ScheduleHandler.CreateSchedule)
		api.GET("/clinics/:clinicId/schedule", cfg.ScheduleHandler.GetSchedule)
		api.GET("/clinics/:clinicId/appointments", cfg.ScheduleHandler.ListAppointments)

		appts := api.Group("/schedules/:scheduleId/appointments")
		{
			appts.POST("", cfg.ScheduleHandler.ScheduleAppointment)
			appts.DELETE("/:appointmentId", cfg.ScheduleHandler.CancelAppointment)
			appts.PUT("/:appointmentId/start", cfg.ScheduleHandler.RescheduleAppointment)
			appts.PUT("/:appointmentId/room", cfg.ScheduleHandler.ChangeRoom)
			appts.PUT("/:appointmentId/doctor", cfg.ScheduleHandler.ChangeDoctor)
			appts.PUT("/:appointmentId/type", cfg.ScheduleHandler.ChangeAppointmentType)
			appts.PUT("/:appointmentId/title", cfg.ScheduleHandler.RetitleAppointment)
			appts.POST("/:appointmentId/confirm", cfg.ScheduleHandler.ConfirmAppointment)
		}

		api.GET("/doctors", cfg.ReferenceHandler.ListDoctors)
		api.GET("/rooms", cfg.ReferenceHandler.ListRooms)
		api.GET("/appointment-types", cfg.ReferenceHandler.ListAppointmentTypes)
		api.GET("/clients", cfg.ReferenceHandler.ListClients)
		api.GET("/clients/:clientId/patients", cfg.ReferenceHandler.ListPatientsByClient)
	}

	return router
}

type ClinicMgmtRouterConfig struct {
	ServiceName       string
	AllowOrigins      []string
	Metrics           *observability.Metrics
	ClinicMgmtHandler *handlers.ClinicMgmtHandler
	MetricsHandler    *handlers.MetricsHandler
}

func NewClinicMgmtRouter(cfg ClinicMgmtRouterConfig) *gin.Engine {
	router := newEngine(cfg.ServiceName, cfg.AllowOrigins, cfg.Metrics)

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/metrics", cfg.MetricsHandler.Snapshot)

	api := router.Group("/api")
	{
		api.POST("/doctors", cfg.ClinicMgmtHandler.CreateDoctor)
		api.PUT("/doctors/:id", cfg.ClinicMgmtHandler.RenameDoctor)
		api.GET("/doctors", cfg.ClinicMgmtHandler.ListDoctors)

		api.POST("/doctor-assistants", cfg.ClinicMgmtHandler.CreateDoctorAssistant)
		api.GET("/doctor-assistants", cfg.ClinicMgmtHandler.ListDoctorAssistants)

		api.POST("/doctor-specialties", cfg.ClinicMgmtHandler.CreateDoctorSpecialtyType)
		api.GET("/doctor-specialties", cfg.ClinicMgmtHandler.ListDoctorSpecialtyTypes)

		api.POST("/rooms", cfg.ClinicMgmtHandler.CreateRoom)
		api.PUT("/rooms/:id", cfg.ClinicMgmtHandler.RenameRoom)
		api.GET("/rooms", cfg.ClinicMgmtHandler.ListRooms)

		api.POST("/appointment-types", cfg.ClinicMgmtHandler.CreateAppointmentType)
		api.PUT("/appointment-types/:id", cfg.ClinicMgmtHandler.UpdateAppointmentType)
		api.GET("/appointment-types", cfg.ClinicMgmtHandler.ListAppointmentTypes)

		api.POST("/clients", cfg.ClinicMgmtHandler.CreateClient)
		api.PUT("/clients/:id", cfg.ClinicMgmtHandler.UpdateClient)
		api.GET("/clients/:id", cfg.ClinicMgmtHandler.GetClient)
		api.GET("/clients", cfg.ClinicMgmtHandler.ListClients)

		api.POST("/clients/:id/patients", cfg.ClinicMgmtHandler.AddPatient)
		api.GET("/clients/:id/patients", cfg.ClinicMgmtHandler.ListPatientsByClient)
		api.PUT("/patients/:id", cfg.ClinicMgmtHandler.UpdatePatient)
	}

	return router
}

func newEngine(serviceName string, allowOrigins []string, metrics *observability.Metrics) *gin.Engine {
	router := gin.Default()
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.RequestMetrics(metrics))
	return router
}
