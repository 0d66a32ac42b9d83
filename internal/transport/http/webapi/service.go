package webapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/domain/eventbus/repository"
	"vibibay-client-go/internal/domain/query"
	"vibibay-client-go/internal/platform/errors"
	"vibibay-client-go/internal/platform/logging"
	httptransport "vibibay-client-go/internal/transport/http"
)

// Service exposes the query layer over a local HTTP facade so the bundled web
// UI can drive the same cached state the CLI uses.
type Service struct {
	queries *query.Service
	history repository.NotificationRepository
	logger  *logging.Logger
}

func NewService(queries *query.Service, history repository.NotificationRepository, logger *logging.Logger) *Service {
	return &Service{
		queries: queries,
		history: history,
		logger:  logger,
	}
}

// SessionGate rejects requests that need a stored credential.
func (s *Service) SessionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.queries.Authenticated(c.Request.Context()) {
			httptransport.RespondError(c, http.StatusUnauthorized, "no active session",
				gin.H{"code": errors.CodeNoSession})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Service) RegisterRoutes(router *httptransport.Router) {
	open := router.API
	open.POST("/auth/login", s.handleLogin)
	open.POST("/auth/register", s.handleRegister)
	open.POST("/auth/logout", s.handleLogout)
	open.GET("/session", s.handleSession)
	open.GET("/notifications", s.handleNotifications)

	secured := router.Secured
	if secured == nil {
		secured = open
	}
	secured.GET("/user/profile", s.handleProfile)
	secured.GET("/devices", s.handleDevices)
	secured.POST("/devices", s.handleAddDevice)
	secured.GET("/devices/:id", s.handleDevice)
	secured.DELETE("/devices/:id", s.handleDeleteDevice)
	secured.POST("/devices/:id/pay", s.handlePayDevice)
	secured.GET("/devices/:id/key", s.handleDeviceKey)
}

func (s *Service) handleLogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := s.queries.Login(c.Request.Context(), req)
	if err != nil {
		if errors.IsStepUp(err) {
			// Not terminal: the UI re-prompts for a one-time code.
			httptransport.RespondError(c, http.StatusUnauthorized, errors.MessageOf(err),
				gin.H{"code": errors.CodeOTPRequired})
			return
		}
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, resp, "signed in")
}

func (s *Service) handleRegister(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := s.queries.Register(c.Request.Context(), req)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, resp, "account created")
}

func (s *Service) handleLogout(c *gin.Context) {
	if err := s.queries.Logout(c.Request.Context()); err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "signed out")
}

func (s *Service) handleSession(c *gin.Context) {
	authenticated := s.queries.Authenticated(c.Request.Context())
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"authenticated": authenticated,
	}, "")
}

func (s *Service) handleProfile(c *gin.Context) {
	user, err := s.queries.User(c.Request.Context())
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, user, "")
}

func (s *Service) handleDevices(c *gin.Context) {
	devices, err := s.queries.Devices(c.Request.Context())
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"devices": devices}, "")
}

func (s *Service) handleAddDevice(c *gin.Context) {
	resp, err := s.queries.AddDevice(c.Request.Context())
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, resp, "device created")
}

func (s *Service) handleDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}
	device, err := s.queries.Device(c.Request.Context(), id)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, device, "")
}

func (s *Service) handleDeleteDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}
	msg, err := s.queries.DeleteDevice(c.Request.Context(), id)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, msg, "deletion scheduled")
}

func (s *Service) handlePayDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var req struct {
		Months int `json:"months"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	resp, err := s.queries.PayDevice(c.Request.Context(), id, req.Months)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, resp, "payment link ready")
}

func (s *Service) handleDeviceKey(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}
	resp, err := s.queries.DeviceAccessKey(c.Request.Context(), id)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, resp, "")
}

func (s *Service) handleNotifications(c *gin.Context) {
	if s.history == nil {
		httptransport.RespondSuccess(c, http.StatusOK, gin.H{"notifications": []any{}}, "")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"notifications": notifications}, "")
}

func (s *Service) respondFailure(c *gin.Context, err error) {
	var data gin.H
	if code := errors.CodeOf(err); code != "" {
		data = gin.H{"code": code}
	}
	httptransport.RespondError(c, statusFor(err), errors.MessageOf(err), data)
}

func deviceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid device id", nil)
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.IsKind(err, errors.KindStepUp), errors.IsKind(err, errors.KindAuth):
		return http.StatusUnauthorized
	case errors.IsKind(err, errors.KindBusiness):
		return http.StatusBadRequest
	case errors.IsKind(err, errors.KindTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
