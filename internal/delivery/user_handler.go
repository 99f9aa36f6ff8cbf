package delivery

import (
	"net/http"

	"order_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	useCase domain.UserUseCase
	log     *logrus.Logger
}

func NewUserHandler(uc domain.UserUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter, authMW gin.HandlerFunc) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.PUT("/admin", authMW, h.ProvideAdminRole)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var requestBody registerRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for register: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), requestBody.Username, requestBody.Password)
	if err != nil {
		h.log.Warnf("Failed to register user %s: %v", requestBody.Username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to register: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "User registered successfully", registerResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

func (h *UserHandler) Login(c *gin.Context) {
	var requestBody loginRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for login: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	token, err := h.useCase.Login(c.Request.Context(), requestBody.Username, requestBody.Password)
	if err != nil {
		h.log.Warnf("Failed login for user %s: %v", requestBody.Username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to authenticate: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Authentication successful", loginResponse{Token: token})
}

// ProvideAdminRole grants the ADMIN role to the calling user. The newly
// granted role takes effect on the next issued token.
func (h *UserHandler) ProvideAdminRole(c *gin.Context) {
	username := callerUsername(c)
	if err := h.useCase.ProvideAdminRole(c.Request.Context(), username); err != nil {
		h.log.Warnf("Failed to grant admin role to %s: %v", username, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to grant admin role: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Admin role granted", nil)
}
