package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"user-activation/internal/dto/request"
	"user-activation/internal/usecase"
	"user-activation/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	response, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "register")
		return
	}

	utils.ResponseCreated(w, "User created", response)
}

// Activate handles POST /users/activate. The caller authenticates with Basic
// credentials (email and password) and sends the code in the JSON body; the
// code query parameter is accepted when there is no body.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	email, password, ok := utils.GetCredentialsFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Not authenticated")
		return
	}

	var req request.ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Code == "" {
		req.Code = r.URL.Query().Get("code")
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.Activate(r.Context(), email, password, req.Code); err != nil {
		h.handleServiceError(w, err, "activate")
		return
	}

	utils.ResponseSuccess(w, "Account activated", nil)
}

// handleServiceError maps service error kinds to status codes
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", err.Error())

	case errors.Is(err, usecase.ErrUserAlreadyExists):
		h.log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseBadRequest(w, "Email already exists", nil)

	case errors.Is(err, usecase.ErrUserNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "User not found")

	case errors.Is(err, usecase.ErrInvalidCredentials):
		h.log.Warn(operation+" failed - invalid credentials", zap.Error(err))
		utils.ResponseUnauthorized(w, "Invalid credentials")

	case errors.Is(err, usecase.ErrAlreadyActive):
		utils.ResponseBadRequest(w, "Already active", nil)

	case errors.Is(err, usecase.ErrCodeExpired):
		utils.ResponseBadRequest(w, "Code expired", nil)

	case errors.Is(err, usecase.ErrInvalidCode):
		utils.ResponseBadRequest(w, "Invalid code", nil)

	case errors.Is(err, usecase.ErrServiceUnavailable):
		h.log.Error(operation+" failed - database unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Service unavailable")

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
