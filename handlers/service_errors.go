package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/user-auth-service/services"
	"github.com/upb/user-auth-service/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. Only the client
// message and validation details reach the body; causes are logged.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var domainErr *services.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error("unhandled error type", zap.Error(err))
		if err := utils.WriteInternalServerError(w, services.ErrInternal.Message); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
		return
	}

	switch domainErr.Type {
	case services.ErrorTypeInternal:
		logger.Error("internal server error", zap.Error(err))
		if err := utils.WriteInternalServerError(w, domainErr.Message); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
		return

	case services.ErrorTypeBadRequest:
		if err := utils.WriteBadRequest(w, domainErr.Message, domainErr.Details); err != nil {
			logger.Error("failed to write bad request response", zap.Error(err))
		}

	case services.ErrorTypeConflict:
		if err := utils.WriteConflict(w, domainErr.Message, domainErr.Details); err != nil {
			logger.Error("failed to write conflict response", zap.Error(err))
		}

	default:
		if err := utils.WriteError(w, domainErr.Type.HTTPStatus(), domainErr.Message, nil); err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}

	logger.Debug("handled service error",
		zap.String("type", string(domainErr.Type)),
		zap.String("message", domainErr.Message),
		zap.Any("details", domainErr.Details))
}
