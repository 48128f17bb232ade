package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/orsa-labs/coa_ledger/internal/apperrors"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
	"github.com/orsa-labs/coa_ledger/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer portssvc.PrivilegeAuthorizer
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// Authorize checks that the caller in the context holds the required
// privilege. The caller's role ids are walked in order and the first granting
// role short-circuits; exhausting the list raises Forbidden and no further
// work is performed.
func (s *BaseService) Authorize(ctx context.Context, privilegeID string) error {
	caller, ok := middleware.GetCallerFromCtx(ctx)
	if !ok {
		return fmt.Errorf("%w: no caller in context", apperrors.ErrUnauthorized)
	}

	for _, roleID := range caller.RoleIDs {
		granted, err := s.Authorizer.RoleHasPrivilege(ctx, roleID, privilegeID)
		if err != nil {
			s.LogError(ctx, err, "Privilege resolution failed",
				slog.String("role_id", roleID), slog.String("privilege_id", privilegeID))
			return fmt.Errorf("failed to resolve privilege %s for role %s: %w", privilegeID, roleID, err)
		}
		if granted {
			return nil
		}
	}

	s.LogDebug(ctx, "Caller lacks privilege",
		slog.String("caller", caller.Subject), slog.String("privilege_id", privilegeID))
	return fmt.Errorf("%w: caller lacks privilege %s", apperrors.ErrForbidden, privilegeID)
}
