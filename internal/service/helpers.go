package service

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/iut-charges-api/internal/models"
	"github.com/noah-isme/iut-charges-api/internal/repository"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

// txRunner runs fn inside a serializable transaction carried by ctx.
type txRunner interface {
	Serializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// reportInvalidator drops cached reports after planning writes.
type reportInvalidator interface {
	InvalidateReports(ctx context.Context, academicYear string)
}

// invalidateAllReports drops cached reports of every year. Reference rows are
// shared by all years.
func invalidateAllReports(ctx context.Context, reports reportInvalidator) {
	if reports != nil {
		reports.InvalidateReports(ctx, "")
	}
}

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func lookupError(err error, entity string) error {
	if repository.IsNotFound(err) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Internal(err, "failed to load "+entity)
}

func validationError(err error, entity string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+entity+" payload")
}

func writeError(err error, entity, op string) error {
	switch {
	case repository.IsForeignKeyViolation(err) && op == "delete":
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, entity+" is still referenced")
	case repository.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "referenced record not found")
	case repository.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, entity+" already exists")
	case repository.IsCheckViolation(err):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+entity)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, "failed to "+op+" "+entity)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
