package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/deviceexpress/app/jobs"
	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/logger"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
)

// VerifiedUserStore is the slice of the user repository moderation needs.
type VerifiedUserStore interface {
	SetVerified(ctx context.Context, email string, verified bool) error
}

// ReportCatalog is the slice of the catalog moderation works against.
type ReportCatalog interface {
	FindProduct(ctx context.Context, id string) (models.Product, error)
	SetReported(ctx context.Context, id string, on bool) error
	VerifyBySeller(ctx context.Context, email string, verified bool) (int64, error)
	InsertReport(ctx context.Context, item *models.ReportedItem) error
	FindReport(ctx context.Context, id string) (models.ReportedItem, error)
	DeleteReport(ctx context.Context, id string) error
}

// ModerationService runs the verification cascade and the report lifecycle.
type ModerationService struct {
	users   VerifiedUserStore
	catalog ReportCatalog

	dispatch func(queue.Job) error
}

func NewModerationService(users VerifiedUserStore, catalog ReportCatalog) *ModerationService {
	return &ModerationService{
		users:    users,
		catalog:  catalog,
		dispatch: queue.Dispatch,
	}
}

// VerifySeller marks the user verified and fans the flag out to every
// product the seller has listed. The two writes span two collections; if
// the product fan-out fails the user flag is reverted so a half-verified
// seller never persists.
func (s *ModerationService) VerifySeller(ctx context.Context, email string) error {
	if err := s.users.SetVerified(ctx, email, true); err != nil {
		return err
	}

	if _, err := s.catalog.VerifyBySeller(ctx, email, true); err != nil {
		if rerr := s.users.SetVerified(ctx, email, false); rerr != nil {
			logger.WithCtx(ctx).Error("verify compensation: revert user flag",
				"email", email, "error", rerr)
		}
		return fmt.Errorf("services: verify seller %s: %w", email, err)
	}
	return nil
}

// Report flags the product and logs a reported item, then notifies the
// moderation inbox. The flag is set first; if logging the report fails the
// flag is cleared so flag and report stay in step.
func (s *ModerationService) Report(ctx context.Context, item models.ReportedItem) error {
	product, err := s.catalog.FindProduct(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if item.ProductName == "" {
		item.ProductName = product.Name
	}

	if err := s.catalog.SetReported(ctx, item.ProductID, true); err != nil {
		return err
	}
	if err := s.catalog.InsertReport(ctx, &item); err != nil {
		if rerr := s.catalog.SetReported(ctx, item.ProductID, false); rerr != nil {
			logger.WithCtx(ctx).Error("report compensation: clear product flag",
				"productId", item.ProductID, "error", rerr)
		}
		return err
	}

	if derr := s.dispatch(&jobs.ReportNotifyJob{
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		ReporterEmail: item.ReporterEmail,
		Reason:        item.Reason,
	}); derr != nil {
		logger.WithCtx(ctx).Warn("report notification dispatch failed", "error", derr)
	}
	return nil
}

// Resolve deletes the report and clears the product's reported flag, so a
// resolved product does not keep wearing the flag with no report behind it.
// The product may have been deleted in the meantime; that is not an error.
func (s *ModerationService) Resolve(ctx context.Context, reportID string) error {
	item, err := s.catalog.FindReport(ctx, reportID)
	if err != nil {
		return err
	}
	if err := s.catalog.DeleteReport(ctx, reportID); err != nil {
		return err
	}

	if err := s.catalog.SetReported(ctx, item.ProductID, false); err != nil && !errors.Is(err, database.ErrNotFound) {
		logger.WithCtx(ctx).Error("resolve report: clear product flag",
			"productId", item.ProductID, "error", err)
	}
	return nil
}
