package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/deviceexpress/app/jobs"
	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
	"github.com/shashiranjanraj/deviceexpress/pkg/queue"
)

type fakeVerifiedUsers struct {
	verified map[string]bool
	failSet  error
}

func (f *fakeVerifiedUsers) SetVerified(_ context.Context, email string, v bool) error {
	if f.failSet != nil {
		return f.failSet
	}
	f.verified[email] = v
	return nil
}

type fakeReportCatalog struct {
	products   map[string]models.Product
	reports    map[string]models.ReportedItem
	nextID     int
	failFanOut error
	failInsert error
}

func newFakeReportCatalog() *fakeReportCatalog {
	return &fakeReportCatalog{
		products: map[string]models.Product{},
		reports:  map[string]models.ReportedItem{},
	}
}

func (f *fakeReportCatalog) FindProduct(_ context.Context, id string) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeReportCatalog) SetReported(_ context.Context, id string, on bool) error {
	p, ok := f.products[id]
	if !ok {
		return database.ErrNotFound
	}
	p.Reported = on
	f.products[id] = p
	return nil
}

func (f *fakeReportCatalog) VerifyBySeller(_ context.Context, email string, v bool) (int64, error) {
	if f.failFanOut != nil {
		return 0, f.failFanOut
	}
	var n int64
	for id, p := range f.products {
		if p.SellerEmail == email {
			p.Verified = v
			f.products[id] = p
			n++
		}
	}
	return n, nil
}

func (f *fakeReportCatalog) InsertReport(_ context.Context, item *models.ReportedItem) error {
	if f.failInsert != nil {
		return f.failInsert
	}
	f.nextID++
	f.reports[fmt.Sprintf("rep-%d", f.nextID)] = *item
	return nil
}

func (f *fakeReportCatalog) FindReport(_ context.Context, id string) (models.ReportedItem, error) {
	item, ok := f.reports[id]
	if !ok {
		return models.ReportedItem{}, database.ErrNotFound
	}
	return item, nil
}

func (f *fakeReportCatalog) DeleteReport(_ context.Context, id string) error {
	if _, ok := f.reports[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

func TestVerifySellerCascades(t *testing.T) {
	users := &fakeVerifiedUsers{verified: map[string]bool{}}
	catalog := newFakeReportCatalog()
	catalog.products["P1"] = models.Product{SellerEmail: "s@example.com"}
	catalog.products["P2"] = models.Product{SellerEmail: "s@example.com"}
	catalog.products["P3"] = models.Product{SellerEmail: "other@example.com"}

	svc := NewModerationService(users, catalog)
	require.NoError(t, svc.VerifySeller(context.Background(), "s@example.com"))

	assert.True(t, users.verified["s@example.com"])
	assert.True(t, catalog.products["P1"].Verified)
	assert.True(t, catalog.products["P2"].Verified)
	assert.False(t, catalog.products["P3"].Verified)
}

func TestVerifySellerRevertsUserFlagOnFanOutFailure(t *testing.T) {
	users := &fakeVerifiedUsers{verified: map[string]bool{}}
	catalog := newFakeReportCatalog()
	catalog.failFanOut = errors.New("connection reset")

	svc := NewModerationService(users, catalog)
	err := svc.VerifySeller(context.Background(), "s@example.com")
	require.Error(t, err)

	assert.False(t, users.verified["s@example.com"])
}

func TestReportFlagsProductAndNotifies(t *testing.T) {
	catalog := newFakeReportCatalog()
	catalog.products["P1"] = models.Product{Name: "Pixel 6"}

	svc := NewModerationService(&fakeVerifiedUsers{verified: map[string]bool{}}, catalog)
	var dispatched []queue.Job
	svc.dispatch = func(j queue.Job) error { dispatched = append(dispatched, j); return nil }

	err := svc.Report(context.Background(), models.ReportedItem{
		ProductID:     "P1",
		ReporterEmail: "buyer@example.com",
		Reason:        "stolen device",
	})
	require.NoError(t, err)

	assert.True(t, catalog.products["P1"].Reported)
	require.Len(t, catalog.reports, 1)
	for _, item := range catalog.reports {
		assert.Equal(t, "Pixel 6", item.ProductName)
	}
	require.Len(t, dispatched, 1)
	notify, ok := dispatched[0].(*jobs.ReportNotifyJob)
	require.True(t, ok)
	assert.Equal(t, "stolen device", notify.Reason)
}

func TestReportUnknownProduct(t *testing.T) {
	svc := NewModerationService(&fakeVerifiedUsers{verified: map[string]bool{}}, newFakeReportCatalog())
	svc.dispatch = func(queue.Job) error { return nil }

	err := svc.Report(context.Background(), models.ReportedItem{ProductID: "ghost"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestReportClearsFlagWhenLogFails(t *testing.T) {
	catalog := newFakeReportCatalog()
	catalog.products["P1"] = models.Product{Name: "Pixel 6"}
	catalog.failInsert = errors.New("insert failed")

	svc := NewModerationService(&fakeVerifiedUsers{verified: map[string]bool{}}, catalog)
	svc.dispatch = func(queue.Job) error { return nil }

	err := svc.Report(context.Background(), models.ReportedItem{ProductID: "P1"})
	require.Error(t, err)
	assert.False(t, catalog.products["P1"].Reported)
}

func TestResolveDeletesReportAndClearsFlag(t *testing.T) {
	catalog := newFakeReportCatalog()
	catalog.products["P1"] = models.Product{Name: "Pixel 6", Reported: true}
	catalog.reports["rep-1"] = models.ReportedItem{ProductID: "P1"}

	svc := NewModerationService(&fakeVerifiedUsers{verified: map[string]bool{}}, catalog)
	require.NoError(t, svc.Resolve(context.Background(), "rep-1"))

	assert.Empty(t, catalog.reports)
	assert.False(t, catalog.products["P1"].Reported)
}

func TestResolveUnknownReport(t *testing.T) {
	svc := NewModerationService(&fakeVerifiedUsers{verified: map[string]bool{}}, newFakeReportCatalog())

	err := svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
