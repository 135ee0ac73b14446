package service

import (
	"context"
	"testing"
	"time"

	"shorturls/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLink(t *testing.T, store *mockStore) *storage.ShortLink {
	t.Helper()
	link := &storage.ShortLink{OriginalURL: "https://example.com", ShortCode: "ab3F9"}
	require.NoError(t, store.CreateLink(context.Background(), link))
	return link
}

func TestRecordVisitCountsMonotonically(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)

	const visits = 5
	var counter *storage.DailyVisitCounter
	for i := 0; i < visits; i++ {
		var err error
		counter, err = svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
		require.NoError(t, err)
	}

	assert.Equal(t, visits, counter.VisitCount)
	allVisits, err := svc.GetVisits(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Len(t, allVisits, 1, "same day must reuse one counter row")
	assert.NotNil(t, counter.LastVisitAt)
	require.NotNil(t, counter.LastVisitFrom)
	assert.Equal(t, "203.0.113.7", *counter.LastVisitFrom)
}

func TestRecordVisitUsesCalendarDay(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)

	counter, err := svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)

	now := time.Now().UTC()
	assert.Equal(t, now.Year(), counter.VisitDate.Year())
	assert.Equal(t, now.YearDay(), counter.VisitDate.YearDay())
	assert.Zero(t, counter.VisitDate.Hour())
}

func TestRecordVisitorFirstAndLastSemantics(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)

	counter, err := svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)
	meta := RequestMeta{RemoteAddr: "203.0.113.7", UserAgent: "curl/8.0"}

	first, err := svc.RecordVisitor(context.Background(), meta, counter.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.VisitCount)
	assert.False(t, first.FirstVisitAt.IsZero())
	assert.Nil(t, first.LastVisitAt, "last visit is only set from the second visit on")

	counter, err = svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)
	second, err := svc.RecordVisitor(context.Background(), meta, counter.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.VisitCount)
	assert.NotNil(t, second.LastVisitAt)
	assert.Equal(t, first.FirstVisitAt, second.FirstVisitAt)
}

func TestRecordVisitorDefaultsUserAgent(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)

	counter, err := svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)

	visitor, err := svc.RecordVisitor(context.Background(), RequestMeta{RemoteAddr: "203.0.113.7"}, counter.ID)
	require.NoError(t, err)
	assert.Equal(t, "N/A", visitor.UserAgent)
}

func TestRecordVisitorRequiresRemoteAddr(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)

	counter, err := svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)

	_, err = svc.RecordVisitor(context.Background(), RequestMeta{}, counter.ID)
	assert.Error(t, err)
}

func TestRecordVisitorPropagatesToLink(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)
	before := time.Now().UTC()

	counter, err := svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)
	_, err = svc.RecordVisitor(context.Background(), RequestMeta{RemoteAddr: "203.0.113.7"}, counter.ID)
	require.NoError(t, err)

	updated, err := store.GetLinkByID(context.Background(), link.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastVisitFrom)
	assert.Equal(t, "203.0.113.7", *updated.LastVisitFrom)
	require.NotNil(t, updated.LastVisitAt)
	assert.False(t, updated.LastVisitAt.Before(before))
}

func TestRecordVisitorMissingParentLink(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())

	_, err := svc.RecordVisitor(context.Background(), RequestMeta{RemoteAddr: "203.0.113.7"}, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVisitorsAreScopedToAddressAndDay(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, newMockCache())
	link := seedLink(t, store)

	counter, err := svc.RecordVisit(context.Background(), link.ID, "203.0.113.7")
	require.NoError(t, err)
	_, err = svc.RecordVisitor(context.Background(), RequestMeta{RemoteAddr: "203.0.113.7"}, counter.ID)
	require.NoError(t, err)

	counter, err = svc.RecordVisit(context.Background(), link.ID, "198.51.100.4")
	require.NoError(t, err)
	_, err = svc.RecordVisitor(context.Background(), RequestMeta{RemoteAddr: "198.51.100.4"}, counter.ID)
	require.NoError(t, err)

	visitors, err := svc.GetVisitors(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Len(t, visitors, 2)
}
