package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repositories backing the service tests. They mirror the SQL
// semantics of the real implementations, including the compare-and-set
// transition guards.

type fakeStore struct {
	mu sync.Mutex

	bookings      map[uuid.UUID]*entity.Booking
	transactions  map[uuid.UUID]*entity.Transaction
	txnOrder      []uuid.UUID
	listings      map[uuid.UUID]*entity.Listing
	blockedDates  map[uuid.UUID][]time.Time
	users         map[uuid.UUID]*entity.User
	strikes       []*entity.HostStrike
	settlements   []*entity.PaymentSettlement
	cancellations map[uuid.UUID]*entity.CancellationRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings:      make(map[uuid.UUID]*entity.Booking),
		transactions:  make(map[uuid.UUID]*entity.Transaction),
		listings:      make(map[uuid.UUID]*entity.Listing),
		blockedDates:  make(map[uuid.UUID][]time.Time),
		users:         make(map[uuid.UUID]*entity.User),
		cancellations: make(map[uuid.UUID]*entity.CancellationRequest),
	}
}

func newTestRepo() (*repository.Repository, *fakeStore) {
	store := newFakeStore()
	return &repository.Repository{
		User:         &fakeUserRepo{store},
		Listing:      &fakeListingRepo{store},
		Booking:      &fakeBookingRepo{store},
		Transaction:  &fakeTransactionRepo{store},
		Cancellation: &fakeCancellationRepo{store},
		HostStrike:   &fakeHostStrikeRepo{store},
		Settlement:   &fakeSettlementRepo{store},
		Atomic:       fakeAtomic{},
	}, store
}

func testConfig() *utils.Config {
	return &utils.Config{
		Fee: utils.FeeConfig{
			PlatformRate:      0.10,
			ListingPublishFee: 25.00,
		},
		Booking: utils.BookingConfig{
			HoldTTLHours:  24,
			SweepInterval: 10,
		},
		Payout: utils.PayoutConfig{
			MinWithdrawal: 1.00,
		},
	}
}

// fakeAtomic runs fn directly; the fakes mutate shared state in place, so
// there is nothing to roll back. Tests that need rollback behavior assert on
// the pre-call guards instead.
type fakeAtomic struct{}

func (fakeAtomic) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type dispatchCall struct {
	destination string
	amount      float64
	reference   string
}

type fakeDispatcher struct {
	mu    sync.Mutex
	err   error
	calls []dispatchCall
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, destination string, amount float64, reference string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{destination, amount, reference})
	return d.err
}

// ---------- booking ----------

type fakeBookingRepo struct{ s *fakeStore }

func copyBooking(b *entity.Booking) *entity.Booking {
	cp := *b
	if b.CancelledBy != nil {
		by := *b.CancelledBy
		cp.CancelledBy = &by
	}
	return &cp
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return copyBooking(b), nil
}

func (r *fakeBookingRepo) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.GuestID == guestID {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.bookings {
		if b.GuestID == guestID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) UpdateStatusIf(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBookingRepo) MarkCancelledIf(ctx context.Context, bookingID uuid.UUID, from entity.BookingStatus, by entity.CancelActor) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = entity.BookingStatusCancelled
	b.CancelledBy = &by
	b.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeBookingRepo) CountOverlapping(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.bookings {
		if b.ListingID != listingID {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		holds := b.Status == entity.BookingStatusConfirmed ||
			(b.Status == entity.BookingStatusPending && b.HoldExpiresAt.After(now))
		if !holds {
			continue
		}
		if b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) FindElapsedConfirmed(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.s.bookings {
		if b.Status == entity.BookingStatusConfirmed && !b.CheckOut.After(now) {
			out = append(out, copyBooking(b))
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.bookings {
		if b.Status == entity.BookingStatusPending && !b.HoldExpiresAt.After(now) {
			b.Status = entity.BookingStatusExpired
			b.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// ---------- transaction ----------

type fakeTransactionRepo struct{ s *fakeStore }

func copyTxn(t *entity.Transaction) *entity.Transaction {
	cp := *t
	if t.RelatedBookingID != nil {
		id := *t.RelatedBookingID
		cp.RelatedBookingID = &id
	}
	if t.Note != nil {
		note := *t.Note
		cp.Note = &note
	}
	if t.PayoutDestination != nil {
		dest := *t.PayoutDestination
		cp.PayoutDestination = &dest
	}
	return &cp
}

func (r *fakeTransactionRepo) Create(ctx context.Context, txn *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[txn.ID] = copyTxn(txn)
	r.s.txnOrder = append(r.s.txnOrder, txn.ID)
	return nil
}

func (r *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, nil
	}
	return copyTxn(t), nil
}

func (r *fakeTransactionRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for i := len(r.s.txnOrder) - 1; i >= 0; i-- {
		t := r.s.transactions[r.s.txnOrder[i]]
		if t.UserID == userID {
			out = append(out, copyTxn(t))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTransactionRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTransactionRepo) UpdateStatusIf(ctx context.Context, txnID uuid.UUID, from, to entity.TransactionStatus, note *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[txnID]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	if note != nil {
		n := *note
		t.Note = &n
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTransactionRepo) CompleteWithdrawalIf(ctx context.Context, txnID uuid.UUID, note *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[txnID]
	if !ok || t.Type != entity.TransactionTypeWithdrawal || t.Status != entity.TransactionStatusPending {
		return false, nil
	}
	t.Status = entity.TransactionStatusCompleted
	t.PayoutStatus = entity.PayoutStatusPending
	if note != nil {
		n := *note
		t.Note = &n
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTransactionRepo) SetPayoutStatus(ctx context.Context, txnID uuid.UUID, status entity.PayoutStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[txnID]
	if !ok {
		return fmt.Errorf("transaction %s not found", txnID.String())
	}
	t.PayoutStatus = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTransactionRepo) SumCompletedByUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum float64
	for _, t := range r.s.transactions {
		if t.UserID != userID || t.Status != entity.TransactionStatusCompleted {
			continue
		}
		if t.Type.IsCredit() {
			sum += t.Amount
		} else {
			sum -= t.Amount
		}
	}
	return sum, nil
}

func (r *fakeTransactionRepo) SumPendingWithdrawalsByUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum float64
	for _, t := range r.s.transactions {
		if t.UserID == userID && t.Type == entity.TransactionTypeWithdrawal && t.Status == entity.TransactionStatusPending {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (r *fakeTransactionRepo) FindCompletedSplitByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, id := range r.s.txnOrder {
		t := r.s.transactions[id]
		if t.RelatedBookingID != nil && *t.RelatedBookingID == bookingID &&
			t.Type == entity.TransactionTypeDeposit && t.Status == entity.TransactionStatusCompleted {
			out = append(out, copyTxn(t))
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) FindWithdrawalsByStatus(ctx context.Context, status entity.TransactionStatus, limit, offset int) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, id := range r.s.txnOrder {
		t := r.s.transactions[id]
		if t.Type == entity.TransactionTypeWithdrawal && t.Status == status {
			out = append(out, copyTxn(t))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTransactionRepo) FindFailedPayouts(ctx context.Context) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cutoff := time.Now().Add(-30 * time.Minute)
	var out []*entity.Transaction
	for _, id := range r.s.txnOrder {
		t := r.s.transactions[id]
		if t.Type != entity.TransactionTypeWithdrawal || t.Status != entity.TransactionStatusCompleted {
			continue
		}
		stuck := (t.PayoutStatus == entity.PayoutStatusNone || t.PayoutStatus == entity.PayoutStatusPending) &&
			t.UpdatedAt.Before(cutoff)
		if t.PayoutStatus == entity.PayoutStatusFailed || stuck {
			out = append(out, copyTxn(t))
		}
	}
	return out, nil
}

// ---------- listing ----------

type fakeListingRepo struct{ s *fakeStore }

func (r *fakeListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeListingRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return fmt.Errorf("listing %s not found", id.String())
	}
	l.Active = active
	return nil
}

func (r *fakeListingRepo) MarkPublishFeePaid(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return fmt.Errorf("listing %s not found", id.String())
	}
	l.PublishFeePaid = true
	return nil
}

func (r *fakeListingRepo) BlockedDatesBetween(ctx context.Context, listingID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []time.Time
	for _, d := range r.s.blockedDates[listingID] {
		if !d.Before(from) && d.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) AddBlockedDate(ctx context.Context, blocked *entity.BlockedDate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.blockedDates[blocked.ListingID] {
		if d.Equal(blocked.Date) {
			return nil
		}
	}
	r.s.blockedDates[blocked.ListingID] = append(r.s.blockedDates[blocked.ListingID], blocked.Date)
	return nil
}

func (r *fakeListingRepo) RemoveBlockedDate(ctx context.Context, listingID uuid.UUID, date time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	dates := r.s.blockedDates[listingID]
	for i, d := range dates {
		if d.Equal(date) {
			r.s.blockedDates[listingID] = append(dates[:i], dates[i+1:]...)
			return nil
		}
	}
	return nil
}

// ---------- user ----------

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateReliability(ctx context.Context, id uuid.UUID, status entity.UserStatus, suspendedUntil *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id.String())
	}
	u.Status = status
	u.SuspendedUntil = suspendedUntil
	return nil
}

// ---------- host strike ----------

type fakeHostStrikeRepo struct{ s *fakeStore }

func (r *fakeHostStrikeRepo) Create(ctx context.Context, strike *entity.HostStrike) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *strike
	r.s.strikes = append(r.s.strikes, &cp)
	return nil
}

func (r *fakeHostStrikeRepo) CountByHostSince(ctx context.Context, hostID uuid.UUID, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, st := range r.s.strikes {
		if st.HostID == hostID && !st.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ---------- settlement ----------

type fakeSettlementRepo struct{ s *fakeStore }

func (r *fakeSettlementRepo) Create(ctx context.Context, settlement *entity.PaymentSettlement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.settlements {
		if existing.BookingID == settlement.BookingID &&
			existing.GatewayRef != nil && settlement.GatewayRef != nil &&
			*existing.GatewayRef == *settlement.GatewayRef {
			return nil // replayed webhook
		}
	}
	cp := *settlement
	r.s.settlements = append(r.s.settlements, &cp)
	return nil
}

func (r *fakeSettlementRepo) FindSettledByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.PaymentSettlement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.settlements {
		if st.BookingID == bookingID && st.Status == entity.SettlementStatusSettled {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

// ---------- cancellation request ----------

type fakeCancellationRepo struct{ s *fakeStore }

func (r *fakeCancellationRepo) Create(ctx context.Context, req *entity.CancellationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *req
	r.s.cancellations[req.ID] = &cp
	return nil
}

func (r *fakeCancellationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.CancellationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cr, ok := r.s.cancellations[id]
	if !ok {
		return nil, nil
	}
	cp := *cr
	return &cp, nil
}

func (r *fakeCancellationRepo) FindByStatus(ctx context.Context, status entity.CancellationStatus, limit, offset int) ([]*entity.CancellationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CancellationRequest
	for _, cr := range r.s.cancellations {
		if cr.Status == status {
			cp := *cr
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCancellationRepo) ResolveIf(ctx context.Context, id uuid.UUID, to entity.CancellationStatus, reviewedBy uuid.UUID, notes *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cr, ok := r.s.cancellations[id]
	if !ok || cr.Status != entity.CancellationStatusPending {
		return false, nil
	}
	cr.Status = to
	reviewer := reviewedBy
	cr.ReviewedBy = &reviewer
	cr.ReviewNotes = notes
	cr.UpdatedAt = time.Now()
	return true, nil
}

// ---------- seeding helpers ----------

func nopLogger() *zap.Logger { return zap.NewNop() }

func seedUser(store *fakeStore, role entity.UserRole) uuid.UUID {
	id := uuid.New()
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users[id] = &entity.User{
		Base:   entity.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Email:  id.String() + "@example.com",
		Role:   role,
		Status: entity.UserStatusActive,
	}
	return id
}

func seedListing(store *fakeStore, hostID uuid.UUID, nightlyPrice float64) uuid.UUID {
	id := uuid.New()
	store.mu.Lock()
	defer store.mu.Unlock()
	store.listings[id] = &entity.Listing{
		Base:           entity.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		HostID:         hostID,
		Title:          "Test listing",
		NightlyPrice:   nightlyPrice,
		PublishFeePaid: true,
		Active:         true,
	}
	return id
}

func seedBooking(store *fakeStore, listingID, guestID, hostID uuid.UUID, checkIn, checkOut time.Time, total float64, status entity.BookingStatus) uuid.UUID {
	id := uuid.New()
	store.mu.Lock()
	defer store.mu.Unlock()
	store.bookings[id] = &entity.Booking{
		Base:          entity.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Reference:     "STAY-TEST-" + id.String()[:8],
		ListingID:     listingID,
		GuestID:       guestID,
		HostID:        hostID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestCount:    2,
		TotalPrice:    total,
		Status:        status,
		HoldExpiresAt: time.Now().Add(24 * time.Hour),
	}
	return id
}

func seedSettlement(store *fakeStore, bookingID uuid.UUID, amount float64) {
	ref := "gw-" + bookingID.String()[:8]
	store.mu.Lock()
	defer store.mu.Unlock()
	store.settlements = append(store.settlements, &entity.PaymentSettlement{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		BookingID:  bookingID,
		Amount:     amount,
		Status:     entity.SettlementStatusSettled,
		GatewayRef: &ref,
	})
}
