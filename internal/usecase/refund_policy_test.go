package usecase

import (
	"testing"
	"time"

	"rental-marketplace/internal/data/entity"
)

func policyBooking(total float64, checkIn time.Time) *entity.Booking {
	return &entity.Booking{TotalPrice: total, CheckIn: checkIn}
}

func TestEvaluateRefund_GuestTiers(t *testing.T) {
	checkIn := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		hoursBefore  float64
		total        float64
		wantEligible bool
		wantPct      float64
		wantAmount   float64
	}{
		{"well before window", 72, 1000, true, 1.0, 1000},
		{"exactly 48h", 48, 1000, true, 1.0, 1000},
		{"inside partial window", 30, 1000, true, 0.5, 500},
		{"exactly 24h", 24, 1000, true, 0.5, 500},
		{"under 24h", 10, 1000, false, 0, 0},
		{"just before check-in", 0.5, 1000, false, 0, 0},
		{"after check-in", -1, 1000, false, 0, 0},
		{"half refund rounds to cents", 30, 333.33, true, 0.5, 166.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cancelledAt := checkIn.Add(-time.Duration(tt.hoursBefore * float64(time.Hour)))
			eval := EvaluateRefund(policyBooking(tt.total, checkIn), cancelledAt, entity.CancelledByGuest)

			if eval.Eligible != tt.wantEligible {
				t.Errorf("Eligible = %v, want %v", eval.Eligible, tt.wantEligible)
			}
			if eval.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", eval.Percentage, tt.wantPct)
			}
			if eval.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", eval.Amount, tt.wantAmount)
			}
		})
	}
}

func TestEvaluateRefund_HostAlwaysFull(t *testing.T) {
	checkIn := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	// Even one hour before check-in a host cancellation refunds everything.
	for _, hoursBefore := range []float64{100, 30, 1, -5} {
		cancelledAt := checkIn.Add(-time.Duration(hoursBefore * float64(time.Hour)))
		eval := EvaluateRefund(policyBooking(2000, checkIn), cancelledAt, entity.CancelledByHost)

		if !eval.Eligible || eval.Percentage != 1.0 || eval.Amount != 2000 {
			t.Errorf("host cancel at %vh: got eligible=%v pct=%v amount=%v, want full refund",
				hoursBefore, eval.Eligible, eval.Percentage, eval.Amount)
		}
	}
}

func TestEvaluateRefund_AdminUsesGuestTiers(t *testing.T) {
	checkIn := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	cancelledAt := checkIn.Add(-30 * time.Hour)

	eval := EvaluateRefund(policyBooking(1000, checkIn), cancelledAt, entity.CancelledByAdmin)
	if eval.Amount != 500 {
		t.Errorf("admin cancel at 30h: Amount = %v, want 500", eval.Amount)
	}
}

func TestEscalationForStrikes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		strikes    int64
		wantStatus entity.UserStatus
		wantDays   int // 0 means no suspension window
	}{
		{0, entity.UserStatusActive, 0},
		{1, entity.UserStatusWarned, 0},
		{2, entity.UserStatusSuspended, 7},
		{3, entity.UserStatusSuspended, 30},
		{4, entity.UserStatusRemoved, 0},
		{10, entity.UserStatusRemoved, 0},
	}

	for _, tt := range tests {
		status, until := EscalationForStrikes(tt.strikes, now)
		if status != tt.wantStatus {
			t.Errorf("strikes=%d: status = %s, want %s", tt.strikes, status, tt.wantStatus)
		}
		if tt.wantDays == 0 {
			if until != nil {
				t.Errorf("strikes=%d: expected no suspension window, got %v", tt.strikes, until)
			}
			continue
		}
		want := now.Add(time.Duration(tt.wantDays) * 24 * time.Hour)
		if until == nil || !until.Equal(want) {
			t.Errorf("strikes=%d: until = %v, want %v", tt.strikes, until, want)
		}
	}
}
