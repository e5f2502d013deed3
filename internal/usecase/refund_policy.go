package usecase

import (
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/pkg/utils"
)

// Guest cancellation tiers, in hours before check-in.
const (
	fullRefundThresholdHours = 48
	halfRefundThresholdHours = 24
)

// Rolling window for counting host-initiated cancellations.
const strikeWindow = 6 * 30 * 24 * time.Hour

type RefundEvaluation struct {
	Eligible          bool
	Percentage        float64
	Amount            float64
	HoursUntilCheckIn float64
}

// EvaluateRefund maps (booking, cancellation time, actor) to a refund tier.
// Pure and deterministic. Guest cancellations follow the tiered policy:
// 100% at >=48h before check-in, 50% between 24h and 48h, nothing under 24h
// or after check-in. A host cancellation always refunds the guest in full
// regardless of timing.
func EvaluateRefund(booking *entity.Booking, cancelledAt time.Time, cancelledBy entity.CancelActor) RefundEvaluation {
	hours := booking.CheckIn.Sub(cancelledAt).Hours()

	eval := RefundEvaluation{HoursUntilCheckIn: hours}

	if cancelledBy == entity.CancelledByHost {
		eval.Eligible = true
		eval.Percentage = 1.0
		eval.Amount = utils.RoundMoney(booking.TotalPrice)
		return eval
	}

	switch {
	case hours < 0:
		// check-in already passed
	case hours >= fullRefundThresholdHours:
		eval.Eligible = true
		eval.Percentage = 1.0
	case hours >= halfRefundThresholdHours:
		eval.Eligible = true
		eval.Percentage = 0.5
	}

	eval.Amount = utils.RoundMoney(booking.TotalPrice * eval.Percentage)
	return eval
}

// EscalationForStrikes maps a host's rolling 6-month cancellation count to
// the reliability outcome: warning, 7-day suspension, 30-day suspension,
// then permanent removal.
func EscalationForStrikes(strikes int64, now time.Time) (entity.UserStatus, *time.Time) {
	switch {
	case strikes <= 0:
		return entity.UserStatusActive, nil
	case strikes == 1:
		return entity.UserStatusWarned, nil
	case strikes == 2:
		until := now.Add(7 * 24 * time.Hour)
		return entity.UserStatusSuspended, &until
	case strikes == 3:
		until := now.Add(30 * 24 * time.Hour)
		return entity.UserStatusSuspended, &until
	default:
		return entity.UserStatusRemoved, nil
	}
}
