package checkout

import (
	"math/rand"
	"time"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
)

// ETAPolicy estimates the delivery date of an order paid at now.
type ETAPolicy func(now time.Time, method payment.Method) time.Time

// DefaultDeliveryDays is the fixed delivery estimate.
const DefaultDeliveryDays = 5

// FixedETA delivers a fixed number of days after payment.
func FixedETA(days int) ETAPolicy {
	return func(now time.Time, _ payment.Method) time.Time {
		return now.AddDate(0, 0, days)
	}
}

// RandomETA picks one of two offsets per order.
func RandomETA(a, b int) ETAPolicy {
	return func(now time.Time, _ payment.Method) time.Time {
		if rand.Intn(2) == 0 {
			return now.AddDate(0, 0, a)
		}
		return now.AddDate(0, 0, b)
	}
}

// ETALabel formats a date the way the confirmation page does, e.g. "7 Mar".
func ETALabel(t time.Time) string { return t.Format("2 Jan") }
