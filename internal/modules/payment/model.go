package payment

import (
	"sort"
	"strings"
	"time"
)

// Method is a simulated way to pay.
type Method string

const (
	MethodUPI        Method = "UPI"
	MethodCard       Method = "CARD"
	MethodNetBanking Method = "NETBANKING"
	MethodWallet     Method = "WALLET"
)

// Methods lists every method in display order.
var Methods = []Method{MethodUPI, MethodCard, MethodNetBanking, MethodWallet}

// ParseMethod accepts any letter case.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Banks offered for net banking.
var Banks = []string{"HDFC", "ICICI", "SBI", "AXIS", "KOTAK", "YES", "PNB", "BOB"}

// Wallets offered for wallet payments.
var Wallets = []string{"PhonePe", "Paytm", "Amazon Pay", "Mobikwik"}

// CardDetails is what the card form collects. Nothing is charged.
type CardDetails struct {
	Holder string `json:"holder"`
	Number string `json:"number"`
	Expiry string `json:"exp"`
	CVC    string `json:"cvc"`
}

// Request is one payment attempt. Only the fields of the chosen method
// are read.
type Request struct {
	Method Method       `json:"method"`
	Amount float64      `json:"amount"`
	Card   *CardDetails `json:"card,omitempty"`
	Bank   string       `json:"bank,omitempty"`
	Wallet string       `json:"wallet,omitempty"`
}

// Receipt is the outcome of a successful simulated payment.
type Receipt struct {
	Method    Method    `json:"method"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Message   string    `json:"message,omitempty"`
	IntentURL string    `json:"intent_url,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

// ValidationError maps form fields to messages.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid payment details: " + strings.Join(keys, ", ")
}

// Options is what the payment step offers.
type Options struct {
	Methods []Method `json:"methods"`
	Banks   []string `json:"banks"`
	Wallets []string `json:"wallets"`
}
