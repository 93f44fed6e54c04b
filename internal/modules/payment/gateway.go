package payment

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Gateway is the method-specific adapter behind the payment step. Every
// implementation here is a simulation: validation runs, nothing is charged.
type Gateway interface {
	Pay(ctx context.Context, req *Request) (*Receipt, error)
}

// GatewayRegistry maps methods to their Gateway implementations.
type GatewayRegistry map[Method]Gateway

// NewRegistry wires the four simulated gateways.
func NewRegistry(upi UPIConfig) GatewayRegistry {
	return GatewayRegistry{
		MethodUPI:        NewUPIGateway(upi),
		MethodCard:       NewCardGateway(),
		MethodNetBanking: NewNetBankingGateway(),
		MethodWallet:     NewWalletGateway(),
	}
}

// NewReference returns a payment reference such as ORD-LZ3K9Q1B-4F7QXA.
func NewReference() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return strings.ToUpper("ORD-" + ts + "-" + string(suffix))
}

func receipt(method Method, amount float64, message string) *Receipt {
	return &Receipt{
		Method:    method,
		Reference: NewReference(),
		Amount:    amount,
		Message:   message,
		PaidAt:    time.Now(),
	}
}

// ── Card ─────────────────────────────────────────────────────────────────────

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvcPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

type cardGateway struct{}

func NewCardGateway() Gateway { return cardGateway{} }

// ValidateCard checks the card form the way the checkout does: 13 to 19
// digits once separators are stripped, MM/YY expiry, 3 or 4 digit CVC and a
// holder name.
func ValidateCard(c *CardDetails) error {
	if c == nil {
		c = &CardDetails{}
	}
	fields := map[string]string{}
	if strings.TrimSpace(c.Holder) == "" {
		fields["holder"] = "Name required"
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Number)
	if len(digits) < 13 || len(digits) > 19 {
		fields["number"] = "Card number 13–19 digits"
	}
	if !expiryPattern.MatchString(strings.ToUpper(strings.TrimSpace(c.Expiry))) {
		fields["exp"] = "Format MM/YY"
	}
	if !cvcPattern.MatchString(c.CVC) {
		fields["cvc"] = "3–4 digits"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (cardGateway) Pay(_ context.Context, req *Request) (*Receipt, error) {
	if err := ValidateCard(req.Card); err != nil {
		return nil, err
	}
	return receipt(MethodCard, req.Amount, "Card payment approved"), nil
}

// ── Net banking ──────────────────────────────────────────────────────────────

type netBankingGateway struct{}

func NewNetBankingGateway() Gateway { return netBankingGateway{} }

func (netBankingGateway) Pay(_ context.Context, req *Request) (*Receipt, error) {
	if !contains(Banks, req.Bank) {
		return nil, &ValidationError{Fields: map[string]string{"bank": "Choose a supported bank"}}
	}
	return receipt(MethodNetBanking, req.Amount, fmt.Sprintf("Paid via %s net banking", req.Bank)), nil
}

// ── Wallet ───────────────────────────────────────────────────────────────────

type walletGateway struct{}

func NewWalletGateway() Gateway { return walletGateway{} }

func (walletGateway) Pay(_ context.Context, req *Request) (*Receipt, error) {
	if !contains(Wallets, req.Wallet) {
		return nil, &ValidationError{Fields: map[string]string{"wallet": "Choose a supported wallet"}}
	}
	return receipt(MethodWallet, req.Amount, fmt.Sprintf("Paid with %s", req.Wallet)), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
