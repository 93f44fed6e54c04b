package payment

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// UPIConfig names the payee of the UPI intent.
type UPIConfig struct {
	PayeeVPA  string
	PayeeName string
	Note      string
}

type upiGateway struct{ cfg UPIConfig }

func NewUPIGateway(cfg UPIConfig) Gateway { return &upiGateway{cfg: cfg} }

// IntentURL builds the upi://pay deep link for amount in rupees.
func (c UPIConfig) IntentURL(amount float64) string {
	params := url.Values{}
	params.Set("pa", c.PayeeVPA)
	params.Set("pn", c.PayeeName)
	params.Set("am", strconv.FormatFloat(amount, 'f', 2, 64))
	params.Set("cu", "INR")
	if c.Note != "" {
		params.Set("tn", c.Note)
	}
	return "upi://pay?" + params.Encode()
}

// QRCode renders the intent as a PNG of size pixels.
func (c UPIConfig) QRCode(amount float64, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(c.IntentURL(amount), qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "encoding upi qr")
	}
	return png, nil
}

// Pay records the shopper's "mark as paid"; there is no PSP callback.
func (g *upiGateway) Pay(_ context.Context, req *Request) (*Receipt, error) {
	if req.Amount <= 0 {
		return nil, &ValidationError{Fields: map[string]string{"amount": "Nothing to pay"}}
	}
	r := receipt(MethodUPI, req.Amount, "UPI payment marked as paid")
	r.IntentURL = g.cfg.IntentURL(req.Amount)
	return r, nil
}
