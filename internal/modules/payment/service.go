package payment

import (
	"context"

	"github.com/pkg/errors"
)

var ErrUnsupportedMethod = errors.New("unsupported payment method")

// Service defines payment business logic.
type Service interface {
	Pay(ctx context.Context, req *Request) (*Receipt, error)
	Options() Options
	UPI() UPIConfig
}

type service struct {
	gateways GatewayRegistry
	upi      UPIConfig
}

func NewService(gateways GatewayRegistry, upi UPIConfig) Service {
	return &service{gateways: gateways, upi: upi}
}

func (s *service) Pay(ctx context.Context, req *Request) (*Receipt, error) {
	gw, ok := s.gateways[req.Method]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedMethod, "%q", req.Method)
	}
	return gw.Pay(ctx, req)
}

func (s *service) Options() Options {
	methods := make([]Method, 0, len(Methods))
	for _, m := range Methods {
		if _, ok := s.gateways[m]; ok {
			methods = append(methods, m)
		}
	}
	return Options{
		Methods: methods,
		Banks:   append([]string(nil), Banks...),
		Wallets: append([]string(nil), Wallets...),
	}
}

func (s *service) UPI() UPIConfig { return s.upi }
