package checkout

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/logger"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/sanitizer"
)

// DefaultMaxProofSize is the largest payment proof accepted, 5 MiB.
const DefaultMaxProofSize = 5 << 20

// Orders is the order service.
type Orders interface {
	CreateOrder(ctx context.Context, order Order) (Receipt, error)
	UploadPaymentProof(ctx context.Context, orderID string, proof Proof) error
}

// Cart is the part of the cart store checkout needs.
type Cart interface {
	Lines() []cart.Line
	Clear(ctx context.Context) error
}

// Proof is a validated payment proof file.
type Proof struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNotifier sets where user-facing messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMaxProofSize overrides the payment proof size limit.
func WithMaxProofSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxProofSize = n
		}
	}
}

// Service turns the visitor's cart into an order.
type Service struct {
	orders       Orders
	cart         Cart
	log          *slog.Logger
	notifier     notify.Notifier
	maxProofSize int
}

// NewService creates a checkout service for one visitor's cart.
func NewService(orders Orders, c Cart, opts ...Option) *Service {
	s := &Service{
		orders:       orders,
		cart:         c,
		log:          logger.Discard(),
		notifier:     notify.Discard,
		maxProofSize: DefaultMaxProofSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("checkout"))
	return s
}

// PlaceOrder validates req, sends the priced cart to the order service and
// clears the cart once the order is accepted. A failure to clear the cart does
// not fail the order.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (Receipt, error) {
	if err := req.Normalize(); err != nil {
		return Receipt{}, err
	}
	if err := req.Validate(); err != nil {
		return Receipt{}, err
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}

	order := buildOrder(req, lines)
	order.IdempotencyKey = uuid.NewString()

	receipt, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.log.WarnContext(ctx, "order rejected", logger.Error(err))
		notify.Error(ctx, s.notifier, "Could not place your order")
		return Receipt{}, errors.Join(ErrOrderFailed, err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.log.WarnContext(ctx, "failed to clear cart after order", logger.Error(err), slog.String("order_id", receipt.ID))
	}

	s.log.InfoContext(ctx, "order placed",
		slog.String("order_id", receipt.ID),
		logger.Count("items", len(order.Items)),
		slog.String("payment_method", string(order.PaymentMethod)),
	)
	notify.Success(ctx, s.notifier, "Your order has been placed")
	return receipt, nil
}

// UploadProof checks and uploads a payment proof for a placed order.
// The content type is sniffed from the data, not trusted from the client.
func (s *Service) UploadProof(ctx context.Context, orderID, filename string, data []byte) error {
	if strings.TrimSpace(orderID) == "" {
		return ErrMissingOrderID
	}

	proof, err := s.inspectProof(filename, data)
	if err != nil {
		return err
	}

	if err := s.orders.UploadPaymentProof(ctx, orderID, proof); err != nil {
		s.log.WarnContext(ctx, "payment proof rejected", logger.Error(err), slog.String("order_id", orderID))
		notify.Error(ctx, s.notifier, "Could not upload your payment proof")
		return errors.Join(ErrUploadFailed, err)
	}

	notify.Success(ctx, s.notifier, "Payment proof uploaded")
	return nil
}

func (s *Service) inspectProof(filename string, data []byte) (Proof, error) {
	if len(data) == 0 {
		return Proof{}, ErrProofEmpty
	}
	if len(data) > s.maxProofSize {
		return Proof{}, ErrProofTooLarge
	}

	ct := http.DetectContentType(data)
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return Proof{}, ErrProofType
	}
	if !strings.HasPrefix(mediaType, "image/") && mediaType != "application/pdf" {
		return Proof{}, ErrProofType
	}

	return Proof{Filename: sanitizer.Filename(filename), ContentType: mediaType, Data: data}, nil
}
