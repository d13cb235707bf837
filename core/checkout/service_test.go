package checkout_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/notify"
	"github.com/bookhaven/storefront/core/storage"
)

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) CreateOrder(ctx context.Context, order checkout.Order) (checkout.Receipt, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(checkout.Receipt), args.Error(1)
}

func (m *mockOrders) UploadPaymentProof(ctx context.Context, orderID string, proof checkout.Proof) error {
	return m.Called(ctx, orderID, proof).Error(0)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func validRequest() checkout.Request {
	return checkout.Request{
		ShippingAddress: checkout.Address{
			Name:   " Ada Lovelace ",
			Phone:  "+20 100 123 4567",
			Street: "1 Nile St",
			City:   "Cairo",
		},
		PaymentMethod: checkout.PaymentCOD,
	}
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	c := cart.NewStore(cart.Local(storage.NewMemory()), nil)
	require.NoError(t, c.Add(ctx, catalog.Book{
		ID: "b1", Title: "Dune", Price: decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10), ShippingCost: decimal.NewFromInt(50),
	}, 2))
	require.NoError(t, c.Add(ctx, catalog.Book{
		ID: "b2", Title: "Emma", Price: decimal.NewFromInt(500), ShippingCost: decimal.NewFromInt(30),
	}, 1))
	return c
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validRequest().Validate())
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		t.Parallel()
		req := checkout.Request{
			ShippingAddress: checkout.Address{Name: "  ", Phone: "call me"},
			PaymentMethod:   "bitcoin",
		}

		err := req.Validate()
		require.ErrorIs(t, err, checkout.ErrValidation)

		var verrs checkout.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.ElementsMatch(t, []string{
			"shipping_address.name",
			"shipping_address.phone",
			"shipping_address.street",
			"shipping_address.city",
			"payment_method",
		}, verrs.Fields())
	})
}

func TestRequest_Normalize(t *testing.T) {
	t.Parallel()

	req := checkout.Request{
		ShippingAddress: checkout.Address{
			Name:   "  Ada\n Lovelace ",
			Street: "1 Nile\tSt\x00",
			City:   strings.Repeat("x", 150),
		},
		Notes: "  ring twice \r\n\n",
	}
	require.NoError(t, req.Normalize())

	assert.Equal(t, "Ada Lovelace", req.ShippingAddress.Name)
	assert.Equal(t, "1 Nile St", req.ShippingAddress.Street)
	assert.Len(t, req.ShippingAddress.City, 100)
	assert.Equal(t, "ring twice", req.Notes)
}

func TestService_PlaceOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sends cart pricing and clears the cart", func(t *testing.T) {
		t.Parallel()
		c := filledCart(t)
		orders := &mockOrders{}
		buf := notify.NewBuffer(5)

		var sent checkout.Order
		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).(checkout.Order) }).
			Return(checkout.Receipt{ID: "o1", Status: "pending"}, nil).Once()

		svc := checkout.NewService(orders, c, checkout.WithNotifier(buf))
		receipt, err := svc.PlaceOrder(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "o1", receipt.ID)

		require.Len(t, sent.Items, 2)
		assert.True(t, decimal.NewFromInt(900).Equal(sent.Items[0].Price))
		assert.True(t, decimal.NewFromInt(2300).Equal(sent.Subtotal))
		assert.True(t, decimal.NewFromInt(50).Equal(sent.ShippingFee))
		assert.True(t, decimal.NewFromInt(2350).Equal(sent.Total))
		assert.True(t, decimal.NewFromInt(200).Equal(sent.TotalSavings))
		assert.Equal(t, "Ada Lovelace", sent.ShippingAddress.Name)
		assert.NotEmpty(t, sent.IdempotencyKey)

		assert.Empty(t, c.Lines())
		assert.Equal(t, notify.LevelSuccess, buf.Drain()[0].Level)
		orders.AssertExpectations(t)
	})

	t.Run("invalid request makes no call", func(t *testing.T) {
		t.Parallel()
		orders := &mockOrders{}
		svc := checkout.NewService(orders, filledCart(t))

		req := validRequest()
		req.PaymentMethod = ""
		_, err := svc.PlaceOrder(ctx, req)
		assert.ErrorIs(t, err, checkout.ErrValidation)
		orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("empty cart", func(t *testing.T) {
		t.Parallel()
		orders := &mockOrders{}
		svc := checkout.NewService(orders, cart.NewStore(cart.Local(storage.NewMemory()), nil))

		_, err := svc.PlaceOrder(ctx, validRequest())
		assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	})

	t.Run("rejected order keeps the cart", func(t *testing.T) {
		t.Parallel()
		c := filledCart(t)
		orders := &mockOrders{}
		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(checkout.Receipt{}, errors.New("out of stock")).Once()
		buf := notify.NewBuffer(5)

		svc := checkout.NewService(orders, c, checkout.WithNotifier(buf))
		_, err := svc.PlaceOrder(ctx, validRequest())
		assert.ErrorIs(t, err, checkout.ErrOrderFailed)
		assert.Len(t, c.Lines(), 2)
		assert.Equal(t, notify.LevelError, buf.Drain()[0].Level)
	})
}

func TestService_UploadProof(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("accepts images and PDFs", func(t *testing.T) {
		t.Parallel()
		for name, data := range map[string][]byte{
			"receipt.png": pngHeader,
			"receipt.pdf": []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"),
		} {
			orders := &mockOrders{}
			orders.On("UploadPaymentProof", mock.Anything, "o1", mock.MatchedBy(func(p checkout.Proof) bool {
				return p.Filename == name && len(p.Data) == len(data)
			})).Return(nil).Once()

			svc := checkout.NewService(orders, filledCart(t))
			require.NoError(t, svc.UploadProof(ctx, "o1", "C:\\Users\\me\\"+name, data), name)
			orders.AssertExpectations(t)
		}
	})

	t.Run("rejects before upload", func(t *testing.T) {
		t.Parallel()
		svc := checkout.NewService(&mockOrders{}, filledCart(t), checkout.WithMaxProofSize(64))

		assert.ErrorIs(t, svc.UploadProof(ctx, "", "a.png", pngHeader), checkout.ErrMissingOrderID)
		assert.ErrorIs(t, svc.UploadProof(ctx, "o1", "a.png", nil), checkout.ErrProofEmpty)
		assert.ErrorIs(t, svc.UploadProof(ctx, "o1", "a.txt", []byte("plain text proof")), checkout.ErrProofType)

		big := append(bytes.Clone(pngHeader), make([]byte, 64)...)
		assert.ErrorIs(t, svc.UploadProof(ctx, "o1", "a.png", big), checkout.ErrProofTooLarge)
	})

	t.Run("service failure", func(t *testing.T) {
		t.Parallel()
		orders := &mockOrders{}
		orders.On("UploadPaymentProof", mock.Anything, "o1", mock.Anything).Return(errors.New("413")).Once()

		svc := checkout.NewService(orders, filledCart(t))
		assert.ErrorIs(t, svc.UploadProof(ctx, "o1", "a.png", pngHeader), checkout.ErrUploadFailed)
	})
}
