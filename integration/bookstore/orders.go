package bookstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/core/checkout"
)

// ProofField is the multipart field carrying a payment proof.
const ProofField = "proof"

var _ checkout.Orders = (*Client)(nil)

type orderItem struct {
	Book     string      `json:"book"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
}

type orderPayload struct {
	Items           []orderItem      `json:"items"`
	ShippingAddress checkout.Address `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	Notes           string           `json:"notes,omitempty"`
	Subtotal        json.Number      `json:"subtotal"`
	ShippingFee     json.Number      `json:"shippingFee"`
	Discount        json.Number      `json:"discount"`
	Total           json.Number      `json:"total"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// CreateOrder places an order. It is never retried; the idempotency key lets
// the service recognize a resubmission.
func (c *Client) CreateOrder(ctx context.Context, order checkout.Order) (checkout.Receipt, error) {
	payload := orderPayload{
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   string(order.PaymentMethod),
		Notes:           order.Notes,
		Subtotal:        number(order.Subtotal),
		ShippingFee:     number(order.ShippingFee),
		Discount:        number(order.TotalSavings),
		Total:           number(order.Total),
	}
	for _, it := range order.Items {
		payload.Items = append(payload.Items, orderItem{Book: it.BookID, Quantity: it.Quantity, Price: number(it.Price)})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return checkout.Receipt{}, err
	}

	req := request{op: "create_order", method: http.MethodPost, path: "/orders", body: body, contentType: "application/json"}
	if order.IdempotencyKey != "" {
		req.header = http.Header{IdempotencyHeader: {order.IdempotencyKey}}
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return checkout.Receipt{}, err
	}

	receipt := parseReceipt(resp.json())
	if receipt.ID == "" {
		return checkout.Receipt{}, fmt.Errorf("%w: create_order: no order id", ErrUnexpectedResponse)
	}
	return receipt, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadPaymentProof sends proof as multipart form data.
func (c *Client) UploadPaymentProof(ctx context.Context, orderID string, proof checkout.Proof) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, ProofField, quoteEscaper.Replace(proof.Filename)))
	h.Set("Content-Type", proof.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(proof.Data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	_, err = c.do(ctx, request{
		op:          "upload_payment_proof",
		method:      http.MethodPost,
		path:        "/orders/" + url.PathEscape(orderID) + "/payment-proof",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
	return err
}
