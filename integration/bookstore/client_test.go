package bookstore_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/session"
	"github.com/bookhaven/storefront/integration/bookstore"
)

func newClient(t *testing.T, r http.Handler, opts ...bookstore.Option) *bookstore.Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	opts = append([]bookstore.Option{bookstore.WithHTTPClient(srv.Client())}, opts...)
	c, err := bookstore.New(bookstore.Config{
		BaseURL:          srv.URL + "/api",
		RetryMaxElapsed:  2 * time.Second,
		RetryMaxAttempts: 3,
		CatalogPageSize:  2,
	}, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"", "not a url", "ftp://example.com", "/relative"} {
		_, err := bookstore.New(bookstore.Config{BaseURL: u})
		assert.ErrorIs(t, err, bookstore.ErrInvalidConfig, u)
	}
	assert.Panics(t, func() { bookstore.MustNew(bookstore.Config{}) })
}

func TestClient_Auth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("check session sends bearer token", func(t *testing.T) {
		t.Parallel()
		r := chi.NewRouter()
		r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer t1" {
				writeJSON(w, http.StatusUnauthorized, `{"message":"no token"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"user":{"_id":"u1","email":"a@b.c","role":"admin"}}`)
		})
		c := newClient(t, r)

		id, err := c.CheckSession(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "u1", id.ID)
		assert.True(t, id.IsAdmin())

		_, err = c.CheckSession(ctx, "wrong")
		assert.ErrorIs(t, err, bookstore.ErrUnauthorized)

		var apiErr *bookstore.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "no token", apiErr.Message)
	})

	t.Run("unauthorized is not retried", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Get("/api/auth/me", func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusUnauthorized, `{}`)
		})
		c := newClient(t, r)

		_, err := c.CheckSession(ctx, "t1")
		assert.ErrorIs(t, err, bookstore.ErrUnauthorized)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("login reads token from body or cookie", func(t *testing.T) {
		t.Parallel()
		r := chi.NewRouter()
		r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var creds map[string]string
			_ = json.NewDecoder(r.Body).Decode(&creds)
			switch creds["email"] {
			case "body@example.com":
				writeJSON(w, http.StatusOK, `{"token":"tb","user":{"_id":"u1","role":"user"}}`)
			case "cookie@example.com":
				http.SetCookie(w, &http.Cookie{Name: bookstore.TokenCookie, Value: "tc"})
				writeJSON(w, http.StatusOK, `{"data":{"_id":"u2","role":"user"}}`)
			default:
				writeJSON(w, http.StatusBadRequest, `{"message":"Invalid credentials"}`)
			}
		})
		c := newClient(t, r)

		_, token, err := c.Login(ctx, session.Credentials{Email: "body@example.com", Password: "x"})
		require.NoError(t, err)
		assert.Equal(t, "tb", token)

		id, token, err := c.Login(ctx, session.Credentials{Email: "cookie@example.com", Password: "x"})
		require.NoError(t, err)
		assert.Equal(t, "tc", token)
		assert.Equal(t, "u2", id.ID)

		_, _, err = c.Login(ctx, session.Credentials{Email: "nobody@example.com", Password: "x"})
		assert.ErrorIs(t, err, bookstore.ErrRejected)
	})
}

func TestClient_Retries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reads are retried on server errors", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Get("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				writeJSON(w, http.StatusServiceUnavailable, `{}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"items":[{"bookId":"b1","quantity":2}]}`)
		})
		c := newClient(t, r)

		lines, err := c.GetCart(ctx)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("mutations are sent once", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Delete("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusBadGateway, `{}`)
		})
		c := newClient(t, r)

		err := c.ClearCart(ctx)
		assert.ErrorIs(t, err, bookstore.ErrServiceUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries disabled", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Get("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusServiceUnavailable, `{}`)
		})
		c := newClient(t, r, bookstore.WithRetry(0))

		_, err := c.GetCart(ctx)
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("non-JSON success body", func(t *testing.T) {
		t.Parallel()
		r := chi.NewRouter()
		r.Get("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		})
		c := newClient(t, r)

		_, err := c.GetCart(ctx)
		assert.ErrorIs(t, err, bookstore.ErrUnexpectedResponse)
	})
}

func TestClient_Cart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var (
		mu       sync.Mutex
		gotKey   string
		gotBody  map[string]any
		gotPath  string
		gotToken string
	)
	snapshot := func() (string, map[string]any, string, string) {
		mu.Lock()
		defer mu.Unlock()
		return gotKey, gotBody, gotPath, gotToken
	}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(bookstore.IdempotencyHeader)
		gotToken = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusCreated, `{"success":true}`)
	})
	r.Put("/api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = chi.URLParam(r, "id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})
	r.Delete("/api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = chi.URLParam(r, "id")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, r).Authorized(func() string { return "visitor-token" })

	require.NoError(t, c.AddItem(ctx, "b1", 2, "key-1"))
	key, body, _, token := snapshot()
	assert.Equal(t, "key-1", key)
	assert.Equal(t, "Bearer visitor-token", token)
	assert.Equal(t, "b1", body["bookId"])
	assert.EqualValues(t, 2, body["quantity"])

	require.NoError(t, c.UpdateItem(ctx, "b2", 5))
	_, body, path, _ := snapshot()
	assert.Equal(t, "b2", path)
	assert.EqualValues(t, 5, body["quantity"])

	require.NoError(t, c.RemoveItem(ctx, "b3"))
	_, _, path, _ = snapshot()
	assert.Equal(t, "b3", path)
}

func TestClient_LookupBooks(t *testing.T) {
	t.Parallel()

	var pages atomic.Int32
	r := chi.NewRouter()
	r.Get("/api/books", func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, http.StatusOK, `{"books":[{"_id":"b1","price":100},{"_id":"x"}],"page":1,"totalPages":2}`)
		default:
			writeJSON(w, http.StatusOK, `{"books":[{"_id":"b2","price":200}],"page":2,"totalPages":2}`)
		}
	})
	r.Get("/api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "b3" {
			writeJSON(w, http.StatusOK, `{"book":{"_id":"b3","price":300}}`)
			return
		}
		writeJSON(w, http.StatusNotFound, `{"message":"Book not found"}`)
	})
	c := newClient(t, r)

	books, err := c.LookupBooks(context.Background(), []string{"b1", "b2", "b3", "gone"})
	require.NoError(t, err)
	assert.Len(t, books, 3)
	assert.True(t, decimal.NewFromInt(300).Equal(books["b3"].Price))
	assert.NotContains(t, books, "gone")
	assert.Equal(t, int32(2), pages.Load())
}

func TestClient_Orders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var (
		mu        sync.Mutex
		order     map[string]any
		orderKey  string
		proofName string
		proofType string
		proofSize int
	)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		orderKey = r.Header.Get(bookstore.IdempotencyHeader)
		_ = json.NewDecoder(r.Body).Decode(&order)
		writeJSON(w, http.StatusCreated, `{"order":{"_id":"o1","status":"pending","total":2350}}`)
	})
	r.Post("/api/orders/{id}/payment-proof", func(w http.ResponseWriter, r *http.Request) {
		f, h, err := r.FormFile(bookstore.ProofField)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, `{"message":"missing proof"}`)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		proofName, proofType, proofSize = h.Filename, h.Header.Get("Content-Type"), len(data)
		writeJSON(w, http.StatusOK, `{}`)
	})
	c := newClient(t, r)

	receipt, err := c.CreateOrder(ctx, checkout.Order{
		Items:           []checkout.Item{{BookID: "b1", Quantity: 2, Price: decimal.NewFromInt(900)}},
		ShippingAddress: checkout.Address{Name: "Ada", Phone: "0100000000", Street: "1 St", City: "Cairo"},
		PaymentMethod:   checkout.PaymentBankTransfer,
		Subtotal:        decimal.NewFromInt(1800),
		ShippingFee:     decimal.NewFromInt(50),
		Total:           decimal.NewFromInt(1850),
		IdempotencyKey:  "order-key",
	})
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "o1", receipt.ID)
	assert.Equal(t, "order-key", orderKey)
	assert.Equal(t, "bank_transfer", order["paymentMethod"])
	assert.EqualValues(t, 1850, order["total"])
	mu.Unlock()

	err = c.UploadPaymentProof(ctx, "o1", checkout.Proof{
		Filename:    "receipt.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.7"),
	})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "receipt.pdf", proofName)
	assert.Equal(t, "application/pdf", proofType)
	assert.Equal(t, 8, proofSize)
}
