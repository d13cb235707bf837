// Package checkout places orders from the visitor's cart and uploads payment
// proofs for them.
//
// Requests are validated before any network call. Order rows and totals are
// derived from the cart lines with the same pricing rules the cart shows, so
// what the customer saw is what the order service receives.
package checkout
