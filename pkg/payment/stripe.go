package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
)

type StripeService struct {
	secretKey  string
	successURL string
	cancelURL  string
}

func NewStripeService(secretKey, successURL, cancelURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckoutSession opens a one-off Stripe checkout for a card purchase.
// The card itself plus an optional tip are separate line items; metadata
// carries everything the webhook needs to issue the card afterwards.
func (s *StripeService) CreateCheckoutSession(customerEmail, cardName string, amountCents, tipCents int64, metadata map[string]string) (*stripe.CheckoutSession, error) {
	lineItems := []*stripe.CheckoutSessionLineItemParams{
		{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(amountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(cardName),
				},
			},
			Quantity: stripe.Int64(1),
		},
	}
	if tipCents > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(tipCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Tip"),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail: &customerEmail,
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	return session.New(params)
}

// VerifyPaid retrieves a checkout session and confirms Stripe marked it as
// paid. Card issuance requires this confirmation; a session ID alone is not
// payment proof.
func (s *StripeService) VerifyPaid(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return err
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return fmt.Errorf("session %s not paid (status %s)", sessionID, sess.PaymentStatus)
	}
	return nil
}
