package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/checkout"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
	"github.com/remedyroot/remedyroot-golang/internal/payments"
)

//
// --- Checkout Handlers ---
//

func sessionResponse(sess checkout.Session) gin.H {
	return gin.H{
		"id":             sess.ID,
		"status":         sess.Status,
		"totalAmount":    sess.TotalAmount.StringFixed(2),
		"items":          sess.Snapshot.Items,
		"failureMessage": sess.FailureMessage,
		"createdAt":      sess.CreatedAt,
	}
}

// BeginCheckout is the handler for POST /v1/checkout. It freezes the cart
// snapshot and opens a payment session.
func (h *Handlers) BeginCheckout(c *gin.Context) {
	client := h.States.Bind(middleware.UserID(c), middleware.Role(c), middleware.BearerToken(c))

	token, err := client.Session.BearerToken()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You must be signed in to check out."})
		return
	}

	sess, err := client.Checkout.Begin(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Your cart is empty."})
		case errors.Is(err, checkout.ErrCheckoutInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "A checkout is already in progress."})
		case errors.Is(err, checkout.ErrNoSessionToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "You must be signed in to check out."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start checkout"})
		}
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(sess))
}

// SubmitPaymentInput defines the JSON for confirming the pending charge.
type SubmitPaymentInput struct {
	PaymentMethodToken string `json:"payment_method_token"`
}

// SubmitPayment is the handler for POST /v1/checkout/payment
func (h *Handlers) SubmitPayment(c *gin.Context) {
	var input SubmitPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := h.States.GetOrCreate(middleware.UserID(c))
	sess, err := client.Checkout.Submit(c.Request.Context(), payments.Method{Token: input.PaymentMethodToken})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoActiveSession):
			c.JSON(http.StatusNotFound, gin.H{"error": "No checkout session is open."})
		case errors.Is(err, checkout.ErrAlreadySubmitted):
			// Double-submission guard: the first confirmation is still the
			// only one in flight.
			c.JSON(http.StatusConflict, sessionResponse(sess))
		case errors.Is(err, checkout.ErrNotAwaitingPayment):
			c.JSON(http.StatusConflict, sessionResponse(sess))
		case errors.Is(err, checkout.ErrInvalidPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid payment method."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not submit payment"})
		}
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

// GetCheckout is the handler for GET /v1/checkout
func (h *Handlers) GetCheckout(c *gin.Context) {
	client := h.States.GetOrCreate(middleware.UserID(c))

	sess, ok := client.Checkout.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No checkout session is open."})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}
