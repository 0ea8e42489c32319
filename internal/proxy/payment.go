package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopmesh/storefront/internal/apierr"
	"github.com/shopmesh/storefront/internal/util"
)

// PaymentProxy creates payment intents against the processor's API. There is
// no idempotency key on this path: a caller retry after a timeout can create
// a duplicate charge attempt. Callers own retry decisions.
type PaymentProxy struct {
	APIURL    string
	SecretKey string
	Client    *http.Client
	Logger    *slog.Logger
}

type paymentIntentPayload struct {
	// Amount is in the currency's minor units (cents).
	Amount   int64             `json:"amount" validate:"required,gt=0"`
	Currency string            `json:"currency" validate:"required,len=3"`
	Metadata map[string]string `json:"metadata"`
}

func (p *PaymentProxy) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var payload paymentIntentPayload
	if err := util.ParseJSON(r, &payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid request body"))
		return
	}
	if err := util.ValidateStruct(&payload); err != nil {
		util.ErrorResponse(w, apierr.Validation("invalid payment request: %v", err))
		return
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", payload.Amount))
	form.Set("currency", strings.ToLower(payload.Currency))
	for key, value := range payload.Metadata {
		form.Set("metadata["+key+"]", value)
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		p.APIURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		util.ErrorResponse(w, apierr.Internal(err))
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.client().Do(req)
	if err != nil {
		util.ErrorResponse(w, apierr.Upstream(0, "payment processor unreachable", err))
		return
	}
	defer resp.Body.Close()

	upstream := decodeUpstream(resp.Body)
	if resp.StatusCode >= 400 {
		util.ErrorResponse(w, apierr.Upstream(resp.StatusCode, upstreamMessage(upstream, "payment intent creation failed"), nil))
		return
	}

	util.Success(w, http.StatusOK, map[string]any{
		"payment_intent_id": upstream["id"],
		"client_secret":     upstream["client_secret"],
		"status":            upstream["status"],
	})
}

func (p *PaymentProxy) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return DefaultClient
}
