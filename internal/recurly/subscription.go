package recurly

import (
	"context"
	"time"

	"github.com/beevik/etree"
	"github.com/flexprice/recurly-client/internal/xmlcodec"
)

const (
	SubscriptionSingular = "subscription"
	SubscriptionPlural   = "subscriptions"
)

// Subscription is a plan subscription, keyed by uuid
type Subscription struct {
	Resource

	UUID                   string     `json:"uuid,omitempty"`
	State                  string     `json:"state,omitempty"`
	PlanCode               string     `json:"plan_code,omitempty"`
	PlanName               string     `json:"plan_name,omitempty"`
	Currency               string     `json:"currency,omitempty"`
	UnitAmountInCents      int64      `json:"unit_amount_in_cents"`
	Quantity               int        `json:"quantity"`
	CollectionMethod       string     `json:"collection_method,omitempty"`
	NetTerms               int        `json:"net_terms"`
	PONumber               string     `json:"po_number,omitempty"`
	TotalBillingCycles     int        `json:"total_billing_cycles,omitempty"`
	RemainingBillingCycles int        `json:"remaining_billing_cycles,omitempty"`
	ActivatedAt            *time.Time `json:"activated_at,omitempty"`
	CanceledAt             *time.Time `json:"canceled_at,omitempty"`
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
	CurrentPeriodStartedAt *time.Time `json:"current_period_started_at,omitempty"`
	CurrentPeriodEndsAt    *time.Time `json:"current_period_ends_at,omitempty"`
	TrialStartedAt         *time.Time `json:"trial_started_at,omitempty"`
	TrialEndsAt            *time.Time `json:"trial_ends_at,omitempty"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
}

var subscriptionSchema = schema[Subscription]{
	"uuid":  stringField(func(s *Subscription) *string { return &s.UUID }),
	"state": stringField(func(s *Subscription) *string { return &s.State }),
	"plan": func(s *Subscription, el *etree.Element) error {
		s.PlanCode = xmlcodec.Text(el.SelectElement("plan_code"))
		s.PlanName = xmlcodec.Text(el.SelectElement("name"))
		return nil
	},
	"currency":                  stringField(func(s *Subscription) *string { return &s.Currency }),
	"unit_amount_in_cents":      int64Field(func(s *Subscription) *int64 { return &s.UnitAmountInCents }),
	"quantity":                  intField(func(s *Subscription) *int { return &s.Quantity }),
	"collection_method":         stringField(func(s *Subscription) *string { return &s.CollectionMethod }),
	"net_terms":                 intField(func(s *Subscription) *int { return &s.NetTerms }),
	"po_number":                 stringField(func(s *Subscription) *string { return &s.PONumber }),
	"total_billing_cycles":      intField(func(s *Subscription) *int { return &s.TotalBillingCycles }),
	"remaining_billing_cycles":  intField(func(s *Subscription) *int { return &s.RemainingBillingCycles }),
	"activated_at":              timeField(func(s *Subscription) **time.Time { return &s.ActivatedAt }),
	"canceled_at":               timeField(func(s *Subscription) **time.Time { return &s.CanceledAt }),
	"expires_at":                timeField(func(s *Subscription) **time.Time { return &s.ExpiresAt }),
	"current_period_started_at": timeField(func(s *Subscription) **time.Time { return &s.CurrentPeriodStartedAt }),
	"current_period_ends_at":    timeField(func(s *Subscription) **time.Time { return &s.CurrentPeriodEndsAt }),
	"trial_started_at":          timeField(func(s *Subscription) **time.Time { return &s.TrialStartedAt }),
	"trial_ends_at":             timeField(func(s *Subscription) **time.Time { return &s.TrialEndsAt }),
	"updated_at":                timeField(func(s *Subscription) **time.Time { return &s.UpdatedAt }),
}

// Endpoint returns the subscription collection uri
func (s *Subscription) Endpoint() string {
	if s.client == nil {
		return ""
	}
	return s.client.Endpoint(SubscriptionPlural)
}

// Merge copies every field present in p into s. On error s is unchanged.
func (s *Subscription) Merge(p *xmlcodec.Payload) error {
	if p == nil {
		return nil
	}

	next := *s
	next.Resource = s.Resource.clone()
	next.inflateLinks(p)
	if err := subscriptionSchema.apply(&next, p.Fields); err != nil {
		return err
	}

	*s = next
	return nil
}

// Fetch reloads the subscription from its href, or from its uuid
func (s *Subscription) Fetch(ctx context.Context) error {
	uri := s.Href
	if uri == "" && s.UUID != "" {
		uri = memberURI(s.Endpoint(), s.UUID)
	}
	if uri == "" {
		return ErrMissingHref
	}

	p, err := s.fetchPayload(ctx, uri)
	if err != nil {
		return err
	}
	return s.Merge(p)
}
