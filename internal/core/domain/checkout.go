package domain

import "time"

// CheckoutState is the lifecycle state of a checkout run.
type CheckoutState string

const (
	RunIdle             CheckoutState = "idle"
	RunSettingUpPayment CheckoutState = "setting_up_payment"
	RunProcessingItem   CheckoutState = "processing_item"
	RunCompleted        CheckoutState = "completed"
	RunPartiallyFailed  CheckoutState = "partially_failed"
	RunAborted          CheckoutState = "aborted"
)

// runTransitions defines the allowed state machine transitions.
var runTransitions = map[CheckoutState][]CheckoutState{
	RunIdle:             {RunSettingUpPayment, RunProcessingItem, RunAborted},
	RunSettingUpPayment: {RunProcessingItem, RunAborted},
	RunProcessingItem:   {RunCompleted, RunPartiallyFailed, RunAborted},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the run has finished.
func (s CheckoutState) Terminal() bool {
	return s == RunCompleted || s == RunPartiallyFailed || s == RunAborted
}

// CheckoutItemResult is the outcome for a single cart item, immutable once
// recorded.
type CheckoutItemResult struct {
	ListingID   string `json:"listing_id" bson:"listing_id"`
	OrderID     string `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Success     bool   `json:"success" bson:"success"`
	Error       string `json:"error,omitempty" bson:"error,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty" bson:"tracking_url,omitempty"`
}

// ReconciliationFailure records a delivery-completion webhook whose
// marketplace transition was rejected, kept for manual operator intervention.
type ReconciliationFailure struct {
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	TaskID        string    `json:"task_id,omitempty" bson:"task_id,omitempty"`
	Reason        string    `json:"reason" bson:"reason"`
	OccurredAt    time.Time `json:"occurred_at" bson:"occurred_at"`
}

// CheckoutRun is the state carried through one checkout: the items being
// charged, the cursor, the payment method established for the run, and the
// per-item results. It is mutated only by the orchestrator and discarded
// (after archival) once terminal.
type CheckoutRun struct {
	ID              string               `json:"id" bson:"_id,omitempty"`
	BuyerID         string               `json:"buyer_id" bson:"buyer_id"`
	Items           []CartLineItem       `json:"items" bson:"items"`
	CurrentIndex    int                  `json:"current_index" bson:"current_index"`
	PaymentMethodID string               `json:"payment_method_id,omitempty" bson:"payment_method_id,omitempty"`
	State           CheckoutState        `json:"state" bson:"state"`
	Results         []CheckoutItemResult `json:"results" bson:"results"`
	FailureReason   string               `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	StartedAt       time.Time            `json:"started_at" bson:"started_at"`
	FinishedAt      time.Time            `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// NewCheckoutRun starts an idle run over the given cart items.
func NewCheckoutRun(id, buyerID string, items []CartLineItem) *CheckoutRun {
	return &CheckoutRun{
		ID:        id,
		BuyerID:   buyerID,
		Items:     items,
		State:     RunIdle,
		Results:   make([]CheckoutItemResult, 0, len(items)),
		StartedAt: time.Now().UTC(),
	}
}

// BeginPaymentSetup enters the optional payment-setup phase.
func (r *CheckoutRun) BeginPaymentSetup() {
	r.setState(RunSettingUpPayment)
}

// PaymentReady records the payment method to reuse for every item and moves
// the run into item processing.
func (r *CheckoutRun) PaymentReady(paymentMethodID string) {
	r.PaymentMethodID = paymentMethodID
	r.setState(RunProcessingItem)
}

// Advance positions the run at item i.
func (r *CheckoutRun) Advance(i int) {
	r.CurrentIndex = i
}

// RecordSuccess appends a successful item result.
func (r *CheckoutRun) RecordSuccess(res CheckoutItemResult) {
	res.Success = true
	r.Results = append(r.Results, res)
}

// RecordFailure appends a failed item result. A failure on the first item
// aborts the whole run: it almost always signals a card-level decline that
// would repeat for every remaining item. Returns true when the run aborted.
func (r *CheckoutRun) RecordFailure(res CheckoutItemResult) bool {
	res.Success = false
	r.Results = append(r.Results, res)
	if r.CurrentIndex == 0 {
		r.Abort(res.Error)
		return true
	}
	return false
}

// Abort terminates the run before or during processing.
func (r *CheckoutRun) Abort(reason string) {
	r.FailureReason = reason
	r.setState(RunAborted)
	r.FinishedAt = time.Now().UTC()
}

// Finish closes a run that processed every item, picking Completed or
// PartiallyFailed from the recorded results.
func (r *CheckoutRun) Finish() {
	if r.AllSucceeded() {
		r.setState(RunCompleted)
	} else {
		r.setState(RunPartiallyFailed)
	}
	r.FinishedAt = time.Now().UTC()
}

// AllSucceeded reports whether every recorded result succeeded.
func (r *CheckoutRun) AllSucceeded() bool {
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return len(r.Results) > 0
}

// SucceededListingIDs returns the listing IDs that charged successfully, in
// processing order.
func (r *CheckoutRun) SucceededListingIDs() []string {
	ids := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Success {
			ids = append(ids, res.ListingID)
		}
	}
	return ids
}

// setState applies a transition. Terminal states are sticky: the run is
// single-threaded, so a transition out of a terminal state indicates an
// orchestrator bug and is ignored rather than corrupting the final outcome.
func (r *CheckoutRun) setState(next CheckoutState) {
	if r.State.Terminal() || !r.State.CanTransitionTo(next) {
		return
	}
	r.State = next
}
