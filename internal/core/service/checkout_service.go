package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

const transitionConfirmPayment = "transition/confirm-payment"

// CheckoutService drives one checkout run: optional payment setup, then a
// strictly sequential per-item loop of marketplace initiation, processor
// confirmation, marketplace confirmation, and best-effort delivery-task
// creation. Items are never processed in parallel: item 0 anchors the payment
// method the rest reuse, and marketplace-side ordering is buyer-visible.
//
// Side effects are not atomic across items: a partially failed run has
// already charged the successful items. The marketplace backend offers no
// distributed transaction to make this all-or-nothing, so partial success is
// accepted, recorded per item, and surfaced as such.
type CheckoutService struct {
	marketplace ports.MarketplaceClient
	payments    ports.PaymentClient
	delivery    ports.DeliveryProvider
	cart        ports.CartStore
	estimation  ports.EstimationService
	runs        ports.CheckoutRunRepository
	logger      zerolog.Logger
}

func NewCheckoutService(
	marketplace ports.MarketplaceClient,
	payments ports.PaymentClient,
	delivery ports.DeliveryProvider,
	cart ports.CartStore,
	estimation ports.EstimationService,
	runs ports.CheckoutRunRepository,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		marketplace: marketplace,
		payments:    payments,
		delivery:    delivery,
		cart:        cart,
		estimation:  estimation,
		runs:        runs,
		logger:      logger,
	}
}

// Checkout runs the full state machine over the buyer's current cart and
// returns the terminal run. err is reserved for precondition failures (cart
// unreadable, cart empty); payment and item failures are reported through the
// run itself.
func (s *CheckoutService) Checkout(ctx context.Context, in ports.CheckoutInput) (*domain.CheckoutRun, error) {
	items, err := s.cart.Items(ctx, in.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	run := domain.NewCheckoutRun(uuid.NewString(), in.BuyerID, items)
	log := s.logger.With().Str("run_id", run.ID).Str("buyer_id", in.BuyerID).Logger()

	// 1. Establish the payment method. Failure here aborts before any item
	//    is charged: charging without a valid method cannot succeed.
	paymentMethodID, err := s.establishPaymentMethod(ctx, in, run)
	if err != nil {
		log.Warn().Err(err).Msg("payment setup failed, run aborted before any charge")
		run.Abort(err.Error())
		s.archive(ctx, run, log)
		return run, nil
	}
	run.PaymentReady(paymentMethodID)

	// 2. Attribute the route-based shipping fee to the first shipping item;
	//    every other item carries zero so the fee is charged exactly once.
	fees, err := s.attributeDeliveryFee(ctx, in, items)
	if err != nil {
		log.Warn().Err(err).Msg("delivery fee could not be established, run aborted")
		run.Abort(err.Error())
		s.archive(ctx, run, log)
		return run, nil
	}

	// 3. Sequential item loop.
	for i, item := range items {
		run.Advance(i)
		result, itemErr := s.processItem(ctx, in, item, fees[i], paymentMethodID, log)
		if itemErr == nil {
			run.RecordSuccess(result)
			continue
		}

		log.Warn().Err(itemErr).Str("listing_id", item.ListingID).Int("index", i).Msg("checkout item failed")
		result.Error = itemErr.Error()
		if aborted := run.RecordFailure(result); aborted {
			// First-item failure: almost certainly a card decline that would
			// repeat N times and litter the marketplace with dead
			// transactions, so the whole run stops here.
			break
		}
	}

	if !run.State.Terminal() {
		run.Finish()
	}

	// 4. Prune the cart: succeeded items leave, failed items stay for retry.
	s.pruneCart(ctx, run, log)

	s.archive(ctx, run, log)
	log.Info().
		Str("state", string(run.State)).
		Int("items", len(items)).
		Int("results", len(run.Results)).
		Msg("checkout run finished")
	return run, nil
}

// establishPaymentMethod picks, in priority order: the explicit method from
// the request, the buyer's saved method, or a new method created through the
// setup-intent flow from the supplied card.
func (s *CheckoutService) establishPaymentMethod(ctx context.Context, in ports.CheckoutInput, run *domain.CheckoutRun) (string, error) {
	if in.PaymentMethodID != "" {
		return in.PaymentMethodID, nil
	}

	user, err := s.marketplace.ShowCurrentUser(ctx, in.UserToken)
	if err != nil {
		return "", fmt.Errorf("resolve buyer: %w", err)
	}
	if user.PaymentMethodID != "" {
		return user.PaymentMethodID, nil
	}
	if in.Card == nil {
		return "", fmt.Errorf("no payment method available for buyer %s", in.BuyerID)
	}

	run.BeginPaymentSetup()

	intent, err := s.payments.CreateSetupIntent(ctx, user.ProcessorCustomerID)
	if err != nil {
		return "", fmt.Errorf("create setup intent: %w", err)
	}
	paymentMethodID, err := s.payments.ConfirmSetupIntent(ctx, intent.ID, in.Card.Token)
	if err != nil {
		return "", fmt.Errorf("confirm setup intent: %w", err)
	}
	if err := s.payments.AttachPaymentMethod(ctx, user.ProcessorCustomerID, paymentMethodID); err != nil {
		return "", fmt.Errorf("attach payment method: %w", err)
	}
	return paymentMethodID, nil
}

// attributeDeliveryFee returns the per-item fee slice. The whole route fee
// lands on the first shipping item; carts without shipping items carry no
// fee. A missing precomputed quote is recomputed, and since the fee is about
// to be charged, failure to compute it is fatal to the run.
func (s *CheckoutService) attributeDeliveryFee(ctx context.Context, in ports.CheckoutInput, items []domain.CartLineItem) ([]int64, error) {
	fees := make([]int64, len(items))

	firstShipping := -1
	for i, item := range items {
		if item.DeliveryMethod == domain.DeliveryShipping {
			firstShipping = i
			break
		}
	}
	if firstShipping < 0 || in.ShippingAddress == nil {
		return fees, nil
	}

	quote := in.DeliveryFee
	if quote == nil {
		listingIDs := make([]string, 0, len(items))
		for _, item := range items {
			listingIDs = append(listingIDs, item.ListingID)
		}
		fresh, err := s.estimation.EstimateCartDelivery(ctx, ports.EstimateCartInput{
			ListingIDs:      listingIDs,
			ShippingAddress: *in.ShippingAddress,
		})
		if err != nil {
			return nil, fmt.Errorf("estimate delivery fee: %w", err)
		}
		quote = fresh
	}

	fees[firstShipping] = quote.TotalFeeCents
	return fees, nil
}

// processItem runs the charge pipeline for one cart item.
func (s *CheckoutService) processItem(
	ctx context.Context,
	in ports.CheckoutInput,
	item domain.CartLineItem,
	feeCents int64,
	paymentMethodID string,
	log zerolog.Logger,
) (domain.CheckoutItemResult, error) {
	result := domain.CheckoutItemResult{ListingID: item.ListingID, Title: item.Title}

	var shippingAddress *domain.Address
	if item.DeliveryMethod == domain.DeliveryShipping {
		shippingAddress = in.ShippingAddress
	}

	// a. Initiate the marketplace transaction (privileged call).
	order, err := s.marketplace.InitiateOrder(ctx, ports.InitiateOrderInput{
		ListingID:        item.ListingID,
		Quantity:         item.Quantity,
		DeliveryMethod:   item.DeliveryMethod,
		ShippingAddress:  shippingAddress,
		DeliveryFeeCents: feeCents,
		ProcessAlias:     in.ProcessAlias,
	})
	if err != nil {
		return result, fmt.Errorf("initiate order: %w", err)
	}
	result.OrderID = order.ID

	// b. Confirm the charge on the processor side.
	if err := s.payments.ConfirmPaymentIntent(ctx, order.PaymentIntentID, paymentMethodID); err != nil {
		return result, fmt.Errorf("confirm payment: %w", err)
	}

	// c. Confirm the payment transition on the marketplace transaction.
	if err := s.marketplace.TransitionTransaction(ctx, order.ID, transitionConfirmPayment); err != nil {
		return result, fmt.Errorf("confirm transaction: %w", err)
	}

	// d. Best-effort delivery task. Never fails the item or the run.
	if tracking, ok := s.createDeliveryTask(ctx, in, item, order.ID, log); ok {
		result.TrackingURL = tracking
	}

	return result, nil
}

func (s *CheckoutService) createDeliveryTask(ctx context.Context, in ports.CheckoutInput, item domain.CartLineItem, orderID string, log zerolog.Logger) (string, bool) {
	if !s.delivery.Configured() || item.DeliveryMethod != domain.DeliveryShipping || in.ShippingAddress == nil {
		return "", false
	}

	task, err := s.delivery.CreateTask(ctx, ports.DeliveryTaskInput{
		Destination:   *in.ShippingAddress,
		RecipientName: in.BuyerID,
		Notes:         deliveryNotes(item.Title, orderID),
		TransactionID: orderID,
	})
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("delivery task creation failed, continuing")
		return "", false
	}
	return task.TrackingURL, true
}

func (s *CheckoutService) pruneCart(ctx context.Context, run *domain.CheckoutRun, log zerolog.Logger) {
	succeeded := run.SucceededListingIDs()
	if len(succeeded) == 0 {
		return
	}

	var err error
	if run.AllSucceeded() && len(run.Results) == len(run.Items) {
		err = s.cart.Clear(ctx, run.BuyerID)
	} else {
		err = s.cart.RemoveItems(ctx, run.BuyerID, succeeded)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to prune cart after checkout")
	}
}

// archive persists the terminal run for history and operator review.
// Best-effort: the buyer already has the in-memory result list.
func (s *CheckoutService) archive(ctx context.Context, run *domain.CheckoutRun, log zerolog.Logger) {
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.runs.Archive(archiveCtx, run); err != nil {
		log.Warn().Err(err).Msg("failed to archive checkout run")
	}
}

func deliveryNotes(title, orderID string) string {
	parts := []string{"FarmFed order"}
	if title != "" {
		parts = append(parts, title)
	}
	return fmt.Sprintf("%s (Transaction: %s)", strings.Join(parts, ": "), orderID)
}
