package usecases

import (
	"context"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"store-bot.backend/internal/domain/entities"
	"store-bot.backend/internal/domain/errors"
	"store-bot.backend/internal/domain/providers"
	domainRepos "store-bot.backend/internal/domain/repositories"
	"store-bot.backend/pkg/logger"
	"store-bot.backend/pkg/metrics"
)

// VerifyOutcome classifies what a verification attempt observed.
type VerifyOutcome string

const (
	// OutcomeSucceeded means the intent is SUCCEEDED (whether this call
	// applied the transition or a previous one did).
	OutcomeSucceeded VerifyOutcome = "succeeded"
	// OutcomeStillPending means the intent remains open.
	OutcomeStillPending VerifyOutcome = "still_pending"
	// OutcomeTerminated means the intent ended without payment.
	OutcomeTerminated VerifyOutcome = "terminated"
	// OutcomeNotFound means no intent with the id exists.
	OutcomeNotFound VerifyOutcome = "not_found"
)

type InitiateResult struct {
	Intent *entities.PaymentIntent
	PayURL string
}

type VerifyResult struct {
	Outcome VerifyOutcome
	Status  entities.IntentStatus
}

// CheckoutUsecase is the payment reconciliation engine. It owns the intent
// lifecycle: creation through a provider adapter, observation of the
// provider's remote status, and the single conditional transition into a
// terminal status. The conditional UPDATE in IntentRepository.Finalize is the
// linearization point: whichever caller's update takes effect runs the
// notification cycle, everyone else observes an already-terminal intent.
type CheckoutUsecase struct {
	adapters    map[entities.PaymentProvider]providers.Adapter
	intentRepo  domainRepos.IntentRepository
	productRepo domainRepos.ProductRepository
	notifier    *Notifier
	metrics     *metrics.PaymentMetrics
}

func NewCheckoutUsecase(
	adapters []providers.Adapter,
	intentRepo domainRepos.IntentRepository,
	productRepo domainRepos.ProductRepository,
	notifier *Notifier,
	m *metrics.PaymentMetrics,
) *CheckoutUsecase {
	byProvider := make(map[entities.PaymentProvider]providers.Adapter, len(adapters))
	for _, a := range adapters {
		byProvider[a.Provider()] = a
	}
	return &CheckoutUsecase{
		adapters:    byProvider,
		intentRepo:  intentRepo,
		productRepo: productRepo,
		notifier:    notifier,
		metrics:     m,
	}
}

func (uc *CheckoutUsecase) adapter(provider entities.PaymentProvider) (providers.Adapter, error) {
	a, ok := uc.adapters[provider]
	if !ok {
		return nil, errors.ErrUnsupportedProvider
	}
	return a, nil
}

// Initiate starts a checkout for a product with the chosen provider. The
// intent is persisted only after the adapter accepted the creation; an
// adapter failure leaves no record behind.
func (uc *CheckoutUsecase) Initiate(ctx context.Context, productID uint, buyerID int64, provider entities.PaymentProvider) (*InitiateResult, error) {
	adapter, err := uc.adapter(provider)
	if err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, errors.ErrProductNotFound
	}
	if !product.IsActive {
		return nil, errors.ErrProductNotFound
	}

	handle, err := adapter.CreateIntent(ctx, product, buyerID)
	if err != nil {
		logger.Error(ctx, "provider rejected intent creation",
			zap.String("provider", string(provider)),
			zap.Uint("product_id", productID),
			zap.Error(err))
		return nil, err
	}

	intent := &entities.PaymentIntent{
		ID:        handle.ID,
		Provider:  provider,
		Status:    handle.Status,
		BuyerID:   buyerID,
		ProductID: productID,
		Amount:    handle.Amount,
		PayURL:    null.NewString(handle.PayURL, handle.PayURL != ""),
	}
	if err := uc.intentRepo.Create(ctx, intent); err != nil {
		return nil, err
	}

	uc.metrics.IncCreated(string(provider))
	logger.Info(ctx, "payment intent created",
		zap.String("provider", string(provider)),
		zap.String("intent_id", intent.ID),
		zap.Int64("buyer_id", buyerID),
		zap.String("amount", intent.Amount))

	return &InitiateResult{Intent: intent, PayURL: handle.PayURL}, nil
}

// terminalFor maps a remote status to the terminal status it finalizes to.
// Open and unknown remote statuses map to nothing.
func terminalFor(remote providers.RemoteStatus) (entities.IntentStatus, bool) {
	switch remote {
	case providers.RemoteSucceeded:
		return entities.IntentStatusSucceeded, true
	case providers.RemoteCanceled:
		return entities.IntentStatusCanceled, true
	case providers.RemoteExpired:
		return entities.IntentStatusExpired, true
	case providers.RemoteFailed:
		return entities.IntentStatusFailed, true
	}
	return "", false
}

// Verify reconciles one intent against its provider. Already-terminal
// intents short-circuit without a provider call. A remote status outside the
// recognized vocabulary (including not_found) leaves the intent open.
func (uc *CheckoutUsecase) Verify(ctx context.Context, provider entities.PaymentProvider, intentID string) (*VerifyResult, error) {
	adapter, err := uc.adapter(provider)
	if err != nil {
		return nil, err
	}

	intent, err := uc.intentRepo.GetByID(ctx, provider, intentID)
	if err != nil {
		if errors.Is(err, errors.ErrIntentNotFound) {
			return &VerifyResult{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	if intent.Status.IsTerminal() {
		return uc.resultFor(intent.Status), nil
	}

	remote, err := adapter.QueryStatus(ctx, intentID)
	if err != nil {
		return nil, err
	}

	to, terminal := terminalFor(remote)
	if !terminal {
		return &VerifyResult{Outcome: OutcomeStillPending, Status: intent.Status}, nil
	}

	return uc.finalize(ctx, intent, to)
}

// ConfirmPlatformPayment finalizes a token-currency intent after the
// platform pushed a successful-payment event carrying the invoice payload.
func (uc *CheckoutUsecase) ConfirmPlatformPayment(ctx context.Context, payload string) (*VerifyResult, error) {
	intent, err := uc.intentRepo.GetByID(ctx, entities.ProviderToken, payload)
	if err != nil {
		if errors.Is(err, errors.ErrIntentNotFound) {
			logger.Warn(ctx, "successful-payment event for unknown payload",
				zap.String("payload", payload))
			return &VerifyResult{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}
	if intent.Status.IsTerminal() {
		return uc.resultFor(intent.Status), nil
	}
	return uc.finalize(ctx, intent, entities.IntentStatusSucceeded)
}

// ValidatePreCheckout reports whether a token invoice payload may proceed to
// payment: the intent must exist and still be open.
func (uc *CheckoutUsecase) ValidatePreCheckout(ctx context.Context, payload string) error {
	intent, err := uc.intentRepo.GetByID(ctx, entities.ProviderToken, payload)
	if err != nil {
		return err
	}
	if intent.Status.IsTerminal() {
		return errors.ErrIntentNotFound
	}
	return nil
}

// finalize applies the conditional terminal transition and, when this call
// is the one that applied it, runs the side effects exactly once.
func (uc *CheckoutUsecase) finalize(ctx context.Context, intent *entities.PaymentIntent, to entities.IntentStatus) (*VerifyResult, error) {
	applied, err := uc.intentRepo.Finalize(ctx, intent.Provider, intent.ID, to)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race: someone else closed the intent first.
		current, err := uc.intentRepo.GetByID(ctx, intent.Provider, intent.ID)
		if err != nil {
			return nil, err
		}
		return uc.resultFor(current.Status), nil
	}

	uc.metrics.IncClosed(string(intent.Provider), string(to))
	logger.Info(ctx, "payment intent finalized",
		zap.String("provider", string(intent.Provider)),
		zap.String("intent_id", intent.ID),
		zap.String("status", string(to)))

	if to == entities.IntentStatusSucceeded && uc.notifier != nil {
		product, err := uc.productRepo.GetByID(ctx, intent.ProductID)
		if err != nil {
			logger.Error(ctx, "product lookup failed for success notification",
				zap.String("intent_id", intent.ID),
				zap.Uint("product_id", intent.ProductID),
				zap.Error(err))
		} else {
			uc.notifier.NotifySuccess(ctx, intent, product)
		}
	}

	return uc.resultFor(to), nil
}

func (uc *CheckoutUsecase) resultFor(status entities.IntentStatus) *VerifyResult {
	switch status {
	case entities.IntentStatusSucceeded:
		return &VerifyResult{Outcome: OutcomeSucceeded, Status: status}
	case entities.IntentStatusCanceled, entities.IntentStatusExpired, entities.IntentStatusFailed:
		return &VerifyResult{Outcome: OutcomeTerminated, Status: status}
	}
	return &VerifyResult{Outcome: OutcomeStillPending, Status: status}
}

// ReconcileAll sweeps every open intent of every registered provider. Each
// intent is verified independently: a failure is logged and counted, the
// sweep moves on.
func (uc *CheckoutUsecase) ReconcileAll(ctx context.Context) {
	for provider := range uc.adapters {
		open, err := uc.intentRepo.ListOpen(ctx, provider)
		if err != nil {
			logger.Error(ctx, "open intent listing failed",
				zap.String("provider", string(provider)),
				zap.Error(err))
			uc.metrics.IncSweepFailure()
			continue
		}

		for _, intent := range open {
			if _, err := uc.Verify(ctx, provider, intent.ID); err != nil {
				logger.Error(ctx, "intent reconciliation failed",
					zap.String("provider", string(provider)),
					zap.String("intent_id", intent.ID),
					zap.Error(err))
				uc.metrics.IncSweepFailure()
			}
		}
	}
}
