package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/farmfed/delivery-system/internal/core/domain"
	"github.com/farmfed/delivery-system/internal/core/ports"
)

// DeliveryTaskService creates a provider task for an already-confirmed
// shipping transaction, on behalf of a transaction participant.
type DeliveryTaskService struct {
	marketplace ports.MarketplaceClient
	delivery    ports.DeliveryProvider
	logger      zerolog.Logger
}

func NewDeliveryTaskService(marketplace ports.MarketplaceClient, delivery ports.DeliveryProvider, logger zerolog.Logger) *DeliveryTaskService {
	return &DeliveryTaskService{marketplace: marketplace, delivery: delivery, logger: logger}
}

// CreateForTransaction loads the transaction as the requesting user (a
// participant, so protected data is visible) and creates the delivery task.
// skipped is true when the provider integration is not configured.
func (s *DeliveryTaskService) CreateForTransaction(ctx context.Context, userToken, transactionID string) (*ports.DeliveryTask, bool, error) {
	if !s.delivery.Configured() {
		return nil, true, nil
	}

	tx, err := s.marketplace.ShowTransaction(ctx, userToken, transactionID)
	if err != nil {
		return nil, false, fmt.Errorf("show transaction: %w", err)
	}
	if tx.ShippingAddress == nil {
		return nil, false, domain.ErrNoShippingAddress
	}

	task, err := s.delivery.CreateTask(ctx, ports.DeliveryTaskInput{
		Destination:    *tx.ShippingAddress,
		RecipientName:  tx.CustomerName,
		RecipientPhone: tx.CustomerPhone,
		Notes:          deliveryNotes(tx.ListingTitle, transactionID),
		TransactionID:  transactionID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create delivery task: %w", err)
	}

	s.logger.Info().Str("transaction_id", transactionID).Str("task_id", task.ID).Msg("delivery task created")
	return task, false, nil
}
