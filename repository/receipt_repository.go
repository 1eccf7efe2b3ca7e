package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"github.com/redis/go-redis/v9"
)

// ReceiptRepository stores confirmed-order receipts and submission
// idempotency keys in redis.
type ReceiptRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReceiptRepository(client *redis.Client, ttl time.Duration) *ReceiptRepository {
	return &ReceiptRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *ReceiptRepository) receiptKey(orderID string) string {
	return fmt.Sprintf("booking:receipt:%s", orderID)
}

// GetReceipt returns nil, nil when no receipt exists.
func (r *ReceiptRepository) GetReceipt(ctx context.Context, orderID string) (*models.OrderReceipt, error) {
	data, err := r.client.Get(ctx, r.receiptKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var receipt models.OrderReceipt
	if err := json.Unmarshal([]byte(data), &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) SaveReceipt(ctx context.Context, receipt *models.OrderReceipt) error {
	if receipt.SavedAt.IsZero() {
		receipt.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.receiptKey(receipt.Order.ID), data, r.ttl).Err()
}

func (r *ReceiptRepository) DeleteReceipt(ctx context.Context, orderID string) error {
	return r.client.Del(ctx, r.receiptKey(orderID)).Err()
}

// Idempotency helpers
func (r *ReceiptRepository) idemKey(key string) string {
	return "idem:booking:" + key
}

// GetIdempotency returns the order id recorded for key, or "" when unseen.
func (r *ReceiptRepository) GetIdempotency(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.idemKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *ReceiptRepository) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.idemKey(key), orderID, ttl).Err()
}
