package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const subscriptionColumns = `id, context_id, service, amount_cents, frequency, next_billing_date, status, created_at`

func scanSubscription(s rowScanner) (core.Subscription, error) {
	var sub core.Subscription
	var freq, status string
	err := s.Scan(&sub.ID, &sub.ContextID, &sub.Service, &sub.Amount.Cents, &freq,
		&sub.NextBillingDate, &status, &sub.CreatedAt)
	sub.Frequency = core.Frequency(freq)
	sub.Status = core.SubscriptionStatus(status)
	return sub, err
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, contextID int64) ([]core.Subscription, error) {
	out, err := queryList(ctx, r.db, scanSubscription,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE context_id = ?
		 ORDER BY next_billing_date ASC, id ASC`, contextID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	sub, err := queryOne(ctx, r.db, scanSubscription,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return sub, fmt.Errorf("get subscription %d: %w", id, err)
	}
	return sub, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	id, err := r.insert(ctx,
		`INSERT INTO subscriptions (context_id, service, amount_cents, frequency, next_billing_date, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ContextID, sub.Service, sub.Amount.Cents, string(sub.Frequency), sub.NextBillingDate, string(sub.Status))
	if err != nil {
		return sub, fmt.Errorf("create subscription: %w", err)
	}
	return r.GetSubscription(ctx, id)
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := r.execAffecting(ctx,
		`UPDATE subscriptions
		 SET service = ?, amount_cents = ?, frequency = ?, next_billing_date = ?, status = ?
		 WHERE id = ?`,
		sub.Service, sub.Amount.Cents, string(sub.Frequency), sub.NextBillingDate, string(sub.Status), sub.ID); err != nil {
		return sub, fmt.Errorf("update subscription %d: %w", sub.ID, err)
	}
	return r.GetSubscription(ctx, sub.ID)
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id int64) error {
	if err := r.execAffecting(ctx, `DELETE FROM subscriptions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete subscription %d: %w", id, err)
	}
	return nil
}
