package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const investmentColumns = `id, context_id, asset_name, type, amount_invested_cents, current_value_cents, date_invested, notes, created_at`

func scanInvestment(s rowScanner) (core.Investment, error) {
	var inv core.Investment
	var typ string
	err := s.Scan(&inv.ID, &inv.ContextID, &inv.AssetName, &typ, &inv.AmountInvested.Cents,
		&inv.CurrentValue.Cents, &inv.DateInvested, &inv.Notes, &inv.CreatedAt)
	inv.Type = core.InvestmentType(typ)
	return inv, err
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context, contextID int64) ([]core.Investment, error) {
	out, err := queryList(ctx, r.db, scanInvestment,
		`SELECT `+investmentColumns+` FROM investments
		 WHERE context_id = ?
		 ORDER BY date_invested DESC, created_at DESC, id DESC`, contextID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetInvestment(ctx context.Context, id int64) (core.Investment, error) {
	inv, err := queryOne(ctx, r.db, scanInvestment,
		`SELECT `+investmentColumns+` FROM investments WHERE id = ?`, id)
	if err != nil {
		return inv, fmt.Errorf("get investment %d: %w", id, err)
	}
	return inv, nil
}

func (r *SQLiteRepository) CreateInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	id, err := r.insert(ctx,
		`INSERT INTO investments (context_id, asset_name, type, amount_invested_cents, current_value_cents, date_invested, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ContextID, inv.AssetName, string(inv.Type), inv.AmountInvested.Cents, inv.CurrentValue.Cents, inv.DateInvested, inv.Notes)
	if err != nil {
		return inv, fmt.Errorf("create investment: %w", err)
	}
	return r.GetInvestment(ctx, id)
}

func (r *SQLiteRepository) UpdateInvestment(ctx context.Context, inv core.Investment) (core.Investment, error) {
	if err := r.execAffecting(ctx,
		`UPDATE investments
		 SET asset_name = ?, type = ?, amount_invested_cents = ?, current_value_cents = ?, date_invested = ?, notes = ?
		 WHERE id = ?`,
		inv.AssetName, string(inv.Type), inv.AmountInvested.Cents, inv.CurrentValue.Cents, inv.DateInvested, inv.Notes, inv.ID); err != nil {
		return inv, fmt.Errorf("update investment %d: %w", inv.ID, err)
	}
	return r.GetInvestment(ctx, inv.ID)
}

func (r *SQLiteRepository) DeleteInvestment(ctx context.Context, id int64) error {
	if err := r.execAffecting(ctx, `DELETE FROM investments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete investment %d: %w", id, err)
	}
	return nil
}
