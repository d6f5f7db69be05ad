package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/IhuzaApp/groceryrw-backend/pkg/db"
	"github.com/IhuzaApp/groceryrw-backend/pkg/db/models"
	"github.com/IhuzaApp/groceryrw-backend/pkg/pagination"
)

// Repository manages persistence for wallets, the transaction ledger,
// payout requests, and refunds.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByShopperID(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error)
	FindByShopperIDForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error)
	FindOrCreateForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error)
	SaveBalances(ctx context.Context, wallet *models.Wallet) error
	DebitAvailableGuarded(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (bool, error)
	AppendTransactions(ctx context.Context, entries []models.WalletTransaction) error
	CreateRefund(ctx context.Context, refund *models.Refund) error
	CreatePayoutRequest(ctx context.Context, payout *models.PayoutRequest) error
	ListTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error)
	ListPayoutRequests(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.PayoutRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByShopperID(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("shopper_id = ?", shopperID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// FindByShopperIDForUpdate locks the wallet row for the duration of the
// surrounding transaction so two operations on the same wallet serialize.
func (r *repository) FindByShopperIDForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shopper_id = ?", shopperID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// FindOrCreateForUpdate creates the wallet lazily on first reserve. The
// insert tolerates a concurrent creation and falls through to the locked
// read either way.
func (r *repository) FindOrCreateForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shopper_id"}},
			DoNothing: true,
		}).
		Create(&models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.Zero,
		}).Error
	if err != nil && !db.IsUniqueViolation(err, "wallets_shopper_id_key") {
		return nil, err
	}
	return r.FindByShopperIDForUpdate(ctx, shopperID)
}

func (r *repository) SaveBalances(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]any{
			"available_balance": wallet.AvailableBalance,
			"reserved_balance":  wallet.ReservedBalance,
		}).Error
}

// DebitAvailableGuarded applies the payout debit in one guarded statement;
// the balance check and the subtraction cannot race.
func (r *repository) DebitAvailableGuarded(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallets
		SET available_balance = available_balance - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND available_balance >= ?
	`, amount, walletID, amount)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AppendTransactions(ctx context.Context, entries []models.WalletTransaction) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) CreateRefund(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *repository) CreatePayoutRequest(ctx context.Context, payout *models.PayoutRequest) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.WalletTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListPayoutRequests(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.PayoutRequest, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var payouts []models.PayoutRequest
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
