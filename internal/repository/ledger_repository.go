package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stayledger/internal/model"
)

// LedgerRepository defines persistence operations over the dummy ledgers.
type LedgerRepository interface {
	Create(ctx context.Context, account *model.LedgerAccount) error
	Update(ctx context.Context, account *model.LedgerAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error)
	List(ctx context.Context) ([]model.LedgerAccount, error)
	// Lookup resolves an identity by exact match on all of its fields.
	Lookup(ctx context.Context, identity model.AccountIdentity) (*model.LedgerAccount, error)
	// LookupForUpdate is Lookup with a row-level lock; meaningful inside a transaction.
	LookupForUpdate(ctx context.Context, identity model.AccountIdentity) (*model.LedgerAccount, error)
	// AdjustBalance applies balance += delta to the matching account and journals it
	// under ref. It does not check the resulting balance.
	AdjustBalance(ctx context.Context, identity model.AccountIdentity, delta decimal.Decimal, ref string) error
	FindCentral(ctx context.Context) (*model.LedgerAccount, error)
	FindCentralForUpdate(ctx context.Context) (*model.LedgerAccount, error)
	CentralBalance(ctx context.Context) (decimal.Decimal, error)
	AdjustCentral(ctx context.Context, delta decimal.Decimal, ref string) error
	ListEntries(ctx context.Context, accountID uuid.UUID) ([]model.LedgerEntry, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Create creates a new ledger account.
func (r *ledgerRepository) Create(ctx context.Context, account *model.LedgerAccount) error {
	return conn(ctx, r.db).Create(account).Error
}

// Update updates an existing ledger account.
func (r *ledgerRepository) Update(ctx context.Context, account *model.LedgerAccount) error {
	return conn(ctx, r.db).Save(account).Error
}

// FindByID finds a ledger account by ID.
func (r *ledgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	var account model.LedgerAccount
	if err := conn(ctx, r.db).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByIDForUpdate finds a ledger account by ID with its row locked.
func (r *ledgerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	var account model.LedgerAccount
	if err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// List lists every ledger account.
func (r *ledgerRepository) List(ctx context.Context) ([]model.LedgerAccount, error) {
	var accounts []model.LedgerAccount
	if err := conn(ctx, r.db).Order("kind, created_at").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Lookup finds the account matching identity, or gorm.ErrRecordNotFound.
func (r *ledgerRepository) Lookup(ctx context.Context, identity model.AccountIdentity) (*model.LedgerAccount, error) {
	return r.lookup(conn(ctx, r.db), identity)
}

// LookupForUpdate finds the account matching identity and locks its row.
func (r *ledgerRepository) LookupForUpdate(ctx context.Context, identity model.AccountIdentity) (*model.LedgerAccount, error) {
	return r.lookup(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), identity)
}

func (r *ledgerRepository) lookup(db *gorm.DB, identity model.AccountIdentity) (*model.LedgerAccount, error) {
	query := db.Where("kind = ?", identity.Kind)
	switch identity.Kind {
	case model.AccountKindCard:
		query = query.Where("card_number = ? AND cardholder_name = ? AND card_expiry = ?",
			identity.CardNumber, identity.CardholderName, identity.CardExpiry)
	case model.AccountKindPayPal:
		query = query.Where("email = ?", identity.Email)
	case model.AccountKindBank:
		query = query.Where("account_number = ? AND bank_code = ?", identity.AccountNumber, identity.BankCode)
	case model.AccountKindCentral:
	default:
		return nil, gorm.ErrRecordNotFound
	}

	var candidates []model.LedgerAccount
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	for i := range candidates {
		if secretMatches(&candidates[i], identity) {
			return &candidates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// secretMatches compares the hashed secret of the account kind, if it has one.
func secretMatches(account *model.LedgerAccount, identity model.AccountIdentity) bool {
	switch identity.Kind {
	case model.AccountKindCard:
		return bcrypt.CompareHashAndPassword([]byte(account.CVVHash), []byte(identity.CVV)) == nil
	case model.AccountKindPayPal:
		return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(identity.Password)) == nil
	default:
		return true
	}
}

// AdjustBalance resolves identity and applies delta to its balance.
func (r *ledgerRepository) AdjustBalance(ctx context.Context, identity model.AccountIdentity, delta decimal.Decimal, ref string) error {
	return withinTx(ctx, r.db, func(ctx context.Context) error {
		account, err := r.Lookup(ctx, identity)
		if err != nil {
			return err
		}
		return r.adjust(ctx, account, delta, ref)
	})
}

// FindCentral returns the single central clearing account.
func (r *ledgerRepository) FindCentral(ctx context.Context) (*model.LedgerAccount, error) {
	return r.Lookup(ctx, model.CentralIdentity())
}

// FindCentralForUpdate returns the central account with its row locked.
func (r *ledgerRepository) FindCentralForUpdate(ctx context.Context) (*model.LedgerAccount, error) {
	return r.LookupForUpdate(ctx, model.CentralIdentity())
}

// CentralBalance reads the central account balance.
func (r *ledgerRepository) CentralBalance(ctx context.Context) (decimal.Decimal, error) {
	central, err := r.FindCentral(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return central.Balance, nil
}

// AdjustCentral applies delta to the central account balance.
func (r *ledgerRepository) AdjustCentral(ctx context.Context, delta decimal.Decimal, ref string) error {
	return r.AdjustBalance(ctx, model.CentralIdentity(), delta, ref)
}

// ListEntries lists the journal of one account, oldest first.
func (r *ledgerRepository) ListEntries(ctx context.Context, accountID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	if err := conn(ctx, r.db).Where("account_id = ?", accountID).Order("created_at").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// adjust updates one row in place and records the matching journal entry.
func (r *ledgerRepository) adjust(ctx context.Context, account *model.LedgerAccount, delta decimal.Decimal, ref string) error {
	db := conn(ctx, r.db)

	res := db.Model(&model.LedgerAccount{}).
		Where("id = ?", account.ID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}

	var updated model.LedgerAccount
	if err := db.Where("id = ?", account.ID).First(&updated).Error; err != nil {
		return err
	}

	direction := model.EntryCredit
	if delta.IsNegative() {
		direction = model.EntryDebit
	}
	entry := &model.LedgerEntry{
		PaymentID:    ref,
		AccountID:    account.ID,
		Kind:         account.Kind,
		Direction:    direction,
		Amount:       delta.Abs(),
		BalanceAfter: updated.Balance,
	}
	return db.Create(entry).Error
}
