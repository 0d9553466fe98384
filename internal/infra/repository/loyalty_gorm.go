package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/institute-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/institute-scheduler/internal/models"
)

type LoyaltyGormRepository struct {
	db *gorm.DB
}

func NewLoyaltyGormRepository(db *gorm.DB) *LoyaltyGormRepository {
	return &LoyaltyGormRepository{db: db}
}

func (r *LoyaltyGormRepository) GetAccount(
	ctx context.Context,
	clientID uuid.UUID,
) (*models.LoyaltyAccount, error) {

	var acct models.LoyaltyAccount
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("DiscountsUsed", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("client_id = ?", clientID).
		First(&acct).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loyalty.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *LoyaltyGormRepository) UpdateAccount(
	ctx context.Context,
	clientID uuid.UUID,
	fn func(acct *models.LoyaltyAccount) error,
) (*models.LoyaltyAccount, error) {

	var out *models.LoyaltyAccount
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := mutateAccount(tx, clientID, fn)
		out = acct
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoyaltyGormRepository) AccrueOnce(
	ctx context.Context,
	appointmentID uuid.UUID,
	clientID uuid.UUID,
	fn func(acct *models.LoyaltyAccount) error,
) (bool, error) {

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND loyalty_accrued_at IS NULL", appointmentID).
			Update("loyalty_accrued_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if fn != nil {
			if _, err := mutateAccount(tx, clientID, fn); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// mutateAccount trava (ou cria) a conta, aplica fn e grava só as linhas
// de histórico/remise adicionadas por fn.
func mutateAccount(
	tx *gorm.DB,
	clientID uuid.UUID,
	fn func(acct *models.LoyaltyAccount) error,
) (*models.LoyaltyAccount, error) {

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LoyaltyAccount{ClientID: clientID, LastActivityAt: time.Now()}).Error; err != nil {
		return nil, err
	}

	var acct models.LoyaltyAccount
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("client_id = ?", clientID).
		First(&acct).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("account_id = ?", acct.ID).Order("created_at ASC").Find(&acct.History).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("account_id = ?", acct.ID).Order("created_at ASC").Find(&acct.DiscountsUsed).Error; err != nil {
		return nil, err
	}

	nHistory := len(acct.History)
	nUsed := len(acct.DiscountsUsed)

	if err := fn(&acct); err != nil {
		return nil, err
	}

	if err := tx.Omit(clause.Associations).Save(&acct).Error; err != nil {
		return nil, err
	}

	for i := nUsed; i < len(acct.DiscountsUsed); i++ {
		acct.DiscountsUsed[i].AccountID = acct.ID
		if err := tx.Create(&acct.DiscountsUsed[i]).Error; err != nil {
			return nil, err
		}
	}
	for i := nHistory; i < len(acct.History); i++ {
		acct.History[i].AccountID = acct.ID
		if err := tx.Create(&acct.History[i]).Error; err != nil {
			return nil, err
		}
	}

	return &acct, nil
}

var _ loyalty.Repository = (*LoyaltyGormRepository)(nil)
