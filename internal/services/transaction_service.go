package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction bookkeeping for an organization.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a transaction. Amounts are signed: income must
// be positive and expense negative, so aggregate sums stay meaningful.
func (s *transactionService) CreateTransaction(
	orgID, createdByID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount int64,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}

	switch transactionType {
	case models.TransactionTypeIncome:
		if amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income amount must be positive")
		}
	case models.TransactionTypeExpense:
		if amount > 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense amount must be negative")
		}
	case models.TransactionTypeTransfer:
		// Transfers carry either sign.
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}

	if date.IsZero() {
		date = time.Now()
	}

	if categoryID != nil {
		var category models.Category
		err := s.db.Where("id = ? AND organization_id = ? AND is_active = ?", *categoryID, orgID, true).
			First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Type != models.CategoryType(transactionType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type does not match transaction type")
		}
	}

	txn := &models.Transaction{
		OrganizationID: orgID,
		CategoryID:     categoryID,
		Type:           transactionType,
		Amount:         amount,
		Description:    description,
		Date:           date,
		CreatedByID:    createdByID,
	}
	if err := s.db.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, nil
}

// GetTransactionByID retrieves a transaction scoped to the organization.
func (s *transactionService) GetTransactionByID(orgID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.Preload("Category").
		Where("id = ? AND organization_id = ?", transactionID, orgID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// ListTransactions returns a filtered, paginated list.
func (s *transactionService) ListTransactions(orgID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("organization_id = ?", orgID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinAmount != nil {
		base = base.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		base = base.Where("amount <= ?", *filter.MaxAmount)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	if err := base.Preload("Category").Order("date DESC").
		Scopes(pagination.Paginate(page)).Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(txns, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteTransaction removes a transaction.
func (s *transactionService) DeleteTransaction(orgID, transactionID string) error {
	txn, err := s.GetTransactionByID(orgID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(txn).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// NetTotal returns the sum of all signed transaction amounts for the
// organization.
func (s *transactionService) NetTotal(orgID string) (int64, error) {
	var total int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("organization_id = ?", orgID).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// ExpenseTotalBetween returns the sum of expense transaction amounts in the
// given window. Expense amounts are stored negative, so the result is <= 0.
func (s *transactionService) ExpenseTotalBetween(orgID string, from, to time.Time) (int64, error) {
	var total int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("organization_id = ? AND type = ? AND date BETWEEN ? AND ?",
			orgID, models.TransactionTypeExpense, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
