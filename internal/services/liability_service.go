package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// liabilityService handles liability tracking for an organization.
type liabilityService struct {
	db *gorm.DB
}

// NewLiabilityService creates a new LiabilityServicer.
func NewLiabilityService(db *gorm.DB) LiabilityServicer {
	return &liabilityService{db: db}
}

// CreateLiability records a new liability.
func (s *liabilityService) CreateLiability(orgID, name string, liabilityType models.LiabilityType, currentAmount int64, interestRate float64, dueDate *time.Time, description string) (*models.Liability, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "liability name is required")
	}
	if currentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "liability amount cannot be negative")
	}

	liability := &models.Liability{
		OrganizationID: orgID,
		Name:           name,
		Type:           liabilityType,
		CurrentAmount:  currentAmount,
		InterestRate:   interestRate,
		DueDate:        dueDate,
		Description:    description,
	}
	if err := s.db.Create(liability).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return liability, nil
}

// GetLiabilityByID retrieves a liability scoped to the organization.
func (s *liabilityService) GetLiabilityByID(orgID, liabilityID string) (*models.Liability, error) {
	var liability models.Liability
	err := s.db.Where("id = ? AND organization_id = ?", liabilityID, orgID).First(&liability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLiabilityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &liability, nil
}

// ListLiabilities returns a paginated list of the organization's liabilities.
func (s *liabilityService) ListLiabilities(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Liability], error) {
	page.Defaults()

	base := s.db.Model(&models.Liability{}).Where("organization_id = ?", orgID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var liabilities []models.Liability
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&liabilities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(liabilities, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateLiabilityAmount sets a liability's remaining balance.
func (s *liabilityService) UpdateLiabilityAmount(orgID, liabilityID string, currentAmount int64) (*models.Liability, error) {
	if currentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "liability amount cannot be negative")
	}

	liability, err := s.GetLiabilityByID(orgID, liabilityID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(liability).Update("current_amount", currentAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return liability, nil
}

// DeleteLiability removes a liability.
func (s *liabilityService) DeleteLiability(orgID, liabilityID string) error {
	liability, err := s.GetLiabilityByID(orgID, liabilityID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(liability).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SumCurrentAmounts returns the total outstanding balance of all
// liabilities in the organization.
func (s *liabilityService) SumCurrentAmounts(orgID string) (int64, error) {
	var total int64
	err := s.db.Model(&models.Liability{}).
		Select("COALESCE(SUM(current_amount), 0)").
		Where("organization_id = ?", orgID).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
