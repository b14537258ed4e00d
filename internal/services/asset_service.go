package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// assetService handles asset tracking for an organization.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// CreateAsset records a new asset.
func (s *assetService) CreateAsset(orgID, name string, assetType models.AssetType, currentValue int64, currency, description string) (*models.Asset, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name is required")
	}
	if currentValue < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset value cannot be negative")
	}
	if currency == "" {
		currency = "USD"
	}

	asset := &models.Asset{
		OrganizationID: orgID,
		Name:           name,
		Type:           assetType,
		CurrentValue:   currentValue,
		Currency:       currency,
		Description:    description,
	}
	if err := s.db.Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return asset, nil
}

// GetAssetByID retrieves an asset scoped to the organization.
func (s *assetService) GetAssetByID(orgID, assetID string) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.Where("id = ? AND organization_id = ?", assetID, orgID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// ListAssets returns a paginated list of the organization's assets.
func (s *assetService) ListAssets(orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	base := s.db.Model(&models.Asset{}).Where("organization_id = ?", orgID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(assets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateAssetValue sets an asset's current value.
func (s *assetService) UpdateAssetValue(orgID, assetID string, currentValue int64) (*models.Asset, error) {
	if currentValue < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset value cannot be negative")
	}

	asset, err := s.GetAssetByID(orgID, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(asset).Update("current_value", currentValue).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return asset, nil
}

// DeleteAsset removes an asset.
func (s *assetService) DeleteAsset(orgID, assetID string) error {
	asset, err := s.GetAssetByID(orgID, assetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SumCurrentValues returns the total current value of all assets in the
// organization.
func (s *assetService) SumCurrentValues(orgID string) (int64, error) {
	var total int64
	err := s.db.Model(&models.Asset{}).
		Select("COALESCE(SUM(current_value), 0)").
		Where("organization_id = ?", orgID).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
