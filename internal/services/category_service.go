package services

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// compatibleTypes maps a parent category type to the child types allowed
// beneath it. The current table is "same type only", but the rule stays
// table-driven so the policy lives in one place.
var compatibleTypes = map[models.CategoryType][]models.CategoryType{
	models.CategoryTypeIncome:   {models.CategoryTypeIncome},
	models.CategoryTypeExpense:  {models.CategoryTypeExpense},
	models.CategoryTypeTransfer: {models.CategoryTypeTransfer},
}

func typesCompatible(parent, child models.CategoryType) bool {
	for _, t := range compatibleTypes[parent] {
		if t == child {
			return true
		}
	}
	return false
}

func validCategoryType(t models.CategoryType) bool {
	_, ok := compatibleTypes[t]
	return ok
}

// categoryService implements the category hierarchy engine.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory validates and persists a new category. The level is
// computed from the parent (0 for roots) and the tree never grows past
// MaxCategoryLevel.
func (s *categoryService) CreateCategory(orgID string, input CreateCategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !validCategoryType(input.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category type")
	}

	level := 0
	if input.ParentID != nil {
		parent, err := s.findActiveCategory(s.db, orgID, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrParentCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !typesCompatible(parent.Type, input.Type) {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
		level = parent.Level + 1
		if level > models.MaxCategoryLevel {
			return nil, apperrors.ErrCategoryDepthExceeded
		}
	}

	if err := s.checkDuplicateName(s.db, orgID, input.Name, input.Type, input.ParentID, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		OrganizationID: orgID,
		Name:           input.Name,
		Type:           input.Type,
		ParentID:       input.ParentID,
		Level:          level,
		Description:    input.Description,
		Icon:           input.Icon,
		Color:          input.Color,
		IsDefault:      input.IsDefault,
		IsActive:       true,
		DisplayOrder:   input.DisplayOrder,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Reload with the parent resolved so callers get the hierarchy context.
	return s.GetCategoryByID(orgID, category.ID)
}

// GetCategoryByID retrieves a category, including soft-deleted (inactive)
// ones, scoped to the organization.
func (s *categoryService) GetCategoryByID(orgID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.Preload("Parent").Preload("Children").
		Where("id = ? AND organization_id = ?", categoryID, orgID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// ListCategories returns a paginated flat list, optionally filtered by type.
func (s *categoryService) ListCategories(orgID string, categoryType *models.CategoryType, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("organization_id = ?", orgID)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}
	if !includeInactive {
		base = base.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("level ASC, display_order ASC, name ASC").
		Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryTree builds the category forest in one pass over the flat set.
// Each node carries its transaction usage count; categories whose parent is
// filtered out of the set surface as roots rather than vanishing.
func (s *categoryService) GetCategoryTree(orgID string, categoryType *models.CategoryType, includeInactive bool) ([]*models.CategoryNode, error) {
	query := s.db.Where("organization_id = ?", orgID)
	if categoryType != nil {
		query = query.Where("type = ?", *categoryType)
	}
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	usage, err := s.usageCounts(orgID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*models.CategoryNode, len(categories))
	for i := range categories {
		nodes[categories[i].ID] = &models.CategoryNode{
			Category:   categories[i],
			UsageCount: usage[categories[i].ID],
			Nodes:      []*models.CategoryNode{},
		}
	}

	var roots []*models.CategoryNode
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Nodes = append(parent.Nodes, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortSiblings(roots)
	for _, node := range nodes {
		sortSiblings(node.Nodes)
	}

	return roots, nil
}

// sortSiblings orders sibling nodes by display order, then name.
func sortSiblings(nodes []*models.CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].DisplayOrder != nodes[j].DisplayOrder {
			return nodes[i].DisplayOrder < nodes[j].DisplayOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// UpdateCategory applies per-field updates after revalidating every
// hierarchy invariant. Validation is fully front-loaded: nothing is written
// until all checks pass, and the check-then-write sequence runs inside one
// transaction so the cycle walk sees a consistent snapshot.
func (s *categoryService) UpdateCategory(orgID, categoryID string, input UpdateCategoryInput) (*models.Category, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ? AND organization_id = ?", categoryID, orgID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		newType := category.Type
		if input.Type != nil {
			if !validCategoryType(*input.Type) {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category type")
			}
			newType = *input.Type
		}

		typeChanging := newType != category.Type
		if typeChanging {
			childCount, err := s.countActiveChildren(tx, categoryID)
			if err != nil {
				return err
			}
			if childCount > 0 {
				return apperrors.WithMessage(apperrors.ErrCategoryHasChildren, "cannot change type of a category with active children")
			}
			usages, err := s.countTransactionUsages(tx, categoryID)
			if err != nil {
				return err
			}
			if usages > 0 {
				return apperrors.WithMessage(apperrors.ErrCategoryInUse, "cannot change type of a category referenced by transactions")
			}
		}

		newLevel := category.Level
		newParentID := category.ParentID
		if input.reparenting() {
			if input.MoveToRoot {
				newParentID = nil
				newLevel = 0
			} else {
				if *input.ParentID == categoryID {
					return apperrors.ErrSelfParentCategory
				}
				parent, err := s.findActiveCategory(tx, orgID, *input.ParentID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperrors.ErrParentCategoryNotFound
					}
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}

				parentByID, err := s.loadParentIndex(tx, orgID)
				if err != nil {
					return err
				}
				if walkDetectsCycle(parentByID, parent.ID, categoryID) {
					return apperrors.ErrCircularReference
				}
				if !typesCompatible(parent.Type, newType) {
					return apperrors.ErrCategoryTypeMismatch
				}

				newParentID = input.ParentID
				newLevel = parent.Level + 1
				if newLevel > models.MaxCategoryLevel {
					return apperrors.ErrCategoryDepthExceeded
				}
				// The moved subtree follows: its deepest descendant must fit too.
				depth, err := s.subtreeDepth(tx, orgID, categoryID)
				if err != nil {
					return err
				}
				if newLevel+depth > models.MaxCategoryLevel {
					return apperrors.ErrCategoryDepthExceeded
				}
			}
		}

		newName := category.Name
		if input.Name != nil {
			if *input.Name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
			}
			newName = *input.Name
		}
		if newName != category.Name || typeChanging || input.reparenting() {
			if err := s.checkDuplicateName(tx, orgID, newName, newType, newParentID, categoryID); err != nil {
				return err
			}
		}

		updates := make(map[string]interface{})
		if input.Name != nil {
			updates["name"] = newName
		}
		if typeChanging {
			updates["type"] = newType
		}
		if input.reparenting() {
			updates["parent_id"] = newParentID
			updates["level"] = newLevel
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Icon != nil {
			updates["icon"] = *input.Icon
		}
		if input.Color != nil {
			updates["color"] = *input.Color
		}
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}
		if input.DisplayOrder != nil {
			updates["display_order"] = *input.DisplayOrder
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&category).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if input.reparenting() && newLevel != category.Level {
			if err := s.relevelDescendants(tx, orgID, categoryID, newLevel); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCategoryByID(orgID, categoryID)
}

// DeleteCategory removes a category. Categories with children are never
// deletable. Categories referenced by transactions are soft-deleted unless
// forceDelete is set, in which case referencing transactions are detached
// first and the row is removed permanently.
func (s *categoryService) DeleteCategory(orgID, categoryID string, forceDelete bool) (*DeleteCategoryResult, error) {
	result := &DeleteCategoryResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ? AND organization_id = ?", categoryID, orgID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		childCount, err := s.countChildren(tx, categoryID)
		if err != nil {
			return err
		}
		if childCount > 0 {
			return apperrors.WithMessage(apperrors.ErrCategoryHasChildren, "cannot delete category with children")
		}

		usages, err := s.countTransactionUsages(tx, categoryID)
		if err != nil {
			return err
		}

		if usages > 0 && !forceDelete {
			if err := tx.Model(&category).Update("is_active", false).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result.DeletedPermanently = false
			return nil
		}

		if usages > 0 {
			if err := tx.Model(&models.Transaction{}).
				Where("category_id = ?", categoryID).
				Update("category_id", nil).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Unscoped().Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.DeletedPermanently = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WouldCreateCycle reports whether setting newParentID as categoryID's
// parent would introduce a cycle. The walk follows parent pointers with a
// visited set; it is general, not bounded to the configured max depth.
func (s *categoryService) WouldCreateCycle(orgID, categoryID, newParentID string) (bool, error) {
	if categoryID == newParentID {
		return true, nil
	}
	parentByID, err := s.loadParentIndex(s.db, orgID)
	if err != nil {
		return false, err
	}
	return walkDetectsCycle(parentByID, newParentID, categoryID), nil
}

// walkDetectsCycle walks upward from startID following parent pointers.
// It reports a cycle when excludeID (the node being moved) appears on the
// path or when a node repeats.
func walkDetectsCycle(parentByID map[string]*string, startID, excludeID string) bool {
	visited := make(map[string]bool)
	current := startID
	for current != "" {
		if current == excludeID || visited[current] {
			return true
		}
		visited[current] = true
		parent, ok := parentByID[current]
		if !ok || parent == nil {
			return false
		}
		current = *parent
	}
	return false
}

// defaultCategorySpec describes one seeded category with its children.
type defaultCategorySpec struct {
	name     string
	catType  models.CategoryType
	icon     string
	color    string
	children []defaultCategorySpec
}

var defaultCategories = []defaultCategorySpec{
	{name: "Salary", catType: models.CategoryTypeIncome, icon: "briefcase", color: "#10B981"},
	{name: "Other Income", catType: models.CategoryTypeIncome, icon: "plus-circle", color: "#34D399"},
	{name: "Housing", catType: models.CategoryTypeExpense, icon: "home", color: "#F59E0B"},
	{name: "Food", catType: models.CategoryTypeExpense, icon: "utensils", color: "#EF4444", children: []defaultCategorySpec{
		{name: "Groceries", catType: models.CategoryTypeExpense, icon: "cart", color: "#F87171"},
		{name: "Dining Out", catType: models.CategoryTypeExpense, icon: "coffee", color: "#FCA5A5"},
	}},
	{name: "Transportation", catType: models.CategoryTypeExpense, icon: "car", color: "#3B82F6"},
	{name: "Utilities", catType: models.CategoryTypeExpense, icon: "zap", color: "#8B5CF6"},
	{name: "Entertainment", catType: models.CategoryTypeExpense, icon: "film", color: "#EC4899"},
	{name: "Other Expenses", catType: models.CategoryTypeExpense, icon: "more-horizontal", color: "#6B7280"},
	{name: "Transfer", catType: models.CategoryTypeTransfer, icon: "repeat", color: "#6366F1"},
}

// SeedDefaultCategories creates the default category set for a new
// organization, level by level, inside a single transaction so a partially
// seeded tree is never observable.
func (s *categoryService) SeedDefaultCategories(orgID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for order, spec := range defaultCategories {
			if err := createSeedCategory(tx, orgID, spec, nil, 0, order); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}

func createSeedCategory(tx *gorm.DB, orgID string, spec defaultCategorySpec, parentID *string, level, order int) error {
	category := &models.Category{
		OrganizationID: orgID,
		Name:           spec.name,
		Type:           spec.catType,
		ParentID:       parentID,
		Level:          level,
		Icon:           spec.icon,
		Color:          spec.color,
		IsDefault:      true,
		IsActive:       true,
		DisplayOrder:   order,
	}
	if err := tx.Create(category).Error; err != nil {
		return err
	}
	for childOrder, child := range spec.children {
		if err := createSeedCategory(tx, orgID, child, &category.ID, level+1, childOrder); err != nil {
			return err
		}
	}
	return nil
}

// --- store helpers ---

func (s *categoryService) findActiveCategory(tx *gorm.DB, orgID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := tx.Where("id = ? AND organization_id = ? AND is_active = ?", categoryID, orgID, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// checkDuplicateName enforces name uniqueness among active categories
// sharing the same organization, parent and type. Matching is exact and
// case-sensitive. excludeID skips the category being updated.
func (s *categoryService) checkDuplicateName(tx *gorm.DB, orgID, name string, categoryType models.CategoryType, parentID *string, excludeID string) error {
	query := tx.Model(&models.Category{}).
		Where("organization_id = ? AND name = ? AND type = ? AND is_active = ?", orgID, name, categoryType, true)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategoryName
	}
	return nil
}

func (s *categoryService) countChildren(tx *gorm.DB, categoryID string) (int64, error) {
	var count int64
	err := tx.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *categoryService) countActiveChildren(tx *gorm.DB, categoryID string) (int64, error) {
	var count int64
	err := tx.Model(&models.Category{}).
		Where("parent_id = ? AND is_active = ?", categoryID, true).Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *categoryService) countTransactionUsages(tx *gorm.DB, categoryID string) (int64, error) {
	var count int64
	err := tx.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// usageCounts returns transaction counts grouped by category for one
// organization.
func (s *categoryService) usageCounts(orgID string) (map[string]int64, error) {
	type usageRow struct {
		CategoryID string
		Count      int64
	}
	var rows []usageRow
	err := s.db.Model(&models.Transaction{}).
		Select("category_id, COUNT(*) AS count").
		Where("organization_id = ? AND category_id IS NOT NULL", orgID).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

// loadParentIndex returns a categoryID -> parentID index for the
// organization, the snapshot the cycle walk runs against.
func (s *categoryService) loadParentIndex(tx *gorm.DB, orgID string) (map[string]*string, error) {
	var categories []models.Category
	if err := tx.Select("id, parent_id").Where("organization_id = ?", orgID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	index := make(map[string]*string, len(categories))
	for i := range categories {
		index[categories[i].ID] = categories[i].ParentID
	}
	return index, nil
}

// childIndex groups category IDs by parent ID for one organization.
func (s *categoryService) childIndex(tx *gorm.DB, orgID string) (map[string][]string, error) {
	var categories []models.Category
	if err := tx.Select("id, parent_id").Where("organization_id = ?", orgID).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	children := make(map[string][]string)
	for i := range categories {
		if categories[i].ParentID != nil {
			children[*categories[i].ParentID] = append(children[*categories[i].ParentID], categories[i].ID)
		}
	}
	return children, nil
}

// subtreeDepth returns the depth of the deepest descendant below
// categoryID, relative to it (0 for a leaf).
func (s *categoryService) subtreeDepth(tx *gorm.DB, orgID, categoryID string) (int, error) {
	children, err := s.childIndex(tx, orgID)
	if err != nil {
		return 0, err
	}

	var depth func(id string) int
	depth = func(id string) int {
		max := 0
		for _, child := range children[id] {
			if d := depth(child) + 1; d > max {
				max = d
			}
		}
		return max
	}
	return depth(categoryID), nil
}

// relevelDescendants rewrites the stored level of every descendant after a
// re-parent so invariant level(child) == level(parent)+1 holds again.
func (s *categoryService) relevelDescendants(tx *gorm.DB, orgID, categoryID string, newLevel int) error {
	children, err := s.childIndex(tx, orgID)
	if err != nil {
		return err
	}

	frontier := children[categoryID]
	level := newLevel + 1
	for len(frontier) > 0 {
		if err := tx.Model(&models.Category{}).
			Where("id IN ?", frontier).
			Update("level", level).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var next []string
		for _, id := range frontier {
			next = append(next, children[id]...)
		}
		frontier = next
		level++
	}
	return nil
}
