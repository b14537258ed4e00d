package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid_root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat, err := svc.CreateCategory(org.ID, CreateCategoryInput{
			Name:        "Groceries",
			Type:        models.CategoryTypeExpense,
			Description: "Food shopping",
			Icon:        "cart",
			Color:       "#FF0000",
		})
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected non-empty category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", cat.Name)
		}
		if cat.Type != models.CategoryTypeExpense {
			t.Errorf("expected type expense, got %s", cat.Type)
		}
		if cat.Level != 0 {
			t.Errorf("expected root level 0, got %d", cat.Level)
		}
		if !cat.IsActive {
			t.Error("new categories should be active")
		}
	})

	t.Run("child_level_follows_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		food, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		groceries, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Groceries", Type: models.CategoryTypeExpense, ParentID: &food.ID})
		testutil.AssertNoError(t, err)
		if groceries.Level != 1 {
			t.Errorf("expected level 1, got %d", groceries.Level)
		}
		if groceries.ParentID == nil || *groceries.ParentID != food.ID {
			t.Errorf("expected parent ID %s, got %v", food.ID, groceries.ParentID)
		}
		if groceries.Parent == nil || groceries.Parent.ID != food.ID {
			t.Error("expected parent to be resolved on the returned category")
		}

		organic, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Organic", Type: models.CategoryTypeExpense, ParentID: &groceries.ID})
		testutil.AssertNoError(t, err)
		if organic.Level != 2 {
			t.Errorf("expected level 2, got %d", organic.Level)
		}
	})

	t.Run("depth_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		root, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "A", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		mid, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "B", Type: models.CategoryTypeExpense, ParentID: &root.ID})
		testutil.AssertNoError(t, err)
		leaf, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "C", Type: models.CategoryTypeExpense, ParentID: &mid.ID})
		testutil.AssertNoError(t, err)

		// A fourth level would put the child at level 3.
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "D", Type: models.CategoryTypeExpense, ParentID: &leaf.ID})
		testutil.AssertAppError(t, err, "CATEGORY_DEPTH_EXCEEDED")
	})

	t.Run("type_mismatch_with_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		food, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Refunds", Type: models.CategoryTypeIncome, ParentID: &food.ID})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("parent_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		nonexistent := "00000000-0000-0000-0000-000000000000"
		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Orphan", Type: models.CategoryTypeExpense, ParentID: &nonexistent})
		testutil.AssertAppError(t, err, "PARENT_CATEGORY_NOT_FOUND")
	})

	t.Run("inactive_parent_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		parent := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		if err := db.Model(parent).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate parent: %v", err)
		}

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Child", Type: models.CategoryTypeExpense, ParentID: &parent.ID})
		testutil.AssertAppError(t, err, "PARENT_CATEGORY_NOT_FOUND")
	})

	t.Run("parent_in_other_org_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)
		otherOrg := testutil.CreateTestOrganization(t, db, user.ID)

		foreign := testutil.CreateTestCategory(t, db, otherOrg.ID, models.CategoryTypeExpense)
		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Child", Type: models.CategoryTypeExpense, ParentID: &foreign.ID})
		testutil.AssertAppError(t, err, "PARENT_CATEGORY_NOT_FOUND")
	})

	t.Run("duplicate_name_same_parent_and_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY_NAME")

		// Same name with a different type is a different namespace.
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeIncome})
		testutil.AssertNoError(t, err)
	})

	t.Run("same_name_under_different_parents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		a, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Home", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		b, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Work", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Supplies", Type: models.CategoryTypeExpense, ParentID: &a.ID})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Supplies", Type: models.CategoryTypeExpense, ParentID: &b.ID})
		testutil.AssertNoError(t, err)
	})

	t.Run("name_matching_is_case_sensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "", Type: models.CategoryTypeExpense})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Weird", Type: models.CategoryType("savings")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetCategoryTree(t *testing.T) {
	t.Run("builds_nested_structure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		food, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		groceries, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Groceries", Type: models.CategoryTypeExpense, ParentID: &food.ID})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Dining Out", Type: models.CategoryTypeExpense, ParentID: &food.ID})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Organic", Type: models.CategoryTypeExpense, ParentID: &groceries.ID})
		testutil.AssertNoError(t, err)

		roots, err := svc.GetCategoryTree(org.ID, nil, false)
		testutil.AssertNoError(t, err)

		if len(roots) != 1 {
			t.Fatalf("expected 1 root, got %d", len(roots))
		}
		if roots[0].Name != "Food" {
			t.Errorf("expected root Food, got %s", roots[0].Name)
		}
		if len(roots[0].Nodes) != 2 {
			t.Fatalf("expected 2 children under Food, got %d", len(roots[0].Nodes))
		}

		var groceriesNode *models.CategoryNode
		for _, n := range roots[0].Nodes {
			if n.Name == "Groceries" {
				groceriesNode = n
			}
		}
		if groceriesNode == nil {
			t.Fatal("expected Groceries under Food")
		}
		if len(groceriesNode.Nodes) != 1 || groceriesNode.Nodes[0].Name != "Organic" {
			t.Error("expected Organic under Groceries")
		}
	})

	t.Run("siblings_sorted_by_display_order_then_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Zebra", Type: models.CategoryTypeExpense, DisplayOrder: 0})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Apple", Type: models.CategoryTypeExpense, DisplayOrder: 0})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "First", Type: models.CategoryTypeExpense, DisplayOrder: -1})
		testutil.AssertNoError(t, err)

		roots, err := svc.GetCategoryTree(org.ID, nil, false)
		testutil.AssertNoError(t, err)

		if len(roots) != 3 {
			t.Fatalf("expected 3 roots, got %d", len(roots))
		}
		got := []string{roots[0].Name, roots[1].Name, roots[2].Name}
		want := []string{"First", "Apple", "Zebra"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("usage_counts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		testutil.CreateTestTransaction(t, db, org.ID, &cat.ID, models.TransactionTypeExpense, -500)
		testutil.CreateTestTransaction(t, db, org.ID, &cat.ID, models.TransactionTypeExpense, -1500)

		roots, err := svc.GetCategoryTree(org.ID, nil, false)
		testutil.AssertNoError(t, err)
		if len(roots) != 1 {
			t.Fatalf("expected 1 root, got %d", len(roots))
		}
		if roots[0].UsageCount != 2 {
			t.Errorf("expected usage count 2, got %d", roots[0].UsageCount)
		}
	})

	t.Run("filters_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeIncome)

		expenseType := models.CategoryTypeExpense
		roots, err := svc.GetCategoryTree(org.ID, &expenseType, false)
		testutil.AssertNoError(t, err)
		if len(roots) != 1 {
			t.Fatalf("expected 1 expense root, got %d", len(roots))
		}
		if roots[0].Type != models.CategoryTypeExpense {
			t.Errorf("expected expense category, got %s", roots[0].Type)
		}
	})

	t.Run("child_of_filtered_parent_surfaces_as_root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		parent := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		child := testutil.CreateTestChildCategory(t, db, parent)
		if err := db.Model(parent).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate parent: %v", err)
		}

		roots, err := svc.GetCategoryTree(org.ID, nil, false)
		testutil.AssertNoError(t, err)
		if len(roots) != 1 {
			t.Fatalf("expected orphaned child as root, got %d roots", len(roots))
		}
		if roots[0].ID != child.ID {
			t.Errorf("expected child %s as root, got %s", child.ID, roots[0].ID)
		}
	})

	t.Run("include_inactive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		inactive := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate category: %v", err)
		}

		roots, err := svc.GetCategoryTree(org.ID, nil, false)
		testutil.AssertNoError(t, err)
		if len(roots) != 1 {
			t.Errorf("expected 1 active root, got %d", len(roots))
		}

		roots, err = svc.GetCategoryTree(org.ID, nil, true)
		testutil.AssertNoError(t, err)
		if len(roots) != 2 {
			t.Errorf("expected 2 roots with inactive included, got %d", len(roots))
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename_round_trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		newName := "Food & Drink"
		updated, err := svc.UpdateCategory(org.ID, cat.ID, UpdateCategoryInput{Name: &newName})
		testutil.AssertNoError(t, err)
		if updated.Name != newName {
			t.Errorf("expected name %q, got %q", newName, updated.Name)
		}

		fetched, err := svc.GetCategoryByID(org.ID, cat.ID)
		testutil.AssertNoError(t, err)
		if fetched.Name != newName {
			t.Errorf("expected persisted name %q, got %q", newName, fetched.Name)
		}
	})

	t.Run("rename_to_duplicate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		other, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Travel", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		dup := "Food"
		_, err = svc.UpdateCategory(org.ID, other.ID, UpdateCategoryInput{Name: &dup})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY_NAME")
	})

	t.Run("self_parent_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateCategory(org.ID, cat.ID, UpdateCategoryInput{ParentID: &cat.ID})
		testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")
	})

	t.Run("cycle_rejected_before_any_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		a, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "A", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		b, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "B", Type: models.CategoryTypeExpense, ParentID: &a.ID})
		testutil.AssertNoError(t, err)
		c, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "C", Type: models.CategoryTypeExpense, ParentID: &b.ID})
		testutil.AssertNoError(t, err)

		// Moving A under its grandchild C would close a loop.
		_, err = svc.UpdateCategory(org.ID, a.ID, UpdateCategoryInput{ParentID: &c.ID})
		testutil.AssertAppError(t, err, "CIRCULAR_CATEGORY_REFERENCE")

		// Nothing was written: A is still a root.
		fetched, err := svc.GetCategoryByID(org.ID, a.ID)
		testutil.AssertNoError(t, err)
		if fetched.ParentID != nil {
			t.Errorf("expected parent unchanged (nil), got %v", *fetched.ParentID)
		}
		if fetched.Level != 0 {
			t.Errorf("expected level unchanged (0), got %d", fetched.Level)
		}
	})

	t.Run("reparent_updates_level_and_descendants", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		food, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		snacks, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Snacks", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		chips, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Chips", Type: models.CategoryTypeExpense, ParentID: &snacks.ID})
		testutil.AssertNoError(t, err)

		moved, err := svc.UpdateCategory(org.ID, snacks.ID, UpdateCategoryInput{ParentID: &food.ID})
		testutil.AssertNoError(t, err)
		if moved.Level != 1 {
			t.Errorf("expected moved level 1, got %d", moved.Level)
		}

		// The child followed and was re-leveled.
		fetched, err := svc.GetCategoryByID(org.ID, chips.ID)
		testutil.AssertNoError(t, err)
		if fetched.Level != 2 {
			t.Errorf("expected descendant level 2, got %d", fetched.Level)
		}
	})

	t.Run("reparent_rejected_when_subtree_would_exceed_depth", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		root, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Root", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		mid, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Mid", Type: models.CategoryTypeExpense, ParentID: &root.ID})
		testutil.AssertNoError(t, err)

		// A two-level subtree cannot hang off a level-1 parent.
		sub, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Sub", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(org.ID, CreateCategoryInput{Name: "SubChild", Type: models.CategoryTypeExpense, ParentID: &sub.ID})
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateCategory(org.ID, sub.ID, UpdateCategoryInput{ParentID: &mid.ID})
		testutil.AssertAppError(t, err, "CATEGORY_DEPTH_EXCEEDED")
	})

	t.Run("move_to_root", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		food, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Food", Type: models.CategoryTypeExpense})
		testutil.AssertNoError(t, err)
		groceries, err := svc.CreateCategory(org.ID, CreateCategoryInput{Name: "Groceries", Type: models.CategoryTypeExpense, ParentID: &food.ID})
		testutil.AssertNoError(t, err)

		moved, err := svc.UpdateCategory(org.ID, groceries.ID, UpdateCategoryInput{MoveToRoot: true})
		testutil.AssertNoError(t, err)
		if moved.ParentID != nil {
			t.Errorf("expected nil parent, got %v", *moved.ParentID)
		}
		if moved.Level != 0 {
			t.Errorf("expected level 0, got %d", moved.Level)
		}
	})

	t.Run("type_change_blocked_by_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		parent := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		testutil.CreateTestChildCategory(t, db, parent)

		incomeType := models.CategoryTypeIncome
		_, err := svc.UpdateCategory(org.ID, parent.ID, UpdateCategoryInput{Type: &incomeType})
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("type_change_blocked_by_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		testutil.CreateTestTransaction(t, db, org.ID, &cat.ID, models.TransactionTypeExpense, -100)

		incomeType := models.CategoryTypeIncome
		_, err := svc.UpdateCategory(org.ID, cat.ID, UpdateCategoryInput{Type: &incomeType})
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})

	t.Run("type_change_allowed_when_unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)

		incomeType := models.CategoryTypeIncome
		updated, err := svc.UpdateCategory(org.ID, cat.ID, UpdateCategoryInput{Type: &incomeType})
		testutil.AssertNoError(t, err)
		if updated.Type != models.CategoryTypeIncome {
			t.Errorf("expected type income, got %s", updated.Type)
		}
	})

	t.Run("reparent_type_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		income := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeIncome)
		expense := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)

		_, err := svc.UpdateCategory(org.ID, expense.ID, UpdateCategoryInput{ParentID: &income.ID})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		name := "X"
		_, err := svc.UpdateCategory(org.ID, "00000000-0000-0000-0000-000000000000", UpdateCategoryInput{Name: &name})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("with_children_always_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		parent := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		testutil.CreateTestChildCategory(t, db, parent)

		_, err := svc.DeleteCategory(org.ID, parent.ID, false)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")

		// Force does not override the children rule.
		_, err = svc.DeleteCategory(org.ID, parent.ID, true)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("in_use_soft_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, org.ID, &cat.ID, models.TransactionTypeExpense, -100)

		result, err := svc.DeleteCategory(org.ID, cat.ID, false)
		testutil.AssertNoError(t, err)
		if result.DeletedPermanently {
			t.Error("expected soft delete for a category in use")
		}

		// The row survives inactive and the transaction keeps its reference.
		fetched, err := svc.GetCategoryByID(org.ID, cat.ID)
		testutil.AssertNoError(t, err)
		if fetched.IsActive {
			t.Error("expected category to be inactive after soft delete")
		}
		var txn models.Transaction
		testutil.AssertNoError(t, db.First(&txn, "id = ?", tx.ID).Error)
		if txn.CategoryID == nil || *txn.CategoryID != cat.ID {
			t.Error("soft delete should not detach transactions")
		}
	})

	t.Run("force_delete_detaches_and_removes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
		tx := testutil.CreateTestTransaction(t, db, org.ID, &cat.ID, models.TransactionTypeExpense, -100)

		result, err := svc.DeleteCategory(org.ID, cat.ID, true)
		testutil.AssertNoError(t, err)
		if !result.DeletedPermanently {
			t.Error("expected permanent delete with force")
		}

		_, err = svc.GetCategoryByID(org.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		var txn models.Transaction
		testutil.AssertNoError(t, db.First(&txn, "id = ?", tx.ID).Error)
		if txn.CategoryID != nil {
			t.Errorf("expected transaction detached, got category %v", *txn.CategoryID)
		}
	})

	t.Run("unused_hard_deletes_without_force", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		cat := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)

		result, err := svc.DeleteCategory(org.ID, cat.ID, false)
		testutil.AssertNoError(t, err)
		if !result.DeletedPermanently {
			t.Error("expected permanent delete for an unused category")
		}

		_, err = svc.GetCategoryByID(org.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		org := testutil.CreateTestOrganization(t, db, user.ID)

		_, err := svc.DeleteCategory(org.ID, "00000000-0000-0000-0000-000000000000", false)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestWouldCreateCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	org := testutil.CreateTestOrganization(t, db, user.ID)

	a := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)
	b := testutil.CreateTestChildCategory(t, db, a)
	c := testutil.CreateTestChildCategory(t, db, b)
	other := testutil.CreateTestCategory(t, db, org.ID, models.CategoryTypeExpense)

	cycle, err := svc.WouldCreateCycle(org.ID, a.ID, c.ID)
	testutil.AssertNoError(t, err)
	if !cycle {
		t.Error("moving a under its descendant c should be a cycle")
	}

	cycle, err = svc.WouldCreateCycle(org.ID, a.ID, a.ID)
	testutil.AssertNoError(t, err)
	if !cycle {
		t.Error("self-parenting should be a cycle")
	}

	cycle, err = svc.WouldCreateCycle(org.ID, c.ID, other.ID)
	testutil.AssertNoError(t, err)
	if cycle {
		t.Error("moving c under an unrelated root should not be a cycle")
	}
}

func TestSeedDefaultCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	org := testutil.CreateTestOrganization(t, db, user.ID)

	testutil.AssertNoError(t, svc.SeedDefaultCategories(org.ID))

	roots, err := svc.GetCategoryTree(org.ID, nil, false)
	testutil.AssertNoError(t, err)
	if len(roots) != len(defaultCategories) {
		t.Fatalf("expected %d seeded roots, got %d", len(defaultCategories), len(roots))
	}

	var food *models.CategoryNode
	for _, root := range roots {
		if !root.IsDefault {
			t.Errorf("seeded category %s should be marked default", root.Name)
		}
		if root.Name == "Food" {
			food = root
		}
	}
	if food == nil {
		t.Fatal("expected a seeded Food category")
	}
	if len(food.Nodes) != 2 {
		t.Fatalf("expected 2 children under Food, got %d", len(food.Nodes))
	}
	for _, child := range food.Nodes {
		if child.Level != 1 {
			t.Errorf("expected seeded child level 1, got %d", child.Level)
		}
	}
}
