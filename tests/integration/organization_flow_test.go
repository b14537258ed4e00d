package integration

import (
	"fmt"
	"net/http"
	"testing"

	"fintrack/internal/models"
)

func TestOrganizationFlow_InvitationLifecycle(t *testing.T) {
	app := setupApp(t)
	ownerToken, _, _ := app.registerUser(t, "owner@test.com", "password123")
	orgID := app.createOrganization(t, ownerToken, "Acme Finance")
	base := "/api/v1/organizations/" + orgID

	// Owner invites a member
	rec := app.request("POST", base+"/invitations", `{"email":"bob@test.com","role":"member"}`, ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 inviting, got %d: %s", rec.Code, rec.Body.String())
	}
	invitation := parseJSON(t, rec)["invitation"].(map[string]interface{})
	if invitation["status"] != "pending" {
		t.Errorf("expected pending invitation, got %v", invitation["status"])
	}
	if _, exposed := invitation["token"]; exposed {
		t.Error("invitation token must not be exposed in responses")
	}

	// The token is delivered out of band; fetch it from storage
	var stored models.Invitation
	if err := app.DB.Where("organization_id = ? AND email = ?", orgID, "bob@test.com").First(&stored).Error; err != nil {
		t.Fatalf("failed to load invitation: %v", err)
	}

	// Only the invited email can redeem the token
	strangerToken, _, _ := app.registerUser(t, "stranger@test.com", "password123")
	rec = app.request("POST", "/api/v1/invitations/accept",
		fmt.Sprintf(`{"token":%q}`, stored.Token), strangerToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong email, got %d: %s", rec.Code, rec.Body.String())
	}

	bobToken, _, bobID := app.registerUser(t, "bob@test.com", "password123")
	rec = app.request("POST", "/api/v1/invitations/accept",
		fmt.Sprintf(`{"token":%q}`, stored.Token), bobToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 accepting, got %d: %s", rec.Code, rec.Body.String())
	}
	membership := parseJSON(t, rec)["membership"].(map[string]interface{})
	if membership["role"] != "member" {
		t.Errorf("expected member role, got %v", membership["role"])
	}

	// The token is single use
	rec = app.request("POST", "/api/v1/invitations/accept",
		fmt.Sprintf(`{"token":%q}`, stored.Token), bobToken)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on reuse, got %d: %s", rec.Code, rec.Body.String())
	}

	// The new member can read the organization but not administer it
	rec = app.request("GET", base, "", bobToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for member read, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", base+"/invitations", `{"email":"carol@test.com","role":"member"}`, bobToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member inviting, got %d: %s", rec.Code, rec.Body.String())
	}

	// Members can be removed by the owner; access ends immediately
	rec = app.request("DELETE", base+"/members/"+bobID, "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 removing member, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", base, "", bobToken)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 after removal, got %d", rec.Code)
	}
}

func TestOrganizationFlow_UnknownTokenAndRevocation(t *testing.T) {
	app := setupApp(t)
	ownerToken, _, _ := app.registerUser(t, "revoker@test.com", "password123")
	orgID := app.createOrganization(t, ownerToken, "Revoke Inc")
	base := "/api/v1/organizations/" + orgID

	rec := app.request("POST", "/api/v1/invitations/accept", `{"token":"no-such-token"}`, ownerToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "INVITATION_NOT_FOUND" {
		t.Errorf("expected INVITATION_NOT_FOUND, got %v", errObj["code"])
	}

	rec = app.request("POST", base+"/invitations", `{"email":"late@test.com","role":"member"}`, ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	invitationID := parseJSON(t, rec)["invitation"].(map[string]interface{})["id"].(string)

	rec = app.request("DELETE", base+"/invitations/"+invitationID, "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 revoking, got %d: %s", rec.Code, rec.Body.String())
	}

	// A revoked invitation can no longer be redeemed
	var stored models.Invitation
	if err := app.DB.Where("id = ?", invitationID).First(&stored).Error; err != nil {
		t.Fatalf("failed to load invitation: %v", err)
	}
	if stored.Status != models.InvitationStatusRevoked {
		t.Errorf("expected revoked status, got %v", stored.Status)
	}
	lateToken, _, _ := app.registerUser(t, "late@test.com", "password123")
	rec = app.request("POST", "/api/v1/invitations/accept",
		fmt.Sprintf(`{"token":%q}`, stored.Token), lateToken)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for revoked invitation, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOrganizationFlow_TenantIsolation(t *testing.T) {
	app := setupApp(t)
	aliceToken, _, _ := app.registerUser(t, "alice@test.com", "password123")
	carlToken, _, _ := app.registerUser(t, "carl@test.com", "password123")
	aliceOrg := app.createOrganization(t, aliceToken, "Alice Ltd")
	carlOrg := app.createOrganization(t, carlToken, "Carl Ltd")

	// A member of one organization cannot touch another's resources
	rec := app.request("GET", "/api/v1/organizations/"+aliceOrg+"/categories", "", carlToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 cross-tenant, got %d: %s", rec.Code, rec.Body.String())
	}

	// Resource IDs do not resolve across organizations
	rec = app.request("POST", "/api/v1/organizations/"+aliceOrg+"/categories",
		`{"name":"Secret","type":"expense"}`, aliceToken)
	secretID := parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	rec = app.request("GET", "/api/v1/organizations/"+carlOrg+"/categories/"+secretID, "", carlToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign category ID, got %d: %s", rec.Code, rec.Body.String())
	}
}
