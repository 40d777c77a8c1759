package integration

import (
	"net/http"
	"testing"
)

func TestBackupFlow_ExportImportRoundTrip(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "backup@test.com", "password123")

	// Build a small wallet
	rec := app.request("POST", "/api/v1/cards",
		`{"name":"Sapphire Reserve","issuer":"Chase","annual_fee":550,
		  "benefits":[{"title":"Travel Credit","value":300,"frequency":"Annual"}]}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/subscriptions",
		`{"name":"Netflix","cost":15.49,"renewal_day":12}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Export it
	rec = app.request("GET", "/api/v1/settings/export", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	exported := rec.Body.String()

	// Mutate the wallet so the import has something to undo
	rec = app.request("POST", "/api/v1/cards",
		`{"name":"Freedom Unlimited","issuer":"Chase"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Import the backup; the wallet returns to the exported state
	rec = app.request("POST", "/api/v1/settings/import", exported, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/cards", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 1 {
		t.Fatalf("expected 1 card after import, got %v", result["total_items"])
	}
	card := result["data"].([]interface{})[0].(map[string]interface{})
	if card["name"] != "Sapphire Reserve" {
		t.Errorf("expected Sapphire Reserve restored, got %v", card["name"])
	}
	benefits := card["benefits"].([]interface{})
	if len(benefits) != 1 {
		t.Fatalf("expected 1 benefit restored, got %d", len(benefits))
	}

	rec = app.request("GET", "/api/v1/subscriptions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	subs := parseJSON(t, rec)
	if subs["total_items"].(float64) != 1 {
		t.Errorf("expected 1 subscription after import, got %v", subs["total_items"])
	}
}

func TestBackupFlow_MalformedImportKeySkipped(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "badimport@test.com", "password123")

	rec := app.request("POST", "/api/v1/cards",
		`{"name":"Gold Card","issuer":"American Express"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A non-list cards value is skipped, not rejected. Only a file that
	// fails to parse as JSON at all comes back as 400.
	rec = app.request("POST", "/api/v1/settings/import", `{"cards":"not-a-list"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/cards", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := parseJSON(t, rec)["total_items"].(float64); got != 1 {
		t.Errorf("expected cards untouched after skipped key, got %v cards", got)
	}

	rec = app.request("POST", "/api/v1/settings/import", `{"cards": [{`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable file, got %d: %s", rec.Code, rec.Body.String())
	}
}
