package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWalletFlow_CardBenefitsAndDashboard(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "wallet@test.com", "password123")

	// Step 1: Create a card with a benefit and an annual fee
	rec := app.request("POST", "/api/v1/cards",
		`{"name":"Platinum Card","issuer":"American Express","network":"Amex","annual_fee":695,
		  "points":50000,"points_name":"Membership Rewards",
		  "benefits":[{"title":"Dining Credit","value":200,"frequency":"Monthly","is_credit":true}]}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	card := result["card"].(map[string]interface{})
	cardID := card["id"].(string)
	benefits := card["benefits"].([]interface{})
	if len(benefits) != 1 {
		t.Fatalf("expected 1 benefit, got %d", len(benefits))
	}
	benefitID := benefits[0].(map[string]interface{})["id"].(string)

	// Step 2: Record partial usage
	rec = app.request("PUT", "/api/v1/benefits/"+benefitID+"/usage",
		`{"used_amount":80}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	benefit := parseJSON(t, rec)["benefit"].(map[string]interface{})
	if benefit["used_amount"].(float64) != 80 {
		t.Errorf("expected used_amount 80, got %v", benefit["used_amount"])
	}

	// Step 3: Usage above the value clamps to the value
	rec = app.request("PUT", "/api/v1/benefits/"+benefitID+"/usage",
		`{"used_amount":500}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	benefit = parseJSON(t, rec)["benefit"].(map[string]interface{})
	if benefit["used_amount"].(float64) != 200 {
		t.Errorf("expected used_amount clamped to 200, got %v", benefit["used_amount"])
	}

	// Step 4: Toggle flips a fully used benefit back to zero
	rec = app.request("POST", "/api/v1/benefits/"+benefitID+"/toggle", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	benefit = parseJSON(t, rec)["benefit"].(map[string]interface{})
	if benefit["used_amount"].(float64) != 0 {
		t.Errorf("expected toggle to reset usage, got %v", benefit["used_amount"])
	}

	// Step 5: Add a second benefit through the card endpoint
	rec = app.request("POST", "/api/v1/cards/"+cardID+"/benefits",
		`{"title":"Airline Fee Credit","value":200,"frequency":"Annual","is_credit":true}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 6: Redeem the first benefit again, then check the summary
	rec = app.request("POST", "/api/v1/benefits/"+benefitID+"/toggle", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/dashboard/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_value"].(float64) != 400 {
		t.Errorf("expected total_value 400, got %v", summary["total_value"])
	}
	if summary["total_used"].(float64) != 200 {
		t.Errorf("expected total_used 200, got %v", summary["total_used"])
	}
	if summary["capture_rate"].(float64) != 50 {
		t.Errorf("expected capture_rate 50, got %v", summary["capture_rate"])
	}
	if summary["total_points"].(float64) != 50000 {
		t.Errorf("expected total_points 50000, got %v", summary["total_points"])
	}

	// Step 7: Points dashboard groups by program
	rec = app.request("GET", "/api/v1/dashboard/points", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	points := parseJSON(t, rec)
	if points["total"].(float64) != 50000 {
		t.Errorf("expected total points 50000, got %v", points["total"])
	}
	programs := points["programs"].([]interface{})
	if len(programs) != 1 {
		t.Fatalf("expected 1 program, got %d", len(programs))
	}
	if programs[0].(map[string]interface{})["program"] != "Membership Rewards" {
		t.Errorf("unexpected program: %v", programs[0])
	}
}

func TestWalletFlow_UsersAreIsolated(t *testing.T) {
	app := setupApp(t)
	tokenA, _, _ := app.registerUser(t, "alice@test.com", "password123")
	tokenB, _, _ := app.registerUser(t, "bob@test.com", "password123")

	rec := app.request("POST", "/api/v1/cards",
		`{"name":"Sapphire Reserve","issuer":"Chase"}`, tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cardID := parseJSON(t, rec)["card"].(map[string]interface{})["id"].(string)

	// Bob cannot read, update, or delete Alice's card
	rec = app.request("GET", "/api/v1/cards/"+cardID, "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cross-user read, got %d", rec.Code)
	}
	rec = app.request("PUT", "/api/v1/cards/"+cardID, `{"name":"Stolen"}`, tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cross-user update, got %d", rec.Code)
	}
	rec = app.request("DELETE", "/api/v1/cards/"+cardID, "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cross-user delete, got %d", rec.Code)
	}

	// Alice still sees her card
	rec = app.request("GET", "/api/v1/cards/"+cardID, "", tokenA)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for owner read, got %d", rec.Code)
	}
}

func TestWalletFlow_SubscriptionLinking(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "subs@test.com", "password123")

	rec := app.request("POST", "/api/v1/cards",
		`{"name":"Gold Card","issuer":"American Express"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cardID := parseJSON(t, rec)["card"].(map[string]interface{})["id"].(string)

	// Linked to an existing card
	rec = app.request("POST", "/api/v1/subscriptions",
		fmt.Sprintf(`{"name":"Netflix","cost":15.49,"renewal_day":12,"linked_card_id":%q}`, cardID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	subID := parseJSON(t, rec)["subscription"].(map[string]interface{})["id"].(string)

	// Linking to a card that does not exist is rejected
	rec = app.request("POST", "/api/v1/subscriptions",
		`{"name":"Spotify","cost":11.99,"renewal_day":3,"linked_card_id":"00000000-0000-7000-8000-00000000dead"}`, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	// Unlink with an explicit empty string
	rec = app.request("PUT", "/api/v1/subscriptions/"+subID,
		`{"linked_card_id":""}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	sub := parseJSON(t, rec)["subscription"].(map[string]interface{})
	if got, _ := sub["linked_card_id"].(string); got != "" {
		t.Errorf("expected unlinked subscription, got %v", sub["linked_card_id"])
	}
}

func TestWalletFlow_AIItemReorder(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "ai@test.com", "password123")

	for _, name := range []string{"ChatGPT", "Claude", "Midjourney"} {
		rec := app.request("POST", "/api/v1/ai-items",
			fmt.Sprintf(`{"service_name":%q,"quota_name":"Requests","quota_amount":500,"renewal_day":1}`, name), token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 creating %s, got %d: %s", name, rec.Code, rec.Body.String())
		}
	}

	rec := app.request("GET", "/api/v1/ai-items", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	items := parseJSON(t, rec)["items"].([]interface{})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	secondID := items[1].(map[string]interface{})["id"].(string)

	// Move the middle item up
	rec = app.request("POST", "/api/v1/ai-items/"+secondID+"/move",
		`{"direction":"up"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	moved := parseJSON(t, rec)["items"].([]interface{})
	if moved[0].(map[string]interface{})["id"].(string) != secondID {
		t.Errorf("expected moved item first, got %v", moved[0])
	}

	// Moving the top item up again is a no-op
	rec = app.request("POST", "/api/v1/ai-items/"+secondID+"/move",
		`{"direction":"up"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	still := parseJSON(t, rec)["items"].([]interface{})
	if still[0].(map[string]interface{})["id"].(string) != secondID {
		t.Errorf("expected item to stay first, got %v", still[0])
	}
}
