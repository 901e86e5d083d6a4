package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func decodeList(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return list
}

func postRequest(t *testing.T, app *fiber.App, token, location, when string) string {
	t.Helper()
	resp, raw := doJSON(t, app, "POST", "/api/request/", map[string]string{
		"userId":   token,
		"location": location,
		"time":     when,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create request status %d: %s", resp.StatusCode, raw)
	}
	req := decodeMap(t, raw)["request"].(map[string]any)
	id, _ := req["requestID"].(string)
	if id == "" {
		t.Fatalf("missing requestID in %s", raw)
	}
	return id
}

func TestCreateRequestValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/request/", map[string]string{"userId": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", resp.StatusCode)
	}
}

func TestCreateRequestUnknownUserWritesNothing(t *testing.T) {
	app, store := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/request/", map[string]string{
		"userId": "unknown", "location": "Gate", "time": "5pm",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}

	requests, err := store.GetRequestsExcluding("")
	if err != nil {
		t.Fatalf("GetRequestsExcluding: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected no documents written, found %d", len(requests))
	}
}

func TestCreateRequestResponseExcludesTime(t *testing.T) {
	app, _ := newTestApp(t)

	token := login(t, app, "9999999999")

	resp, raw := doJSON(t, app, "POST", "/api/request/", map[string]string{
		"userId": token, "location": "Main Gate", "time": "5pm",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create request status %d: %s", resp.StatusCode, raw)
	}
	req := decodeMap(t, raw)["request"].(map[string]any)
	if _, ok := req["time"]; ok {
		t.Fatal("create response must not include the time field")
	}
	if req["userId"] != token || req["location"] != "Main Gate" {
		t.Fatalf("unexpected request payload: %v", req)
	}
}

func TestListOthersExcludesOwnRequests(t *testing.T) {
	app, _ := newTestApp(t)

	alice := login(t, app, "9999999991")
	bob := login(t, app, "9999999992")

	aliceReq := postRequest(t, app, alice, "Library", "4pm")
	postRequest(t, app, bob, "Hostel", "6pm")

	_, raw := doJSON(t, app, "GET", "/api/request/"+alice, nil)
	list := decodeList(t, raw)
	if len(list) != 1 {
		t.Fatalf("expected 1 foreign request, got %d: %s", len(list), raw)
	}
	if list[0]["userId"] != bob {
		t.Fatalf("expected bob's request only, got %v", list[0])
	}
	for _, item := range list {
		if item["requestID"] == aliceReq {
			t.Fatal("listing must not include caller's own request")
		}
	}
}

func TestListMineNewestFirst(t *testing.T) {
	app, _ := newTestApp(t)

	token := login(t, app, "9999999999")
	first := postRequest(t, app, token, "Library", "4pm")
	second := postRequest(t, app, token, "Hostel", "6pm")

	_, raw := doJSON(t, app, "GET", "/api/request/myrequest/"+token, nil)
	list := decodeList(t, raw)
	if len(list) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(list))
	}
	if list[0]["requestID"] != second || list[1]["requestID"] != first {
		t.Fatalf("expected newest-first order, got %v", list)
	}
	if _, ok := list[0]["userId"]; ok {
		t.Fatal("own listing must not repeat the userId field")
	}
}

func TestGetRequestByID(t *testing.T) {
	app, _ := newTestApp(t)

	token := login(t, app, "9999999999")
	id := postRequest(t, app, token, "Library", "4pm")

	resp, raw := doJSON(t, app, "GET", "/api/request/detail/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail status %d: %s", resp.StatusCode, raw)
	}
	req := decodeMap(t, raw)
	if req["requestID"] != id || req["userId"] != token {
		t.Fatalf("unexpected detail payload: %v", req)
	}

	resp, _ = doJSON(t, app, "GET", "/api/request/detail/unknown", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestSubmitOfferByRequestID(t *testing.T) {
	app, _ := newTestApp(t)

	token := login(t, app, "9999999999")
	id := postRequest(t, app, token, "Library", "4pm")

	resp, raw := doJSON(t, app, "PUT", "/api/request/offer/"+id, map[string]string{
		"driverName":  "Ravi",
		"driverPhone": "8888888888",
		"location":    "Library",
		"time":        "4pm",
		"rate":        "30",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("offer status %d: %s", resp.StatusCode, raw)
	}
	body := decodeMap(t, raw)
	if body["requestID"] != id {
		t.Fatalf("expected requestID echoed back, got %v", body)
	}

	// The offer lands on the request owner's accepted rides.
	_, raw = doJSON(t, app, "GET", "/api/user/accepted-rides/"+token, nil)
	rides := decodeMap(t, raw)["acceptedRides"].([]any)
	if len(rides) != 1 {
		t.Fatalf("expected 1 accepted ride, got %d", len(rides))
	}

	resp, _ = doJSON(t, app, "PUT", "/api/request/offer/unknown", map[string]string{"driverName": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown request, got %d", resp.StatusCode)
	}
}

func TestDeleteRequest(t *testing.T) {
	app, _ := newTestApp(t)

	token := login(t, app, "9999999999")
	id := postRequest(t, app, token, "Library", "4pm")

	resp, _ := doJSON(t, app, "DELETE", "/api/request/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}

	// A repeat delete is a real miss, not an unconditional success.
	resp, _ = doJSON(t, app, "DELETE", "/api/request/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a missing request, got %d", resp.StatusCode)
	}
}
