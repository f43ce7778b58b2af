package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestPatientLifecycle(t *testing.T) {
	email := uniqueEmail("lifecycle")

	createResp := makeRequest("POST", "/api/v1/patients", map[string]string{
		"name":          "John Doe",
		"email":         email,
		"address":       "123 Main St",
		"date_of_birth": "1990-05-20",
	}, authToken)

	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createResp.StatusCode, createResp.Message)
	}

	patientID := createResp.GetString("id")
	if patientID == "" {
		t.Fatal("expected patient id in create response")
	}

	getResp := makeRequest("GET", "/api/v1/patients/"+patientID, nil, authToken)
	if !getResp.IsSuccess() {
		t.Fatalf("failed to fetch patient: %s", getResp.Message)
	}
	if getResp.GetString("email") != email {
		t.Errorf("expected email %s, got %s", email, getResp.GetString("email"))
	}

	updateResp := makeRequest("PUT", "/api/v1/patients/"+patientID, map[string]string{
		"name":          "John Q Doe",
		"email":         email,
		"address":       "456 Oak Ave",
		"date_of_birth": "1990-05-20",
	}, authToken)
	if !updateResp.IsSuccess() {
		t.Fatalf("failed to update patient: %s", updateResp.Message)
	}
	if updateResp.GetString("name") != "John Q Doe" {
		t.Errorf("expected updated name, got %s", updateResp.GetString("name"))
	}

	deleteResp := makeRequest("DELETE", "/api/v1/patients/"+patientID, nil, authToken)
	if deleteResp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", deleteResp.StatusCode)
	}

	getResp = makeRequest("GET", "/api/v1/patients/"+patientID, nil, authToken)
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", getResp.StatusCode)
	}
}

func TestCreatePatientDuplicateEmail(t *testing.T) {
	email := uniqueEmail("duplicate")
	body := map[string]string{
		"name":          "Jane Doe",
		"email":         email,
		"address":       "789 Pine Rd",
		"date_of_birth": "1985-01-15",
	}

	first := makeRequest("POST", "/api/v1/patients", body, authToken)
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.StatusCode, first.Message)
	}

	second := makeRequest("POST", "/api/v1/patients", body, authToken)
	if second.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", second.StatusCode)
	}

	makeRequest("DELETE", "/api/v1/patients/"+first.GetString("id"), nil, authToken)
}

func TestCreatePatientInvalidDate(t *testing.T) {
	resp := makeRequest("POST", "/api/v1/patients", map[string]string{
		"name":          "Bad Date",
		"email":         uniqueEmail("baddate"),
		"address":       "1 Elm St",
		"date_of_birth": "20-05-1990",
	}, authToken)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListPatients(t *testing.T) {
	resp := makeRequest("GET", "/api/v1/patients", nil, authToken)
	if !resp.IsSuccess() {
		t.Fatalf("failed to list patients: %s", resp.Message)
	}

	var patients []json.RawMessage
	if err := json.Unmarshal(resp.Data, &patients); err != nil {
		t.Fatalf("expected array payload: %v", err)
	}
}
