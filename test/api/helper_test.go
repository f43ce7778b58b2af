package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type testResponse struct {
	StatusCode int
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (r testResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r testResponse) GetString(key string) string {
	var data map[string]interface{}
	if err := json.Unmarshal(r.Data, &data); err != nil {
		return ""
	}
	if val, ok := data[key].(string); ok {
		return val
	}
	return ""
}

func makeRequest(method, path string, body interface{}, token string) testResponse {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return testResponse{Status: "error", Message: fmt.Sprintf("Failed to marshal request body: %v", err)}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return testResponse{Status: "error", Message: fmt.Sprintf("Failed to create request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return testResponse{Status: "error", Message: fmt.Sprintf("Request failed: %v", err)}
	}
	defer resp.Body.Close()

	response := testResponse{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusNoContent {
		response.Status = "success"
		return response
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return testResponse{StatusCode: resp.StatusCode, Status: "error", Message: fmt.Sprintf("Failed to decode response: %v", err)}
	}
	return response
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}
