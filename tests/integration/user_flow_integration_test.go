//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("DISHA_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestRespondentJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 15 * time.Second}
	base := baseURL()

	var registerResp struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
	}
	doPost(t, client, base+"/api/sessions", "", map[string]any{
		"full_name": "Integration Respondent",
		"email":     fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano()),
		"education": "bachelors",
		"age":       22,
	}, &registerResp)
	if registerResp.SessionID == "" || registerResp.Status != "incomplete" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var completeResp struct {
		SessionID    string `json:"session_id"`
		TopThreeCode string `json:"top_three_code"`
		Status       string `json:"status"`
	}
	doPost(t, client, base+"/api/sessions/complete", "", map[string]any{
		"session_id": registerResp.SessionID,
		"answers":    map[string]string{"q4": "yes", "q10": "yes", "q1": "yes", "q2": "yes"},
		"time_taken": 240,
	}, &completeResp)
	if completeResp.Status != "complete" || len(completeResp.TopThreeCode) != 3 {
		t.Fatalf("unexpected complete response: %+v", completeResp)
	}
	if completeResp.TopThreeCode[0] != 'S' {
		t.Fatalf("expected Social to lead, got %s", completeResp.TopThreeCode)
	}

	var report struct {
		TopThreeCode string `json:"top_three_code"`
		Sections     []struct {
			Kind string `json:"kind"`
		} `json:"sections"`
	}
	doGet(t, client, base+"/api/sessions/"+registerResp.SessionID+"/report", "", &report)
	if report.TopThreeCode != completeResp.TopThreeCode || len(report.Sections) != 7 {
		t.Fatalf("unexpected report: %+v", report)
	}

	user, pass := os.Getenv("DISHA_TEST_ADMIN_USER"), os.Getenv("DISHA_TEST_ADMIN_PASSWORD")
	if user == "" || pass == "" {
		t.Log("DISHA_TEST_ADMIN_USER/PASSWORD not set; skipping admin checks")
		return
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/admin/login", "", map[string]string{"username": user, "password": pass}, &loginResp)
	if loginResp.Token == "" {
		t.Fatalf("login did not return token")
	}

	req, err := http.NewRequest(http.MethodGet, base+"/api/admin/export", nil)
	if err != nil {
		t.Fatalf("new export request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", resp.StatusCode)
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	if !strings.Contains(string(csvData), registerResp.SessionID) {
		t.Fatalf("export csv did not contain session id; csv=%s", csvData)
	}
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	send(t, client, req, token, out)
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	send(t, client, req, token, out)
}

func send(t *testing.T, client *http.Client, req *http.Request, token string, out any) {
	t.Helper()
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, req.URL, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", req.URL, err)
		}
	}
}
