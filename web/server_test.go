package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mircad/telelink/agent"
	"github.com/mircad/telelink/hardware"
)

func newTestServer(t *testing.T) (*Server, *agent.Session) {
	t.Helper()
	session := agent.New(agent.Config{
		DeviceID: "dev42",
		Owner:    "alice",
		Hardware: hardware.NewSimFactory(),
	})
	return NewServer(session, "127.0.0.1:0"), session
}

func TestHandleStatus(t *testing.T) {
	srv, session := newTestServer(t)
	session.SetBatteryLevel(73)

	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		DeviceID string `json:"device_id"`
		Status   string `json:"status"`
		Battery  int    `json:"battery"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.DeviceID != "dev42" {
		t.Errorf("Expected device id dev42, got %q", body.DeviceID)
	}
	if body.Status != "disconnected" {
		t.Errorf("Expected disconnected status, got %q", body.Status)
	}
	if body.Battery != 73 {
		t.Errorf("Expected battery 73, got %d", body.Battery)
	}
}

func TestHandlePins(t *testing.T) {
	srv, session := newTestServer(t)
	if _, err := session.ConfigureDigital(2, hardware.Input, hardware.PullUp); err != nil {
		t.Fatalf("ConfigureDigital failed: %v", err)
	}
	if _, err := session.ConfigurePWM(5); err != nil {
		t.Fatalf("ConfigurePWM failed: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.handlePins(rec, httptest.NewRequest(http.MethodGet, "/api/pins", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var pins map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &pins); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if pins["2"] != "digital" || pins["5"] != "pwm" {
		t.Errorf("Unexpected pin snapshot: %v", pins)
	}
}
