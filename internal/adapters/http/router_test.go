package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dkeye/Remote/internal/app"
	"github.com/dkeye/Remote/internal/app/robot"
	"github.com/dkeye/Remote/internal/config"
	"github.com/dkeye/Remote/internal/protocol"
)

type testSim struct {
	srv   *httptest.Server
	robot *robot.Robot
	reg   *app.Registry
}

func newTestSim(t *testing.T, rateLimit float64, burst int) *testSim {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Mode:      "test",
		WSPath:    "/ws",
		ReadLimit: 32768,
		Sim: config.SimConfig{
			Host:       "127.0.0.1",
			RateLimit:  rateLimit,
			RateBurst:  burst,
			PingPeriod: time.Minute,
		},
	}
	rb := robot.New(time.Millisecond, 16)
	go rb.Run(ctx)
	reg := app.NewRegistry()

	srv := httptest.NewServer(SetupRouter(ctx, cfg, rb, reg))
	t.Cleanup(srv.Close)
	return &testSim{srv: srv, robot: rb, reg: reg}
}

func (s *testSim) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func roundTrip(t *testing.T, c *websocket.Conn, frame string) protocol.Response {
	t.Helper()
	if err := c.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("response %s: %v", data, err)
	}
	return resp
}

func resultText(t *testing.T, resp protocol.Response) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	if resp.Result == nil || len(resp.Result.Content) != 1 {
		t.Fatalf("result = %+v", resp.Result)
	}
	return resp.Result.Content[0].Text
}

func TestControl_WalkCommand(t *testing.T) {
	sim := newTestSim(t, 0, 0)
	c := sim.dial(t)

	resp := roundTrip(t, c, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"self.zeri.action","arguments":{"action":"walk","steps":3,"speed":700,"direction":1}}}`)

	if resp.ID != float64(1) {
		t.Errorf("id = %v, want 1", resp.ID)
	}
	if got := resultText(t, resp); got != "true" {
		t.Errorf("result = %q, want true", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sim.robot.Snapshot().Completed < 1 {
		if time.Now().After(deadline) {
			t.Fatal("walk never executed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	last := sim.robot.Snapshot().Last
	if last == nil || last.Name != "walk" || last.Steps != 3 || last.Speed != 700 || last.Direction != 1 {
		t.Errorf("last action = %+v", last)
	}
}

func TestControl_Replies(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantCode int
		wantText string
	}{
		{
			name:     "status",
			frame:    `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"self.zeri.get_status","arguments":{}}}`,
			wantText: "idle",
		},
		{
			name:     "ip address",
			frame:    `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"self.zeri.get_ip_address","arguments":{}}}`,
			wantText: "127.0.0.1",
		},
		{
			name:     "unknown action",
			frame:    `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"self.zeri.action","arguments":{"action":"dance"}}}`,
			wantText: "unknown action",
		},
		{
			name:     "fractional steps",
			frame:    `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"self.zeri.action","arguments":{"action":"walk","steps":1.5}}}`,
			wantCode: protocol.CodeInvalidParams,
		},
		{
			name:     "unknown tool",
			frame:    `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"self.zeri.fly","arguments":{}}}`,
			wantCode: protocol.CodeInvalidParams,
		},
		{
			name:     "missing params",
			frame:    `{"jsonrpc":"2.0","id":7,"method":"tools/call"}`,
			wantCode: protocol.CodeInvalidParams,
		},
		{
			name:     "unknown method",
			frame:    `{"jsonrpc":"2.0","id":8,"method":"tools/list"}`,
			wantCode: protocol.CodeMethodNotFound,
		},
		{
			name:     "wrong version",
			frame:    `{"jsonrpc":"1.0","id":9,"method":"tools/call"}`,
			wantCode: protocol.CodeInvalidRequest,
		},
		{
			name:     "not json",
			frame:    `walk please`,
			wantCode: protocol.CodeParseError,
		},
	}

	sim := newTestSim(t, 0, 0)
	c := sim.dial(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := roundTrip(t, c, tt.frame)
			if tt.wantCode != 0 {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("error = %+v, want code %d", resp.Error, tt.wantCode)
				}
				return
			}
			if got := resultText(t, resp); got != tt.wantText {
				t.Errorf("result = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestControl_RateLimited(t *testing.T) {
	sim := newTestSim(t, 0.001, 1)
	c := sim.dial(t)
	frame := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"self.zeri.get_status","arguments":{}}}`

	first := roundTrip(t, c, frame)
	if first.Error != nil {
		t.Fatalf("first call limited: %+v", first.Error)
	}
	second := roundTrip(t, c, frame)
	if second.Error == nil || second.Error.Code != protocol.CodeRateLimited {
		t.Errorf("second = %+v, want rate limited", second.Error)
	}
}

func TestStatusEndpoints(t *testing.T) {
	sim := newTestSim(t, 0, 0)
	c := sim.dial(t)
	roundTrip(t, c, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"self.zeri.get_status","arguments":{}}}`)

	resp, err := http.Get(sim.srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(sim.srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Robot   robot.Snapshot   `json:"robot"`
		Clients []app.ClientInfo `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Clients) != 1 || body.Clients[0].Commands != 1 {
		t.Errorf("clients = %+v, want one client with one command", body.Clients)
	}
	if body.Robot.Status != robot.StatusIdle {
		t.Errorf("robot status = %q", body.Robot.Status)
	}
}

func TestDeleteClient(t *testing.T) {
	sim := newTestSim(t, 0, 0)
	c := sim.dial(t)
	roundTrip(t, c, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"self.zeri.get_status","arguments":{}}}`)

	clients := sim.reg.Clients()
	if len(clients) != 1 {
		t.Fatalf("clients = %d, want 1", len(clients))
	}

	req, _ := http.NewRequest(http.MethodDelete, sim.srv.URL+"/api/clients/"+string(clients[0].SID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = c.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read after delete = %v, want going away close", err)
	}

	req, _ = http.NewRequest(http.MethodDelete, sim.srv.URL+"/api/clients/nope", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete unknown status = %d", resp.StatusCode)
	}
}
