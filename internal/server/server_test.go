// internal/server/server_test.go
//
// 本檔為 server 層的整合測試。
// 以 httptest.Server 模擬完整 HTTP 請求流程，驗證 API 與 bank 層的整合、
// 錯誤代碼映射，以及持久化鉤子在每次成功變更後觸發。
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rubank/internal/bank"
	"rubank/internal/metrics"
)

// doJSON 封裝 HTTP JSON 請求並驗證回傳狀態碼；out 非 nil 時解析回應。
func doJSON(t *testing.T, c *http.Client, method, url string, body any, wantCode int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode, "%s %s", method, url)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

type view struct {
	Category    string `json:"category"`
	Holder      string `json:"holder"`
	Balance     string `json:"balance"`
	Description string `json:"description"`
}

func john(extra map[string]any) map[string]any {
	body := map[string]any{"category": "Checking", "first_name": "John", "last_name": "Doe", "dob": "1/1/1990"}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func newTestServer(t *testing.T, persist func() error) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	b := bank.NewBank(bank.WithMetrics(metrics.New(reg)))
	s := NewServer(b, persist, WithGatherer(reg))
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPFlowAndPersistHook(t *testing.T) {
	var persistCalls int32
	ts := newTestServer(t, func() error {
		atomic.AddInt32(&persistCalls, 1)
		return nil
	})
	cli := ts.Client()

	// 開戶兩個帳戶
	var a view
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "100"}), 201, &a)
	assert.Equal(t, "John Doe 1/1/1990", a.Holder)
	doJSON(t, cli, "POST", ts.URL+"/api/v1/accounts", map[string]any{
		"category": "Savings", "first_name": "Jane", "last_name": "Doe", "dob": "2/2/1991", "balance": 200, "loyal": true,
	}, 201, nil)

	// 重複開戶 → 409
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"first_name": "JOHN", "balance": "5"}), 409, nil)

	// 存款與提款
	doJSON(t, cli, "POST", ts.URL+"/accounts/deposit", john(map[string]any{"amount": "50"}), 200, &a)
	assert.Equal(t, "150", a.Balance)
	doJSON(t, cli, "POST", ts.URL+"/accounts/withdraw", john(map[string]any{"amount": "30.25"}), 200, &a)
	assert.Equal(t, "119.75", a.Balance)
	doJSON(t, cli, "POST", ts.URL+"/accounts/withdraw", john(map[string]any{"amount": "1000"}), 409, nil)

	// 排序列表：Checking 在 Savings 之前
	var list []view
	doJSON(t, cli, "GET", ts.URL+"/accounts?sorted=true", nil, 200, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Checking", list[0].Category)
	assert.Equal(t, "Savings", list[1].Category)

	// 查詢
	q := url.Values{"category": {"Savings"}, "first_name": {"jane"}, "last_name": {"DOE"}, "dob": {"2/2/1991"}}
	var got view
	doJSON(t, cli, "GET", ts.URL+"/accounts/lookup?"+q.Encode(), nil, 200, &got)
	assert.Equal(t, "Savings::Jane Doe 2/2/1991::Balance $200.00::is loyal", got.Description)

	// 利息報表
	var report struct {
		Lines []string `json:"lines"`
	}
	doJSON(t, cli, "GET", ts.URL+"/reports/interest?sorted=true", nil, 200, &report)
	require.Len(t, report.Lines, 3)
	assert.Equal(t, bank.EndOfList, report.Lines[2])

	// 月結
	var upd struct {
		Failures []string `json:"failures"`
	}
	doJSON(t, cli, "POST", ts.URL+"/reports/update-balances", nil, 200, &upd)
	assert.Empty(t, upd.Failures)

	// 銷戶與找不到帳戶
	doJSON(t, cli, "POST", ts.URL+"/accounts/close", john(nil), 204, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts/close", john(nil), 404, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts/deposit", john(map[string]any{"amount": "1"}), 404, nil)

	// open×2 + deposit + withdraw + update + close = 6
	assert.Equal(t, int32(6), atomic.LoadInt32(&persistCalls))
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	cli := ts.Client()

	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"dob": "2/30/1990", "balance": "1"}), 400, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"category": "Brokerage", "balance": "1"}), 400, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "0"}), 400, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"first_name": "", "balance": "1"}), 400, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts/deposit", john(map[string]any{"amount": "-5"}), 400, nil)

	// 不足一分的金額會被四捨五入成 0，必須直接拒絕
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "0.004"}), 400, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "10.005"}), 400, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "10"}), 201, nil)
	doJSON(t, cli, "POST", ts.URL+"/accounts/deposit", john(map[string]any{"amount": "0.004"}), 400, nil)
	var v view
	doJSON(t, cli, "POST", ts.URL+"/accounts/deposit", john(map[string]any{"amount": "0.01"}), 200, &v)
	assert.Equal(t, "10.01", v.Balance)

	req, err := http.NewRequest("POST", ts.URL+"/accounts/deposit", bytes.NewBufferString("{bad json}"))
	require.NoError(t, err)
	resp, err := cli.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestInterestReportEmpty(t *testing.T) {
	ts := newTestServer(t, nil)
	doJSON(t, ts.Client(), "GET", ts.URL+"/reports/interest", nil, 204, nil)
}

func TestUpdateBalancesReportsFailures(t *testing.T) {
	ts := newTestServer(t, nil)
	cli := ts.Client()
	// 12.00 的 Checking 無法支付 12.00 月費 + 0.01 月息
	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "12"}), 201, nil)

	var upd struct {
		Failures []string `json:"failures"`
	}
	doJSON(t, cli, "POST", ts.URL+"/reports/update-balances", nil, 200, &upd)
	require.Len(t, upd.Failures, 1)
	assert.Contains(t, upd.Failures[0], "insufficient balance")
}

func TestMethodNotAllowedAndMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	cli := ts.Client()

	doJSON(t, cli, "GET", ts.URL+"/accounts/close", nil, 405, nil)
	doJSON(t, cli, "GET", ts.URL+"/health", nil, 200, nil)

	doJSON(t, cli, "POST", ts.URL+"/accounts", john(map[string]any{"balance": "1"}), 201, nil)
	resp, err := cli.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `rubank_accounts_opened_total{category="Checking"} 1`)
}
