// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP 介面，作為帳戶資料庫的呈現層。
// 每個 handler 僅負責：
//  1. 解析並驗證請求（姓名、生日、類別、金額）
//  2. 建立帳戶或「請求載體」帳戶，呼叫 bank 層
//  3. 將領域錯誤轉成 HTTP 狀態碼並回傳 JSON
//  4. 成功變更狀態後呼叫 s.persist() 保存快照
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"rubank/internal/bank"
	"rubank/internal/profile"
)

// Server 為 HTTP 層核心結構：
// - Bank：注入帳戶資料庫門面。
// - persist：注入持久化鉤子，讓 server 不需關心儲存實作細節。
type Server struct {
	Bank     *bank.Bank
	persist  func() error
	log      *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// NewServer 建立新的 HTTP 伺服器。
// persist 可為 nil；若提供則會於每次成功變更後觸發。
func NewServer(b *bank.Bank, persist func() error, opts ...Option) *Server {
	s := &Server{Bank: b, persist: persist, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// identity 為帳戶身分欄位：持有人 + 類別。
type identity struct {
	Category  string `json:"category"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DOB       string `json:"dob"` // m/d/yyyy
}

func (id identity) profile() (profile.Profile, error) {
	if id.FirstName == "" || id.LastName == "" {
		return profile.Profile{}, errMissingName
	}
	dob, err := profile.ParseDate(id.DOB)
	if err != nil {
		return profile.Profile{}, err
	}
	return profile.New(id.FirstName, id.LastName, dob), nil
}

// request 建立只帶金額的請求載體帳戶。
func (id identity) request(amount decimal.Decimal) (bank.Account, error) {
	p, err := id.profile()
	if err != nil {
		return nil, err
	}
	return bank.NewRequest(p, id.Category, amount)
}

type openRequest struct {
	identity
	Balance decimal.Decimal `json:"balance"`
	Campus  int             `json:"campus"`
	Loyal   bool            `json:"loyal"`
}

type amountRequest struct {
	identity
	Amount decimal.Decimal `json:"amount"`
}

var errMissingName = errors.New("first_name and last_name are required")

// checkAmount 金額須為正數且最多兩位小數；不接受會被四捨五入成其他值的金額。
func checkAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) || !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive with at most two decimals", bank.ErrBadAmount, amount)
	}
	return nil
}

// statusFor 將領域錯誤對應到 HTTP 狀態碼。
func statusFor(err error) int {
	switch {
	case errors.Is(err, bank.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrDuplicateAccount), errors.Is(err, bank.ErrInsufficient):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) afterMutation() {
	if s.persist == nil {
		return
	}
	if err := s.persist(); err != nil {
		s.log.Error("persist snapshot failed", "err", err)
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// open 處理 POST /accounts。
func (s *Server) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	p, err := req.profile()
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	if err := checkAmount(req.Balance); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	a, err := bank.NewAccount(bank.Params{
		Category: req.Category,
		Profile:  p,
		Balance:  req.Balance,
		Campus:   req.Campus,
		Loyal:    req.Loyal,
	})
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	if err := s.Bank.Open(a); err != nil {
		writeErr(w, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, bank.ViewOf(a))
	s.afterMutation()
}

// closeAccount 處理 POST /accounts/close。
func (s *Server) closeAccount(w http.ResponseWriter, r *http.Request) {
	var req identity
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	a, err := req.request(decimal.Zero)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	if err := s.Bank.Close(a); err != nil {
		writeErr(w, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
	s.afterMutation()
}

// move 處理存款與提款；兩者只差在呼叫的 bank 方法。
func (s *Server) move(apply func(bank.Account) (bank.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req amountRequest
		if err := decode(r, &req); err != nil {
			writeErr(w, err, http.StatusBadRequest)
			return
		}
		if err := checkAmount(req.Amount); err != nil {
			writeErr(w, err, http.StatusBadRequest)
			return
		}
		a, err := req.request(req.Amount)
		if err != nil {
			writeErr(w, err, http.StatusBadRequest)
			return
		}
		v, err := apply(a)
		if err != nil {
			writeErr(w, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, v)
		s.afterMutation()
	}
}

// list 處理 GET /accounts；?sorted=true 時先排序。
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	sorted := r.URL.Query().Get("sorted") == "true"
	views := s.Bank.List(sorted)
	writeJSON(w, http.StatusOK, views)
}

// lookup 處理 GET /accounts/lookup?first_name=&last_name=&dob=&category=。
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := identity{
		Category:  q.Get("category"),
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		DOB:       q.Get("dob"),
	}
	p, err := id.profile()
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	v, err := s.Bank.Lookup(p, id.Category)
	if err != nil {
		writeErr(w, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// interest 處理 GET /reports/interest；沒有帳戶時回傳 204。
func (s *Server) interest(w http.ResponseWriter, r *http.Request) {
	sorted := r.URL.Query().Get("sorted") == "true"
	lines, err := s.Bank.InterestInfo(sorted)
	if errors.Is(err, bank.ErrNoAccounts) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

// updateBalances 處理 POST /reports/update-balances。
// 個別帳戶扣款失敗時仍回傳 200，並列出失敗原因。
func (s *Server) updateBalances(w http.ResponseWriter, r *http.Request) {
	failures := []string{}
	if err := s.Bank.UpdateBalances(); err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				failures = append(failures, e.Error())
			}
		} else {
			failures = append(failures, err.Error())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "balances updated with fees and interest",
		"failures": failures,
	})
	s.afterMutation()
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
