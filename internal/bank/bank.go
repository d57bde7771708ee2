// internal/bank/bank.go

// Bank 為 Registry 的對外門面 (facade)：
// - mu：Registry 本身假設單一呼叫端，HTTP 伺服器卻會併發呼叫，因此所有操作在同一把鎖內完成。
// - log / metrics：記錄每次開戶、銷戶、存提款與月結結果。
// - Snapshot / Restore：與 storage 層之間的轉換，順序與 registry 內部順序一致。
package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"rubank/internal/metrics"
	"rubank/internal/profile"
	"rubank/internal/storage"
)

// View 為帳戶在某一時點的唯讀複本，供呈現層輸出。
type View struct {
	Category        string          `json:"category"`
	Holder          string          `json:"holder"`
	Balance         decimal.Decimal `json:"balance"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	MonthlyInterest decimal.Decimal `json:"monthly_interest"`
	Description     string          `json:"description"`
}

// ViewOf 擷取帳戶目前狀態。
func ViewOf(a Account) View {
	return View{
		Category:        a.Category(),
		Holder:          a.Profile().String(),
		Balance:         a.Balance(),
		MonthlyFee:      a.MonthlyFee(),
		MonthlyInterest: a.MonthlyInterest(),
		Description:     a.String(),
	}
}

// Bank serializes access to a Registry.
type Bank struct {
	mu      sync.Mutex
	reg     *Registry
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Bank.
type Option func(*Bank)

// WithLogger 設定結構化日誌輸出。
func WithLogger(l *slog.Logger) Option { return func(b *Bank) { b.log = l } }

// WithMetrics 設定 Prometheus 指標；未設定時不記錄。
func WithMetrics(m *metrics.Metrics) Option { return func(b *Bank) { b.metrics = m } }

// NewBank 建立空白銀行實例。
func NewBank(opts ...Option) *Bank {
	b := &Bank{reg: NewRegistry(), log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}
	b.metrics.SetSize(b.reg.Len(), b.reg.Cap())
	return b
}

// reason 將領域錯誤轉為指標標籤。
func reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAccount):
		return "invalid"
	case errors.Is(err, ErrDuplicateAccount):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficient):
		return "insufficient"
	case errors.Is(err, ErrBadAmount):
		return "bad_amount"
	default:
		return "other"
	}
}

func (b *Bank) reject(op string, a Account, err error) error {
	b.metrics.IncrementRejected(op, reason(err))
	attrs := []any{"op", op, "err", err}
	if !missing(a) {
		attrs = append(attrs, "category", a.Category(), "holder", a.Profile().String())
	}
	b.log.Warn("operation rejected", attrs...)
	return err
}

// Contains 判斷是否已有相同持有人與類別的帳戶。
func (b *Bank) Contains(a Account) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.Contains(a)
}

// Open 開戶。
func (b *Bank) Open(a Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reg.Open(a); err != nil {
		return b.reject("open", a, err)
	}
	b.metrics.IncrementOpened(a.Category())
	b.metrics.SetSize(b.reg.Len(), b.reg.Cap())
	b.log.Info("account opened", "category", a.Category(), "holder", a.Profile().String(), "balance", a.Balance().StringFixed(2))
	return nil
}

// Close 銷戶。
func (b *Bank) Close(a Account) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reg.Close(a); err != nil {
		return b.reject("close", a, err)
	}
	b.metrics.IncrementClosed(a.Category())
	b.metrics.SetSize(b.reg.Len(), b.reg.Cap())
	b.log.Info("account closed", "category", a.Category(), "holder", a.Profile().String())
	return nil
}

// Deposit 存款；req 的餘額即存入金額。回傳存款後的帳戶複本。
func (b *Bank) Deposit(req Account) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reg.Deposit(req); err != nil {
		return View{}, b.reject("deposit", req, err)
	}
	return b.viewLocked(req, "deposit")
}

// Withdraw 提款；req 的餘額即提款金額。回傳提款後的帳戶複本。
func (b *Bank) Withdraw(req Account) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reg.Withdraw(req); err != nil {
		return View{}, b.reject("withdraw", req, err)
	}
	return b.viewLocked(req, "withdraw")
}

func (b *Bank) viewLocked(req Account, op string) (View, error) {
	a, ok := b.reg.AccountByProfileAndType(req.Profile(), req.Category())
	if !ok {
		return View{}, ErrNotFound
	}
	b.log.Info("balance changed", "op", op, "category", a.Category(), "holder", a.Profile().String(),
		"amount", req.Balance().StringFixed(2), "balance", a.Balance().StringFixed(2))
	return ViewOf(a), nil
}

// Lookup 依持有人與類別查詢帳戶。
func (b *Bank) Lookup(holder profile.Profile, category string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.reg.AccountByProfileAndType(holder, category)
	if !ok {
		return View{}, ErrNotFound
	}
	return ViewOf(a), nil
}

// List 回傳所有帳戶複本；sorted 為 true 時先就地排序。
func (b *Bank) List(sorted bool) []View {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sorted {
		b.reg.Sort()
	}
	all := b.reg.All()
	out := make([]View, len(all))
	for i, a := range all {
		out[i] = ViewOf(a)
	}
	return out
}

// InterestInfo 產生月費與月息報表；sorted 為 true 時先就地排序。
func (b *Bank) InterestInfo(sorted bool) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sorted {
		b.reg.Sort()
	}
	return b.reg.InterestInfo()
}

// UpdateBalances 執行月結；個別帳戶失敗不影響其他帳戶。
func (b *Bank) UpdateBalances() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.reg.UpdateBalances()
	b.metrics.IncrementBalanceUpdates()
	if err != nil {
		b.log.Warn("monthly update incomplete", "err", err)
		return err
	}
	b.log.Info("monthly update applied", "accounts", b.reg.Len())
	return nil
}

// Snapshot 依 registry 內部順序匯出所有帳戶。
func (b *Bank) Snapshot() storage.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := storage.Snapshot{
		Meta: storage.Meta{Note: "RU Bank account database"},
	}
	for _, a := range b.reg.All() {
		s.Accounts = append(s.Accounts, toPersist(a))
	}
	return s
}

// Restore 以快照內容取代目前的 registry；任何一筆資料無效時不做任何變更。
func (b *Bank) Restore(s storage.Snapshot) error {
	reg := NewRegistry()
	for i, pa := range s.Accounts {
		a, err := fromPersist(pa)
		if err != nil {
			return fmt.Errorf("account %d: %w", i, err)
		}
		if err := reg.Open(a); err != nil {
			return fmt.Errorf("account %d: %w", i, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg = reg
	b.metrics.SetSize(reg.Len(), reg.Cap())
	b.log.Info("registry restored", "accounts", reg.Len())
	return nil
}

func toPersist(a Account) storage.PersistAccount {
	p := a.Profile()
	pa := storage.PersistAccount{
		Category:  a.Category(),
		FirstName: p.First(),
		LastName:  p.Last(),
		DOB:       p.DOB().String(),
		Balance:   a.Balance(),
	}
	switch v := a.(type) {
	case *CollegeChecking:
		pa.Campus = v.Campus()
	case *MoneyMarket:
		pa.Withdrawals = v.Withdrawals()
	case *Savings:
		pa.Loyal = v.Loyal()
	}
	return pa
}

func fromPersist(pa storage.PersistAccount) (Account, error) {
	dob, err := profile.ParseDate(pa.DOB)
	if err != nil {
		return nil, err
	}
	a, err := NewAccount(Params{
		Category: pa.Category,
		Profile:  profile.New(pa.FirstName, pa.LastName, dob),
		Balance:  pa.Balance,
		Campus:   pa.Campus,
		Loyal:    pa.Loyal,
	})
	if err != nil {
		return nil, err
	}
	if mm, ok := a.(*MoneyMarket); ok {
		mm.RestoreWithdrawals(pa.Withdrawals)
	}
	return a, nil
}
