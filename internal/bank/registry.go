// internal/bank/registry.go
//
// Registry 為帳戶資料庫核心：以「容量 + 已用數量」管理一段連續的帳戶參照。
//
// 不變式：
//   - 唯一性：已用區段內不會有兩個 SameAccount 成立的帳戶。
//   - 緊密性：存活帳戶佔據 accounts[0:n]；n 之後的槽位為未用容量或已清空。
//   - 容量：len(accounts) 永遠大於 n；插入後若 n 到達容量，立即以固定增量擴充。
//
// Registry 本身不加鎖，假設同一時間只有一個呼叫端；併發存取請透過 Bank。
// Close 會使後續帳戶的索引左移，索引在 Close 之後不保證穩定。

package bank

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"rubank/internal/profile"
)

const (
	// InitialCapacity 為新 Registry 的初始容量。
	InitialCapacity = 4
	// GrowthIncrement 為每次擴充增加的槽位數。
	GrowthIncrement = 4
)

// EndOfList 為利息報表的結尾標記行。
const EndOfList = "*end of list."

// Registry 持有存活帳戶，不擁有帳戶物件本身。
type Registry struct {
	accounts []Account
	n        int
}

// NewRegistry 建立空的 Registry。
func NewRegistry() *Registry {
	return &Registry{accounts: make([]Account, InitialCapacity)}
}

// Len 回傳存活帳戶數。
func (r *Registry) Len() int { return r.n }

// Cap 回傳目前的槽位容量。
func (r *Registry) Cap() int { return len(r.accounts) }

// find 回傳相符帳戶的索引，找不到時回傳 -1。
func (r *Registry) find(a Account) int {
	for i := 0; i < r.n; i++ {
		if SameAccount(r.accounts[i], a) {
			return i
		}
	}
	return -1
}

// grow 配置更大的槽位並依序複製既有參照。
func (r *Registry) grow() {
	next := make([]Account, len(r.accounts)+GrowthIncrement)
	copy(next, r.accounts)
	r.accounts = next
}

// Contains 以線性掃描判斷是否有相同帳戶。
func (r *Registry) Contains(a Account) bool {
	if missing(a) {
		return false
	}
	return r.find(a) != -1
}

// Open 將帳戶附加至存活區段尾端。
// nil 回傳 ErrInvalidAccount；已存在回傳 ErrDuplicateAccount。
func (r *Registry) Open(a Account) error {
	if missing(a) {
		return ErrInvalidAccount
	}
	if r.Contains(a) {
		return ErrDuplicateAccount
	}
	r.accounts[r.n] = a
	r.n++
	if r.n >= len(r.accounts) {
		r.grow()
	}
	return nil
}

// Close 移除相符帳戶，其後的帳戶依序左移一格，並清空尾端槽位。
func (r *Registry) Close(a Account) error {
	if missing(a) {
		return ErrInvalidAccount
	}
	i := r.find(a)
	if i == -1 {
		return ErrNotFound
	}
	r.removeAt(i)
	return nil
}

// removeAt 移除最後一個元素時不需位移，只遞減數量。
func (r *Registry) removeAt(i int) {
	last := r.n - 1
	if i < last {
		copy(r.accounts[i:last], r.accounts[i+1:r.n])
	}
	r.accounts[last] = nil
	r.n--
}

// Deposit 以 req.Balance() 為金額，存入 registry 內儲存的相符帳戶。
// req 只是請求載體，本身不會被修改。
func (r *Registry) Deposit(req Account) error {
	if missing(req) {
		return ErrInvalidAccount
	}
	i := r.find(req)
	if i == -1 {
		return ErrNotFound
	}
	return r.accounts[i].Deposit(req.Balance())
}

// Withdraw 以 req.Balance() 為金額，從相符帳戶提款。
// 餘額是否足夠由帳戶自行判斷，registry 原樣回傳其結果。
func (r *Registry) Withdraw(req Account) error {
	if missing(req) {
		return ErrInvalidAccount
	}
	i := r.find(req)
	if i == -1 {
		return ErrNotFound
	}
	return r.accounts[i].Withdraw(req.Balance())
}

// AccountByProfileAndType 回傳第一個持有人相同且類別完全相符（區分大小寫）的帳戶。
func (r *Registry) AccountByProfileAndType(holder profile.Profile, category string) (Account, bool) {
	for i := 0; i < r.n; i++ {
		a := r.accounts[i]
		if a.Profile().Equal(holder) && a.Category() == category {
			return a, true
		}
	}
	return nil, false
}

// All 回傳存活區段的複本，順序與內部一致；沒有帳戶時回傳空切片。
func (r *Registry) All() []Account {
	out := make([]Account, r.n)
	copy(out, r.accounts[:r.n])
	return out
}

// Sort 以帳戶自身的 Compare 就地快速排序。
// 此排序不穩定：Compare 為 0 的帳戶不保證維持原先的相對順序。
func (r *Registry) Sort() {
	if r.n < 2 {
		return
	}
	r.quicksort(0, r.n-1)
}

func (r *Registry) quicksort(lo, hi int) {
	if lo >= hi {
		return
	}
	p := r.partition(lo, hi)
	r.quicksort(lo, p-1)
	r.quicksort(p+1, hi)
}

// partition 以 accounts[lo] 為樞紐，左游標跳過 <= 樞紐者、右游標跳過 > 樞紐者，
// 兩者交錯時結束，最後把樞紐換到右游標位置。
func (r *Registry) partition(lo, hi int) int {
	pivot := r.accounts[lo]
	left, right := lo+1, hi
	for {
		for left <= right && r.accounts[left].Compare(pivot) <= 0 {
			left++
		}
		for right >= left && r.accounts[right].Compare(pivot) > 0 {
			right--
		}
		if left >= right {
			break
		}
		r.accounts[left], r.accounts[right] = r.accounts[right], r.accounts[left]
	}
	r.accounts[lo], r.accounts[right] = r.accounts[right], r.accounts[lo]
	return right
}

// InterestInfo 依目前內部順序輸出每個帳戶的月費與月息，最後附上 EndOfList。
// 沒有帳戶時回傳 ErrNoAccounts。
func (r *Registry) InterestInfo() ([]string, error) {
	if r.n == 0 {
		return nil, ErrNoAccounts
	}
	lines := make([]string, 0, r.n+1)
	for i := 0; i < r.n; i++ {
		a := r.accounts[i]
		lines = append(lines, fmt.Sprintf("%s::fee $%s::monthly interest $%s",
			a, a.MonthlyFee().StringFixed(2), a.MonthlyInterest().StringFixed(2)))
	}
	return append(lines, EndOfList), nil
}

// UpdateBalances 對每個帳戶以「月費 + 月息」單筆提款。
// 某帳戶失敗時仍繼續處理其餘帳戶，最後合併回傳所有錯誤。
func (r *Registry) UpdateBalances() error {
	var errs []error
	for i := 0; i < r.n; i++ {
		a := r.accounts[i]
		amt := monthlyCharge(a)
		if err := a.Withdraw(amt); err != nil {
			errs = append(errs, fmt.Errorf("%s: charge $%s: %w", a, amt.StringFixed(2), err))
		}
	}
	return errors.Join(errs...)
}

// monthlyCharge 為單筆合併扣款金額，不拆成兩次提款。
func monthlyCharge(a Account) decimal.Decimal {
	return a.MonthlyFee().Add(a.MonthlyInterest())
}
