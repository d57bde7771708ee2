// Package bank 定義核心領域模型與業務規則。
// 本檔定義帳戶能力契約 (Account) 與其相等性規則，不含任何 HTTP 或儲存細節。

package bank

import (
	"reflect"

	"github.com/shopspring/decimal"

	"rubank/internal/profile"
)

// Account is the capability contract the registry depends on.
// The registry never constructs accounts; callers hand them in.
type Account interface {
	Profile() profile.Profile
	Category() string
	Balance() decimal.Decimal

	Deposit(amount decimal.Decimal) error
	Withdraw(amount decimal.Decimal) error

	MonthlyFee() decimal.Decimal
	MonthlyInterest() decimal.Decimal

	// Compare orders by category, then profile, then a category-specific tiebreak.
	Compare(other Account) int

	String() string
}

// SameAccount 判斷兩帳戶是否為「同一個帳戶」：持有人相同且類別標籤完全相同。
// 同一人在不同類別的帳戶不相等。
func SameAccount(a, b Account) bool {
	if missing(a) || missing(b) {
		return false
	}
	return a.Category() == b.Category() && a.Profile().Equal(b.Profile())
}

// missing 同時涵蓋 nil 介面與包著 nil 指標的介面。
func missing(a Account) bool {
	if a == nil {
		return true
	}
	v := reflect.ValueOf(a)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
