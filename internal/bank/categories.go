// internal/bank/categories.go
//
// 本檔實作四種帳戶類別：Checking、College Checking、Savings、Money Market。
// 金額以 decimal 儲存並四捨五入到「分」，避免浮點誤差。
//
// 費率規則（年利率，月息 = 餘額 × 年利率 ÷ 12）：
//   - Checking：月費 $12，餘額 ≥ $1000 免收；年利率 1.0%。
//   - College Checking：免月費；年利率 1.0%；以校區代碼為同類別決勝鍵。
//   - Savings：月費 $25，餘額 ≥ $500 免收；年利率 4.0%，忠誠客戶加 0.25%。
//   - Money Market：月費 $25，餘額 ≥ $2000 免收；餘額達門檻即為忠誠客戶（4.5% + 0.25%）；
//     提款超過 3 次另收 $10。

package bank

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rubank/internal/profile"
)

// 類別標籤為受控詞彙，比對時區分大小寫。
const (
	CategoryChecking        = "Checking"
	CategoryCollegeChecking = "College Checking"
	CategorySavings         = "Savings"
	CategoryMoneyMarket     = "Money Market"
)

// Campus codes for College Checking.
const (
	CampusNewBrunswick = iota
	CampusNewark
	CampusCamden
)

var campusNames = [...]string{"NEW_BRUNSWICK", "NEWARK", "CAMDEN"}

var (
	twelve = decimal.NewFromInt(12)

	checkingFee       = decimal.NewFromInt(12)
	checkingWaiver    = decimal.NewFromInt(1000)
	checkingRate      = decimal.RequireFromString("0.01")
	savingsFee        = decimal.NewFromInt(25)
	savingsWaiver     = decimal.NewFromInt(500)
	savingsRate       = decimal.RequireFromString("0.04")
	loyalBonus        = decimal.RequireFromString("0.0025")
	moneyMarketWaiver = decimal.NewFromInt(2000)
	moneyMarketRate   = decimal.RequireFromString("0.045")
	excessWithdrawFee = decimal.NewFromInt(10)
)

const maxFreeWithdrawals = 3

// Params 描述建立帳戶所需的欄位；依 Category 使用 Campus 或 Loyal。
type Params struct {
	Category string
	Profile  profile.Profile
	Balance  decimal.Decimal
	Campus   int
	Loyal    bool
}

// NewAccount 依類別標籤建立具體帳戶。
func NewAccount(s Params) (Account, error) {
	if s.Balance.IsNegative() {
		return nil, ErrBadAmount
	}
	b := base{holder: s.Profile, balance: cents(s.Balance)}
	switch s.Category {
	case CategoryChecking:
		return &Checking{base: b}, nil
	case CategoryCollegeChecking:
		if s.Campus < CampusNewBrunswick || s.Campus > CampusCamden {
			return nil, fmt.Errorf("%w: %d", ErrBadCampus, s.Campus)
		}
		return &CollegeChecking{Checking: Checking{base: b}, campus: s.Campus}, nil
	case CategorySavings:
		return &Savings{base: b, loyal: s.Loyal}, nil
	case CategoryMoneyMarket:
		return &MoneyMarket{Savings: Savings{base: b}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
	}
}

// NewRequest 建立「請求載體」帳戶：餘額欄位承載要存入或提出的金額，
// 只用來比對身分，不會被 registry 儲存或修改。
func NewRequest(holder profile.Profile, category string, amount decimal.Decimal) (Account, error) {
	return NewAccount(Params{Category: category, Profile: holder, Balance: amount})
}

func cents(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func monthly(balance, annualRate decimal.Decimal) decimal.Decimal {
	return cents(balance.Mul(annualRate).Div(twelve))
}

type base struct {
	holder  profile.Profile
	balance decimal.Decimal
}

func (b *base) Profile() profile.Profile { return b.holder }
func (b *base) Balance() decimal.Decimal { return b.balance }

func (b *base) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrBadAmount
	}
	b.balance = cents(b.balance.Add(amount))
	return nil
}

func (b *base) Withdraw(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrBadAmount
	}
	if amount.GreaterThan(b.balance) {
		return ErrInsufficient
	}
	b.balance = cents(b.balance.Sub(amount))
	return nil
}

func (b *base) describe(category string) string {
	return fmt.Sprintf("%s::%s::Balance $%s", category, b.holder, b.balance.StringFixed(2))
}

// compareAccounts 依類別標籤、持有人排序；兩者皆相同時回傳 0，由呼叫端決勝。
func compareAccounts(a, b Account) int {
	if c := strings.Compare(a.Category(), b.Category()); c != 0 {
		return c
	}
	return profile.Compare(a.Profile(), b.Profile())
}

// Checking is a plain checking account.
type Checking struct {
	base
}

func (c *Checking) Category() string { return CategoryChecking }

func (c *Checking) MonthlyFee() decimal.Decimal {
	if c.balance.GreaterThanOrEqual(checkingWaiver) {
		return decimal.Zero
	}
	return checkingFee
}

func (c *Checking) MonthlyInterest() decimal.Decimal {
	return monthly(c.balance, checkingRate)
}

func (c *Checking) Compare(other Account) int { return compareAccounts(c, other) }

func (c *Checking) String() string { return c.describe(c.Category()) }

// CollegeChecking 無月費，並記錄所屬校區。
type CollegeChecking struct {
	Checking
	campus int
}

func (c *CollegeChecking) Category() string { return CategoryCollegeChecking }

func (c *CollegeChecking) Campus() int { return c.campus }

func (c *CollegeChecking) MonthlyFee() decimal.Decimal { return decimal.Zero }

func (c *CollegeChecking) Compare(other Account) int {
	if r := compareAccounts(c, other); r != 0 {
		return r
	}
	if o, ok := other.(*CollegeChecking); ok {
		return c.campus - o.campus
	}
	return 0
}

func (c *CollegeChecking) String() string {
	return c.describe(c.Category()) + "::" + campusNames[c.campus]
}

// Savings 的忠誠客戶享有額外利率。
type Savings struct {
	base
	loyal bool
}

func (s *Savings) Category() string { return CategorySavings }

func (s *Savings) Loyal() bool { return s.loyal }

func (s *Savings) MonthlyFee() decimal.Decimal {
	if s.balance.GreaterThanOrEqual(savingsWaiver) {
		return decimal.Zero
	}
	return savingsFee
}

func (s *Savings) MonthlyInterest() decimal.Decimal {
	rate := savingsRate
	if s.loyal {
		rate = rate.Add(loyalBonus)
	}
	return monthly(s.balance, rate)
}

// Compare 同一持有人時，非忠誠客戶排在前面。
func (s *Savings) Compare(other Account) int {
	if r := compareAccounts(s, other); r != 0 {
		return r
	}
	if o, ok := other.(*Savings); ok && s.loyal != o.loyal {
		if s.loyal {
			return 1
		}
		return -1
	}
	return 0
}

func (s *Savings) String() string {
	out := s.describe(s.Category())
	if s.loyal {
		out += "::is loyal"
	}
	return out
}

// MoneyMarket 追蹤提款次數；餘額低於門檻即失去忠誠身分。
type MoneyMarket struct {
	Savings
	withdrawals int
}

func (m *MoneyMarket) Category() string { return CategoryMoneyMarket }

func (m *MoneyMarket) Loyal() bool { return m.balance.GreaterThanOrEqual(moneyMarketWaiver) }

func (m *MoneyMarket) Withdrawals() int { return m.withdrawals }

// RestoreWithdrawals 供快照還原使用。
func (m *MoneyMarket) RestoreWithdrawals(n int) { m.withdrawals = n }

func (m *MoneyMarket) Withdraw(amount decimal.Decimal) error {
	if err := m.base.Withdraw(amount); err != nil {
		return err
	}
	m.withdrawals++
	return nil
}

func (m *MoneyMarket) MonthlyFee() decimal.Decimal {
	fee := decimal.Zero
	if m.balance.LessThan(moneyMarketWaiver) {
		fee = savingsFee
	}
	if m.withdrawals > maxFreeWithdrawals {
		fee = fee.Add(excessWithdrawFee)
	}
	return fee
}

func (m *MoneyMarket) MonthlyInterest() decimal.Decimal {
	rate := moneyMarketRate
	if m.Loyal() {
		rate = rate.Add(loyalBonus)
	}
	return monthly(m.balance, rate)
}

func (m *MoneyMarket) Compare(other Account) int { return compareAccounts(m, other) }

func (m *MoneyMarket) String() string {
	out := m.describe(m.Category())
	if m.Loyal() {
		out += "::is loyal"
	}
	return fmt.Sprintf("%s::withdrawal: %d", out, m.withdrawals)
}
