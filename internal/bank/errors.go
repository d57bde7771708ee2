// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 取代舊式的「最後訊息」共用欄位：每個操作直接回傳下列錯誤之一，
// 由上層 HTTP handler 轉換成適當的 HTTP 狀態碼與使用者訊息。
// 所有錯誤皆可恢復，重試相同輸入會得到相同結果。

package bank

import "errors"

var (
	// ErrInvalidAccount 代表傳入的帳戶為 nil。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrInvalidAccount = errors.New("account is missing")

	// ErrDuplicateAccount 代表相同持有人與類別的帳戶已存在。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrNotFound 代表找不到相符的帳戶。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrNotFound = errors.New("account not found")

	// ErrInsufficient 由帳戶本身在提款時回報，registry 只負責轉傳。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrInsufficient = errors.New("insufficient balance")

	// ErrBadAmount 代表金額為負數。
	ErrBadAmount = errors.New("amount must not be negative")

	// ErrUnknownCategory 代表帳戶類別不在既定的類別清單中。
	ErrUnknownCategory = errors.New("unknown account category")

	// ErrBadCampus 代表 College Checking 的校區代碼不在 0–2 範圍內。
	ErrBadCampus = errors.New("invalid campus code")

	// ErrNoAccounts 代表資料庫中沒有任何帳戶；
	// 與「空清單」不同，呼叫端需據此顯示不同訊息。
	ErrNoAccounts = errors.New("no accounts in the database")
)
