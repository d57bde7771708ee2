// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的結構模型。
// Registry 本身只存在於程序生命週期內；此層讓呈現層可在啟動時載入、
// 變更後保存帳戶清單。帳戶依 registry 內部順序保存，還原後順序不變。

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoSnapshot 代表尚未保存過任何快照（檔案不存在或資料表為空）。
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store 為快照的讀寫介面；JSON 檔案與 SQLite 皆實作此介面。
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Meta 為快照的中繼資料。
type Meta struct {
	ID        string    `json:"id"`             // 每次保存產生的 uuid
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_snapshot"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 快照建立時間
	Note      string    `json:"note,omitempty"` // 備註欄
}

// PersistAccount 為帳戶在儲存層的序列化格式。
// Campus 只對 College Checking 有意義；Loyal 只對 Savings；Withdrawals 只對 Money Market。
type PersistAccount struct {
	Category    string          `json:"category"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	DOB         string          `json:"dob"` // m/d/yyyy
	Balance     decimal.Decimal `json:"balance"`
	Campus      int             `json:"campus,omitempty"`
	Loyal       bool            `json:"loyal,omitempty"`
	Withdrawals int             `json:"withdrawals,omitempty"`
}

// Snapshot 為 registry 狀態的完整快照。
type Snapshot struct {
	Meta     Meta             `json:"_meta"`
	Accounts []PersistAccount `json:"accounts"`
}

// CurrentVersion 為目前的快照結構版本。
const CurrentVersion = 2
