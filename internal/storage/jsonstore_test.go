// internal/storage/jsonstore_test.go
//
// 測試目標：驗證 JSON 與 SQLite 快照的保存與載入結果一致，
// 包含帳戶順序、金額精度與中繼資料。使用 t.TempDir() 確保測試不汙染本機環境。
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Meta: Meta{Note: "test"},
		Accounts: []PersistAccount{
			{Category: "Savings", FirstName: "Jane", LastName: "Doe", DOB: "2/2/1991", Balance: decimal.RequireFromString("200.50"), Loyal: true},
			{Category: "Checking", FirstName: "John", LastName: "Doe", DOB: "1/1/1990", Balance: decimal.RequireFromString("100")},
			{Category: "College Checking", FirstName: "Al", LastName: "Smith", DOB: "3/3/2003", Balance: decimal.RequireFromString("15.05"), Campus: 2},
			{Category: "Money Market", FirstName: "Al", LastName: "Smith", DOB: "3/3/2003", Balance: decimal.RequireFromString("2500"), Withdrawals: 4},
		},
	}
}

func assertSameAccounts(t *testing.T, want, got []PersistAccount) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Balance.Equal(got[i].Balance), "balance %d: want %s got %s", i, want[i].Balance, got[i].Balance)
		w, g := want[i], got[i]
		w.Balance, g.Balance = decimal.Zero, decimal.Zero
		assert.Equal(t, w, g, "account %d", i)
	}
}

func TestJSONSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	store := NewJSONStore(path)
	orig := sampleSnapshot()

	require.NoError(t, store.Save(context.Background(), orig))
	_, err := os.Stat(path)
	require.NoError(t, err, "snapshot not written")
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "json_snapshot", loaded.Meta.Storage)
	assert.Equal(t, CurrentVersion, loaded.Meta.Version)
	assert.Equal(t, "test", loaded.Meta.Note)
	assert.NotEmpty(t, loaded.Meta.ID)
	assertSameAccounts(t, orig.Accounts, loaded.Accounts)
}

func TestJSONLoadMissingFile(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestJSONLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewJSONStore(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestJSONSaveRenameFailureCleansUp(t *testing.T) {
	// 目標路徑是非空目錄時 rename 必定失敗
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o750))

	err := NewJSONStore(path).Save(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename snapshot")
	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "temporary file left behind")
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "bank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	orig := sampleSnapshot()
	require.NoError(t, store.Save(ctx, orig))

	// 第二次保存應完全取代前一次內容
	orig.Accounts = orig.Accounts[1:]
	require.NoError(t, store.Save(ctx, orig))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite_snapshot", loaded.Meta.Storage)
	assert.Equal(t, CurrentVersion, loaded.Meta.Version)
	assert.False(t, loaded.Meta.Timestamp.IsZero())
	assertSameAccounts(t, orig.Accounts, loaded.Accounts)
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ Store = (*JSONStore)(nil)
	var _ Store = (*SQLiteStore)(nil)
}
