// internal/storage/jsonstore.go
//
// 提供 JSON 快照的序列化與反序列化實作。
// 採「原子寫入」策略：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 寫入中途失敗時原檔不會損壞。

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONStore 將快照保存為單一 JSON 檔案。
type JSONStore struct {
	mu   sync.Mutex // 序列化同時進行的 Save，避免共用 .tmp 檔
	path string
}

// NewJSONStore 建立指向 path 的 JSON 快照儲存。
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load 讀取並解析快照；檔案不存在時回傳 ErrNoSnapshot。
func (s *JSONStore) Load(_ context.Context) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return snap, ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Save 將快照以縮排 JSON 寫入暫存檔，再原子替換正式檔案。
func (s *JSONStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Meta = stamp(snap.Meta, "json_snapshot")
	tmp := s.path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// stamp 填入儲存類型、版本、時間與新的快照 ID。
func stamp(m Meta, kind string) Meta {
	m.ID = uuid.NewString()
	m.Storage = kind
	m.Version = CurrentVersion
	m.Timestamp = time.Now().UTC()
	return m
}
