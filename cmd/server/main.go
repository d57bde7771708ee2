// cmd/server/main.go

// 本服務以 RESTful API 提供帳戶資料庫：開戶、銷戶、存提款、排序列表、
// 利息報表與月結。此檔案負責組裝模組（config, logger, metrics, bank,
// storage, server），啟動 HTTP 伺服器，並於啟動時載入、結束時保存快照。

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"rubank/internal/bank"
	"rubank/internal/config"
	"rubank/internal/logger"
	"rubank/internal/metrics"
	"rubank/internal/server"
	"rubank/internal/storage"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "rubank",
	Short:        "Account database service",
	Long:         `rubank serves an in-memory account database over HTTP and snapshots it to JSON or SQLite.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./rubank.yaml)")
	rootCmd.Flags().String("addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 讀取設定檔與 RUBANK_* 環境變數，並套用 --addr 旗標。
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	if f := cmd.Flags().Lookup("addr"); f != nil {
		_ = v.BindPFlag("addr", f)
	}
	return config.Load(v, cfgFile)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.Log.Format, cfg.Log.Level)

	// 初始化指標與帳戶資料庫
	reg := prometheus.NewRegistry()
	b := bank.NewBank(bank.WithLogger(log), bank.WithMetrics(metrics.New(reg)))

	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := restore(cmd.Context(), store, b); err != nil {
		return err
	}

	persist := newPersist(store, b)

	s := server.NewServer(b, persist, server.WithLogger(log), server.WithGatherer(reg))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 監聽 SIGINT/SIGTERM；收到訊號後優雅關閉，並於結束前保存狀態
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("account database listening", "addr", cfg.Addr, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	waitErr := g.Wait()

	if persist != nil {
		if err := persist(); err != nil {
			return errors.Join(waitErr, fmt.Errorf("saving snapshot: %w", err))
		}
	}
	return waitErr
}

// openStore 依設定建立儲存後端；backend 為 none 時回傳 nil Store。
func openStore(c config.StorageConfig) (storage.Store, func(), error) {
	switch c.Backend {
	case config.StorageJSON:
		return storage.NewJSONStore(c.Path), func() {}, nil
	case config.StorageSQLite:
		s, err := storage.NewSQLiteStore(c.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

// newPersist 回傳將目前狀態寫入儲存層的鉤子；未設定儲存時回傳 nil。
// 快照與寫入在同一把鎖內完成，最後寫入的一定是最新狀態。
func newPersist(store storage.Store, b *bank.Bank) func() error {
	if store == nil {
		return nil
	}
	var mu sync.Mutex
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		return store.Save(context.Background(), b.Snapshot())
	}
}

// restore 從上次的快照載入資料；若沒有快照則以空資料庫啟動。
func restore(ctx context.Context, store storage.Store, b *bank.Bank) error {
	if store == nil {
		return nil
	}
	snap, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	if err := b.Restore(snap); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	return nil
}

// discard 供不需要輸出日誌的子命令使用。
func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }
