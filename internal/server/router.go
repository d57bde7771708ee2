// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊。
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」
//   - cmd/server 組裝整體應用（注入 Bank、Storage、Persist Hook）
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 所有端點同時掛在 /api/v1 與根路徑下。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", s.routes)
	s.routes(r)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) routes(r chi.Router) {
	r.Get("/health", s.health)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.open)
		r.Get("/lookup", s.lookup)
		r.Post("/close", s.closeAccount)
		r.Post("/deposit", s.move(s.Bank.Deposit))
		r.Post("/withdraw", s.move(s.Bank.Withdraw))
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/interest", s.interest)
		r.Post("/update-balances", s.updateBalances)
	})
}
