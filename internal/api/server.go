package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/char5742/touch-status/internal/config"
)

// Server はAPIサーバーを表す構造体
type Server struct {
	server     *http.Server
	service    *TouchService
	configPath string
	mutex      sync.Mutex
	port       int
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(service *TouchService, configPath string, port int) *Server {
	return &Server{
		service:    service,
		configPath: configPath,
		port:       port,
	}
}

// Handler はルーティング済みのハンドラーを返す
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	s.setupRoutes(router)
	return router
}

// Start はAPIサーバーを開始する
func (s *Server) Start() error {
	s.mutex.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}
	srv := s.server
	s.mutex.Unlock()

	log.Printf("APIサーバーを開始します: http://localhost:%d", s.port)
	return srv.ListenAndServe()
}

// Stop はAPIサーバーを停止する
func (s *Server) Stop(ctx context.Context) error {
	s.mutex.Lock()
	srv := s.server
	s.mutex.Unlock()

	if srv != nil {
		log.Println("APIサーバーを停止します...")
		return srv.Shutdown(ctx)
	}
	return nil
}

// GetConfig は現在の設定を返す
func (s *Server) GetConfig() *config.Config {
	return s.service.Config()
}

// writeJSON はJSONレスポンスを書き込む
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("JSONエンコードエラー: %v", err)
		}
	}
}

// writeError はエラーレスポンスを書き込む
func writeError(w http.ResponseWriter, status int, message string) {
	response := map[string]string{"error": message}
	writeJSON(w, status, response)
}
