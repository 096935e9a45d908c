package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/char5742/touch-status/internal/config"
)

var errSavePathNotAllowed = errors.New("この場所には設定を保存できません")

// ルートの設定
func (s *Server) setupRoutes(router *http.ServeMux) {
	// タッチ状態関連のエンドポイント
	router.HandleFunc("GET /api/status", s.handleGetStatus)
	router.HandleFunc("GET /api/devices", s.handleGetDevices)
	router.HandleFunc("GET /api/threshold", s.handleGetThreshold)
	router.HandleFunc("PUT /api/threshold", s.handleSetThreshold)

	// 設定関連のエンドポイント
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("POST /api/config/save", s.handleSaveConfig)

	// サービス関連のエンドポイント
	router.HandleFunc("POST /api/service/start", s.handleStartService)
	router.HandleFunc("POST /api/service/stop", s.handleStopService)
	router.HandleFunc("GET /api/service/status", s.handleServiceStatus)

	// ヘルスチェック用エンドポイント
	router.HandleFunc("GET /api/health", s.handleHealthCheck)
}

// タッチ状態取得ハンドラ
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// デバイス一覧取得ハンドラ
func (s *Server) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap.Devices)
}

type thresholdBody struct {
	MotionThreshold *int `json:"motion_threshold"`
}

// 閾値取得ハンドラ
func (s *Server) handleGetThreshold(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"motion_threshold": s.GetConfig().Touch.MotionThreshold})
}

// 閾値変更ハンドラ
func (s *Server) handleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var body thresholdBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MotionThreshold == nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	if err := s.service.SetMotionThreshold(*body.MotionThreshold); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"motion_threshold": *body.MotionThreshold})
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetConfig())
}

// 設定保存ハンドラ
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var saveRequest struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&saveRequest); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	configPath, err := s.savePath(saveRequest.Path)
	if errors.Is(err, errSavePathNotAllowed) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		writeError(w, http.StatusInternalServerError, "設定の保存に失敗しました: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   configPath,
	})
}

// savePath は保存先を決める
// 起動時の設定ファイルかデフォルトの設定ディレクトリ以外には書き込まない
func (s *Server) savePath(requested string) (string, error) {
	defaultDir, dirErr := config.GetDefaultConfigDir()

	target := s.configPath
	if target == "" {
		if dirErr != nil {
			return "", fmt.Errorf("デフォルト設定ディレクトリの取得に失敗しました: %w", dirErr)
		}
		target = filepath.Join(defaultDir, "config.toml")
	}
	if requested == "" {
		return target, nil
	}

	path, err := filepath.Abs(requested)
	if err != nil {
		return "", err
	}
	if abs, err := filepath.Abs(target); err == nil && path == abs {
		return path, nil
	}
	if dirErr == nil && filepath.Dir(path) == filepath.Clean(defaultDir) {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", errSavePathNotAllowed, requested)
}

// サービス起動ハンドラ
func (s *Server) handleStartService(w http.ResponseWriter, r *http.Request) {
	err := s.service.Start()
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
	case err != nil:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの起動に失敗しました: %v", err))
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
	}
}

// サービス停止ハンドラ
func (s *Server) handleStopService(w http.ResponseWriter, r *http.Request) {
	err := s.service.Stop()
	switch {
	case errors.Is(err, ErrNotRunning):
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
	case err != nil:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの停止に失敗しました: %v", err))
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
	}
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if s.service.IsRunning() {
		status = "running"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
