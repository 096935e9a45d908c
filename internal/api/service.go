package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/char5742/touch-status/internal/config"
	"github.com/char5742/touch-status/internal/device"
	"github.com/char5742/touch-status/internal/touch"
)

var (
	ErrAlreadyRunning = errors.New("サービスは既に実行中です")
	ErrNotRunning     = errors.New("サービスは実行されていません")
)

// Opener は監視対象のデバイスを開き、閉じるための関数と一緒に返す
type Opener func(cfg config.DevicesConfig) ([]touch.Device, func(), error)

// OpenDevices はタッチデバイスを検出して開く
func OpenDevices(cfg config.DevicesConfig) ([]touch.Device, func(), error) {
	handles, err := device.Discover(cfg.Paths)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Grab {
		for _, h := range handles {
			if err := h.Grab(); err != nil {
				log.Printf("デバイスの専有に失敗しました[path=%s]: %v", h.Path, err)
			}
		}
	}

	return device.Devices(handles), func() { device.CloseAll(handles) }, nil
}

// DeviceSnapshot は1台のデバイスの状態
type DeviceSnapshot struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	Status touch.Status `json:"status"`
	Alive  bool         `json:"alive"`
	Error  string       `json:"error,omitempty"`
}

// Snapshot は全デバイスの状態
type Snapshot struct {
	Slide           bool             `json:"slide"`
	Click           bool             `json:"click"`
	None            bool             `json:"none"`
	MotionThreshold uint64           `json:"motion_threshold"`
	Devices         []DeviceSnapshot `json:"devices"`
}

// TouchService はタッチ状態の監視サービスを管理する構造体
type TouchService struct {
	cfg        *config.Config
	configPath string
	open       Opener

	// OnChange は状態が変化するたびに呼ばれる（nil の場合は呼ばない）
	OnChange func(Snapshot)
	// Override は再読み込みした設定に毎回適用される（コマンドライン引数の上書きなど）
	Override func(*config.Config)

	statusMutex sync.RWMutex
	running     bool
	listener    *touch.Listener
	closeDevs   func()
	watcher     *config.Watcher
	cancel      context.CancelFunc
	loopDone    chan struct{}
}

// NewTouchService は新しい監視サービスを作成する
// configPath が空でなければ設定ファイルの変更を監視する
func NewTouchService(cfg *config.Config, configPath string, open Opener) *TouchService {
	if open == nil {
		open = OpenDevices
	}
	return &TouchService{
		cfg:        cfg,
		configPath: configPath,
		open:       open,
	}
}

// Start は監視サービスを開始する
func (s *TouchService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	devices, closeDevs, err := s.open(s.cfg.Devices)
	if err != nil {
		return fmt.Errorf("デバイスのオープンに失敗しました: %w", err)
	}

	listener, err := touch.NewListener(devices, uint64(s.cfg.Touch.MotionThreshold))
	if err != nil {
		closeDevs()
		return fmt.Errorf("タッチ監視の開始に失敗しました: %w", err)
	}

	if s.configPath != "" {
		watcher, err := config.Watch(s.configPath, s.applyConfig)
		if err != nil {
			// 監視できなくてもサービス自体は動かす
			log.Printf("設定ファイルの監視に失敗しました: %v", err)
		}
		s.watcher = watcher
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.listener = listener
	s.closeDevs = closeDevs
	s.cancel = cancel
	s.loopDone = make(chan struct{})
	s.running = true

	log.Printf("タッチ監視を開始しました: %d 台 (閾値 %d px)", len(devices), s.cfg.Touch.MotionThreshold)
	go s.runStatusLoop(ctx, listener, s.loopDone)

	return nil
}

// Stop は監視サービスを停止する
// デバイスを閉じるとデコーダは読み込みエラーで終了する
func (s *TouchService) Stop() error {
	s.statusMutex.Lock()
	if !s.running {
		s.statusMutex.Unlock()
		return ErrNotRunning
	}

	s.running = false
	s.cancel()
	s.closeDevs()
	watcher := s.watcher
	s.watcher = nil
	done := s.loopDone
	s.statusMutex.Unlock()

	// 監視中のコールバックがロックを取るため、ロックを外してから止める
	if watcher != nil {
		watcher.Stop()
	}
	<-done
	log.Println("タッチ監視を停止しました")
	return nil
}

// IsRunning はサービスが実行中かどうかを返す
func (s *TouchService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// Config は現在の設定を返す
func (s *TouchService) Config() *config.Config {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.cfg
}

// SetMotionThreshold は移動と判定する最小ピクセル数を変更する
func (s *TouchService) SetMotionThreshold(pixels int) error {
	if pixels < 0 {
		return fmt.Errorf("閾値は0以上である必要があります: %d", pixels)
	}

	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	cfg := *s.cfg
	cfg.Touch.MotionThreshold = pixels
	s.cfg = &cfg

	if s.listener != nil {
		s.listener.SetMotionThreshold(uint64(pixels))
	}
	return nil
}

// Snapshot は現在の状態を返す
func (s *TouchService) Snapshot() (Snapshot, error) {
	s.statusMutex.RLock()
	listener := s.listener
	running := s.running
	s.statusMutex.RUnlock()

	if !running || listener == nil {
		return Snapshot{}, ErrNotRunning
	}
	return snapshotOf(listener), nil
}

func snapshotOf(l *touch.Listener) Snapshot {
	slide, click, none := l.Status()
	snap := Snapshot{
		Slide:           slide,
		Click:           click,
		None:            none,
		MotionThreshold: l.MotionThreshold(),
	}
	for _, ds := range l.Devices() {
		d := DeviceSnapshot{
			ID:     ds.ID,
			Name:   ds.Name,
			Status: ds.Load(),
			Alive:  ds.Alive(),
		}
		if err := ds.Err(); err != nil {
			d.Error = err.Error()
		}
		snap.Devices = append(snap.Devices, d)
	}
	return snap
}

// applyConfig は再読み込みした設定を反映する
// デバイスの構成は再起動するまで変わらない
func (s *TouchService) applyConfig(cfg *config.Config) {
	if s.Override != nil {
		s.Override(cfg)
	}

	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.cfg.Touch.MotionThreshold != cfg.Touch.MotionThreshold {
		log.Printf("閾値を変更しました: %d -> %d px", s.cfg.Touch.MotionThreshold, cfg.Touch.MotionThreshold)
		if s.listener != nil {
			s.listener.SetMotionThreshold(uint64(cfg.Touch.MotionThreshold))
		}
	}
	s.cfg = cfg
}

// runStatusLoop は状態の変化を待ってログと通知を行う
func (s *TouchService) runStatusLoop(ctx context.Context, l *touch.Listener, done chan struct{}) {
	defer close(done)

	for {
		err := l.WaitContext(ctx)
		if err != nil {
			if errors.Is(err, touch.ErrDisconnected) {
				log.Println("すべてのタッチデバイスが切断されました")
			}
			return
		}

		snap := snapshotOf(l)
		if s.Config().Log.StatusChanges {
			log.Printf("タッチ状態: slide=%t click=%t none=%t", snap.Slide, snap.Click, snap.None)
		}
		if s.OnChange != nil {
			s.OnChange(snap)
		}
	}
}
