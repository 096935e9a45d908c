package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// 連続した書き込みをまとめるための待ち時間
const watchDebounce = 200 * time.Millisecond

// Watcher は設定ファイルの変更を監視する
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Config)
	stopChan chan struct{}
	done     chan struct{}
}

// Watch は設定ファイルの変更を監視し、読み込みに成功するたびに onChange を呼ぶ
//
// エディタは一時ファイルを作って置き換えることが多いため、ファイルではなくディレクトリを監視する
func Watch(configPath string, onChange func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  watcher,
		path:     absPath,
		onChange: onChange,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Stop は監視を停止する
func (w *Watcher) Stop() {
	select {
	case <-w.stopChan:
		return
	default:
	}
	close(w.stopChan)
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) run() {
	defer close(w.done)

	timer := time.NewTimer(watchDebounce)
	timer.Stop() // 初期状態では停止
	pending := false

	for {
		select {
		case <-w.stopChan:
			timer.Stop()
			return

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			cfg, err := LoadConfig(w.path)
			if err != nil {
				log.Printf("設定ファイルの再読み込みに失敗しました: %v", err)
				continue
			}
			log.Printf("設定ファイルを再読み込みしました: %s", w.path)
			w.onChange(cfg)

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// タイマーをリセットして複数のイベントをまとめて処理
			pending = true
			timer.Reset(watchDebounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("設定ファイル監視エラー: %v", err)
		}
	}
}
