package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/browser"

	"github.com/char5742/touch-status/internal/api"
	"github.com/char5742/touch-status/internal/config"
)

func main() {
	// コマンドライン引数の解析
	useApi := flag.Bool("api", false, "APIサーバーモードで起動します")
	configPath := flag.String("config", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	port := flag.Int("port", 0, "APIサーバーのポート番号 (0の場合は設定ファイルの値)")
	threshold := flag.Int("threshold", -1, "移動と判定する最小ピクセル数 (負の場合は設定ファイルの値)")
	openBrowser := flag.Bool("open", false, "APIサーバー起動後にブラウザで状態を表示します")
	flag.Parse()

	// デフォルト設定ファイルパスの設定
	defaultConfigPath := ""
	configDir, err := config.GetDefaultConfigDir()
	if err == nil {
		defaultConfigPath = filepath.Join(configDir, "config.toml")
	}

	// 設定ファイルパスの決定
	cfgPath := defaultConfigPath
	if *configPath != "" {
		cfgPath = *configPath
	}

	// 設定ファイルの読み込み
	var cfg *config.Config
	if cfgPath != "" {
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Printf("設定ファイルの読み込みに失敗しました: %v\nデフォルト設定を使用します\n", err)
			cfg = config.DefaultConfig()
		} else {
			fmt.Printf("設定ファイルを読み込みました: %s\n", cfgPath)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// コマンドライン引数で上書き（設定ファイルを再読み込みしても維持する）
	override := func(c *config.Config) {
		if *threshold >= 0 {
			c.Touch.MotionThreshold = *threshold
		}
		if *port > 0 {
			c.API.Port = *port
		}
		if *openBrowser {
			c.API.OpenBrowser = true
		}
	}
	override(cfg)

	service := api.NewTouchService(cfg, cfgPath, nil)
	service.Override = override

	// APIモードかCLIモードかを判断
	if *useApi {
		fmt.Printf("APIサーバーモードで起動します (ポート: %d)...\n", cfg.API.Port)
		runApiServer(service, cfgPath, cfg)
	} else {
		fmt.Println("CLIモードで起動します...")
		runCLI(service)
	}
}

// APIサーバーモードでの実行
func runApiServer(service *api.TouchService, cfgPath string, cfg *config.Config) {
	server := api.NewServer(service, cfgPath, cfg.API.Port)

	// デバイスがなくてもサーバーは起動し、後から /api/service/start で開始できる
	if err := service.Start(); err != nil {
		log.Printf("タッチ監視サービスを開始できませんでした: %v", err)
	}

	handleSignals(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
		if service.IsRunning() {
			_ = service.Stop()
		}
	})

	if cfg.API.OpenBrowser {
		go func() {
			time.Sleep(300 * time.Millisecond)
			url := fmt.Sprintf("http://localhost:%d/api/status", cfg.API.Port)
			if err := browser.OpenURL(url); err != nil {
				log.Printf("ブラウザを開けませんでした: %v", err)
			}
		}()
	}

	// サーバー起動
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("APIサーバーの起動に失敗しました: %v", err)
	}

	// 終了処理はhandleSignals内で行われる
	select {}
}

// CLIモードでの実行
func runCLI(service *api.TouchService) {
	service.OnChange = func(snap api.Snapshot) {
		fmt.Printf("slide=%t click=%t none=%t\n", snap.Slide, snap.Click, snap.None)
	}

	// タッチ監視サービス開始
	if err := service.Start(); err != nil {
		fmt.Printf("タッチ監視サービスの起動に失敗しました: %v\n", err)
		os.Exit(1)
	}

	handleSignals(func() {
		_ = service.Stop()
	})

	// シグナルが来るまで待機（終了処理はhandleSignals内で行われる）
	select {}
}

func handleSignals(cleanup func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("シャットダウンします...")
		cleanup()
		os.Exit(0)
	}()
}
