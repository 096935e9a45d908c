package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Touch   TouchConfig   `toml:"touch" json:"touch"`
	Devices DevicesConfig `toml:"devices" json:"devices"`
	API     APIConfig     `toml:"api" json:"api"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// TouchConfig はタッチ状態判定の設定
type TouchConfig struct {
	MotionThreshold int `toml:"motion_threshold" json:"motion_threshold"` // 移動と判定する最小ピクセル数
}

// DevicesConfig は監視するデバイスの設定
type DevicesConfig struct {
	Paths []string `toml:"paths" json:"paths"` // 空の場合は自動検出
	Grab  bool     `toml:"grab" json:"grab"`   // デバイスを専有するかどうか
}

// APIConfig はAPIサーバーの設定
type APIConfig struct {
	Port        int  `toml:"port" json:"port"`
	OpenBrowser bool `toml:"open_browser" json:"open_browser"`
}

// LogConfig はログ出力の設定
type LogConfig struct {
	StatusChanges bool `toml:"status_changes" json:"status_changes"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Touch: TouchConfig{
			MotionThreshold: 5,
		},
		Devices: DevicesConfig{
			Paths: []string{},
			Grab:  false,
		},
		API: APIConfig{
			Port:        8080,
			OpenBrowser: false,
		},
		Log: LogConfig{
			StatusChanges: true,
		},
	}
}

// Validate は設定値を検証する
func (c *Config) Validate() error {
	var errs []error
	if c.Touch.MotionThreshold < 0 {
		errs = append(errs, fmt.Errorf("motion_threshold は0以上である必要があります: %d", c.Touch.MotionThreshold))
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("port が範囲外です: %d", c.API.Port))
	}
	return errors.Join(errs...)
}

// GetDefaultConfigDir はデフォルトの設定ディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "touch-status"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	// 設定ファイルの読み込み
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return DefaultConfig(), err
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// ファイルを開く（なければ作成）
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
