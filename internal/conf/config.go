package conf

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfig 默认配置
func DefaultConfig() Bootstrap {
	return Bootstrap{
		Server: Server{
			HTTP: ServerHTTP{
				Port:      15123,
				Timeout:   Duration(60 * time.Second),
				AllowCORS: true,
				PProf: ServerPPROF{
					Enabled:   true,
					AccessIps: []string{"::1", "127.0.0.1"},
				},
			},
		},
		Data: Data{
			Database: Database{
				Dsn:             "configs/data.db",
				MaxIdleConns:    10,
				MaxOpenConns:    50,
				ConnMaxLifetime: Duration(6 * time.Hour),
				SlowThreshold:   Duration(200 * time.Millisecond),
			},
		},
		Log: Log{
			Dir:          "./logs",
			Level:        "info",
			MaxAge:       Duration(7 * 24 * time.Hour),
			RotationTime: Duration(12 * time.Hour),
			RotationSize: 50 * 1024 * 1024,
		},
		Motion: Motion{
			BackendTimeout: Duration(5 * time.Second),
			SpanSize:       30,
			HeatmapCap:     1000,
			GridRows:       9,
			GridCols:       16,
			FrameWidth:     1280,
			FrameHeight:    720,
			RetainDays:     30,
		},
	}
}

// SetupConfig 读取配置文件，文件不存在时写入默认配置
func SetupConfig(path string) (Bootstrap, error) {
	cfg := DefaultConfig()
	cfg.ConfigPath = path
	cfg.ConfigDir = filepath.Dir(path)

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, WriteConfig(&cfg, path)
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteConfig 将配置写回文件
func WriteConfig(cfg *Bootstrap, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
