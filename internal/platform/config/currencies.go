package config

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/orsa-labs/coa_ledger/internal/core/domain"
	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
)

// fileCurrency is one entry of the currency configuration file.
type fileCurrency struct {
	Code        string `mapstructure:"code"`
	NumericCode uint32 `mapstructure:"numericCode"`
	Decimals    uint   `mapstructure:"decimals"`
}

// CurrencyConfig serves the active currency list from a watched configuration
// file. A file change replaces the snapshot whole and notifies subscribers;
// readers never observe a half-updated list.
type CurrencyConfig struct {
	v        *viper.Viper
	snapshot atomic.Pointer[[]domain.Currency]

	mu          sync.Mutex
	subscribers []func()
}

// NewCurrencyConfig reads the currency file and starts watching it for hot
// reloads.
func NewCurrencyConfig(path string) (*CurrencyConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read currency file %s: %w", path, err)
	}

	c := &CurrencyConfig{v: v}
	if err := c.reload(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if err := c.reload(); err != nil {
			slog.Error("Currency file reload failed, keeping previous snapshot",
				slog.String("file", e.Name), slog.String("error", err.Error()))
			return
		}
		slog.Info("Currency snapshot reloaded", slog.String("file", e.Name))
		c.notify()
	})
	v.WatchConfig()

	return c, nil
}

// Ensure CurrencyConfig satisfies the currency collaborator contract.
var _ portssvc.CurrencySource = (*CurrencyConfig)(nil)

func (c *CurrencyConfig) reload() error {
	var raw struct {
		Currencies []fileCurrency `mapstructure:"currencies"`
	}
	if err := c.v.Unmarshal(&raw); err != nil {
		return fmt.Errorf("failed to parse currency file: %w", err)
	}
	if len(raw.Currencies) == 0 {
		return fmt.Errorf("currency file lists no currencies")
	}

	list := make([]domain.Currency, len(raw.Currencies))
	for i, entry := range raw.Currencies {
		if entry.Code == "" || entry.NumericCode == 0 {
			return fmt.Errorf("currency entry %d is missing code or numericCode", i)
		}
		list[i] = domain.Currency{
			Code:        entry.Code,
			NumericCode: entry.NumericCode,
			Decimals:    entry.Decimals,
		}
	}
	c.snapshot.Store(&list)
	return nil
}

func (c *CurrencyConfig) notify() {
	c.mu.Lock()
	subscribers := make([]func(), len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}

// GetCurrencies returns the current snapshot.
func (c *CurrencyConfig) GetCurrencies() []domain.Currency {
	return *c.snapshot.Load()
}

// Subscribe registers a hot-reload callback.
func (c *CurrencyConfig) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}
