package core

import (
	"fmt"

	"github.com/asaskevich/govalidator"
)

// Config bowerbird config
type Config struct {
	App         App         `json:"app"`
	DB          DB          `json:"db"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Addresses   Addresses   `json:"addresses"`
}

// App app config
type App struct {
	Genesis         int64 `json:"genesis"`
	SecondsPerBlock int64 `json:"seconds_per_block"`
	Port            int   `json:"port"`
}

// DB leveldb config
type DB struct {
	Path string `json:"path"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint  string `json:"end_point"`
	Threshold int    `json:"threshold"`
}

// Addresses contract identities hosted or referenced by this process
type Addresses struct {
	Owner  string `json:"owner"`
	USDL   string `json:"usdl"`
	BToken string `json:"btoken"`
	BNEO   string `json:"bneo"`
	Vault  string `json:"vault"`
	Oracle string `json:"oracle"`
}

// Validate checks the loaded config before anything opens the store.
func (c *Config) Validate() error {
	if c.PriceOracle.EndPoint != "" && !govalidator.IsURL(c.PriceOracle.EndPoint) {
		return fmt.Errorf("config: bad price oracle endpoint %q", c.PriceOracle.EndPoint)
	}

	if c.DB.Path == "" {
		return fmt.Errorf("config: db path required")
	}

	for name, addr := range map[string]string{
		"owner":  c.Addresses.Owner,
		"usdl":   c.Addresses.USDL,
		"btoken": c.Addresses.BToken,
		"bneo":   c.Addresses.BNEO,
		"vault":  c.Addresses.Vault,
		"oracle": c.Addresses.Oracle,
	} {
		if addr == "" {
			continue
		}
		if _, err := AddressFromString(addr); err != nil {
			return fmt.Errorf("config: bad %s address %q", name, addr)
		}
	}

	return nil
}
