package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds an Environment from layered sources in priority order:
// built-in defaults for the named environment, an optional config file,
// then STELLARGUARD_-prefixed environment variables. configPath may be
// empty.
func Load(envName, configPath string) (Environment, error) {
	base, err := ByName(envName)
	if err != nil {
		return Environment{}, err
	}

	v := viper.New()
	setDefaults(v, base)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return Environment{}, fmt.Errorf("config file does not exist: %s", configPath)
		}
		if err := v.ReadInConfig(); err != nil {
			return Environment{}, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("STELLARGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var env Environment
	if err := v.Unmarshal(&env); err != nil {
		return Environment{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(env); err != nil {
		return Environment{}, fmt.Errorf("config validation failed: %w", err)
	}
	return env, nil
}

func setDefaults(v *viper.Viper, base Environment) {
	v.SetDefault("name", base.Name)
	v.SetDefault("network_passphrase", base.NetworkPassphrase)
	v.SetDefault("rpc_url", base.RPCURL)
	v.SetDefault("order_contract", base.OrderContract)
	v.SetDefault("router_contract", base.RouterContract)
	v.SetDefault("loan_contract", base.LoanContract)
	v.SetDefault("journal_path", base.JournalPath)
	v.SetDefault("oracles.external", base.Oracles.External)
	v.SetDefault("oracles.nativechain", base.Oracles.NativeChain)
	v.SetDefault("oracles.forex", base.Oracles.Forex)
}
