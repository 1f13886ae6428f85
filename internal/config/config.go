// Package config defines the two named network environments and the
// file/env loader layered on top of them. There is no process-wide
// selected environment: an Environment value is constructed once and
// threaded explicitly through every component that needs it.
package config

import (
	"errors"
	"fmt"

	"github.com/Blockchain-Oracle/stellar-guard-sub000/internal/oracle"
)

// Environment is one named network with its RPC endpoint, contract
// addresses, oracle table and the network identifier string mixed into
// every transaction signature.
type Environment struct {
	Name              string       `mapstructure:"name"`
	NetworkPassphrase string       `mapstructure:"network_passphrase"`
	RPCURL            string       `mapstructure:"rpc_url"`
	OrderContract     string       `mapstructure:"order_contract"`
	RouterContract    string       `mapstructure:"router_contract"`
	LoanContract      string       `mapstructure:"loan_contract"`
	JournalPath       string       `mapstructure:"journal_path"`
	Oracles           oracle.Table `mapstructure:"oracles"`
}

// Environment names.
const (
	EnvTest       = "test"
	EnvProduction = "production"
)

// Test returns the test-network environment with its static oracle
// table.
func Test() Environment {
	return Environment{
		Name:              EnvTest,
		NetworkPassphrase: "Test SDF Network ; September 2015",
		RPCURL:            "https://soroban-testnet.stellar.org",
		JournalPath:       "stellarguard-journal",
		Oracles: oracle.Table{
			External:    "CCYOZJCOPG34LLQQ7N24YXBM7LL62R7ONMZ3G6WZAAYPB5OYKOMJRN63",
			NativeChain: "CAVLP5DH2GJPZMVO7IJY4CVOD5MWEFTJFVPD2YY2FQXOQHRGHK4D6HLP",
			Forex:       "CCSSOHTBL3LEWUCBBEB5NJFC2OKFRC74OWEIJIZLRJBGAAU4VMU5NV4W",
		},
	}
}

// Production returns the public-network environment with its static
// oracle table.
func Production() Environment {
	return Environment{
		Name:              EnvProduction,
		NetworkPassphrase: "Public Global Stellar Network ; September 2015",
		RPCURL:            "https://soroban.stellar.org",
		JournalPath:       "stellarguard-journal",
		Oracles: oracle.Table{
			External:    "CAFJZQWSED6YAWZU3GWRTOCNPPCGBN32L7QV43XX5LZLFTK6JLN34DLN",
			NativeChain: "CALI2BYU2JE6WVRUFYTS6MSBNEHGJ35P4AVCZYF3B6QOE3QKOB2PLE6M",
			Forex:       "CBKGPWGKSKZF52CFHMTRR23TBWTPMRDIYZ4O2P5VS65BMHYH4DXMCJZC",
		},
	}
}

// ByName returns the built-in environment with the given name.
func ByName(name string) (Environment, error) {
	switch name {
	case EnvTest:
		return Test(), nil
	case EnvProduction:
		return Production(), nil
	}
	return Environment{}, fmt.Errorf("unknown environment %q", name)
}

// Validate checks that the environment can actually drive transactions.
func Validate(env Environment) error {
	if env.NetworkPassphrase == "" {
		return errors.New("network passphrase must not be empty")
	}
	if env.RPCURL == "" {
		return errors.New("rpc url must not be empty")
	}
	if env.OrderContract == "" {
		return errors.New("order contract address must not be empty")
	}
	if env.Oracles.External == "" || env.Oracles.NativeChain == "" || env.Oracles.Forex == "" {
		return errors.New("all three oracle roles must be populated; the static table is the live router's fallback")
	}
	return nil
}
