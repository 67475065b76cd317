package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/HabitChainLabs/HabitChainBackend/model"
	"github.com/HabitChainLabs/HabitChainBackend/pkg/xzap"
	"github.com/HabitChainLabs/HabitChainBackend/wallet"
)

// Config is the application's global configuration.
type Config struct {
	Api         *ApiConf      `toml:"api" mapstructure:"api" json:"api"`
	Monitor     *Monitor      `toml:"monitor" mapstructure:"monitor" json:"monitor"`
	Log         *xzap.LogConf `toml:"log" mapstructure:"log" json:"log"`
	Kv          *KvConf       `toml:"kv" mapstructure:"kv" json:"kv"`
	DB          *model.DBConfig `toml:"db" mapstructure:"db" json:"db"`
	ChainCfg    ChainCfg      `toml:"chain_cfg" mapstructure:"chain_cfg" json:"chain_cfg"`
	ContractCfg ContractCfg   `toml:"contract_cfg" mapstructure:"contract_cfg" json:"contract_cfg"`
	WalletCfg   WalletCfg     `toml:"wallet_cfg" mapstructure:"wallet_cfg" json:"wallet_cfg"`
	AiCfg       AiCfg         `toml:"ai_cfg" mapstructure:"ai_cfg" json:"ai_cfg"`
	IpfsCfg     IpfsCfg       `toml:"ipfs_cfg" mapstructure:"ipfs_cfg" json:"ipfs_cfg"`
}

// ApiConf is the HTTP listener config.
type ApiConf struct {
	Port string `toml:"port" mapstructure:"port" json:"port"`
}

// ChainCfg carries the target chain parameters, including everything the
// wallet add-chain prompt needs.
type ChainCfg struct {
	Name            string   `toml:"name" mapstructure:"name" json:"name"`
	ID              int64    `toml:"id" mapstructure:"id" json:"id"`
	RpcUrls         []string `toml:"rpc_urls" mapstructure:"rpc_urls" json:"rpc_urls"`
	ExplorerUrl     string   `toml:"explorer_url" mapstructure:"explorer_url" json:"explorer_url"`
	CurrencyName    string   `toml:"currency_name" mapstructure:"currency_name" json:"currency_name"`
	CurrencySymbol  string   `toml:"currency_symbol" mapstructure:"currency_symbol" json:"currency_symbol"`
	CurrencyDecimal int      `toml:"currency_decimal" mapstructure:"currency_decimal" json:"currency_decimal"`
}

// Params converts the config shape to the wallet package's chain params.
func (c ChainCfg) Params() wallet.ChainParams {
	return wallet.ChainParams{
		ID:   c.ID,
		Name: c.Name,
		Currency: wallet.NativeCurrency{
			Name:     c.CurrencyName,
			Symbol:   c.CurrencySymbol,
			Decimals: c.CurrencyDecimal,
		},
		RPCURLs:     c.RpcUrls,
		ExplorerURL: c.ExplorerUrl,
	}
}

// ContractCfg holds the deployed contract addresses.
type ContractCfg struct {
	LedgerAddress string `toml:"ledger_address" mapstructure:"ledger_address" json:"ledger_address"`
	TokenAddress  string `toml:"token_address" mapstructure:"token_address" json:"token_address"`
}

// WalletCfg tunes connector classification and auto-connect.
type WalletCfg struct {
	AutoConnect bool `toml:"auto_connect" mapstructure:"auto_connect" json:"auto_connect"`
}

// AiCfg configures the recommendation engine.
type AiCfg struct {
	ApiKey string `toml:"api_key" mapstructure:"api_key" json:"api_key"`
	Model  string `toml:"model" mapstructure:"model" json:"model"`
}

// IpfsCfg configures the pinning uploader; an empty endpoint disables it.
type IpfsCfg struct {
	Endpoint string `toml:"endpoint" mapstructure:"endpoint" json:"endpoint"`
	Token    string `toml:"token" mapstructure:"token" json:"token"`
}

// Monitor is the pprof config.
type Monitor struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"`
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`
}

// KvConf is the KV store (Redis) config.
type KvConf struct {
	Redis []*Redis `toml:"redis" json:"redis"`
}

// Redis is one Redis node.
type Redis struct {
	Host string `toml:"host" json:"host"`
	Type string `toml:"type" json:"type"`
	Pass string `toml:"pass" json:"pass"`
}

// UnmarshalConfig loads and parses the config file at the given path.
func UnmarshalConfig(configFilePath string) (*Config, error) {
	viper.SetConfigFile(configFilePath)
	viper.SetConfigType("toml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("HABIT")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// UnmarshalCmdConfig parses the config file already discovered by the root
// command.
func UnmarshalCmdConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}
