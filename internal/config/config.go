package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"onchainblackjack/internal/blackjack"
)

const (
	EnvPrefix  = "BJD"
	FileName   = "bjd.toml"
	DefaultDir = ".bjd"
)

// Keys.
const (
	KeyHome           = "home"
	KeyABCIAddr       = "abci.addr"
	KeyABCITransport  = "abci.transport"
	KeyGatewayAddr    = "gateway.addr"
	KeyArchivePath    = "archive.path"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyOwner          = "house.owner"
	KeyOwnerPubKey    = "house.owner_pubkey"
	KeyHouseBalance   = "house.balance"
	KeyRequiredBet    = "house.required_bet"
	KeyWinningPayout  = "house.winning_payout"
	KeyFairnessSecret = "fairness.secret"
)

type Config struct {
	Home string

	ABCIAddr      string
	ABCITransport string
	// GatewayAddr and ArchivePath disable their component when empty.
	GatewayAddr string
	ArchivePath string

	LogLevel  string
	LogFormat string

	Owner        string
	OwnerPubKey  []byte
	HouseBalance sdkmath.Int
	Params       blackjack.Params

	FairnessSecret []byte
}

// New returns a viper instance with defaults and BJD_* environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := blackjack.DefaultParams()
	v.SetDefault(KeyHome, DefaultDir)
	v.SetDefault(KeyABCIAddr, "tcp://127.0.0.1:26658")
	v.SetDefault(KeyABCITransport, "socket")
	v.SetDefault(KeyGatewayAddr, "")
	v.SetDefault(KeyArchivePath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "plain")
	v.SetDefault(KeyOwner, "")
	v.SetDefault(KeyOwnerPubKey, "")
	v.SetDefault(KeyHouseBalance, "0")
	v.SetDefault(KeyRequiredBet, defaults.RequiredBet.String())
	v.SetDefault(KeyWinningPayout, defaults.WinningPayout.String())
	v.SetDefault(KeyFairnessSecret, "")
	return v
}

// BindFlags binds command flags whose names match config keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func Path(home string) string {
	return filepath.Join(home, "config", FileName)
}

// Load reads <home>/config/bjd.toml when present and validates the result.
// Invalid and missing keys are reported together.
func Load(v *viper.Viper) (Config, error) {
	home := v.GetString(KeyHome)
	if p := Path(home); fileExists(p) {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", p, err)
		}
	}

	cfg := Config{
		Home:          home,
		ABCIAddr:      strings.TrimSpace(v.GetString(KeyABCIAddr)),
		ABCITransport: strings.TrimSpace(v.GetString(KeyABCITransport)),
		GatewayAddr:   strings.TrimSpace(v.GetString(KeyGatewayAddr)),
		ArchivePath:   strings.TrimSpace(v.GetString(KeyArchivePath)),
		LogLevel:      strings.TrimSpace(v.GetString(KeyLogLevel)),
		LogFormat:     strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		Owner:         strings.TrimSpace(v.GetString(KeyOwner)),
	}

	var bad []string
	if cfg.Home == "" {
		bad = append(bad, KeyHome)
	}
	if cfg.ABCIAddr == "" {
		bad = append(bad, KeyABCIAddr)
	}
	if cfg.ABCITransport != "socket" && cfg.ABCITransport != "grpc" {
		bad = append(bad, KeyABCITransport+" (socket|grpc)")
	}
	if cfg.LogFormat != "plain" && cfg.LogFormat != "json" {
		bad = append(bad, KeyLogFormat+" (plain|json)")
	}
	if _, err := logOption(cfg.LogLevel); err != nil {
		bad = append(bad, KeyLogLevel)
	}
	if cfg.Owner == "" {
		bad = append(bad, KeyOwner)
	}

	var err error
	if cfg.OwnerPubKey, err = decodeHex(v.GetString(KeyOwnerPubKey)); err != nil || (len(cfg.OwnerPubKey) != 0 && len(cfg.OwnerPubKey) != 32) {
		bad = append(bad, KeyOwnerPubKey+" (32-byte hex)")
	}
	if cfg.FairnessSecret, err = decodeHex(v.GetString(KeyFairnessSecret)); err != nil || len(cfg.FairnessSecret) < 32 {
		bad = append(bad, KeyFairnessSecret+" (hex, at least 32 bytes)")
	}

	amounts := map[string]*sdkmath.Int{
		KeyHouseBalance:  &cfg.HouseBalance,
		KeyRequiredBet:   &cfg.Params.RequiredBet,
		KeyWinningPayout: &cfg.Params.WinningPayout,
	}
	for _, key := range []string{KeyHouseBalance, KeyRequiredBet, KeyWinningPayout} {
		n, ok := sdkmath.NewIntFromString(strings.TrimSpace(v.GetString(key)))
		if !ok || n.IsNegative() {
			bad = append(bad, key)
			continue
		}
		*amounts[key] = n
	}
	if !cfg.Params.RequiredBet.IsNil() && !cfg.Params.WinningPayout.IsNil() {
		if err := cfg.Params.Validate(); err != nil {
			bad = append(bad, KeyRequiredBet+"/"+KeyWinningPayout+": "+err.Error())
		}
	}

	if len(bad) > 0 {
		return Config{}, fmt.Errorf("missing/invalid config: %s", strings.Join(bad, ", "))
	}
	return cfg, nil
}

// Logger builds the daemon logger. A bare level ("debug") sets the global
// level; a module list ("x/blackjack:debug,*:info") filters per module.
func (c Config) Logger(w io.Writer) (log.Logger, error) {
	opt, err := logOption(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{opt}
	if c.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...), nil
}

func logOption(level string) (log.Option, error) {
	if strings.Contains(level, ":") {
		filter, err := log.ParseLogLevel(level)
		if err != nil {
			return nil, err
		}
		return log.FilterOption(filter), nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.LevelOption(lvl), nil
}

// WriteDefault writes v's current settings to <home>/config/bjd.toml. An
// existing file is left untouched.
func WriteDefault(v *viper.Viper, home string) (string, error) {
	p := Path(home)
	if fileExists(p) {
		return p, fmt.Errorf("config %s already exists", p)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("mkdir config: %w", err)
	}
	if err := v.WriteConfigAs(p); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return p, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
