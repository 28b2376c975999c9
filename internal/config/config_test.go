package config

import (
	"bytes"
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("ab", 32)

func TestLoad_FromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BJD_HOME", home)
	t.Setenv("BJD_HOUSE_OWNER", "casino")
	t.Setenv("BJD_HOUSE_REQUIRED_BET", "10")
	t.Setenv("BJD_HOUSE_WINNING_PAYOUT", "20")
	t.Setenv("BJD_HOUSE_BALANCE", "1000")
	t.Setenv("BJD_FAIRNESS_SECRET", testSecret)
	t.Setenv("BJD_LOG_FORMAT", "JSON")

	cfg, err := Load(New())
	require.NoError(t, err)
	require.Equal(t, home, cfg.Home)
	require.Equal(t, "casino", cfg.Owner)
	require.Equal(t, "10", cfg.Params.RequiredBet.String())
	require.Equal(t, "20", cfg.Params.WinningPayout.String())
	require.Equal(t, "1000", cfg.HouseBalance.String())
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "socket", cfg.ABCITransport)
	require.Len(t, cfg.FairnessSecret, 32)
	require.Empty(t, cfg.GatewayAddr)
}

func TestLoad_ReportsEveryBadKey(t *testing.T) {
	t.Setenv("BJD_HOME", t.TempDir())
	t.Setenv("BJD_ABCI_TRANSPORT", "carrier-pigeon")
	t.Setenv("BJD_HOUSE_REQUIRED_BET", "-1")
	t.Setenv("BJD_HOUSE_OWNER_PUBKEY", "abcd")

	_, err := Load(New())
	require.Error(t, err)
	for _, key := range []string{KeyOwner, KeyFairnessSecret, KeyABCITransport, KeyRequiredBet, KeyOwnerPubKey} {
		require.Contains(t, err.Error(), key)
	}
}

func TestLoad_RejectsPayoutBelowBet(t *testing.T) {
	t.Setenv("BJD_HOME", t.TempDir())
	t.Setenv("BJD_HOUSE_OWNER", "casino")
	t.Setenv("BJD_FAIRNESS_SECRET", testSecret)
	t.Setenv("BJD_HOUSE_REQUIRED_BET", "300")

	_, err := Load(New())
	require.ErrorContains(t, err, KeyWinningPayout)
}

func TestWriteDefault_ThenLoadFile(t *testing.T) {
	home := t.TempDir()
	v := New()
	v.Set(KeyHome, home)
	v.Set(KeyOwner, "casino")
	v.Set(KeyFairnessSecret, testSecret)
	v.Set(KeyGatewayAddr, "127.0.0.1:8080")

	p, err := WriteDefault(v, home)
	require.NoError(t, err)
	_, err = os.Stat(p)
	require.NoError(t, err)

	_, err = WriteDefault(v, home)
	require.Error(t, err)

	fresh := New()
	fresh.Set(KeyHome, home)
	cfg, err := Load(fresh)
	require.NoError(t, err)
	require.Equal(t, "casino", cfg.Owner)
	require.Equal(t, "127.0.0.1:8080", cfg.GatewayAddr)
	secret, _ := hex.DecodeString(testSecret)
	require.Equal(t, secret, cfg.FairnessSecret)
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: "json"}
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"message":"shown"`)

	buf.Reset()
	cfg.LogLevel = "x/blackjack:debug,*:error"
	logger, err = cfg.Logger(&buf)
	require.NoError(t, err)
	logger.With("module", "x/blackjack").Debug("game")
	logger.With("module", "app").Info("quiet")
	require.Contains(t, buf.String(), "game")
	require.NotContains(t, buf.String(), "quiet")

	_, err = Config{LogLevel: "loud"}.Logger(&buf)
	require.Error(t, err)
}
