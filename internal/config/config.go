package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	defaults = map[string]interface{}{
		"verbose":    false,
		"locale":     "en",
		"node.url":   "http://127.0.0.1:9009",
		"node.key":   "",
		"wallet.key": "",
		"datadir":    "",
	}
)

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func GetConfig() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("ovote")
	viper.AddConfigPath("/etc/ovote/")
	viper.AddConfigPath("$HOME/.ovote")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("OVOTE")
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error
			logrus.New().Warnf("no config found")
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	c := &Config{
		node: &Node{
			URL: viper.GetString("node.url"),
			Key: viper.GetString("node.key"),
		},
		walletKey: viper.GetString("wallet.key"),
		locale:    viper.GetString("locale"),
		dataDir:   viper.GetString("datadir"),
	}

	if c.dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "resolving home dir")
		}
		c.dataDir = filepath.Join(home, ".ovote")
	}

	if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.WithField("level", "debug").Debug("setting log level")
	}

	return c, nil
}

type Config struct {
	node      *Node
	walletKey string
	locale    string
	dataDir   string
}

// Node is the JSON-RPC endpoint configuration.
type Node struct {
	URL string
	Key string
}

func (c *Config) Node() *Node {
	return c.node
}

// WalletKey is the hex-encoded signing key. Empty means read-only use.
func (c *Config) WalletKey() string {
	return c.walletKey
}

func (c *Config) Locale() string {
	return c.locale
}

func (c *Config) DataDir() string {
	return c.dataDir
}
