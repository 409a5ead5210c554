package config

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where the badger stores are kept
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the network to use. Either "mainnet", "testnet3", "regtest" or "simnet"
	NetworkKey = "NETWORK"
	// DustThresholdKey is the amount in satoshis under which change is folded into the fee instead of being paid back to the wallet
	DustThresholdKey = "DUST_THRESHOLD"
	// ReorgDepthKey is the number of confirmations after which a spent utxo cannot be brought back by a chain reorg and gets pruned
	ReorgDepthKey = "REORG_DEPTH"
	// CoinSelectionStrategyKey is the strategy used to pick the utxos funding a transaction
	CoinSelectionStrategyKey = "COIN_SELECTION_STRATEGY"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("wallet-engine", false)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("WALLET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, chaincfg.MainNetParams.Name)
	vip.SetDefault(DustThresholdKey, 546)
	vip.SetDefault(ReorgDepthKey, 6)
	vip.SetDefault(CoinSelectionStrategyKey, "largestFirst")

	if err := validate(); err != nil {
		log.WithError(err).Panic("error while validating config")
	}

	log.SetLevel(log.Level(GetInt(LogLevelKey)))
}

//GetString ...
func GetString(key string) string {
	return vip.GetString(key)
}

//GetInt ...
func GetInt(key string) int {
	return vip.GetInt(key)
}

//GetBool ...
func GetBool(key string) bool {
	return vip.GetBool(key)
}

//GetNetwork ...
func GetNetwork() *chaincfg.Params {
	switch vip.GetString(NetworkKey) {
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams
	case chaincfg.SimNetParams.Name:
		return &chaincfg.SimNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

//GetDatadir ...
func GetDatadir() string {
	return GetString(DatadirKey)
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the given key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	logLevel := GetInt(LogLevelKey)
	if logLevel < int(log.PanicLevel) || logLevel > int(log.TraceLevel) {
		return fmt.Errorf(
			"log level must be in range [%d, %d]",
			log.PanicLevel, log.TraceLevel,
		)
	}

	networkName := GetString(NetworkKey)
	if networkName != chaincfg.MainNetParams.Name &&
		networkName != chaincfg.TestNet3Params.Name &&
		networkName != chaincfg.RegressionNetParams.Name &&
		networkName != chaincfg.SimNetParams.Name {
		return fmt.Errorf(
			"network must be one of '%s', '%s', '%s' or '%s'",
			chaincfg.MainNetParams.Name,
			chaincfg.TestNet3Params.Name,
			chaincfg.RegressionNetParams.Name,
			chaincfg.SimNetParams.Name,
		)
	}

	dustThreshold := GetInt(DustThresholdKey)
	if dustThreshold <= 0 {
		return fmt.Errorf("dust threshold must be a positive amount of satoshis")
	}

	reorgDepth := GetInt(ReorgDepthKey)
	if reorgDepth < 1 {
		return fmt.Errorf("reorg depth must be at least 1 block")
	}

	strategy := GetString(CoinSelectionStrategyKey)
	if strategy != "largestFirst" &&
		strategy != "smallestFirst" &&
		strategy != "minimizeChange" {
		return fmt.Errorf(
			"coin selection strategy must be one of 'largestFirst', 'smallestFirst' or 'minimizeChange'",
		)
	}

	return nil
}
