package custodyd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultTicker is the currency the development genesis is funded with.
const DefaultTicker = "ETH"

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode
//
// You can set the ticker and the address of the funded account. When no
// address is given, a new key is generated and printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := DefaultTicker
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, fmt.Errorf("invalid ticker %s", ticker)
		}
	}

	var addr custody.Address
	if len(args) > 1 {
		var err error
		if addr, err = custody.ParseAddress(args[1]); err != nil {
			return nil, err
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the secret
		var keys string
		var err error
		addr, keys, err = GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		fmt.Println(keys)
	}

	opts := fmt.Sprintf(`
          {
            "cash": [
              {
                "address": "%s",
                "coins": ["123456789 %s"]
              }
            ],
            "authz": [],
            "vault": []
          }
	`, addr.Hex(), ticker)
	return []byte(opts), nil
}

// GenerateApp is used to create a stub for server/start.go command.
// Transaction metrics are registered with reg, if provided.
func GenerateApp(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "custody.db")
	}

	var metrics *utils.Metrics
	if reg != nil {
		var err error
		if metrics, err = utils.NewMetrics(reg); err != nil {
			return nil, err
		}
	}

	stack := Stack(metrics)
	application, err := Application("custodyd", stack, TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers())

	// set the logger and return
	application.WithLogger(logger)
	return application, nil
}

type output struct {
	Address string `json:"address"`
	Secret  string `json:"secret"`
}

// GenerateCoinKey returns the address of a new key,
// along with a json representation of the keys.
// You can give coins to this address and
// import the secret in any Ethereum wallet to use them.
func GenerateCoinKey() (custody.Address, string, error) {
	privKey, err := crypto.GenPrivKey()
	if err != nil {
		return nil, "", err
	}
	addr := privKey.Address()

	out := output{Address: addr.Hex(), Secret: privKey.Hex()}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return addr, string(keys), nil
}
