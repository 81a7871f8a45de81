package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"path/filepath"

	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	dirConfig   = "config"
	genesisFile = "genesis.json"
	flagForce   = "f"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

// InitCmd will try to update the genesis file with the application state.
// The genesis file must exist, it is created by "tendermint init".
//
// An existing app_state is kept, unless -f is given.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	var force bool
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	initFlags.BoolVar(&force, flagForce, false, "overwrite existing app_state")
	if err := initFlags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := filepath.Join(home, dirConfig, genesisFile)
	doc, err := loadGenesis(genFile)
	if err != nil {
		return err
	}

	if !force && hasAppState(doc) {
		return errors.Wrapf(errors.ErrState, "%s already has an %s, use -%s to overwrite", genFile, appStateKey, flagForce)
	}

	// no app_state, leave like tendermint
	if gen == nil {
		return nil
	}

	appState, err := gen(initFlags.Args())
	if err != nil {
		return err
	}
	if !json.Valid(appState) {
		return errors.Wrap(errors.ErrInput, "app state is not valid json")
	}
	doc[appStateKey] = appState

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(genFile, out, 0600); err != nil {
		return errors.Wrap(err, "cannot write genesis file")
	}
	logger.Info("App state written to genesis file", "path", genFile)
	return nil
}

func loadGenesis(filename string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "genesis file: %s", err)
	}
	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	return doc, nil
}

func hasAppState(doc GenesisDoc) bool {
	switch s := string(doc[appStateKey]); s {
	case "", "null", "{}":
		return false
	default:
		return true
	}
}
