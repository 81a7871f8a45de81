/*
Package custodyd links together all the various components
to construct the custody node.
*/
package custodyd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/store/iavl"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/replay"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/utils"
	"github.com/iov-one/custody/x/vault"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery.
//
// Metrics are optional, a nil decorator is skipped.
func Chain(metrics *utils.Metrics) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		// withdrawals are authorized by their own signature and can be
		// relayed by anyone, unsigned
		sigs.NewDecorator().AllowMissingSigs(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a default router, dispatching to the wallet, registry and
// vault handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()

	bank := cash.NewController(cash.NewBucket())
	registry := authz.NewController()

	cash.RegisterRoutes(r, authFn, bank)
	authz.RegisterRoutes(r, authFn, registry)
	vault.RegisterRoutes(r, authFn, vault.NewController(registry, replay.NewGuard(), bank))
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/wallets", "/auth", "/registries", "/authorizations",
// "/vaults" and "/consumed"
func QueryRouter() custody.QueryRouter {
	r := custody.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		authz.RegisterQuery,
		replay.RegisterQuery,
		vault.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis loaders of all extensions. Registries
// are created before the vaults referencing them.
func Initializers() custody.Initializer {
	return custody.ChainInitializers(
		cash.Initializer{},
		authz.Initializer{},
		vault.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(metrics *utils.Metrics) custody.Handler {
	authFn := Authenticator()
	return Chain(metrics).WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h custody.Handler,
	tx custody.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (custody.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
