package custodyd

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/custody/coin"
	"github.com/iov-one/custody/commands"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/authz"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/vault"
)

// we fix the private keys here for deterministic output with the same encoding
// these are not secure at all, but the only point is to check the format,
// which is easier when everything is reproduceable.
var (
	source = makePrivKey("1234567890")
	signer = makePrivKey("F00BA411")
	dst    = makePrivKey("00CAFE00F00D").Address()
)

// makePrivKey repeats the string as long as needed to get 64 digits, then
// parses it as hex.
//
// nothing random about it, but at least it gives us variety
func makePrivKey(seed string) *crypto.PrivateKey {
	rep := 64/len(seed) + 1
	in := strings.Repeat(seed, rep)[:64]
	key, err := crypto.PrivKeyFromHex(in)
	if err != nil {
		panic(err)
	}
	return key
}

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	registryID := orm.EncodeSequence(1)
	vaultID := orm.EncodeSequence(1)
	vaultAddr := vault.Condition(vaultID).Address()
	eth := coin.NewCoinp(1, 500000000, "ETH")

	wallet := &cash.Set{
		Coins: coin.Coins{coin.NewCoinp(50000, 12345, "ETH")},
	}
	send := &cash.SendMsg{
		Source:      source.Address(),
		Destination: vaultAddr,
		Amount:      eth,
		Memo:        "deposit",
	}

	createRegistry := &authz.CreateRegistryMsg{Admin: source.Address()}
	authorize := &authz.AuthorizeMsg{RegistryID: registryID, Signer: signer.Address()}
	revoke := &authz.RevokeMsg{RegistryID: registryID, Signer: signer.Address()}

	createVault := &vault.CreateVaultMsg{RegistryID: registryID, Ticker: "ETH"}
	deposit := &vault.DepositMsg{VaultID: vaultID, Source: source.Address(), Amount: eth}

	authID, err := hex.DecodeString(strings.Repeat("33", 32))
	if err != nil {
		panic(err)
	}
	withdrawSig, err := vault.SignWithdrawal(signer, vaultAddr, dst, *eth, authID)
	if err != nil {
		panic(err)
	}
	withdraw := &vault.WithdrawMsg{
		VaultID:   vaultID,
		Recipient: dst,
		Amount:    eth,
		AuthID:    authID,
		Signature: withdrawSig,
	}

	unsigned := NewTx(send)
	tx := NewTx(send)
	sig, err := sigs.SignTx(source, tx, "test-123", 17)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "wallet", Obj: wallet},
		{Filename: "send_msg", Obj: send},
		{Filename: "create_registry_msg", Obj: createRegistry},
		{Filename: "authorize_msg", Obj: authorize},
		{Filename: "revoke_msg", Obj: revoke},
		{Filename: "create_vault_msg", Obj: createVault},
		{Filename: "deposit_msg", Obj: deposit},
		{Filename: "withdraw_msg", Obj: withdraw},
		{Filename: "unsigned_tx", Obj: unsigned},
		{Filename: "signed_tx", Obj: tx},
		{Filename: "withdraw_tx", Obj: NewTx(withdraw)},
	}
}
