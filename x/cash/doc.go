/*
Package cash is the value ledger of the chain: a set of wallets, each
holding a balance per ticker.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

Other extensions own wallets as well. A vault keeps its deposits in the
wallet of its condition derived address and releases them with MoveCoins.
*/
package cash
