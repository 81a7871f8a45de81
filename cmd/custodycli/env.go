package main

import (
	"os"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// defaultKeyPath is where keygen stores a new key unless told otherwise.
func defaultKeyPath() string {
	return env("CUSTODYCLI_PRIV_KEY", os.Getenv("HOME")+"/.custody.priv.key")
}

// defaultNode is the tendermint RPC address used unless told otherwise.
func defaultNode() string {
	return env("CUSTODYCLI_TM_ADDR", "http://localhost:26657")
}
