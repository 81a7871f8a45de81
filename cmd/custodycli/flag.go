package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/coin"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *custody.Address {
	var a custody.Address
	if defaultVal != "" {
		var err error
		a, err = custody.ParseAddress(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q custody.Address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// flCoin returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flCoin(fl *flag.FlagSet, name, defaultVal, usage string) *coin.Coin {
	var c coin.Coin
	if defaultVal != "" {
		var err error
		c, err = coin.ParseHumanFormat(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q coin.Coin flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&c, name, usage)
	return &c
}

// flHex returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. A 0x
// prefix is accepted.
// If given value cannot be deserialized to required type, process is
// terminated.
func flHex(fl *flag.FlagSet, name, defaultVal, usage string) *flagbytes {
	var b flagbytes
	if defaultVal != "" {
		if err := b.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q hex encoded flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&b, name, usage)
	return &b
}

type flagbytes []byte

func (b flagbytes) String() string {
	return hex.EncodeToString(b)
}

func (b *flagbytes) Set(raw string) error {
	val, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// flSeq returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. The
// decimal value given is encoded as a sequence ID, the way registries and
// vaults are referenced.
// If given value cannot be deserialized to required type, process is
// terminated.
func flSeq(fl *flag.FlagSet, name, defaultVal, usage string) *flagseq {
	var s flagseq
	if defaultVal != "" {
		if err := s.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q sequence flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&s, name, usage)
	return &s
}

type flagseq []byte

func (s flagseq) String() string {
	if len(s) == 0 {
		return ""
	}
	n, err := fromSequence(s)
	if err != nil {
		return hex.EncodeToString(s)
	}
	return strconv.FormatUint(n, 10)
}

func (s *flagseq) Set(raw string) error {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return err
	}
	*s = sequenceID(n)
	return nil
}
