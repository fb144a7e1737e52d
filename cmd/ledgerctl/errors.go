package main

import "errors"

var errChainBroken = errors.New("ledger chain verification failed")
