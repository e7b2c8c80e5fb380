// Package web3 houses blockchain connectivity for the orchestration engine.
// It serves chain-native read capabilities (balances, transaction counts)
// directly from an Ethereum-compatible node and reports lightweight chain
// metadata for health endpoints. Capabilities it cannot serve fall through to
// the next invoker in the chain.
package web3
