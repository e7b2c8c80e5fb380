package web3

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"AgentFlow-Chain/internal/tool"
)

// Config describes how to reach an EVM compatible node.
type Config struct {
	Name   string
	RPCURL string
}

// ChainSnapshot represents summarized network metadata for health reporting.
type ChainSnapshot struct {
	Name        string `json:"name,omitempty"`
	ChainID     string `json:"chain_id"`
	BlockNumber string `json:"block_number"`
}

// Client serves chain-native tool invocations straight from the node.
type Client struct {
	name      string
	rpcClient *gethrpc.Client
	eth       *ethclient.Client
}

// Dial connects to the configured RPC endpoint and returns a ready client.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, errors.New("未配置以太坊 RPC 地址")
	}
	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接以太坊节点失败: %w", err)
	}
	return &Client{
		name:      cfg.Name,
		rpcClient: rpcClient,
		eth:       ethclient.NewClient(rpcClient),
	}, nil
}

// Close releases network connections held by the client.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
}

// FetchChainSnapshot gathers lightweight metadata from the chain.
func (c *Client) FetchChainSnapshot(ctx context.Context) (ChainSnapshot, error) {
	if c == nil || c.eth == nil {
		return ChainSnapshot{}, errors.New("未初始化的以太坊客户端")
	}
	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return ChainSnapshot{}, fmt.Errorf("获取链 ID 失败: %w", err)
	}
	blockNumber, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return ChainSnapshot{}, fmt.Errorf("获取最新区块高度失败: %w", err)
	}
	return ChainSnapshot{
		Name:        c.name,
		ChainID:     toHexBig(chainID),
		BlockNumber: fmt.Sprintf("0x%x", blockNumber),
	}, nil
}

// Invoke serves the chain-native subset of the capability catalog. Anything
// else falls through via tool.ErrUnsupported.
func (c *Client) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	switch name {
	case "get_balance":
		addr, err := addressParam(params, "address")
		if err != nil {
			return nil, err
		}
		if c == nil || c.eth == nil {
			return nil, errors.New("未初始化的以太坊客户端")
		}
		balance, err := c.eth.BalanceAt(ctx, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("查询余额失败: %w", err)
		}
		return map[string]any{"address": addr.Hex(), "balance": toHexBig(balance)}, nil
	case "get_transaction_count":
		addr, err := addressParam(params, "address")
		if err != nil {
			return nil, err
		}
		if c == nil || c.eth == nil {
			return nil, errors.New("未初始化的以太坊客户端")
		}
		nonce, err := c.eth.PendingNonceAt(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("查询交易计数失败: %w", err)
		}
		return map[string]any{"address": addr.Hex(), "count": fmt.Sprintf("0x%x", nonce)}, nil
	default:
		return nil, tool.ErrUnsupported
	}
}

func addressParam(params map[string]any, key string) (common.Address, error) {
	raw, ok := params[key]
	if !ok {
		return common.Address{}, fmt.Errorf("缺少参数 %s", key)
	}
	value := strings.TrimSpace(fmt.Sprintf("%v", raw))
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("非法地址: %s", value)
	}
	return common.HexToAddress(value), nil
}

func toHexBig(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

var _ tool.Invoker = (*Client)(nil)
