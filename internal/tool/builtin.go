package tool

import "net/http"

// DefaultDescriptors 返回内置的链上能力目录。
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        "transfer",
			Description: "向指定地址转账原生代币",
			Parameters: []Parameter{
				{Name: "to_address", Type: "string", Description: "收款地址，0x 开头", Required: true},
				{Name: "amount", Type: "string", Description: "转账数量", Required: true},
			},
			Examples: []string{"transfer 0.5 ETH to 0xABC"},
			Endpoint: "/transfer",
			Method:   http.MethodPost,
		},
		{
			Name:        "get_balance",
			Description: "查询地址的原生代币余额",
			Parameters: []Parameter{
				{Name: "address", Type: "string", Description: "待查询地址", Required: true},
			},
			Examples: []string{"check my balance"},
			Endpoint: "/balance/{address}",
			Method:   http.MethodGet,
		},
		{
			Name:        "deploy_erc20",
			Description: "部署一个 ERC20 代币合约",
			Parameters: []Parameter{
				{Name: "name", Type: "string", Description: "代币名称", Required: true},
				{Name: "symbol", Type: "string", Description: "代币符号", Required: true},
				{Name: "initial_supply", Type: "string", Description: "初始发行量", Required: true},
			},
			Examples: []string{"deploy a token called MyToken with 1 million supply"},
			Endpoint: "/deploy/erc20",
			Method:   http.MethodPost,
		},
		{
			Name:        "deploy_erc721",
			Description: "部署一个 ERC721 NFT 合约",
			Parameters: []Parameter{
				{Name: "name", Type: "string", Description: "合约名称", Required: true},
				{Name: "symbol", Type: "string", Description: "合约符号", Required: true},
			},
			Examples: []string{"create an NFT collection"},
			Endpoint: "/deploy/erc721",
			Method:   http.MethodPost,
		},
		{
			Name:        "fetch_price",
			Description: "查询加密资产的当前价格",
			Parameters: []Parameter{
				{Name: "symbol", Type: "string", Description: "资产符号，如 BTC、ETH、SOL", Required: true},
			},
			Examples: []string{"what is the price of Bitcoin"},
			Endpoint: "/price/{symbol}",
			Method:   http.MethodGet,
		},
		{
			Name:        "get_token_info",
			Description: "查询 ERC20 代币的元数据",
			Parameters: []Parameter{
				{Name: "token_address", Type: "string", Description: "代币合约地址", Required: true},
			},
			Endpoint: "/token/{token_address}",
			Method:   http.MethodGet,
		},
		{
			Name:        "get_token_balance",
			Description: "查询地址持有的 ERC20 代币余额",
			Parameters: []Parameter{
				{Name: "token_address", Type: "string", Description: "代币合约地址", Required: true},
				{Name: "address", Type: "string", Description: "持有人地址", Required: true},
			},
			Endpoint: "/token/{token_address}/balance/{address}",
			Method:   http.MethodGet,
		},
		{
			Name:        "mint_nft",
			Description: "在指定 NFT 合约上铸造一枚 NFT",
			Parameters: []Parameter{
				{Name: "contract_address", Type: "string", Description: "NFT 合约地址", Required: true},
				{Name: "to_address", Type: "string", Description: "接收地址", Required: true},
				{Name: "token_uri", Type: "string", Description: "元数据 URI", Required: false},
			},
			Endpoint: "/nft/mint",
			Method:   http.MethodPost,
		},
		{
			Name:        "get_nft_info",
			Description: "查询指定 NFT 的信息",
			Parameters: []Parameter{
				{Name: "contract_address", Type: "string", Description: "NFT 合约地址", Required: true},
				{Name: "token_id", Type: "string", Description: "NFT 编号", Required: true},
			},
			Endpoint: "/nft/{contract_address}/{token_id}",
			Method:   http.MethodGet,
		},
	}
}

// DefaultRegistry 基于内置目录构建 Registry。
func DefaultRegistry() *Registry {
	registry, err := NewRegistry(DefaultDescriptors()...)
	if err != nil {
		// 内置目录不含重名条目。
		panic(err)
	}
	return registry
}
