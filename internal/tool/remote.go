package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	xerrors "AgentFlow-Chain/internal/errors"
)

const defaultRemoteTimeout = 30 * time.Second

// RemoteInvoker 通过 HTTP 调用工具后端。目标路径来自工具描述的
// Endpoint，路径中的 {param} 由同名参数替换，GET 请求的剩余参数编码
// 为查询串，POST 请求的剩余参数编码为 JSON 请求体。
type RemoteInvoker struct {
	baseURL    string
	registry   *Registry
	httpClient *http.Client
}

// NewRemoteInvoker 构造 HTTP 工具执行器。
func NewRemoteInvoker(baseURL string, registry *Registry) (*RemoteInvoker, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "工具后端地址不能为空")
	}
	if registry == nil {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "工具目录不能为空")
	}
	return &RemoteInvoker{
		baseURL:    baseURL,
		registry:   registry,
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
	}, nil
}

// Invoke 实现 Invoker 接口。
func (r *RemoteInvoker) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	desc, ok := r.registry.Lookup(name)
	if !ok {
		return nil, ErrUnknownTool
	}
	if desc.Endpoint == "" {
		return nil, ErrUnsupported
	}

	path, remaining := substitutePath(desc.Endpoint, params)
	method := desc.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	endpoint := r.baseURL + path
	if method == http.MethodGet {
		if len(remaining) > 0 {
			endpoint += "?" + encodeQuery(remaining)
		}
	} else {
		encoded, err := json.Marshal(remaining)
		if err != nil {
			return nil, xerrors.Wrap(CodeToolExecution, err, "编码工具参数失败")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, xerrors.Wrap(CodeToolExecution, err, "构建工具请求失败")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, xerrors.Wrap(CodeToolExecution, err, fmt.Sprintf("调用工具 %s 失败", name))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, xerrors.Wrap(CodeToolExecution, err, "读取工具响应失败")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, xerrors.New(CodeToolExecution,
			fmt.Sprintf("工具 %s 返回错误状态 %d: %s", name, resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// 后端偶尔返回纯文本，按原样透传。
		return strings.TrimSpace(string(raw)), nil
	}
	return decoded, nil
}

// substitutePath 替换路径中的 {param} 占位符，返回剩余参数。
func substitutePath(endpoint string, params map[string]any) (string, map[string]any) {
	remaining := make(map[string]any, len(params))
	for key, value := range params {
		remaining[key] = value
	}
	segments := strings.Split(endpoint, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		key := segment[1 : len(segment)-1]
		value, ok := remaining[key]
		if !ok {
			continue
		}
		segments[i] = url.PathEscape(fmt.Sprintf("%v", value))
		delete(remaining, key)
	}
	return strings.Join(segments, "/"), remaining
}

func encodeQuery(params map[string]any) string {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, fmt.Sprintf("%v", value))
	}
	return values.Encode()
}

var _ Invoker = (*RemoteInvoker)(nil)
