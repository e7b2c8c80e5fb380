package tool

import (
	"fmt"
	"strings"

	xerrors "AgentFlow-Chain/internal/errors"
)

// Registry 是进程启动时构建的只读工具目录，保持注册顺序。
type Registry struct {
	ordered []Descriptor
	index   map[string]int
}

// NewRegistry 根据描述符构建目录。重复的工具名视为配置错误。
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		ordered: make([]Descriptor, 0, len(descriptors)),
		index:   make(map[string]int, len(descriptors)),
	}
	for _, desc := range descriptors {
		name := strings.TrimSpace(desc.Name)
		if name == "" {
			return nil, xerrors.New(xerrors.CodeInvalidArgument, "工具名不能为空")
		}
		if _, ok := r.index[name]; ok {
			return nil, xerrors.New(xerrors.CodeConflict, fmt.Sprintf("工具 %s 重复注册", name))
		}
		desc.Name = name
		r.index[name] = len(r.ordered)
		r.ordered = append(r.ordered, desc)
	}
	return r, nil
}

// Lookup 按名称查找工具描述。
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	idx, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.ordered[idx], true
}

// Contains 判断工具是否存在。
func (r *Registry) Contains(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names 返回注册顺序下的全部工具名。
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.ordered))
	for _, desc := range r.ordered {
		names = append(names, desc.Name)
	}
	return names
}

// Descriptors 返回全部工具描述的副本。
func (r *Registry) Descriptors() []Descriptor {
	if r == nil {
		return nil
	}
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len 返回目录大小。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordered)
}
