package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile 是 YAML 工具目录的文件结构。
type catalogFile struct {
	Tools []Descriptor `yaml:"tools"`
}

// LoadCatalog 从 YAML 文件加载一组工具描述，用于在内置目录之外扩展能力。
func LoadCatalog(path string) ([]Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取工具目录失败: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("解析工具目录失败: %w", err)
	}
	return file.Tools, nil
}

// MergeDescriptors 在 base 之后追加 extra 中未重名的条目，保持顺序。
func MergeDescriptors(base, extra []Descriptor) []Descriptor {
	seen := make(map[string]struct{}, len(base))
	merged := make([]Descriptor, 0, len(base)+len(extra))
	for _, desc := range base {
		seen[desc.Name] = struct{}{}
		merged = append(merged, desc)
	}
	for _, desc := range extra {
		if _, ok := seen[desc.Name]; ok {
			continue
		}
		seen[desc.Name] = struct{}{}
		merged = append(merged, desc)
	}
	return merged
}
