package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/lsview/internal/errors"
)

// AddSite adds a site to the config file at configPath, creating the file
// when it does not exist. Existing content, ordering and comments are kept.
func AddSite(configPath, id string, site Site) error {
	if err := ValidateSite(id, site); err != nil {
		return err
	}

	var root yaml.Node
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mappingNode()}}
		setScalar(root.Content[0], "version", fmt.Sprint(CurrentConfigVersion), "!!int")
	case err != nil:
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to read config file "+configPath, "")
	default:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to parse config file "+configPath, "Check the YAML syntax")
		}
		if root.Kind == 0 {
			root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mappingNode()}}
		}
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Expected a mapping at the top of "+configPath, "")
	}
	doc := root.Content[0]

	sites := findMapValue(doc, "sites")
	switch {
	case sites == nil:
		sites = mappingNode()
		setNode(doc, "sites", sites)
	case sites.Kind == yaml.ScalarNode && sites.Tag == "!!null":
		*sites = *mappingNode()
	case sites.Kind != yaml.MappingNode:
		return errors.New(errors.ErrConfig, "'sites' in "+configPath+" is not a mapping", "")
	}
	if findMapValue(sites, id) != nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Site '%s' already exists in %s", id, configPath),
			"Edit the file to change it")
	}

	entry := mappingNode()
	if site.Alias != "" {
		setScalar(entry, "alias", site.Alias, "!!str")
	}
	setScalar(entry, "socket", site.Socket, "!!str")
	if site.Timeout > 0 {
		setScalar(entry, "timeout", site.Timeout.String(), "!!str")
	}
	setNode(sites, id, entry)

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	_ = enc.Close()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to create config directory", "")
	}
	if err := os.WriteFile(configPath, []byte(buf.String()), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to write config file "+configPath, "")
	}
	return nil
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func setNode(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

func setScalar(m *yaml.Node, key, value, tag string) {
	setNode(m, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if k := node.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
