package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL applies a .displayname.kdl document to cfg:
//
//	project { root "." }
//	only "src/**"
//	ignore "**/*.spec.js" "**/*.test.js"
//	rename "./scripts/rename.js"
//	exclude { "**/fixtures/**" }
//	output { dir "dist-annotated"; in_place false }
//	performance { workers 4; watch_debounce_ms 200; validate_threshold_kb 512 }
func parseKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		name := nodeName(n)
		switch name {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Root = s
					}
				default:
					return unknownKey("project."+nodeName(cn), sectionKeys["project"])
				}
			}
		case "only":
			cfg.Only = collectStringArgs(n)
		case "ignore":
			cfg.Ignore = collectStringArgs(n)
		case "rename":
			if s, ok := firstStringArg(n); ok {
				cfg.Rename = s
			}
		case "extensions":
			cfg.Extensions = collectStringArgs(n)
		case "exclude":
			// an exclude block replaces the defaults
			cfg.Exclude = collectStringArgs(n)
		case "respect_gitignore":
			if b, ok := firstBoolArg(n); ok {
				cfg.RespectGitignore = b
			}
		case "output":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Output.Dir = s
					}
				case "in_place":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.InPlace = b
					}
				default:
					return unknownKey("output."+nodeName(cn), sectionKeys["output"])
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.WatchDebounceMs = v
					}
				case "validate_threshold_kb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ValidateThresholdKB = v
					}
				default:
					return unknownKey("performance."+nodeName(cn), sectionKeys["performance"])
				}
			}
		default:
			return unknownKey(name, topLevelKeys)
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads `key "a" "b"` as well as the block form
// `key { "a"; "b" }`, where each child node's name is the value
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
