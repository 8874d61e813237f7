// Package inventory loads the set of locally reachable SOCKS5 proxy endpoints
// from a sing-box config file. Each selected inbound fronts one upstream node.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	pkgerrors "proxyrank/pkg/errors"
)

// Endpoint is one testable node: a display tag plus the local SOCKS5 port
// the proxy listens on.
type Endpoint struct {
	Tag  string
	Port uint16
}

// config mirrors the subset of a sing-box config we care about.
type config struct {
	Inbounds []inbound `json:"inbounds"`
}

type inbound struct {
	Type       string `json:"type"`
	Tag        string `json:"tag"`
	Listen     string `json:"listen"`
	ListenPort uint16 `json:"listen_port"`
}

// loopback reports whether a listen address is locally reachable.
// An absent listen address defaults to 127.0.0.1.
func loopback(listen string) bool {
	switch listen {
	case "", "127.0.0.1", "::1", "localhost":
		return true
	}
	return false
}

// Load reads a sing-box config and returns every socks inbound that listens
// on loopback and carries both a tag and a port.
func Load(path string) ([]Endpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &pkgerrors.InventoryError{Path: path, Err: fmt.Errorf("%w: %v", pkgerrors.ErrConfigUnreadable, err)}
	}

	var cfg config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, &pkgerrors.InventoryError{Path: path, Err: fmt.Errorf("%w: %v", pkgerrors.ErrConfigInvalid, err)}
	}

	if cfg.Inbounds == nil {
		return nil, &pkgerrors.InventoryError{Path: path, Err: pkgerrors.ErrNoInbounds}
	}

	var endpoints []Endpoint
	for _, in := range cfg.Inbounds {
		if in.Type != "socks" || in.Tag == "" || in.ListenPort == 0 {
			continue
		}
		if !loopback(in.Listen) {
			continue
		}
		endpoints = append(endpoints, Endpoint{Tag: in.Tag, Port: in.ListenPort})
	}

	if len(endpoints) == 0 {
		return nil, &pkgerrors.InventoryError{Path: path, Err: pkgerrors.ErrNoSocksInbounds}
	}

	return endpoints, nil
}

// CompileFilters compiles tag filter patterns. An invalid pattern fails the
// whole set.
func CompileFilters(patterns []string) ([]*regexp.Regexp, error) {
	filters := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w '%s': %v", pkgerrors.ErrPatternInvalid, pattern, err)
		}
		filters = append(filters, re)
	}
	return filters, nil
}

// Filter keeps endpoints whose tag matches every filter. With no filters all
// endpoints pass. An empty result with filters present is an error so the
// caller can distinguish "nothing matched" from "nothing configured".
func Filter(endpoints []Endpoint, filters []*regexp.Regexp) ([]Endpoint, error) {
	if len(filters) == 0 {
		return endpoints, nil
	}

	var matched []Endpoint
	for _, ep := range endpoints {
		all := true
		for _, re := range filters {
			if !re.MatchString(ep.Tag) {
				all = false
				break
			}
		}
		if all {
			matched = append(matched, ep)
		}
	}

	if len(matched) == 0 {
		return nil, pkgerrors.ErrNoMatchingNodes
	}

	return matched, nil
}
