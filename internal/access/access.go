// Package access evaluates network-level access rules: a mapping from
// resource kind (or the "*" wildcard) to either an allow-list or a deny-list
// of CIDR ranges. The check runs before a request reaches a handler and is
// independent of authentication.
package access

import (
	"fmt"
	"net/netip"
	"os"

	"encoding/json/v2"

	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
)

// Wildcard is the rule key matched when no kind-specific rule exists.
const Wildcard = "*"

// Rule is the raw configuration for one kind: an allow-list or a deny-list
// of CIDR strings. Exactly one of the two may be set.
type Rule struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

type compiledRule struct {
	allow   []netip.Prefix
	deny    []netip.Prefix
	isAllow bool
}

// RuleSet holds compiled access rules keyed by resource kind.
type RuleSet struct {
	rules map[string]compiledRule
}

// Compile validates and compiles raw rules. A rule carrying both allow and
// deny for the same key is a configuration error; so is a malformed CIDR.
func Compile(raw map[string]Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[string]compiledRule, len(raw))}

	for key, rule := range raw {
		if len(rule.Allow) > 0 && len(rule.Deny) > 0 {
			return nil, apperrors.Configf("access rule %q has both allow and deny", key)
		}

		var compiled compiledRule
		compiled.isAllow = len(rule.Allow) > 0

		for _, cidr := range rule.Allow {
			prefix, err := netip.ParsePrefix(cidr)
			if err != nil {
				return nil, apperrors.Configf("access rule %q: bad CIDR %q: %v", key, cidr, err)
			}
			compiled.allow = append(compiled.allow, prefix)
		}
		for _, cidr := range rule.Deny {
			prefix, err := netip.ParsePrefix(cidr)
			if err != nil {
				return nil, apperrors.Configf("access rule %q: bad CIDR %q: %v", key, cidr, err)
			}
			compiled.deny = append(compiled.deny, prefix)
		}

		rs.rules[key] = compiled
	}

	return rs, nil
}

// LoadFile reads a JSON rules file ({"kind": {"allow": [...]}, ...}) and
// compiles it. A missing path yields an empty, allow-everything rule set.
func LoadFile(path string) (*RuleSet, error) {
	if path == "" {
		return Compile(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Compile(nil)
		}
		return nil, fmt.Errorf("read access rules: %w", err)
	}

	var raw map[string]Rule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Configf("parse access rules %s: %v", path, err)
	}

	return Compile(raw)
}

// Allowed reports whether a request from addr may reach the given resource
// kind. A kind-specific rule takes precedence over the wildcard; with no
// applicable rule the request passes.
func (rs *RuleSet) Allowed(kind string, addr netip.Addr) bool {
	rule, ok := rs.rules[kind]
	if !ok {
		rule, ok = rs.rules[Wildcard]
	}
	if !ok {
		return true
	}

	addr = addr.Unmap()

	if rule.isAllow {
		for _, prefix := range rule.allow {
			if prefix.Contains(addr) {
				return true
			}
		}
		return false
	}
	for _, prefix := range rule.deny {
		if prefix.Contains(addr) {
			return false
		}
	}
	return true
}
