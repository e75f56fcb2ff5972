// Package acl evaluates route access rules stored in the acl table.
package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/trainlog/trainlog/internal/model"
)

// AnonymousRole is matched for requests without a logged-in user.
const AnonymousRole = "anonymous"

// RuleSource loads the current rule set. repository.ACLRepository satisfies it.
type RuleSource interface {
	Rules(ctx context.Context) ([]*model.ACLRule, error)
}

type Checker struct {
	repo    RuleSource
	enabled bool

	mu    sync.RWMutex
	rules []*model.ACLRule
}

func NewChecker(repo RuleSource, enabled bool) *Checker {
	return &Checker{repo: repo, enabled: enabled}
}

func (c *Checker) Enabled() bool {
	return c.enabled
}

// Refresh reloads the rules. On failure the previous rules stay in effect.
func (c *Checker) Refresh(ctx context.Context) error {
	rules, err := c.repo.Rules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load acl rules: %w", err)
	}

	c.mu.Lock()
	c.rules = rules
	c.mu.Unlock()

	slog.Debug("acl rules loaded", "count", len(rules))
	return nil
}

// Allowed decides access for role on method+path. A matching disallow rule
// always wins; otherwise a matching allow rule grants access. With no
// matching rule the request is denied. A disabled checker allows everything.
func (c *Checker) Allowed(role, method, path string) bool {
	if !c.enabled {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	allowed := false
	for _, rule := range c.rules {
		if !matches(rule, role, method, path) {
			continue
		}
		if rule.Allow == model.ACLDisallow {
			return false
		}
		allowed = true
	}
	return allowed
}

func matches(rule *model.ACLRule, role, method, path string) bool {
	if rule.Method != "*" && !strings.EqualFold(rule.Method, method) {
		return false
	}
	if !routeMatches(rule.Route, path) {
		return false
	}
	for _, r := range strings.Split(rule.UserRoles, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}

// routeMatches treats the rule route as a path prefix on segment boundaries,
// so "/api/goal" does not cover "/api/goals".
func routeMatches(route, path string) bool {
	route = strings.TrimSuffix(route, "/")
	if route == "" {
		return true
	}
	return path == route || strings.HasPrefix(path, route+"/")
}
