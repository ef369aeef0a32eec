package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/campusauth/domain"
)

// noRule marks a policy without a field rule
const noRule = "*"

// CasbinMiddleware defines the interface for Casbin authorization middleware
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW authorizes requests by role and enforces the optional field
// rule kept in the fourth policy column, e.g.
// "path.universityId==token.tenant_id".
type CasbinMW struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

// NewCasbinMW creates a new CasbinMW instance
func NewCasbinMW(enforcer *casbin.Enforcer, logger *zap.Logger) *CasbinMW {
	return &CasbinMW{enforcer: enforcer, logger: logger}
}

// Enforce returns the Casbin authorization middleware
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextKeyUserRole)
		if c.GetString(ContextKeyUserID) == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required", "logout": true})
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		subject := "role_" + role

		matched, err := mw.matchingRules(subject, path, c.Request.Method)
		if err != nil {
			mw.logger.Error("authorization check failed", zap.String("subject", subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if len(matched) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		claims := tokenClaims(c)
		values := ginValues(c)
		for _, m := range matched {
			if mw.validateFields(m.rule, values, claims) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}

// Authorize decides a request seen by another proxy. Path parameters for
// field rules are read by aligning path with each matched policy pattern.
func (mw *CasbinMW) Authorize(role, path, method string, query url.Values, headers http.Header, claims map[string]string) (bool, error) {
	matched, err := mw.matchingRules("role_"+role, path, method)
	if err != nil {
		return false, err
	}
	for _, m := range matched {
		params := PathParams(m.pattern, path)
		values := func(sourceType, field string) string {
			switch sourceType {
			case "path":
				return params[field]
			case "query":
				return query.Get(field)
			case "header":
				return headers.Get(field)
			}
			return ""
		}
		if mw.validateFields(m.rule, values, claims) {
			return true, nil
		}
	}
	return false, nil
}

// matchedPolicy is the object pattern and field rule of a policy that
// applies to a request
type matchedPolicy struct {
	pattern string
	rule    string
}

// matchingRules asks Casbin for the decision and, when allowed, returns
// every policy that matched. Casbin does not report which policy matched,
// so the role's policies are re-matched with the same keyMatch2 and
// regexMatch functions the model uses.
func (mw *CasbinMW) matchingRules(subject, path, method string) ([]matchedPolicy, error) {
	allowed, err := mw.enforcer.Enforce(subject, path, method)
	if err != nil {
		return nil, fmt.Errorf("failed to enforce policy: %w", err)
	}
	if !allowed {
		return nil, nil
	}

	policies, err := mw.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get policies for %s: %w", subject, err)
	}

	var matched []matchedPolicy
	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if !util.KeyMatch2(path, policy[1]) || !util.RegexMatch(method, policy[2]) {
			continue
		}
		rule := noRule
		if len(policy) > 3 && policy[3] != "" {
			rule = policy[3]
		}
		matched = append(matched, matchedPolicy{pattern: policy[1], rule: rule})
	}
	return matched, nil
}

// valueLookup returns a request value by source type ("path", "query",
// "header") and field name, or "" when absent
type valueLookup func(sourceType, field string) string

func ginValues(c *gin.Context) valueLookup {
	return func(sourceType, field string) string {
		switch sourceType {
		case "path":
			return c.Param(field)
		case "query":
			return c.Query(field)
		case "header":
			return c.GetHeader(field)
		}
		return ""
	}
}

// PathParams aligns path with a keyMatch2 pattern such as
// /admin/university/:universityId/users and returns the named segments.
func PathParams(pattern, path string) map[string]string {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	params := make(map[string]string)
	if len(patternParts) != len(pathParts) {
		return params
	}
	for i, part := range patternParts {
		if strings.HasPrefix(part, ":") {
			params[part[1:]] = pathParts[i]
		}
	}
	return params
}

// validateFields checks "source.field==token.claim" conditions joined by
// "&&". A value that cannot be extracted fails the rule.
func (mw *CasbinMW) validateFields(rule string, values valueLookup, claims map[string]string) bool {
	if rule == "" || rule == noRule {
		return true
	}
	for _, condition := range strings.Split(rule, "&&") {
		condition = strings.TrimSpace(condition)
		if condition == "" {
			continue
		}
		ok, err := validateCondition(values, condition, claims)
		if err != nil {
			mw.logger.Debug("field rule not satisfied", zap.String("rule", condition), zap.Error(err))
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

func validateCondition(values valueLookup, condition string, claims map[string]string) (bool, error) {
	left, right, ok := strings.Cut(condition, "==")
	if !ok {
		return false, fmt.Errorf("unsupported condition format: %s (only == is supported)", condition)
	}

	requestValue, err := requestValue(values, strings.TrimSpace(left))
	if err != nil {
		return false, err
	}
	tokenValue, err := tokenValue(strings.TrimSpace(right), claims)
	if err != nil {
		return false, err
	}
	return requestValue == tokenValue, nil
}

// requestValue reads path.x, query.x or header.x from the request
func requestValue(values valueLookup, source string) (string, error) {
	sourceType, field, ok := strings.Cut(source, ".")
	if !ok {
		return "", fmt.Errorf("invalid source format: %s (expected source.field)", source)
	}

	switch sourceType {
	case "path", "query", "header":
	default:
		return "", fmt.Errorf("unsupported source type: %s", sourceType)
	}
	value := values(sourceType, field)
	if value == "" {
		return "", fmt.Errorf("%s '%s' not found", sourceType, field)
	}
	return value, nil
}

// tokenValue reads token.x from the authenticated claims
func tokenValue(source string, claims map[string]string) (string, error) {
	sourceType, claim, ok := strings.Cut(source, ".")
	if !ok || sourceType != "token" {
		return "", fmt.Errorf("invalid token source: %s (expected token.claim)", source)
	}
	value := claims[claim]
	if value == "" {
		return "", fmt.Errorf("token claim '%s' not found", claim)
	}
	return value, nil
}

func tokenClaims(c *gin.Context) map[string]string {
	return map[string]string{
		"user_id":   c.GetString(ContextKeyUserID),
		"role":      c.GetString(ContextKeyUserRole),
		"tenant_id": c.GetString(ContextKeyTenantID),
		"email":     c.GetString(ContextKeyEmail),
	}
}

// ClaimsOf is the claim set field rules compare against
func ClaimsOf(auth *domain.AuthContext) map[string]string {
	return map[string]string{
		"user_id":   auth.Identity.ID,
		"role":      string(auth.Identity.Role()),
		"tenant_id": auth.TenantID,
		"email":     auth.Identity.Email,
	}
}
