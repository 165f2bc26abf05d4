package config

import (
	"os"
	"strings"
)

// RouteConfig is one proxy table entry: a glob pattern ending in "/**",
// the backend base URL, and an optional rewrite prefix that replaces the
// pattern's literal prefix on the forwarded path.
type RouteConfig struct {
	Pattern       string
	TargetBase    string
	RewritePrefix string
}

// defaultRoutes is the built-in route table. Target bases may be overridden
// per service through the environment; the pattern set itself is fixed at
// build time.
var defaultRoutes = []RouteConfig{
	{Pattern: "/api/users/**", TargetBase: "http://localhost:8082"},
	{Pattern: "/api/ai/crawler/**", TargetBase: "http://localhost:9001"},
	{Pattern: "/api/ai/rag/**", TargetBase: "http://localhost:9004"},
	{Pattern: "/api/ai/chatbot/**", TargetBase: "http://localhost:9003"},
	{Pattern: "/api/ai/auth/**", TargetBase: "http://localhost:9002"},
	{Pattern: "/api/ai/ml/**", TargetBase: "http://localhost:9006", RewritePrefix: "/titanic"},
	{Pattern: "/api/ai/titanic/**", TargetBase: "http://localhost:9006", RewritePrefix: "/titanic"},
	{Pattern: "/api/ai/seoul/**", TargetBase: "http://localhost:9006", RewritePrefix: "/seoul"},
	{Pattern: "/api/ml/usa/**", TargetBase: "http://localhost:9006", RewritePrefix: "/usa"},
	{Pattern: "/api/ml/nlp/**", TargetBase: "http://localhost:9006", RewritePrefix: "/nlp"},
	{Pattern: "/api/ai/transformer/**", TargetBase: "http://localhost:9007", RewritePrefix: "/koelectra"},
	{Pattern: "/transformer-docs/**", TargetBase: "http://localhost:9007", RewritePrefix: "/docs"},
	{Pattern: "/transformer-openapi/**", TargetBase: "http://localhost:9007", RewritePrefix: "/openapi.json"},
}

func loadRoutes() []RouteConfig {
	routes := make([]RouteConfig, len(defaultRoutes))
	copy(routes, defaultRoutes)
	for i := range routes {
		if base := os.Getenv(routeEnvKey(routes[i].Pattern)); base != "" {
			routes[i].TargetBase = base
		}
	}
	return routes
}

// routeEnvKey maps "/api/ai/ml/**" to "ROUTE_API_AI_ML_TARGET".
func routeEnvKey(pattern string) string {
	trimmed := strings.TrimSuffix(strings.Trim(pattern, "/"), "/**")
	trimmed = strings.TrimSuffix(trimmed, "**")
	trimmed = strings.Trim(trimmed, "/")
	key := strings.ToUpper(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(trimmed))
	return "ROUTE_" + key + "_TARGET"
}
