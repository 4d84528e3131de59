package analyzer

import (
	"strings"

	"github.com/beanviz/bean/internal/model"
)

// Decorator substrings that mark a function as externally callable. The
// lists cover the common Python web, CLI, and task frameworks; an unknown
// decorator simply classifies as no entrypoint.
var (
	routeDecorators = []string{
		".get(", ".post(", ".put(", ".delete(", ".patch(", ".route(",
		".api_route(", "app.get", "app.post", "router.get", "router.post",
		".websocket(", "app.websocket",
	}
	cliDecorators = []string{
		"click.command", "click.group", "typer.command",
		"app.command", "cli.command",
	}
	taskDecorators = []string{
		"celery.task", "app.task", "shared_task",
	}
)

// classifyEntrypoint inspects a function's decorators and reports the
// entrypoint kind they imply, or "" for plain functions.
func classifyEntrypoint(decorators []string) model.EntrypointKind {
	for _, dec := range decorators {
		switch {
		case containsAny(dec, routeDecorators):
			return model.EntrypointRoute
		case containsAny(dec, cliDecorators):
			return model.EntrypointCLI
		case containsAny(dec, taskDecorators):
			return model.EntrypointTask
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// layerMap maps conventional top-level package names to architectural
// layers.
var layerMap = map[string]string{
	"api": "api", "routes": "api", "views": "api", "endpoints": "api",
	"worker": "worker", "workers": "worker", "tasks": "worker", "celery": "worker", "jobs": "worker",
	"db": "db", "database": "db", "models": "db", "orm": "db", "migrations": "db", "alembic": "db",
	"src": "core", "core": "core", "lib": "core", "utils": "core", "common": "core",
	"tests": "test", "test": "test",
	"scripts": "script", "cli": "script", "commands": "script", "manage": "script",
	"config": "config", "settings": "config", "conf": "config",
}

// layerFor infers a module's architectural layer from its leading package
// segment. Unmapped segments become their own layer.
func layerFor(moduleID string) string {
	head, _, _ := strings.Cut(moduleID, ".")
	if layer, ok := layerMap[head]; ok {
		return layer
	}
	return head
}
