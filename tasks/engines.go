package tasks

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
	"node":    api.EngineNode,
	"deno":    api.EngineDeno,
	"hermes":  api.EngineHermes,
	"rhino":   api.EngineRhino,
}

// ParseEngines turns targets such as "chrome49" or "safari9.1" into esbuild engines.
func ParseEngines(targets []string) ([]api.Engine, error) {
	ret := make([]api.Engine, 0, len(targets))
	for _, t := range targets {
		s := strings.ToLower(strings.TrimSpace(t))
		i := strings.IndexAny(s, "0123456789")
		if i <= 0 {
			return nil, fmt.Errorf("invalid browser target %q", t)
		}
		name, ok := engineNames[s[:i]]
		if !ok {
			return nil, fmt.Errorf("unknown browser %q in target %q", s[:i], t)
		}
		ret = append(ret, api.Engine{Name: name, Version: s[i:]})
	}
	return ret, nil
}

func messagesError(kind string, msgs []api.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	lines := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: api.ErrorMessage})
	return fmt.Errorf("%s: %s", kind, strings.TrimSpace(strings.Join(lines, "")))
}
