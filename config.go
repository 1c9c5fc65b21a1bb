package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v2"
)

// yamlConfig loads flag defaults from a YAML mapping. Keys are flag names,
// written with dashes or underscores:
//
//	mode: per-image
//	row_order: top-down
//	workers: 4
func yamlConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}

	var resolver kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v, ok := values[key]; ok {
				return configValue(v), nil
			}
		}
		return nil, nil
	}
	return resolver, nil
}

// configValue flattens YAML scalars and lists into the string form used on
// the command line.
func configValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(item)
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprint(v)
	}
}
