package main

import (
	"encoding/json"
	"fmt"
	"io"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// printJSON writes v as indented JSON, filtered through query when set.
func printJSON(w io.Writer, v any, query string) error {
	if query != "" {
		if _, err := jmespath.Compile(query); err != nil {
			return fmt.Errorf("invalid query %q: %w", query, err)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("decode output: %w", err)
		}
		if v, err = jmespath.Search(query, data); err != nil {
			return fmt.Errorf("query %q: %w", query, err)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
