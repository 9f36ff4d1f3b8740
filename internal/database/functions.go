// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"codeberg.org/oliverandrich/teaching-award/internal/search"
	"modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs similarity(), unaccent() and fold_case() for
// SQLite so both matchers run the same queries on SQLite and PostgreSQL.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("similarity", 2,
			func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				a, err := textArg(args[0])
				if err != nil {
					return nil, err
				}
				b, err := textArg(args[1])
				if err != nil {
					return nil, err
				}
				return search.Similarity(a, b), nil
			})
		if registerErr != nil {
			return
		}
		registerErr = sqlite.RegisterDeterministicScalarFunction("unaccent", 1,
			func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				if args[0] == nil {
					return nil, nil
				}
				s, err := textArg(args[0])
				if err != nil {
					return nil, err
				}
				return search.Unaccent(s), nil
			})
		if registerErr != nil {
			return
		}
		registerErr = sqlite.RegisterDeterministicScalarFunction("fold_case", 1,
			func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				if args[0] == nil {
					return nil, nil
				}
				s, err := textArg(args[0])
				if err != nil {
					return nil, err
				}
				return search.FoldCase(s), nil
			})
	})
	return registerErr
}

func textArg(v driver.Value) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", v)
	}
}
