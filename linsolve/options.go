// Package linsolve provides the delegated linear-solve backends and the
// outer preconditioned conjugate-gradient driver. Backends are configured
// through a flat options database with prefix namespaces, so nested solver
// components (e.g. the coarse-level solve inside the preconditioner) carry
// independent option sets.
package linsolve

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
)

// OptionsDB is a flat string-to-string option store. Components read their
// options through a namespace prefix, e.g. the coarse solve of a
// preconditioner with prefix "scp_" reads "scp_lo_type", "scp_lo_rtol", ...
type OptionsDB struct {
	vals map[string]string
}

func NewOptionsDB() *OptionsDB {
	return &OptionsDB{vals: make(map[string]string)}
}

// FromYAML loads a flat YAML mapping of option names to values.
func FromYAML(data []byte) (db *OptionsDB, err error) {
	var raw map[string]interface{}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	db = NewOptionsDB()
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			db.vals[k] = t
		case bool:
			db.vals[k] = strconv.FormatBool(t)
		case float64:
			db.vals[k] = strconv.FormatFloat(t, 'g', -1, 64)
		}
	}
	return
}

func (db *OptionsDB) Set(key, val string) *OptionsDB {
	db.vals[key] = val
	return db
}

// Sub returns a view of the database under the given prefix. The view shares
// storage with the parent, so later Set calls are visible through it.
func (db *OptionsDB) Sub(prefix string) *Namespace {
	return &Namespace{db: db, prefix: prefix}
}

// Namespace reads options under one prefix.
type Namespace struct {
	db     *OptionsDB
	prefix string
}

func (ns *Namespace) Prefix() string { return ns.prefix }

// Sub nests a further prefix, e.g. db.Sub("scp_").Sub("lo_").
func (ns *Namespace) Sub(prefix string) *Namespace {
	return &Namespace{db: ns.db, prefix: ns.prefix + prefix}
}

func (ns *Namespace) GetString(key, def string) string {
	if v, exists := ns.db.vals[ns.prefix+key]; exists {
		return v
	}
	return def
}

func (ns *Namespace) GetFloat(key string, def float64) float64 {
	if v, exists := ns.db.vals[ns.prefix+key]; exists {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (ns *Namespace) GetInt(key string, def int) int {
	if v, exists := ns.db.vals[ns.prefix+key]; exists {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// String dumps the options under the namespace, sorted, for diagnostics.
func (ns *Namespace) String() string {
	var keys []string
	for k := range ns.db.vals {
		if strings.HasPrefix(k, ns.prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(ns.db.vals[k])
		sb.WriteString("\n")
	}
	return sb.String()
}
