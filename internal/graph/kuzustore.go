//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Store on an embedded KuzuDB database.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by an on-disk database at
// dbPath. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(dbPath string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(dbPath, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Module(
		path STRING,
		language STRING,
		loc INT64,
		ca INT64,
		ce INT64,
		instability DOUBLE,
		risk_score DOUBLE,
		PRIMARY KEY(path)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Module TO Module)`,
}

// InitSchema creates the Module and DEPENDS_ON tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddModule inserts a Module node.
func (s *KuzuStore) AddModule(_ context.Context, rec ModuleRecord) error {
	return s.exec(
		`CREATE (m:Module {
			path: $path,
			language: $lang,
			loc: $loc,
			ca: $ca,
			ce: $ce,
			instability: $inst,
			risk_score: $risk
		})`,
		map[string]any{
			"path": rec.Path,
			"lang": string(rec.Language),
			"loc":  int64(rec.LOC),
			"ca":   int64(rec.Ca),
			"ce":   int64(rec.Ce),
			"inst": rec.Instability,
			"risk": rec.RiskScore,
		},
	)
}

// AddDependency inserts a DEPENDS_ON edge between two existing modules.
func (s *KuzuStore) AddDependency(_ context.Context, from, to string) error {
	return s.exec(
		`MATCH (a:Module {path: $src}), (b:Module {path: $dst})
		 CREATE (a)-[:DEPENDS_ON]->(b)`,
		map[string]any{"src": from, "dst": to},
	)
}

// ---------- Read operations ----------

// GetModule retrieves a Module node by path, or returns nil if not found.
func (s *KuzuStore) GetModule(_ context.Context, path string) (*ModuleRecord, error) {
	rows, err := s.query(
		`MATCH (m:Module {path: $path})
		 RETURN m.path, m.language, m.loc, m.ca, m.ce, m.instability, m.risk_score`,
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &ModuleRecord{
		Path:        toString(r[0]),
		Language:    Language(toString(r[1])),
		LOC:         toInt(r[2]),
		Ca:          toInt(r[3]),
		Ce:          toInt(r[4]),
		Instability: toFloat64(r[5]),
		RiskScore:   toFloat64(r[6]),
	}, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over DEPENDS_ON edges starting from path.
// It returns one DependencyChain per reachable module.
func (s *KuzuStore) GetDependencies(_ context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{path: true}
	queue := []bfsEntry{{path: []string{path}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := s.neighbors(tip, dir)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// neighbors returns the immediate neighbours of path along DEPENDS_ON edges,
// sorted by path.
func (s *KuzuStore) neighbors(path string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionUpstream:
		cypher = "MATCH (a:Module {path: $path})-[:DEPENDS_ON]->(b:Module) RETURN b.path ORDER BY b.path"
	case DirectionDownstream:
		cypher = "MATCH (a:Module)-[:DEPENDS_ON]->(b:Module {path: $path}) RETURN a.path ORDER BY a.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// AssessImpact computes the blast radius of the given changed modules by
// walking DEPENDS_ON edges backwards.
func (s *KuzuStore) AssessImpact(ctx context.Context, changed []string) (*ImpactResult, error) {
	total, err := s.count("MATCH (m:Module) RETURN count(m)")
	if err != nil {
		return nil, err
	}

	changedSet := make(map[string]bool, len(changed))
	for _, c := range changed {
		changedSet[c] = true
	}

	direct := map[string]bool{}
	transitive := map[string]bool{}
	for _, c := range changed {
		chains, err := s.GetDependencies(ctx, c, DirectionDownstream, total)
		if err != nil {
			return nil, err
		}
		for _, chain := range chains {
			last := chain.Nodes[len(chain.Nodes)-1]
			if changedSet[last] {
				continue
			}
			if chain.Depth == 1 {
				direct[last] = true
			}
			transitive[last] = true
		}
	}

	return newImpactResult(direct, transitive, total), nil
}

// ---------- Stats ----------

// Stats returns module and DEPENDS_ON edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	modules, err := s.count("MATCH (m:Module) RETURN count(m)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:DEPENDS_ON]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{ModuleCount: modules, EdgeCount: edges}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column
// order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
