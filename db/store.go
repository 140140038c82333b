// Package db persists belief-revision agents in sqlite so the HTTP
// layer survives restarts. The schema is bootstrapped on open.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/epistemolab/epistemo/revision"
)

const schema = `
CREATE TABLE IF NOT EXISTS agents (
	name TEXT PRIMARY KEY,
	propositions TEXT NOT NULL,
	beliefs TEXT NOT NULL,
	core TEXT NOT NULL,
	entrenchment TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	agent_name TEXT NOT NULL,
	operation TEXT NOT NULL,
	argument TEXT,
	result TEXT NOT NULL,
	details TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_agent ON audit_log(agent_name, timestamp);
`

type Store struct {
	conn *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to init schema: %v", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) GetRawDB() *sql.DB {
	return s.conn
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// SaveAgent upserts the agent's full state. Lists and the entrenchment
// map are stored as JSON columns.
func (s *Store) SaveAgent(ctx context.Context, a *revision.Agent) error {
	props, err := json.Marshal(a.Propositions())
	if err != nil {
		return err
	}
	beliefs, err := json.Marshal(a.Beliefs())
	if err != nil {
		return err
	}
	core, err := json.Marshal(a.Core())
	if err != nil {
		return err
	}
	entrenchment, err := json.Marshal(a.Entrenchment())
	if err != nil {
		return err
	}
	query := `INSERT INTO agents (name, propositions, beliefs, core, entrenchment, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(name) DO UPDATE SET
				propositions = excluded.propositions,
				beliefs = excluded.beliefs,
				core = excluded.core,
				entrenchment = excluded.entrenchment,
				updated_at = excluded.updated_at`
	now := time.Now()
	_, err = s.conn.ExecContext(ctx, query, a.Name(), string(props), string(beliefs), string(core), string(entrenchment), now, now)
	return err
}

// LoadAgent reconstructs one agent by name. Returns sql.ErrNoRows when
// the agent does not exist.
func (s *Store) LoadAgent(ctx context.Context, name string) (*revision.Agent, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT name, propositions, beliefs, core, entrenchment FROM agents WHERE name = ?`, name)
	return scanAgent(row.Scan)
}

// LoadAll reconstructs every persisted agent, ordered by name.
func (s *Store) LoadAll(ctx context.Context) ([]*revision.Agent, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT name, propositions, beliefs, core, entrenchment FROM agents ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*revision.Agent
	for rows.Next() {
		a, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func scanAgent(scan func(dest ...any) error) (*revision.Agent, error) {
	var name, props, beliefs, core, entrenchment string
	if err := scan(&name, &props, &beliefs, &core, &entrenchment); err != nil {
		return nil, err
	}
	var propList, beliefList, coreList []string
	var ranks map[string]int
	if err := json.Unmarshal([]byte(props), &propList); err != nil {
		return nil, fmt.Errorf("agent %s: bad propositions column: %v", name, err)
	}
	if err := json.Unmarshal([]byte(beliefs), &beliefList); err != nil {
		return nil, fmt.Errorf("agent %s: bad beliefs column: %v", name, err)
	}
	if err := json.Unmarshal([]byte(core), &coreList); err != nil {
		return nil, fmt.Errorf("agent %s: bad core column: %v", name, err)
	}
	if err := json.Unmarshal([]byte(entrenchment), &ranks); err != nil {
		return nil, fmt.Errorf("agent %s: bad entrenchment column: %v", name, err)
	}
	return revision.NewWithState(name, propList, beliefList, coreList, ranks)
}

// DeleteAgent removes a persisted agent.
func (s *Store) DeleteAgent(ctx context.Context, name string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM agents WHERE name = ?`, name)
	return err
}

type AuditEntry struct {
	ID        string
	Timestamp time.Time
	AgentName string
	Operation string
	Argument  string
	Result    string
	Details   string
}

// InsertAuditLog records one agent mutation. The audit trail is
// advisory; callers may ignore failures.
func (s *Store) InsertAuditLog(ctx context.Context, agentName, operation, argument, result, details string) error {
	var arg, det interface{}
	if argument != "" {
		arg = argument
	}
	if details != "" {
		det = details
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO audit_log (id, agent_name, operation, argument, result, details) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), agentName, operation, arg, result, det)
	return err
}

// GetAuditLogByAgent returns the audit trail of one agent, newest first.
func (s *Store) GetAuditLogByAgent(ctx context.Context, agentName string) ([]AuditEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, timestamp, agent_name, operation, argument, result, details
		 FROM audit_log WHERE agent_name = ? ORDER BY timestamp DESC`, agentName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var arg, det sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.AgentName, &e.Operation, &arg, &e.Result, &det); err != nil {
			return nil, err
		}
		e.Argument = arg.String
		e.Details = det.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
