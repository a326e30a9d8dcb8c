package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/agentledger/chain/internal/crypto"
	"github.com/agentledger/chain/internal/types"
	"github.com/agentledger/chain/internal/wire"
)

// PostgresStore persists blocks to a Postgres table, for deployments that
// want SQL-side querying of block history. A node uses it in place of the
// embedded store, not alongside it.
type PostgresStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS blocks (
	height     BIGINT PRIMARY KEY,
	block_hash BYTEA NOT NULL UNIQUE,
	data       BYTEA NOT NULL
);
CREATE TABLE IF NOT EXISTS chain_tip (
	id     BOOLEAN PRIMARY KEY DEFAULT TRUE,
	height BIGINT NOT NULL,
	hash   BYTEA NOT NULL,
	CHECK (id)
);
`

// OpenPostgres connects to databaseURL and ensures the block-storage
// schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) PutBlock(ctx context.Context, block *types.Block) error {
	data, err := wire.EncodeBlock(block)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO blocks (height, block_hash, data) VALUES ($1, $2, $3)
		 ON CONFLICT (height) DO UPDATE SET block_hash = EXCLUDED.block_hash, data = EXCLUDED.data`,
		block.Header.Height, block.Hash().Bytes(), data)
	return err
}

func (s *PostgresStore) GetBlockByHeight(ctx context.Context, height uint64) (*types.Block, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blocks WHERE height = $1`, height).Scan(&data)
	if err != nil {
		return nil, err
	}
	return wire.DecodeBlock(data)
}

func (s *PostgresStore) GetBlockByHash(ctx context.Context, hash crypto.Hash) (*types.Block, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blocks WHERE block_hash = $1`, hash.Bytes()).Scan(&data)
	if err != nil {
		return nil, err
	}
	return wire.DecodeBlock(data)
}

func (s *PostgresStore) SetTip(ctx context.Context, height uint64, hash crypto.Hash) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chain_tip (id, height, hash) VALUES (TRUE, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET height = EXCLUDED.height, hash = EXCLUDED.hash`,
		height, hash.Bytes())
	return err
}

func (s *PostgresStore) GetTip(ctx context.Context) (uint64, crypto.Hash, error) {
	var height uint64
	var hashBytes []byte
	err := s.db.QueryRowContext(ctx, `SELECT height, hash FROM chain_tip WHERE id = TRUE`).Scan(&height, &hashBytes)
	if err == sql.ErrNoRows {
		return 0, crypto.ZeroHash, nil
	}
	if err != nil {
		return 0, crypto.Hash{}, err
	}
	hash, err := crypto.HashFromBytes(hashBytes)
	return height, hash, err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
