package storage

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/athena3d/athena-backend/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

// DB é o ledger durável em PostgreSQL.
type DB struct {
	*sqlx.DB
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	log.Println("Conexão com PostgreSQL estabelecida com sucesso.")

	if err := runMigrations(db.DB); err != nil {
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{db}, nil
}

// runMigrations executa as migrações usando sql-migrate.
func runMigrations(db *sql.DB) error {
	migrations := &migrate.FileMigrationSource{
		Dir: "./storage/migrations",
	}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		log.Printf("Aplicadas %d migrações ao banco de dados.", n)
	} else {
		log.Println("Nenhuma migração nova para aplicar.")
	}
	return nil
}

func (d *DB) CreateToken(owner, metadataURI, creator string, royaltyBasisPoints uint16) (models.Token, error) {
	var token models.Token
	query := `INSERT INTO tokens (owner, metadata_uri, creator, royalty_basis_points)
	          VALUES ($1, $2, $3, $4)
	          RETURNING token_id, owner, metadata_uri, creator, royalty_basis_points, created_at`
	if err := d.Get(&token, query, owner, metadataURI, creator, int32(royaltyBasisPoints)); err != nil {
		return models.Token{}, fmt.Errorf("falha ao criar token: %w", err)
	}
	// Todo token nasce sem listagem ativa.
	if _, err := d.Exec(`INSERT INTO listings (token_id, is_listed, price) VALUES ($1, false, 0)`, token.TokenID); err != nil {
		return models.Token{}, fmt.Errorf("falha ao criar registro de listagem: %w", err)
	}
	return token, nil
}

func (d *DB) GetToken(tokenID uint64) (models.Token, bool, error) {
	var token models.Token
	query := `SELECT token_id, owner, metadata_uri, creator, royalty_basis_points, created_at
	          FROM tokens WHERE token_id = $1`
	err := d.Get(&token, query, int64(tokenID))
	if err == sql.ErrNoRows {
		return models.Token{}, false, nil
	}
	if err != nil {
		return models.Token{}, false, fmt.Errorf("falha ao buscar token: %w", err)
	}
	return token, true, nil
}

func (d *DB) GetListing(tokenID uint64) (models.Listing, bool, error) {
	var listing models.Listing
	err := d.Get(&listing, `SELECT token_id, is_listed, price FROM listings WHERE token_id = $1`, int64(tokenID))
	if err == sql.ErrNoRows {
		return models.Listing{}, false, nil
	}
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("falha ao buscar listagem: %w", err)
	}
	return listing, true, nil
}

func (d *DB) GetTokensByOwner(owner string) ([]models.Token, error) {
	tokens := []models.Token{}
	query := `SELECT token_id, owner, metadata_uri, creator, royalty_basis_points, created_at
	          FROM tokens WHERE owner = $1 ORDER BY token_id`
	if err := d.Select(&tokens, query, owner); err != nil {
		return nil, fmt.Errorf("falha ao buscar tokens do proprietário: %w", err)
	}
	return tokens, nil
}

func (d *DB) SetListing(tokenID uint64, isListed bool, price uint64) error {
	res, err := d.Exec(`UPDATE listings SET is_listed = $1, price = $2 WHERE token_id = $3`,
		isListed, int64(price), int64(tokenID))
	if err != nil {
		return fmt.Errorf("falha ao atualizar listagem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownToken
	}
	return nil
}

// Begin abre uma transação de liquidação. O UPDATE dentro da transação
// trava as linhas do token, então liquidações concorrentes do mesmo
// tokenId ficam serializadas pelo próprio banco.
func (d *DB) Begin() (LedgerTx, error) {
	tx, err := d.Beginx()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir transação: %w", err)
	}
	return &dbTx{tx: tx}, nil
}

// AppendEvent grava um evento emitido na tabela de eventos (histórico
// durável para indexadores que recomeçam do zero).
func (d *DB) AppendEvent(ev models.Event) error {
	query := `INSERT INTO events (id, seq, type, token_id, creator, seller, buyer, metadata_uri, price, amount, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := d.Exec(query, ev.ID, int64(ev.Seq), string(ev.Type), int64(ev.TokenID),
		ev.Creator, ev.Seller, ev.Buyer, ev.MetadataURI, int64(ev.Price), int64(ev.Amount), ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao gravar evento: %w", err)
	}
	return nil
}

type dbTx struct {
	tx *sqlx.Tx
}

// GetToken lê o token com FOR UPDATE, travando a linha até o desfecho
// da transação.
func (t *dbTx) GetToken(tokenID uint64) (models.Token, bool, error) {
	var token models.Token
	query := `SELECT token_id, owner, metadata_uri, creator, royalty_basis_points, created_at
	          FROM tokens WHERE token_id = $1 FOR UPDATE`
	err := t.tx.Get(&token, query, int64(tokenID))
	if err == sql.ErrNoRows {
		return models.Token{}, false, nil
	}
	if err != nil {
		return models.Token{}, false, fmt.Errorf("falha ao buscar token: %w", err)
	}
	return token, true, nil
}

func (t *dbTx) GetListing(tokenID uint64) (models.Listing, bool, error) {
	var listing models.Listing
	err := t.tx.Get(&listing, `SELECT token_id, is_listed, price FROM listings WHERE token_id = $1 FOR UPDATE`, int64(tokenID))
	if err == sql.ErrNoRows {
		return models.Listing{}, false, nil
	}
	if err != nil {
		return models.Listing{}, false, fmt.Errorf("falha ao buscar listagem: %w", err)
	}
	return listing, true, nil
}

func (t *dbTx) SetOwner(tokenID uint64, newOwner string) error {
	res, err := t.tx.Exec(`UPDATE tokens SET owner = $1 WHERE token_id = $2`, newOwner, int64(tokenID))
	if err != nil {
		return fmt.Errorf("falha ao transferir propriedade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownToken
	}
	return nil
}

func (t *dbTx) SetListing(tokenID uint64, isListed bool, price uint64) error {
	res, err := t.tx.Exec(`UPDATE listings SET is_listed = $1, price = $2 WHERE token_id = $3`,
		isListed, int64(price), int64(tokenID))
	if err != nil {
		return fmt.Errorf("falha ao atualizar listagem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownToken
	}
	return nil
}

func (t *dbTx) Commit() error {
	return t.tx.Commit()
}

func (t *dbTx) Rollback() error {
	return t.tx.Rollback()
}
