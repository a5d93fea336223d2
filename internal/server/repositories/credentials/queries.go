package credentials

type queries struct {
	create         string
	getByAccountID string
	replace        string
}

var postgresQueries = queries{
	create: `INSERT INTO credentials (id, account_id, salt, hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
	getByAccountID: `SELECT id, account_id, salt, hash, created_at, updated_at FROM credentials
		WHERE account_id = $1`,
	replace: `UPDATE credentials SET salt = $1, hash = $2, updated_at = $3
		WHERE account_id = $4`,
}

var sqliteQueries = queries{
	create: `INSERT INTO credentials (id, account_id, salt, hash, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?5)`,
	getByAccountID: `SELECT id, account_id, salt, hash, created_at, updated_at FROM credentials
		WHERE account_id = ?`,
	replace: `UPDATE credentials SET salt = ?, hash = ?, updated_at = ?
		WHERE account_id = ?`,
}
