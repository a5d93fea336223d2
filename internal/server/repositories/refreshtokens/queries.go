package refreshtokens

type queries struct {
	consume string
	purge   string
}

var postgresQueries = queries{
	consume: `INSERT INTO used_refresh_tokens (token_id, account_id, expires_at, used_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_id) DO NOTHING`,
	purge: `DELETE FROM used_refresh_tokens WHERE expires_at < $1`,
}

var sqliteQueries = queries{
	consume: `INSERT INTO used_refresh_tokens (token_id, account_id, expires_at, used_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (token_id) DO NOTHING`,
	purge: `DELETE FROM used_refresh_tokens WHERE expires_at < ?`,
}
