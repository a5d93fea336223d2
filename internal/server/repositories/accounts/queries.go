package accounts

type queries struct {
	create      string
	getByID     string
	getByEmail  string
	updateRole  string
	updateEmail string
	list        string
}

var postgresQueries = queries{
	create: `INSERT INTO accounts (id, email, role, created_at)
		VALUES ($1, $2, $3, $4)`,
	getByID: `SELECT id, email, role, created_at FROM accounts
		WHERE id = $1`,
	getByEmail: `SELECT id, email, role, created_at FROM accounts
		WHERE email = $1`,
	updateRole: `UPDATE accounts SET role = $1
		WHERE id = $2`,
	updateEmail: `UPDATE accounts SET email = $1
		WHERE id = $2`,
	list: `SELECT id, email, role, created_at FROM accounts
		ORDER BY email`,
}

var sqliteQueries = queries{
	create: `INSERT INTO accounts (id, email, role, created_at)
		VALUES (?, ?, ?, ?)`,
	getByID: `SELECT id, email, role, created_at FROM accounts
		WHERE id = ?`,
	getByEmail: `SELECT id, email, role, created_at FROM accounts
		WHERE email = ?`,
	updateRole: `UPDATE accounts SET role = ?
		WHERE id = ?`,
	updateEmail: `UPDATE accounts SET email = ?
		WHERE id = ?`,
	list: `SELECT id, email, role, created_at FROM accounts
		ORDER BY email`,
}
