package projects

const (
	queryGet = `
		SELECT id, owner_id, name, description, created_at
		FROM projects
		WHERE id = $1 AND owner_id = $2
	`

	queryList = `
		SELECT id, owner_id, name, description, created_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	queryListAll = `
		SELECT id, owner_id, name, description, created_at
		FROM projects
		ORDER BY created_at
	`
)
