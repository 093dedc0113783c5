package conversations

const (
	queryCreate = `
		INSERT INTO conversations (project_id, owner_id, title, template)
		VALUES ($1, $2, $3, $4)
		RETURNING id, project_id, owner_id, title, template, created_at, updated_at
	`

	queryList = `
		SELECT id, project_id, owner_id, title, template, created_at, updated_at
		FROM conversations
		WHERE project_id = $1 AND owner_id = $2
		ORDER BY updated_at DESC
	`

	queryGet = `
		SELECT id, project_id, owner_id, title, template, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND owner_id = $2
	`

	queryInsertMessage = `
		INSERT INTO messages (conversation_id, role, content, meta)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, role, content, meta, created_at
	`

	queryTouch = `
		UPDATE conversations
		SET updated_at = NOW()
		WHERE id = $1
	`

	queryListMessages = `
		SELECT m.id, m.conversation_id, m.role, m.content, m.meta, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.conversation_id = $1 AND c.owner_id = $2
		ORDER BY m.created_at, m.id
	`
)
