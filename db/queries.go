package db

// DefaultListLimit is the number of conversations returned by ConversationList.
const DefaultListLimit = 100

const (
	conversationInsert = `insert into conversation (id, title, model, created_at) values (?, ?, ?, ?)`
	// messageInsert only inserts when the conversation exists, so zero rows
	// affected means the conversation was not found.
	messageInsert = `insert into message (id, conversation_id, role, content, created_at)
select ?, ?, ?, ?, ?
where exists (select 1 from conversation where id = ?)`
	conversationSelect = `select id, title, model, created_at from conversation order by created_at desc, rowid desc limit ?`
	messageDelete      = `delete from message where conversation_id = ?`
	conversationDelete = `delete from conversation where id = ?`
	messageSelect      = `select id, conversation_id, role, content, created_at from message where conversation_id = ? order by rowid asc`
)
