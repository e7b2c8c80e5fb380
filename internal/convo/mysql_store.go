package convo

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	xerrors "AgentFlow-Chain/internal/errors"
)

// MySQLStore 使用 MySQL 持久化会话日志。
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 创建一个新的 MySQLStore。
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "MySQL DSN 不能为空")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, xerrors.Wrap(CodeConversationStorage, err, "连接 MySQL 失败")
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, xerrors.Wrap(CodeConversationStorage, err, "无法连接到 MySQL")
	}

	store := &MySQLStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MySQLStore) initSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS conversation_messages (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        conversation_id VARCHAR(64) NOT NULL,
        role VARCHAR(16) NOT NULL,
        content TEXT NOT NULL,
        token_cost INT NOT NULL DEFAULT 0,
        created_at BIGINT NOT NULL,
        INDEX idx_convo_id (conversation_id, id)
)`

	if _, err := s.db.Exec(schema); err != nil {
		return xerrors.Wrap(CodeConversationStorage, err, "初始化 conversation_messages 表失败")
	}
	if _, err := s.db.Exec(`ALTER TABLE conversation_messages ADD COLUMN token_cost INT NOT NULL DEFAULT 0 AFTER content`); err != nil {
		var mysqlErr *mysql.MySQLError
		if !(stdErrors.As(err, &mysqlErr) && mysqlErr.Number == 1060) {
			return xerrors.Wrap(CodeConversationStorage, err, "扩展 conversation_messages.token_cost 失败")
		}
	}
	return nil
}

// Append 实现 Store 接口。
func (s *MySQLStore) Append(ctx context.Context, conversationID string, msg Message) error {
	if strings.TrimSpace(conversationID) == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "会话 ID 不能为空")
	}
	if !IsValidRole(msg.Role) {
		return xerrors.New(xerrors.CodeInvalidArgument, "非法的消息角色")
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}

	const stmt = `INSERT INTO conversation_messages
        (conversation_id, role, content, token_cost, created_at)
        VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt,
		conversationID,
		string(msg.Role),
		msg.Content,
		msg.TokenCost,
		msg.CreatedAt,
	); err != nil {
		return xerrors.Wrap(CodeConversationStorage, err, "写入会话消息失败")
	}
	return nil
}

// History 实现 Store 接口。
func (s *MySQLStore) History(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	query := `SELECT role, content, token_cost, created_at
        FROM conversation_messages WHERE conversation_id = ? ORDER BY id DESC`
	args := []any{conversationID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, xerrors.Wrap(CodeConversationStorage, err, "查询会话历史失败")
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		var role string
		if err := rows.Scan(&role, &msg.Content, &msg.TokenCost, &msg.CreatedAt); err != nil {
			return nil, xerrors.Wrap(CodeConversationStorage, err, "解析会话消息失败")
		}
		msg.Role = Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(CodeConversationStorage, err, "遍历会话消息失败")
	}

	// 查询按 id 倒序取最近 limit 条，这里恢复时间先后顺序。
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Close 关闭底层数据库连接。
func (s *MySQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*MySQLStore)(nil)
