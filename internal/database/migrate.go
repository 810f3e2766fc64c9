package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the schema bootstrap statements, executed in order.
// Statements are idempotent (IF NOT EXISTS) so Migrate can run on every
// startup. The unique keys realise the domain invariants: one account
// per email, one genre per name (case-insensitive via the default
// utf8mb4 collation), one row per (item, genre) pair and one backlog
// entry per (user, item) pair.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		roles         VARCHAR(255) NOT NULL DEFAULT '',
		created_at    DATETIME     NOT NULL,
		updated_at    DATETIME     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id           CHAR(36)     NOT NULL,
		user_id      CHAR(36)     NOT NULL,
		access_token VARCHAR(1024) NOT NULL,
		is_expired   TINYINT(1)   NOT NULL DEFAULT 0,
		expired_at   DATETIME     NOT NULL,
		created_at   DATETIME     NOT NULL,
		PRIMARY KEY (id),
		KEY idx_sessions_user (user_id, created_at),
		KEY idx_sessions_token (access_token(255)),
		CONSTRAINT fk_sessions_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id          CHAR(36)     NOT NULL,
		title       VARCHAR(255) NOT NULL,
		type        ENUM('game','book','serie','movie','course') NOT NULL,
		description TEXT         NULL,
		note        TEXT         NULL,
		image_url   VARCHAR(512) NULL,
		user_id     CHAR(36)     NOT NULL,
		is_public   TINYINT(1)   NOT NULL DEFAULT 0,
		created_at  DATETIME     NOT NULL,
		updated_at  DATETIME     NOT NULL,
		PRIMARY KEY (id),
		KEY idx_items_user (user_id),
		KEY idx_items_created (created_at, id),
		CONSTRAINT fk_items_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id         CHAR(36)     NOT NULL,
		name       VARCHAR(255) NOT NULL,
		created_at DATETIME     NOT NULL,
		updated_at DATETIME     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_genres_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS item_genres (
		id         CHAR(36) NOT NULL,
		item_id    CHAR(36) NOT NULL,
		genre_id   CHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_item_genres_pair (item_id, genre_id),
		CONSTRAINT fk_item_genres_item FOREIGN KEY (item_id)
			REFERENCES items(id) ON DELETE CASCADE,
		CONSTRAINT fk_item_genres_genre FOREIGN KEY (genre_id)
			REFERENCES genres(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS user_items (
		id         CHAR(36) NOT NULL,
		user_id    CHAR(36) NOT NULL,
		item_id    CHAR(36) NOT NULL,
		status     ENUM('pending','in_progress','completed') NOT NULL DEFAULT 'pending',
		rating     SMALLINT NULL,
		sort_order INT      NULL,
		added_at   DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_user_items_pair (user_id, item_id),
		CONSTRAINT fk_user_items_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_user_items_item FOREIGN KEY (item_id)
			REFERENCES items(id) ON DELETE CASCADE
	)`,
}

// Migrate applies the schema bootstrap against the given pool.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
