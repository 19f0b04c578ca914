package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the blog tables if they are missing. It is not a migration
// mechanism, existing tables are left as they are.
const Schema = `
CREATE TABLE IF NOT EXISTS users
(
    id       SERIAL PRIMARY KEY,
    name     VARCHAR(250) NOT NULL,
    password VARCHAR(250) NOT NULL,
    email    VARCHAR(250) NOT NULL,
    CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS blog_posts
(
    id        SERIAL PRIMARY KEY,
    author_id INTEGER REFERENCES users (id),
    title     VARCHAR(250) NOT NULL,
    subtitle  VARCHAR(250) NOT NULL,
    date      VARCHAR(250) NOT NULL,
    body      TEXT         NOT NULL,
    img_url   VARCHAR(250) NOT NULL,
    CONSTRAINT blog_posts_title_key UNIQUE (title)
);

CREATE TABLE IF NOT EXISTS comments
(
    id        SERIAL PRIMARY KEY,
    author_id INTEGER NOT NULL REFERENCES users (id),
    post_id   INTEGER NOT NULL REFERENCES blog_posts (id) ON DELETE CASCADE,
    text      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_comments_post_id ON comments (post_id);
CREATE INDEX IF NOT EXISTS ix_comments_author_id ON comments (author_id);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
