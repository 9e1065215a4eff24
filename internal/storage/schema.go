package storage

const schema = `
-- 'draw_events' is the append-only practice history. drawn_at is Unix milliseconds.
CREATE TABLE IF NOT EXISTS draw_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    suit TEXT NOT NULL,
    drawn_at INTEGER NOT NULL
);

-- 'custom_prompts' holds user-authored prompts.
CREATE TABLE IF NOT EXISTS custom_prompts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- 'sources' tracks where imported prompts come from, either a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);

-- 'cards' stores prompts imported from sources.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    suit TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    level TEXT,
    source_id INTEGER NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);
`
