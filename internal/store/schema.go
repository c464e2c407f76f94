package store

const schema = `
-- One row per flashcard per user. Position preserves insertion order so
-- loads reproduce the collection exactly as it was saved.
CREATE TABLE IF NOT EXISTS cards (
    user_key    TEXT NOT NULL,
    id          INTEGER NOT NULL,
    question    TEXT NOT NULL,
    answer      TEXT NOT NULL,
    topic       TEXT NOT NULL,
    difficulty  TEXT NOT NULL,
    ease_factor REAL NOT NULL,
    repetitions INTEGER NOT NULL,
    interval    REAL NOT NULL,
    next_review DATETIME NOT NULL,
    hash        TEXT NOT NULL DEFAULT '',
    position    INTEGER NOT NULL,

    PRIMARY KEY (user_key, id)
);

-- Mind map nodes, flattened parent-before-child. parent_id is 0 for the root.
CREATE TABLE IF NOT EXISTS nodes (
    user_key  TEXT NOT NULL,
    id        INTEGER NOT NULL,
    parent_id INTEGER NOT NULL,
    title     TEXT NOT NULL,
    position  INTEGER NOT NULL,

    PRIMARY KEY (user_key, id)
);

-- Card ids tagged directly on a node.
CREATE TABLE IF NOT EXISTS node_cards (
    user_key TEXT NOT NULL,
    node_id  INTEGER NOT NULL,
    card_id  INTEGER NOT NULL,
    position INTEGER NOT NULL,

    PRIMARY KEY (user_key, node_id, card_id)
);
`
