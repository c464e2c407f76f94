package store

import (
	"database/sql"
	"fmt"

	"github.com/declanmoran/studydeck/internal/domain"
	"github.com/declanmoran/studydeck/internal/mindmap"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens the database at dsn and ensures the schema exists.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{conn: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// LoadCards returns the persisted collection for a user in insertion
// order. A user with no rows gets an empty collection.
func (s *SQLite) LoadCards(userKey string) ([]domain.Flashcard, error) {
	rows, err := s.conn.Query(`
		SELECT id, question, answer, topic, difficulty, ease_factor, repetitions, interval, next_review, hash
		FROM cards WHERE user_key = ? ORDER BY position
	`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for %s: %w", userKey, err)
	}
	defer rows.Close()

	var cards []domain.Flashcard
	for rows.Next() {
		var c domain.Flashcard
		if err := rows.Scan(
			&c.ID,
			&c.Question,
			&c.Answer,
			&c.Topic,
			&c.Difficulty,
			&c.EaseFactor,
			&c.Repetitions,
			&c.Interval,
			&c.NextReview,
			&c.Hash,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card row for %s: %w", userKey, err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read card rows for %s: %w", userKey, err)
	}
	return cards, nil
}

// SaveCards replaces the user's whole collection in one transaction.
func (s *SQLite) SaveCards(userKey string, cards []domain.Flashcard) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save for %s: %w", userKey, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cards WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("failed to clear cards for %s: %w", userKey, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cards (user_key, id, question, answer, topic, difficulty, ease_factor, repetitions, interval, next_review, hash, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card insert for %s: %w", userKey, err)
	}
	defer stmt.Close()

	for i, c := range cards {
		if _, err := stmt.Exec(
			userKey,
			c.ID,
			c.Question,
			c.Answer,
			c.Topic,
			c.Difficulty,
			c.EaseFactor,
			c.Repetitions,
			c.Interval,
			c.NextReview,
			c.Hash,
			i,
		); err != nil {
			return fmt.Errorf("failed to insert card %d for %s: %w", c.ID, userKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save for %s: %w", userKey, err)
	}
	return nil
}

// LoadTree returns the user's persisted mind map as flat node records,
// parents before children.
func (s *SQLite) LoadTree(userKey string) ([]mindmap.NodeRecord, error) {
	rows, err := s.conn.Query(`
		SELECT id, parent_id, title
		FROM nodes WHERE user_key = ? ORDER BY position
	`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes for %s: %w", userKey, err)
	}
	defer rows.Close()

	var records []mindmap.NodeRecord
	for rows.Next() {
		var rec mindmap.NodeRecord
		if err := rows.Scan(&rec.ID, &rec.ParentID, &rec.Title); err != nil {
			return nil, fmt.Errorf("failed to scan node row for %s: %w", userKey, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read node rows for %s: %w", userKey, err)
	}

	for i := range records {
		tagRows, err := s.conn.Query(`
			SELECT card_id FROM node_cards
			WHERE user_key = ? AND node_id = ? ORDER BY position
		`, userKey, records[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load tags for node %d: %w", records[i].ID, err)
		}
		for tagRows.Next() {
			var cardID int64
			if err := tagRows.Scan(&cardID); err != nil {
				tagRows.Close()
				return nil, fmt.Errorf("failed to scan tag row for node %d: %w", records[i].ID, err)
			}
			records[i].CardIDs = append(records[i].CardIDs, cardID)
		}
		if err := tagRows.Err(); err != nil {
			tagRows.Close()
			return nil, fmt.Errorf("failed to read tag rows for node %d: %w", records[i].ID, err)
		}
		tagRows.Close()
	}
	return records, nil
}

// SaveTree replaces the user's whole mind map in one transaction.
func (s *SQLite) SaveTree(userKey string, records []mindmap.NodeRecord) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tree save for %s: %w", userKey, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM nodes WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("failed to clear nodes for %s: %w", userKey, err)
	}
	if _, err := tx.Exec(`DELETE FROM node_cards WHERE user_key = ?`, userKey); err != nil {
		return fmt.Errorf("failed to clear node tags for %s: %w", userKey, err)
	}

	for i, rec := range records {
		if _, err := tx.Exec(`
			INSERT INTO nodes (user_key, id, parent_id, title, position)
			VALUES (?, ?, ?, ?, ?)
		`, userKey, rec.ID, rec.ParentID, rec.Title, i); err != nil {
			return fmt.Errorf("failed to insert node %d for %s: %w", rec.ID, userKey, err)
		}
		for j, cardID := range rec.CardIDs {
			if _, err := tx.Exec(`
				INSERT INTO node_cards (user_key, node_id, card_id, position)
				VALUES (?, ?, ?, ?)
			`, userKey, rec.ID, cardID, j); err != nil {
				return fmt.Errorf("failed to insert tag %d on node %d: %w", cardID, rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tree save for %s: %w", userKey, err)
	}
	return nil
}
