package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"zonegram/internal/domain"
)

//go:embed schema.sql
var schema string

// Store handles database operations for posts. Mutations fire a coalescing
// change notification to every subscriber; the signal carries no payload and
// must be treated as an invalidation, not a patch.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	subs []chan struct{}
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection and all subscriber channels
func (s *Store) Close() error {
	s.mu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.mu.Unlock()
	return s.db.Close()
}

// Subscribe returns a channel that receives a signal whenever the post
// collection changes. Signals are coalesced; a slow consumer sees at most
// one pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// AddPost inserts a post, assigning its ID and creation time, and returns it
func (s *Store) AddPost(p domain.Post) (*domain.Post, error) {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now()
	p.Zone = domain.Normalize(p.Zone)
	p.CustomZone = domain.Normalize(p.CustomZone)

	zones, err := marshalList(p.Zones)
	if err != nil {
		return nil, fmt.Errorf("encode zones: %w", err)
	}
	tags, err := marshalList(p.CustomTags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO posts (id, username, user_image, image, likes, caption, zone, zones, custom_zone, custom_tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.UserImage, p.Image, p.Likes, p.Caption, p.Zone, zones, p.CustomZone, tags, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	s.notify()
	return &p, nil
}

// GetPost retrieves a post by ID
func (s *Store) GetPost(id string) (*domain.Post, error) {
	row := s.db.QueryRow(
		`SELECT id, username, user_image, image, likes, caption, zone, zones, custom_zone, custom_tags, created_at
		 FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ListPosts returns posts ordered by recency with pagination
func (s *Store) ListPosts(limit, offset int) ([]domain.Post, error) {
	rows, err := s.db.Query(
		`SELECT id, username, user_image, image, likes, caption, zone, zones, custom_zone, custom_tags, created_at
		 FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}

	return posts, rows.Err()
}

// SetClassification persists a classification result on a post. This runs
// once at ingest time; the filter and timer never write these fields.
func (s *Store) SetClassification(id string, result *domain.ClassificationResult) error {
	zones, err := marshalList(result.Zones)
	if err != nil {
		return fmt.Errorf("encode zones: %w", err)
	}
	tags, err := marshalList(result.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE posts SET zone = ?, zones = ?, custom_tags = ? WHERE id = ?",
		domain.Normalize(result.Zone), zones, tags, id,
	)
	if err != nil {
		return fmt.Errorf("set classification: %w", err)
	}

	s.notify()
	return nil
}

// LikePost increments a post's like count
func (s *Store) LikePost(id string) error {
	return s.adjustLikes(id, +1)
}

// UnlikePost decrements a post's like count, never below zero
func (s *Store) UnlikePost(id string) error {
	return s.adjustLikes(id, -1)
}

func (s *Store) adjustLikes(id string, delta int) error {
	res, err := s.db.Exec(
		"UPDATE posts SET likes = MAX(0, likes + ?) WHERE id = ?",
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("update likes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("post not found: %s", id)
	}

	s.notify()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	var zones, tags string
	if err := row.Scan(&p.ID, &p.Username, &p.UserImage, &p.Image, &p.Likes, &p.Caption,
		&p.Zone, &zones, &p.CustomZone, &tags, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(zones), &p.Zones); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.CustomTags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &p, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
