package postsite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/postsite/content"
)

const dateLayout = "2006-01-02T15:04:05Z"

// Store is a SQLite index of the posts on disk plus the crosspost ledger. The
// files stay the source of truth; Sync rewrites the index from them.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    permalink TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    date TEXT NOT NULL,
    title TEXT NOT NULL,
    layout TEXT NOT NULL,
    comments INTEGER NOT NULL DEFAULT 0,
    github TEXT NOT NULL DEFAULT '',
    crosspost INTEGER NOT NULL DEFAULT 0,
    tags TEXT NOT NULL,
    categories TEXT NOT NULL,
    summary TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    draft INTEGER NOT NULL DEFAULT 0,
    format TEXT NOT NULL,
    path TEXT NOT NULL,
    body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_date ON posts (date DESC, slug);
CREATE TABLE IF NOT EXISTS crossposts (
    permalink TEXT PRIMARY KEY,
    medium_id TEXT NOT NULL,
    medium_url TEXT NOT NULL,
    posted_at TEXT NOT NULL
);
`)
	return err
}

const postColumns = `permalink, slug, date, title, layout, comments, github, crosspost, tags, categories, summary, published, draft, format, path, body`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (content.Post, error) {
	var (
		p                               content.Post
		date, tags, categories, format  string
		body                            string
		comments, crosspost, pub, draft int
	)
	if err := r.Scan(&p.Permalink, &p.Slug, &date, &p.Title, &p.Layout, &comments, &p.GitHub, &crosspost,
		&tags, &categories, &p.Summary, &pub, &draft, &format, &p.Path, &body); err != nil {
		return content.Post{}, err
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return content.Post{}, err
	}
	p.Date = t
	p.Tags = ParseTags(tags)
	p.Categories = ParseTags(categories)
	p.Comments = comments == 1
	p.CrosspostToMedium = crosspost == 1
	p.Published = pub == 1
	p.Draft = draft == 1
	p.Format = content.Format(format)
	p.Body = []byte(body)
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]content.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns all published posts ordered by date descending.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPosts(tag string) ([]content.Post, error) {
	if tag == "" {
		return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC, slug`)
	}
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(tags, ',' || ? || ',') > 0 ORDER BY date DESC, slug`,
		content.NormalizeTag(tag))
}

// ListAllPosts returns every indexed post, unpublished ones included.
func (s *Store) ListAllPosts() ([]content.Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC, slug`)
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	posts, err := s.ListPosts("")
	if err != nil {
		return nil, err
	}
	return content.Tags(posts), nil
}

// GetPost returns a single published post by permalink.
func (s *Store) GetPost(permalink string) (content.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE permalink = ? AND published = 1`, permalink)
	return scanPost(row)
}

// GetPostAny returns a post by permalink whether or not it is published.
func (s *Store) GetPostAny(permalink string) (content.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE permalink = ?`, permalink)
	return scanPost(row)
}

// SavePost upserts a post keyed by its permalink.
func (s *Store) SavePost(p content.Post) error {
	return savePost(s.db, p)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func savePost(db execer, p content.Post) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Permalink, p.Slug, p.Date.UTC().Format(dateLayout), p.Title, p.Layout, boolInt(p.Comments), p.GitHub,
		boolInt(p.CrosspostToMedium), joinTags(p.Tags), joinTags(p.Categories), p.Summary, boolInt(p.Published),
		boolInt(p.Draft), string(p.Format), p.Path, string(p.Body))
	return err
}

// Sync makes the index match posts: every post is upserted and rows for files
// that no longer exist are deleted, in one transaction.
func (s *Store) Sync(ctx context.Context, posts []content.Post) (removed int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS keep (permalink TEXT PRIMARY KEY)`); err != nil {
		return 0, err
	}
	if _, err = tx.Exec(`DELETE FROM keep`); err != nil {
		return 0, err
	}
	for _, p := range posts {
		if err = savePost(tx, p); err != nil {
			return 0, err
		}
		if _, err = tx.Exec(`INSERT OR IGNORE INTO keep (permalink) VALUES (?)`, p.Permalink); err != nil {
			return 0, err
		}
	}
	res, err := tx.Exec(`DELETE FROM posts WHERE permalink NOT IN (SELECT permalink FROM keep)`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeletePost removes a post by permalink.
func (s *Store) DeletePost(permalink string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE permalink = ?`, permalink)
	return err
}

// Crossposted returns the Medium URL recorded for permalink.
func (s *Store) Crossposted(permalink string) (string, bool, error) {
	var u string
	err := s.db.QueryRow(`SELECT medium_url FROM crossposts WHERE permalink = ?`, permalink).Scan(&u)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u, true, nil
}

// RecordCrosspost stores the Medium post created for permalink.
func (s *Store) RecordCrosspost(permalink, mediumID, mediumURL string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO crossposts (permalink, medium_id, medium_url, posted_at) VALUES (?, ?, ?, ?)`,
		permalink, mediumID, mediumURL, time.Now().UTC().Format(dateLayout))
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// joinTags encodes tags as ",a,b," so a single tag can be matched with instr.
func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ","
	}
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
