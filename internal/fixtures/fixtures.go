// Package fixtures loads the seed dataset that backs the in-memory repositories.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pulse/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var embedded embed.FS

// Dataset is one snapshot of every collection.
type Dataset struct {
	Users         []models.User         `json:"users"`
	Posts         []models.Post         `json:"posts"`
	Comments      []models.Comment      `json:"comments"`
	Conversations []models.Conversation `json:"conversations"`
	Messages      []models.Message      `json:"messages"`
	Notifications []models.Notification `json:"notifications"`
	Follows       []models.Follow       `json:"follows"`
}

// collection names double as file stems.
var collections = []string{"users", "posts", "comments", "conversations", "messages", "notifications", "follows"}

// Default returns a fresh copy of the embedded dataset.
func Default() (*Dataset, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded fixtures: %w", err)
	}
	return LoadFS(sub)
}

// Load reads fixtures from dir. An empty dir selects the embedded dataset.
func Load(dir string) (*Dataset, error) {
	if dir == "" {
		return Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures dir %q is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads one file per collection from fsys. Each collection may be
// stored as .json, .yaml or .yml; missing collections load as empty.
func LoadFS(fsys fs.FS) (*Dataset, error) {
	ds := &Dataset{}
	targets := map[string]any{
		"users":         &ds.Users,
		"posts":         &ds.Posts,
		"comments":      &ds.Comments,
		"conversations": &ds.Conversations,
		"messages":      &ds.Messages,
		"notifications": &ds.Notifications,
		"follows":       &ds.Follows,
	}

	for _, name := range collections {
		raw, ext, err := readCollection(fsys, name)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		if err := decode(raw, ext, targets[name]); err != nil {
			return nil, fmt.Errorf("decode %s%s: %w", name, ext, err)
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func readCollection(fsys fs.FS, name string) ([]byte, string, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		raw, err := fs.ReadFile(fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read %s%s: %w", name, ext, err)
		}
		return raw, ext, nil
	}
	return nil, "", nil
}

// decode handles YAML by normalising it to JSON first so the json tags on
// the models stay the single source of field names.
func decode(raw []byte, ext string, out any) error {
	if ext == ".json" {
		return json.Unmarshal(raw, out)
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(asJSON, out)
}

// Validate rejects datasets whose ids collide within a collection.
func (d *Dataset) Validate() error {
	if err := uniqueIDs("users", d.Users); err != nil {
		return err
	}
	if err := uniqueIDs("posts", d.Posts); err != nil {
		return err
	}
	if err := uniqueIDs("comments", d.Comments); err != nil {
		return err
	}
	if err := uniqueIDs("conversations", d.Conversations); err != nil {
		return err
	}
	if err := uniqueIDs("messages", d.Messages); err != nil {
		return err
	}
	return uniqueIDs("notifications", d.Notifications)
}

type identified interface{ GetID() uint }

func uniqueIDs[T identified](name string, items []T) error {
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		id := item.GetID()
		if id == 0 {
			return fmt.Errorf("%s: record without Id", name)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%s: duplicate Id %d", name, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Clone deep-copies the dataset so repositories never share backing arrays.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Users:         append([]models.User(nil), d.Users...),
		Posts:         make([]models.Post, len(d.Posts)),
		Comments:      make([]models.Comment, len(d.Comments)),
		Conversations: make([]models.Conversation, len(d.Conversations)),
		Messages:      append([]models.Message(nil), d.Messages...),
		Notifications: make([]models.Notification, len(d.Notifications)),
		Follows:       append([]models.Follow(nil), d.Follows...),
	}
	for i, p := range d.Posts {
		p.EditedAt = clonePtr(p.EditedAt)
		p.Author = nil
		out.Posts[i] = p
	}
	for i, c := range d.Comments {
		c.EditedAt = clonePtr(c.EditedAt)
		c.Author = nil
		out.Comments[i] = c
	}
	for i, c := range d.Conversations {
		out.Conversations[i] = c.Clone()
	}
	for i, n := range d.Notifications {
		n.PostID = clonePtr(n.PostID)
		n.Actor = nil
		out.Notifications[i] = n
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// WriteDir writes the dataset as one indented JSON file per collection.
func (d *Dataset) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	values := map[string]any{
		"users":         d.Users,
		"posts":         d.Posts,
		"comments":      d.Comments,
		"conversations": d.Conversations,
		"messages":      d.Messages,
		"notifications": d.Notifications,
		"follows":       d.Follows,
	}
	for _, name := range collections {
		raw, err := json.MarshalIndent(values[name], "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
