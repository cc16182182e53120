package note

import (
	"time"

	"github.com/georgemunganga/shelf-api/internal/platform/document"
)

// noteFields are the JSON names of the typed note fields.
var noteFields = []string{"id", "title", "content", "created_at", "updated_at"}

// Note is a free-form note. Attributes holds every top-level field beyond the
// typed ones and is written back at the top level of the JSON document.
type Note struct {
	ID         string                 `json:"id" bson:"_id"`
	Title      string                 `json:"title" bson:"title"`
	Content    string                 `json:"content" bson:"content"`
	Attributes map[string]interface{} `json:"-" bson:"attributes,omitempty"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" bson:"updated_at"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	type typed Note
	return document.Encode(typed(n), n.Attributes, noteFields...)
}

func (n *Note) UnmarshalJSON(data []byte) error {
	type typed Note
	var t typed
	extra, err := document.Decode(data, &t, noteFields...)
	if err != nil {
		return err
	}
	t.Attributes = extra
	*n = Note(t)
	return nil
}
