package docjson

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

type export struct {
	Document document `json:"document"`
}

type document struct {
	PageID models.BlockID           `json:"page_id"`
	Blocks map[models.BlockID]block `json:"blocks"`
	Meta   meta                     `json:"meta"`
}

type block struct {
	ID           models.BlockID   `json:"id"`
	Ty           models.BlockType `json:"ty"`
	Parent       models.BlockID   `json:"parent"`
	Children     models.BlockID   `json:"children"`
	Data         string           `json:"data"`
	ExternalID   *models.TextID   `json:"external_id"`
	ExternalType *string          `json:"external_type"`
}

type meta struct {
	ChildrenMap map[models.BlockID][]models.BlockID `json:"children_map"`
	TextMap     map[models.TextID]string            `json:"text_map"`
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	indent string
}

// WithIndent pretty-prints the output.
func WithIndent(indent string) ExportOption {
	return func(c *exportConfig) {
		c.indent = indent
	}
}

// Export writes doc in the JSON export format. Every block gets a
// children_map entry keyed by its own id, empty for leaves.
func Export(doc *sharedtree.Doc, opts ...ExportOption) ([]byte, error) {
	var cfg exportConfig
	for _, o := range opts {
		o(&cfg)
	}

	s := doc.Snapshot()
	out := export{Document: document{
		PageID: s.PageID,
		Blocks: make(map[models.BlockID]block, len(s.Blocks)),
		Meta: meta{
			ChildrenMap: make(map[models.BlockID][]models.BlockID, len(s.Blocks)),
			TextMap:     make(map[models.TextID]string, len(s.Texts)),
		},
	}}

	for id, b := range s.Blocks {
		data := b.Data
		if data == nil {
			data = models.BlockData{}
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("block %s data: %w", id, err)
		}

		eb := block{
			ID:       b.ID,
			Ty:       b.Type,
			Parent:   b.Parent,
			Children: b.ID,
			Data:     string(encoded),
		}
		if b.HasText() {
			ext, typ := b.ExternalID, b.ExternalType
			eb.ExternalID, eb.ExternalType = &ext, &typ
		}
		out.Document.Blocks[id] = eb

		kids := s.Children[id]
		if kids == nil {
			kids = []models.BlockID{}
		}
		out.Document.Meta.ChildrenMap[id] = kids
	}

	for id, t := range s.Texts {
		d := models.TextDelta(0, t)
		if d == nil {
			d = models.Delta{}
		}
		encoded, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("text %s: %w", id, err)
		}
		out.Document.Meta.TextMap[id] = string(encoded)
	}

	if cfg.indent != "" {
		return json.MarshalIndent(out, "", cfg.indent)
	}
	return json.Marshal(out)
}
