// Package docjson reads and writes the JSON export format of a document:
//
//	{"document": {
//	  "page_id": "...",
//	  "blocks": {"<id>": {"id", "ty", "parent", "children", "data", "external_id", "external_type"}},
//	  "meta": {
//	    "children_map": {"<children id>": ["<block id>", ...]},
//	    "text_map": {"<text id>": "<delta json>"}
//	  }
//	}}
//
// A block's "children" names its entry in children_map; "data" and the
// text_map values are JSON documents embedded as strings. Import also
// accepts them as plain objects and arrays.
package docjson

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
	"github.com/serenorg/AppFlowy-Web/pkg/sharedtree"
)

const formatVersion = 1

// Import builds a document from its JSON export. The structure is validated
// the same way a decoded snapshot is.
func Import(data []byte, opts ...sharedtree.Option) (*sharedtree.Doc, error) {
	document, typ, _, err := jsonparser.Get(data, "document")
	if err != nil || typ != jsonparser.Object {
		return nil, fmt.Errorf("%w: missing \"document\" object", constants.ErrInvalidDocumentJSON)
	}

	pageID, err := jsonparser.GetString(document, "page_id")
	if err != nil || pageID == "" {
		return nil, fmt.Errorf("%w: missing page_id", constants.ErrInvalidDocumentJSON)
	}

	childrenMap, err := readChildrenMap(document)
	if err != nil {
		return nil, err
	}

	s := sharedtree.Snapshot{
		Version:  formatVersion,
		PageID:   models.BlockID(pageID),
		Blocks:   make(map[models.BlockID]models.Block),
		Children: make(map[models.BlockID][]models.BlockID),
		Texts:    make(map[models.TextID]models.Text),
	}

	err = jsonparser.ObjectEach(document, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			return fmt.Errorf("%w: block %s is not an object", constants.ErrInvalidDocumentJSON, key)
		}
		b, childrenKey, err := readBlock(string(key), value)
		if err != nil {
			return err
		}
		s.Blocks[b.ID] = b
		if kids := childrenMap[childrenKey]; len(kids) > 0 {
			s.Children[b.ID] = kids
		}
		return nil
	}, "blocks")
	if err != nil {
		return nil, blocksError(err)
	}

	err = jsonparser.ObjectEach(document, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		t, err := readText(value, dataType)
		if err != nil {
			return fmt.Errorf("%w: text %s: %w", constants.ErrInvalidDocumentJSON, key, err)
		}
		s.Texts[models.TextID(key)] = t
		return nil
	}, "meta", "text_map")
	if err != nil && err != jsonparser.KeyPathNotFoundError {
		return nil, err
	}

	// A text-bearing block whose delta was never written is an empty text.
	for _, b := range s.Blocks {
		if b.HasText() {
			if _, ok := s.Texts[b.ExternalID]; !ok {
				s.Texts[b.ExternalID] = models.Text{}
			}
		}
	}

	return sharedtree.FromSnapshot(s, opts...)
}

func blocksError(err error) error {
	if err == jsonparser.KeyPathNotFoundError {
		return fmt.Errorf("%w: missing blocks", constants.ErrInvalidDocumentJSON)
	}
	return err
}

func readChildrenMap(document []byte) (map[string][]models.BlockID, error) {
	out := make(map[string][]models.BlockID)
	err := jsonparser.ObjectEach(document, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Array {
			return fmt.Errorf("%w: children %s is not an array", constants.ErrInvalidDocumentJSON, key)
		}
		var ids []models.BlockID
		var inner error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, _ error) {
			if t != jsonparser.String {
				inner = fmt.Errorf("%w: children %s holds a non-string id", constants.ErrInvalidDocumentJSON, key)
				return
			}
			id, err := jsonparser.ParseString(v)
			if err != nil {
				inner = err
				return
			}
			ids = append(ids, models.BlockID(id))
		})
		if err != nil {
			return err
		}
		if inner != nil {
			return inner
		}
		out[string(key)] = ids
		return nil
	}, "meta", "children_map")
	if err != nil && err != jsonparser.KeyPathNotFoundError {
		return nil, err
	}
	return out, nil
}

// readBlock returns the block and the children_map key it points at.
func readBlock(key string, value []byte) (models.Block, string, error) {
	b := models.Block{ID: models.BlockID(key)}

	if id, err := jsonparser.GetString(value, "id"); err == nil && id != "" {
		b.ID = models.BlockID(id)
	}
	ty, err := jsonparser.GetString(value, "ty")
	if err != nil || ty == "" {
		return b, "", fmt.Errorf("%w: block %s has no type", constants.ErrInvalidDocumentJSON, key)
	}
	b.Type = models.BlockType(ty)

	if parent, err := jsonparser.GetString(value, "parent"); err == nil {
		b.Parent = models.BlockID(parent)
	}
	if ext, err := jsonparser.GetString(value, "external_id"); err == nil && ext != "" {
		b.ExternalID = models.TextID(ext)
		b.ExternalType, _ = jsonparser.GetString(value, "external_type")
		if b.ExternalType == "" {
			b.ExternalType = models.ExternalTypeText
		}
	}

	raw, typ, _, err := jsonparser.Get(value, "data")
	if err == nil {
		data, err := readData(raw, typ)
		if err != nil {
			return b, "", fmt.Errorf("%w: block %s data: %w", constants.ErrInvalidDocumentJSON, key, err)
		}
		b.Data = data
	}

	childrenKey, err := jsonparser.GetString(value, "children")
	if err != nil || childrenKey == "" {
		childrenKey = string(b.ID)
	}
	return b, childrenKey, nil
}

func readData(raw []byte, typ jsonparser.ValueType) (models.BlockData, error) {
	switch typ {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, nil
		}
		raw = []byte(s)
	case jsonparser.Object:
	default:
		return nil, fmt.Errorf("unexpected %s", typ)
	}

	var data models.BlockData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func readText(raw []byte, typ jsonparser.ValueType) (models.Text, error) {
	switch typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return models.Text{}, nil
		}
		raw = []byte(s)
	case jsonparser.Array:
	default:
		return nil, fmt.Errorf("unexpected %s", typ)
	}

	var d models.Delta
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return models.Text{}.Apply(d)
}
