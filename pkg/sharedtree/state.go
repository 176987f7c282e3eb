package sharedtree

import (
	"fmt"
	"slices"

	"github.com/serenorg/AppFlowy-Web/pkg/constants"
	"github.com/serenorg/AppFlowy-Web/pkg/models"
)

type state struct {
	page     models.BlockID
	blocks   map[models.BlockID]models.Block
	children map[models.BlockID][]models.BlockID
	texts    map[models.TextID]models.Text
}

func newState(page models.BlockID) *state {
	return &state{
		page: page,
		blocks: map[models.BlockID]models.Block{
			page: {ID: page, Type: models.PageType},
		},
		children: map[models.BlockID][]models.BlockID{},
		texts:    map[models.TextID]models.Text{},
	}
}

func (s *state) clone() *state {
	out := &state{
		page:     s.page,
		blocks:   make(map[models.BlockID]models.Block, len(s.blocks)),
		children: make(map[models.BlockID][]models.BlockID, len(s.children)),
		texts:    make(map[models.TextID]models.Text, len(s.texts)),
	}
	for id, b := range s.blocks {
		out.blocks[id] = b.Clone()
	}
	for id, c := range s.children {
		out.children[id] = slices.Clone(c)
	}
	for id, t := range s.texts {
		out.texts[id] = t.Clone()
	}
	return out
}

func (s *state) indexOf(parent, id models.BlockID) (int, error) {
	idx := slices.Index(s.children[parent], id)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s is not listed under %s", constants.ErrCorruptDocument, id, parent)
	}
	return idx, nil
}

func (s *state) descendants(id models.BlockID) []models.BlockID {
	var out []models.BlockID
	var walk func(models.BlockID)
	walk = func(p models.BlockID) {
		for _, c := range s.children[p] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

func (s *state) preorder() []models.BlockID {
	return s.descendants(s.page)
}

func (s *state) isAncestor(anc, id models.BlockID) bool {
	for steps := 0; steps <= len(s.blocks); steps++ {
		b, ok := s.blocks[id]
		if !ok || b.Parent == "" {
			return false
		}
		if b.Parent == anc {
			return true
		}
		id = b.Parent
	}
	return false
}

// textOwners maps every referenced text id to its block.
func (s *state) textOwners() map[models.TextID]models.BlockID {
	out := make(map[models.TextID]models.BlockID, len(s.texts))
	for id, b := range s.blocks {
		if b.ExternalID != "" {
			out[b.ExternalID] = id
		}
	}
	return out
}

func (s *state) detach(id models.BlockID) {
	b := s.blocks[id]
	s.children[b.Parent] = slices.DeleteFunc(s.children[b.Parent], func(c models.BlockID) bool {
		return c == id
	})
	if len(s.children[b.Parent]) == 0 {
		delete(s.children, b.Parent)
	}
}

func (s *state) attach(id, parent models.BlockID, index int) {
	s.children[parent] = slices.Insert(s.children[parent], index, id)
	b := s.blocks[id]
	b.Parent = parent
	s.blocks[id] = b
}

// validate checks the tree invariants: a single page root, parents that
// list their children exactly once, reachability and text presence.
func (s *state) validate() error {
	root, ok := s.blocks[s.page]
	if !ok {
		return fmt.Errorf("%w: page %s missing", constants.ErrCorruptDocument, s.page)
	}
	if root.Parent != "" {
		return fmt.Errorf("%w: page %s has parent %s", constants.ErrCorruptDocument, s.page, root.Parent)
	}
	for parent, kids := range s.children {
		if _, ok := s.blocks[parent]; !ok {
			return fmt.Errorf("%w: children listed for missing block %s", constants.ErrCorruptDocument, parent)
		}
		seen := make(map[models.BlockID]struct{}, len(kids))
		for _, c := range kids {
			if _, dup := seen[c]; dup {
				return fmt.Errorf("%w: %s listed twice under %s", constants.ErrCorruptDocument, c, parent)
			}
			seen[c] = struct{}{}
			b, ok := s.blocks[c]
			if !ok {
				return fmt.Errorf("%w: child %s of %s missing", constants.ErrCorruptDocument, c, parent)
			}
			if b.Parent != parent {
				return fmt.Errorf("%w: %s listed under %s but has parent %s", constants.ErrCorruptDocument, c, parent, b.Parent)
			}
		}
	}
	for id, b := range s.blocks {
		if id != b.ID {
			return fmt.Errorf("%w: block keyed %s has id %s", constants.ErrCorruptDocument, id, b.ID)
		}
		if b.ExternalID != "" {
			if _, ok := s.texts[b.ExternalID]; !ok {
				return fmt.Errorf("%w: %s of block %s", constants.ErrTextNotFound, b.ExternalID, id)
			}
		}
	}
	if reach := len(s.preorder()) + 1; reach != len(s.blocks) {
		return fmt.Errorf("%w: %d of %d blocks reachable from the page", constants.ErrCorruptDocument, reach, len(s.blocks))
	}
	return nil
}
