package models

// BlockType is the type tag stored with every block.
type BlockType string

const (
	PageType     BlockType = "page"
	Paragraph    BlockType = "paragraph"
	Heading      BlockType = "heading"
	TodoList     BlockType = "todo_list"
	BulletedList BlockType = "bulleted_list"
	NumberedList BlockType = "numbered_list"
	ToggleList   BlockType = "toggle_list"
	Quote        BlockType = "quote"
	Callout      BlockType = "callout"
	Code         BlockType = "code"
	Divider      BlockType = "divider"
	Image        BlockType = "image"
	MathEquation BlockType = "math_equation"
	LinkPreview  BlockType = "link_preview"
	File         BlockType = "file"
	Outline      BlockType = "outline"
	Grid         BlockType = "grid"
	Board        BlockType = "board"
	Calendar     BlockType = "calendar"
	AIChat       BlockType = "ai_chat"
)

// BlockKind is the closed classification structural commands switch on.
// Every switch over BlockKind lists all kinds.
type BlockKind uint8

const (
	KindUnknown BlockKind = iota
	KindPage
	KindParagraph
	KindHeading
	KindList
	KindTodo
	KindToggle
	KindQuote
	KindCallout
	KindCode
	KindVoid
	KindView
	KindAIChat
)

func KindOf(t BlockType) BlockKind {
	switch t {
	case PageType:
		return KindPage
	case Paragraph:
		return KindParagraph
	case Heading:
		return KindHeading
	case BulletedList, NumberedList:
		return KindList
	case TodoList:
		return KindTodo
	case ToggleList:
		return KindToggle
	case Quote:
		return KindQuote
	case Callout:
		return KindCallout
	case Code:
		return KindCode
	case Divider, Image, MathEquation, LinkPreview, File, Outline:
		return KindVoid
	case Grid, Board, Calendar:
		return KindView
	case AIChat:
		return KindAIChat
	default:
		return KindUnknown
	}
}

func (k BlockKind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindTodo:
		return "todo"
	case KindToggle:
		return "toggle"
	case KindQuote:
		return "quote"
	case KindCallout:
		return "callout"
	case KindCode:
		return "code"
	case KindVoid:
		return "void"
	case KindView:
		return "view"
	case KindAIChat:
		return "ai_chat"
	case KindUnknown:
		return "unknown"
	}
	return "unknown"
}

// TextBearing reports whether blocks of this kind carry a text entity.
func (k BlockKind) TextBearing() bool {
	switch k {
	case KindParagraph, KindHeading, KindList, KindTodo, KindToggle, KindQuote, KindCallout, KindCode:
		return true
	case KindPage, KindVoid, KindView, KindAIChat, KindUnknown:
		return false
	}
	return false
}

// ListLike reports whether the kind behaves like a list item on Enter and
// Backspace.
func (k BlockKind) ListLike() bool {
	switch k {
	case KindList, KindTodo, KindToggle:
		return true
	case KindPage, KindParagraph, KindHeading, KindQuote, KindCallout, KindCode,
		KindVoid, KindView, KindAIChat, KindUnknown:
		return false
	}
	return false
}

// CanHaveChildren reports whether blocks may be indented under this kind.
func (k BlockKind) CanHaveChildren() bool {
	switch k {
	case KindPage, KindParagraph, KindList, KindTodo, KindToggle, KindQuote, KindCallout:
		return true
	case KindHeading, KindCode, KindVoid, KindView, KindAIChat, KindUnknown:
		return false
	}
	return false
}

// Liftable reports whether a nested block of this kind may be outdented.
func (k BlockKind) Liftable() bool {
	switch k {
	case KindPage:
		return false
	case KindParagraph, KindHeading, KindList, KindTodo, KindToggle, KindQuote, KindCallout,
		KindCode, KindVoid, KindView, KindAIChat, KindUnknown:
		return true
	}
	return false
}

// Editable reports whether the cursor may enter and type into the block.
func (k BlockKind) Editable() bool {
	switch k {
	case KindParagraph, KindHeading, KindList, KindTodo, KindToggle, KindQuote, KindCallout, KindCode:
		return true
	case KindPage, KindVoid, KindView, KindAIChat, KindUnknown:
		return false
	}
	return false
}
