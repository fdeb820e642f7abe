package models

// Issue is an arguable legal issue from the case catalog.
type Issue struct {
	ID          string   `json:"id" bson:"_id"`
	Title       string   `json:"title" bson:"title"`
	Statement   string   `json:"statement" bson:"statement"`
	Elements    []string `json:"elements" bson:"elements"` // substantive elements a full argument must cover
	RelatedLaws []string `json:"relatedLaws" bson:"relatedLaws"`
	Difficulty  string   `json:"difficulty" bson:"difficulty"`
}

// Fact is a piece of case evidence, keyed by id (F1, F2, ...).
type Fact struct {
	ID      string `json:"id" bson:"_id"`
	Content string `json:"content" bson:"content"`
}

// Law is a statute or doctrine excerpt, keyed by id (L1, L2, ...).
type Law struct {
	ID      string `json:"id" bson:"_id"`
	Content string `json:"content" bson:"content"`
}

// CaseContent is the read-only lookup context the engine scores against.
// It is supplied by the case-content store; the engine never mutates it.
type CaseContent struct {
	Issues map[string]*Issue
	Facts  map[string]string
	Laws   map[string]string
}

// NewCaseContent returns an empty, usable CaseContent.
func NewCaseContent() *CaseContent {
	return &CaseContent{
		Issues: make(map[string]*Issue),
		Facts:  make(map[string]string),
		Laws:   make(map[string]string),
	}
}

// Issue looks up an issue by id.
func (c *CaseContent) Issue(id string) (*Issue, bool) {
	issue, ok := c.Issues[id]
	return issue, ok
}

// Fact looks up fact content by id.
func (c *CaseContent) Fact(id string) (string, bool) {
	content, ok := c.Facts[id]
	return content, ok
}

// Law looks up law content by id.
func (c *CaseContent) Law(id string) (string, bool) {
	content, ok := c.Laws[id]
	return content, ok
}
