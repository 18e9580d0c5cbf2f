package persist

// Kind names the collection a document lives in.
type Kind string

const (
	KindPage     Kind = "pages"
	KindTemplate Kind = "templates"
	KindUser     Kind = "users"
	KindRevision Kind = "revisions"
	KindEvent    Kind = "analytics_events"
	KindReview   Kind = "reviews"
)

// Ref identifies a stored record that owns a block document.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func PageRef(id string) Ref     { return Ref{Kind: KindPage, ID: id} }
func TemplateRef(id string) Ref { return Ref{Kind: KindTemplate, ID: id} }

func (r Ref) String() string {
	if r.ID == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + "/" + r.ID
}
