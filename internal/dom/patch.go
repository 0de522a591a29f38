package dom

// PatchKind tells the browser shell how to apply a patch.
type PatchKind string

const (
	// PatchReplace swaps the element Target for HTML (outer markup)
	PatchReplace PatchKind = "replace"
	// PatchRootClass sets the class attribute of <html> to HTML
	PatchRootClass PatchKind = "root-class"
	// PatchScroll scrolls Target into view
	PatchScroll PatchKind = "scroll"
	// PatchPush pushes a browser history entry
	PatchPush PatchKind = "push"
	// PatchReplaceState rewrites the current browser history entry
	PatchReplaceState PatchKind = "replace-state"
)

// Patch is one change the browser has to mirror.
type Patch struct {
	Kind   PatchKind `json:"kind"`
	Target string    `json:"target,omitempty"`
	HTML   string    `json:"html,omitempty"`
	State  string    `json:"state,omitempty"`
	Title  string    `json:"title,omitempty"`
	URL    string    `json:"url,omitempty"`
}
