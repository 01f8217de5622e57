package resource

// MultipartShape selects how structured metadata rides alongside the binary
// in a multipart submission. Both shapes occur upstream and the variance is
// per registry, so it is recorded here instead of being unified.
type MultipartShape int

const (
	// MultipartNone marks registries without file attachments.
	MultipartNone MultipartShape = iota
	// MultipartFlattened sends metadata as flat form fields next to the file.
	MultipartFlattened
	// MultipartJSONField sends metadata as one JSON blob under a
	// resource-named form field.
	MultipartJSONField
)

// Descriptor captures everything the generic access client needs to know
// about one upstream registry.
type Descriptor struct {
	// Name is the stable registry key used in console routes and metrics.
	Name string
	// Title is the human-readable screen title.
	Title string
	// Path is the upstream collection path, e.g. "/api/countries".
	Path string
	// Paginated is true when list responses use the
	// {items,totalPages,currentPageIndex} shape; false for plain arrays.
	Paginated bool
	// Shape declares the multipart payload layout for file-bearing types.
	Shape MultipartShape
	// JSONField names the metadata form field for MultipartJSONField
	// registries.
	JSONField string
	// UpdateWithFile is true when the registry accepts a replacement file on
	// update. Registries without it silently ignore the file upstream, so the
	// screen engine surfaces a warning instead of sending one.
	UpdateWithFile bool
	// Filterable is true when the upstream list endpoint honours filter query
	// parameters. Screens for other registries still capture criteria but
	// flag them as not applied.
	Filterable bool
}

// FileBearing reports whether records of this registry carry an attachment.
func (d Descriptor) FileBearing() bool {
	return d.Shape != MultipartNone
}
