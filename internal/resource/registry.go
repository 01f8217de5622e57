package resource

// The registry catalogue. Upstream paths and per-registry multipart quirks
// come from the platform API; they are data here so that every screen is an
// instantiation of the same generic client.

// Location hierarchy.
var (
	Countries = Descriptor{
		Name: "countries", Title: "Countries", Path: "/api/countries",
		Paginated: true, Filterable: true,
	}
	LocationEntities = Descriptor{
		Name: "location-entities", Title: "Entities", Path: "/api/location-entities",
		Paginated: true, Filterable: true,
	}
	Modules = Descriptor{
		Name: "modules", Title: "Modules", Path: "/api/modules",
		Paginated: true, Filterable: true,
	}
	Sections = Descriptor{
		Name: "sections", Title: "Sections", Path: "/api/sections",
		Paginated: true, Filterable: true,
	}
)

// Administration records.
var (
	Accounts = Descriptor{
		Name: "accounts", Title: "Accounts", Path: "/api/accounts",
		Paginated: true, Filterable: true,
	}
	Users = Descriptor{
		Name: "users", Title: "Users", Path: "/api/users",
		Paginated: true, Filterable: true,
	}
	Roles = Descriptor{
		Name: "roles", Title: "Roles", Path: "/api/roles",
		Paginated: true,
	}
	AccountCategories = Descriptor{
		Name: "account-categories", Title: "Account Categories", Path: "/api/account-categories",
	}
)

// Taxonomies. These list as plain arrays, not pages.
var (
	DocStatuses = Descriptor{
		Name: "doc-statuses", Title: "Document Statuses", Path: "/api/doc-statuses",
	}
	SectionCategories = Descriptor{
		Name: "section-categories", Title: "Section Categories", Path: "/api/section-categories",
	}
)

// Document registries. All are file-bearing; multipart shape and
// update-with-file support vary per registry and are preserved as observed.
var (
	NormeLoi = Descriptor{
		Name: "norme-loi", Title: "Laws and Standards", Path: "/api/norme-loi",
		Paginated: true, Shape: MultipartJSONField, JSONField: "normeLoi",
		UpdateWithFile: true, Filterable: true,
	}
	CommAssetLand = Descriptor{
		Name: "comm-asset-land", Title: "Community Asset Land", Path: "/api/comm-asset-land",
		Paginated: true, Shape: MultipartFlattened,
		UpdateWithFile: false, Filterable: true,
	}
	PermiConstruction = Descriptor{
		Name: "permi-construction", Title: "Construction Permits", Path: "/api/permi-construction",
		Paginated: true, Shape: MultipartFlattened,
		UpdateWithFile: true, Filterable: true,
	}
	AccordConcession = Descriptor{
		Name: "accord-concession", Title: "Concession Agreements", Path: "/api/accord-concession",
		Paginated: true, Shape: MultipartJSONField, JSONField: "accordConcession",
		UpdateWithFile: false, Filterable: true,
	}
	Estate = Descriptor{
		Name: "estate", Title: "Estates", Path: "/api/estate",
		Paginated: true, Shape: MultipartFlattened,
		UpdateWithFile: true, Filterable: true,
	}
	CertLicenses = Descriptor{
		Name: "cert-licenses", Title: "Certificates and Licenses", Path: "/api/cert-licenses",
		Paginated: true, Shape: MultipartJSONField, JSONField: "certLicense",
		UpdateWithFile: false, Filterable: true,
	}
	CargoDamage = Descriptor{
		Name: "cargo-damage", Title: "Cargo Damage Reports", Path: "/api/cargo-damage",
		Paginated: true, Shape: MultipartFlattened,
		UpdateWithFile: false, Filterable: true,
	}
	ConcessContract = Descriptor{
		Name: "concess-contract", Title: "Concession Contracts", Path: "/api/concess-contract",
		Paginated: true, Shape: MultipartJSONField, JSONField: "concessContract",
		UpdateWithFile: true, Filterable: true,
	}
	EnviroCert = Descriptor{
		Name: "enviro-cert", Title: "Environmental Certificates", Path: "/api/enviro-cert",
		Paginated: true, Shape: MultipartFlattened,
		UpdateWithFile: false, Filterable: true,
	}
)

// Non-screen endpoints.
const (
	FilesPath         = "/api/files"
	FilesDownloadPath = "/api/files/download"
	DashboardStats    = "/api/dashboard/stats"
)

// Catalogue lists every registry the console can mount, keyed by Name.
func Catalogue() map[string]Descriptor {
	all := []Descriptor{
		Countries, LocationEntities, Modules, Sections,
		Accounts, Users, Roles, AccountCategories,
		DocStatuses, SectionCategories,
		NormeLoi, CommAssetLand, PermiConstruction, AccordConcession,
		Estate, CertLicenses, CargoDamage, ConcessContract, EnviroCert,
	}
	catalogue := make(map[string]Descriptor, len(all))
	for _, desc := range all {
		catalogue[desc.Name] = desc
	}
	return catalogue
}

// DocumentRegistries returns the file-bearing registries in menu order.
func DocumentRegistries() []Descriptor {
	return []Descriptor{
		NormeLoi, CommAssetLand, PermiConstruction, AccordConcession,
		Estate, CertLicenses, CargoDamage, ConcessContract, EnviroCert,
	}
}

// LocationRegistries returns the four location levels in hierarchy order.
func LocationRegistries() []Descriptor {
	return []Descriptor{Countries, LocationEntities, Modules, Sections}
}

// AdministrationRegistries returns the account and role registries.
func AdministrationRegistries() []Descriptor {
	return []Descriptor{
		Accounts, Users, Roles, AccountCategories, DocStatuses, SectionCategories,
	}
}
