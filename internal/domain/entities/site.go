package entities

import "strings"

// PageKind groups routes that render the same way.
type PageKind string

const (
	PageKindHome        PageKind = "home"
	PageKindGallery     PageKind = "gallery"
	PageKindDevelopers  PageKind = "developers"
	PageKindDepartment  PageKind = "department"
	PageKindConditions  PageKind = "conditions"
	PageKindDoctor      PageKind = "doctor"
	PageKindAppointment PageKind = "appointment"
	PageKindAdmin       PageKind = "admin"
)

// Route maps a site path to the content page that backs it.
type Route struct {
	Path         string    `json:"path"`
	Page         string    `json:"page"`
	Kind         PageKind  `json:"kind"`
	Specialty    Specialty `json:"specialty,omitempty"`
	RequiresAuth bool      `json:"requires_auth"`
}

var siteRoutes = []Route{
	{Path: "/", Page: "home", Kind: PageKindHome},
	{Path: "/gallery", Page: "gallery", Kind: PageKindGallery},
	{Path: "/developers", Page: "developers", Kind: PageKindDevelopers},
	{Path: "/eyecare", Page: "eyecare", Kind: PageKindDepartment, Specialty: SpecialtyEyecare},
	{Path: "/eyecare/conditions", Page: "eyecare-conditions", Kind: PageKindConditions, Specialty: SpecialtyEyecare},
	{Path: "/eyecare/doctor", Page: "eyecare-doctor", Kind: PageKindDoctor, Specialty: SpecialtyEyecare},
	{Path: "/eyecare/appointment", Page: "eyecare-appointment", Kind: PageKindAppointment, Specialty: SpecialtyEyecare},
	{Path: "/gynecology", Page: "gynecology", Kind: PageKindDepartment, Specialty: SpecialtyGynecology},
	{Path: "/gynecology/health", Page: "gynecology-health", Kind: PageKindConditions, Specialty: SpecialtyGynecology},
	{Path: "/gynecology/doctor", Page: "gynecology-doctor", Kind: PageKindDoctor, Specialty: SpecialtyGynecology},
	{Path: "/gynecology/appointment", Page: "gynecology-appointment", Kind: PageKindAppointment, Specialty: SpecialtyGynecology},

	{Path: "/admin", Page: "admin-login", Kind: PageKindAdmin},
	{Path: "/admin/forgot-password", Page: "admin-forgot-password", Kind: PageKindAdmin},
	{Path: "/admin/reset-password", Page: "admin-reset-password", Kind: PageKindAdmin},
	{Path: "/admin/dashboard", Page: "admin-dashboard", Kind: PageKindAdmin, RequiresAuth: true},
	{Path: "/admin/export-data", Page: "admin-export-data", Kind: PageKindAdmin, RequiresAuth: true},
	{Path: "/admin/edit-content", Page: "admin-edit-content", Kind: PageKindAdmin, RequiresAuth: true},
}

// SiteRoutes returns a copy of the route table.
func SiteRoutes() []Route {
	out := make([]Route, len(siteRoutes))
	copy(out, siteRoutes)
	return out
}

// LookupRoute resolves a request path, ignoring a trailing slash.
func LookupRoute(path string) (Route, bool) {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, r := range siteRoutes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// LookupPage resolves a content page key to its route.
func LookupPage(page string) (Route, bool) {
	for _, r := range siteRoutes {
		if r.Page == page {
			return r, true
		}
	}
	return Route{}, false
}

// IsPublic reports whether the route renders CMS content for visitors.
func (r Route) IsPublic() bool {
	return r.Kind != PageKindAdmin
}

// KnownPage reports whether page is a content page key the editors may target.
func KnownPage(page string) bool {
	if page == GlobalPage {
		return true
	}
	r, ok := LookupPage(page)
	return ok && r.IsPublic()
}

// RenderedSection is one section of a rendered page.
type RenderedSection struct {
	Name      string          `json:"name"`
	Blocks    []*ContentBlock `json:"blocks"`
	IsDefault bool            `json:"is_default"`
}

// RenderedPage is the payload a public page is drawn from.
type RenderedPage struct {
	Route    Route              `json:"route"`
	Sections []*RenderedSection `json:"sections"`
	Global   []*RenderedSection `json:"global"`
	Doctors  []*Doctor          `json:"doctors,omitempty"`
}

// Section returns the named section, or nil.
func (p *RenderedPage) Section(name string) *RenderedSection {
	for _, s := range p.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}
