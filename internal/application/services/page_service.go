package services

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/zatekoja/clinic-site/internal/application/loaders"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/ordering"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/pages.yaml
var defaultPagesYAML []byte

type defaultBlock struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	Content  string `yaml:"content"`
	ImageURL string `yaml:"image_url"`
}

type defaultSection struct {
	Section string         `yaml:"section"`
	Blocks  []defaultBlock `yaml:"blocks"`
}

// PageDefaults is the static fallback content of every page
type PageDefaults struct {
	Global []defaultSection            `yaml:"global"`
	Pages  map[string][]defaultSection `yaml:"pages"`
}

// LoadPageDefaults parses a defaults document
func LoadPageDefaults(data []byte) (*PageDefaults, error) {
	var defaults PageDefaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("failed to parse page defaults: %w", err)
	}
	for page := range defaults.Pages {
		if !entities.KnownPage(page) {
			return nil, fmt.Errorf("page defaults name unknown page %q", page)
		}
	}
	return &defaults, nil
}

// EmbeddedPageDefaults returns the defaults compiled into the binary
func EmbeddedPageDefaults() (*PageDefaults, error) {
	return LoadPageDefaults(defaultPagesYAML)
}

func (d *PageDefaults) sections(page string) []defaultSection {
	if d == nil {
		return nil
	}
	if page == entities.GlobalPage {
		return d.Global
	}
	return d.Pages[page]
}

// PageService assembles public pages from stored blocks and static defaults
type PageService struct {
	blocks   repositories.ContentBlockRepository
	doctors  repositories.DoctorRepository
	defaults *PageDefaults
}

// NewPageService creates a new page service
func NewPageService(blocks repositories.ContentBlockRepository, doctors repositories.DoctorRepository, defaults *PageDefaults) *PageService {
	return &PageService{
		blocks:   blocks,
		doctors:  doctors,
		defaults: defaults,
	}
}

// Routes returns the site route table
func (s *PageService) Routes() []entities.Route {
	return entities.SiteRoutes()
}

// RenderPage resolves path to its page and returns its sections, the shared
// global sections and, on doctor pages, the specialty's doctors. Sections
// without stored blocks fall back to the static defaults.
func (s *PageService) RenderPage(ctx context.Context, path string) (*entities.RenderedPage, error) {
	route, ok := entities.LookupRoute(path)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no page at %s", path))
	}
	rendered := &entities.RenderedPage{
		Route:    route,
		Sections: []*entities.RenderedSection{},
		Global:   []*entities.RenderedSection{},
	}
	if !route.IsPublic() {
		return rendered, nil
	}

	pageBlocks, globalBlocks, err := s.loadBlocks(ctx, route.Page)
	if err != nil {
		return nil, err
	}
	rendered.Sections = s.groupSections(route.Page, pageBlocks)
	rendered.Global = s.groupSections(entities.GlobalPage, globalBlocks)

	if route.Kind == entities.PageKindDoctor {
		doctors, err := s.loadDoctors(ctx, route.Specialty)
		if err != nil {
			return nil, err
		}
		rendered.Doctors = doctors
	}
	return rendered, nil
}

// loadBlocks fetches the page and the global page together, batched through
// the request's loaders when present
func (s *PageService) loadBlocks(ctx context.Context, page string) ([]*entities.ContentBlock, []*entities.ContentBlock, error) {
	if l := loaders.For(ctx); l != nil {
		pageThunk := l.PageBlocksLoader.Load(ctx, page)
		globalThunk := l.PageBlocksLoader.Load(ctx, entities.GlobalPage)
		pageBlocks, err := pageThunk()
		if err != nil {
			return nil, nil, err
		}
		globalBlocks, err := globalThunk()
		if err != nil {
			return nil, nil, err
		}
		return pageBlocks, globalBlocks, nil
	}

	byPage, err := s.blocks.ListByPages(ctx, []string{page, entities.GlobalPage})
	if err != nil {
		return nil, nil, err
	}
	return byPage[page], byPage[entities.GlobalPage], nil
}

func (s *PageService) loadDoctors(ctx context.Context, specialty entities.Specialty) ([]*entities.Doctor, error) {
	var doctors []*entities.Doctor
	var err error
	if l := loaders.For(ctx); l != nil {
		doctors, err = l.DoctorsLoader.Load(ctx, specialty)()
	} else {
		doctors, err = s.doctors.List(ctx, specialty)
	}
	if err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []*entities.Doctor{}
	}
	ordering.Sort(doctors)
	return doctors, nil
}

// groupSections orders sections as the defaults declare them, then any extra
// stored sections in the order their first block appears
func (s *PageService) groupSections(page string, blocks []*entities.ContentBlock) []*entities.RenderedSection {
	sorted := append([]*entities.ContentBlock(nil), blocks...)
	ordering.Sort(sorted)

	stored := map[string][]*entities.ContentBlock{}
	var storedOrder []string
	for _, b := range sorted {
		if _, seen := stored[b.Section]; !seen {
			storedOrder = append(storedOrder, b.Section)
		}
		stored[b.Section] = append(stored[b.Section], b)
	}

	sections := []*entities.RenderedSection{}
	placed := map[string]bool{}
	for _, def := range s.defaults.sections(page) {
		placed[def.Section] = true
		if got := stored[def.Section]; len(got) > 0 {
			sections = append(sections, &entities.RenderedSection{Name: def.Section, Blocks: got})
			continue
		}
		sections = append(sections, &entities.RenderedSection{
			Name:      def.Section,
			Blocks:    defaultBlocks(page, def),
			IsDefault: true,
		})
	}
	for _, name := range storedOrder {
		if placed[name] {
			continue
		}
		sections = append(sections, &entities.RenderedSection{Name: name, Blocks: stored[name]})
	}
	return sections
}

func defaultBlocks(page string, def defaultSection) []*entities.ContentBlock {
	blocks := make([]*entities.ContentBlock, 0, len(def.Blocks))
	for i, b := range def.Blocks {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("%s-%s-%d", page, def.Section, i)
		}
		blocks = append(blocks, &entities.ContentBlock{
			ID:         "default:" + name,
			Page:       page,
			Section:    def.Section,
			Name:       name,
			Title:      b.Title,
			Content:    b.Content,
			ImageURL:   b.ImageURL,
			OrderIndex: i,
		})
	}
	return blocks
}
