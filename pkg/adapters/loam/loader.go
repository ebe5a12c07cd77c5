package loam

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

var (
	_ ports.TourLoader = (*Loader)(nil)
	_ ports.Watchable  = (*Loader)(nil)
)

// Loader adapts a Loam repository of tour documents to ports.TourLoader.
type Loader struct {
	Repo *loam.TypedRepository[TourMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TourMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across serializers.
	// Read-only mode stops Loam from sandboxing writes; tours are never written.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TourMetadata](repo)), nil
}

// Tour loads a single tour by document ID.
func (l *Loader) Tour(ctx context.Context, id string) (domain.Tour, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return buildTour(doc.ID, doc.Data, doc.Content)
}

// LoadTours returns every tour in the repository sorted by ID.
// Two documents resolving to the same ID are an error.
func (l *Loader) LoadTours(ctx context.Context) ([]domain.Tour, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	tours := make([]domain.Tour, 0, len(docs))
	for _, doc := range docs {
		tour, err := buildTour(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[tour.ID]; ok {
			return nil, fmt.Errorf("collision detected: tour ID '%s' is defined in both '%s' and '%s'", tour.ID, existing, doc.ID)
		}
		seen[tour.ID] = doc.ID
		tours = append(tours, tour)
	}

	sort.Slice(tours, func(i, j int) bool { return tours[i].ID < tours[j].ID })
	return tours, nil
}

func buildTour(docID string, meta TourMetadata, content string) (domain.Tour, error) {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	id := trimExtension(rawID)

	title := meta.Title
	if title == "" {
		title = firstHeading(content)
	}

	roles := make([]domain.Role, 0, len(meta.Roles))
	for _, r := range meta.Roles {
		roles = append(roles, domain.ParseRole(r))
	}

	steps := make([]domain.StepDescriptor, 0, len(meta.Steps))
	for i, raw := range meta.Steps {
		step, err := decodeStep(raw)
		if err != nil {
			return domain.Tour{}, fmt.Errorf("tour %s step %d: %w", id, i, err)
		}
		steps = append(steps, step)
	}

	return domain.Tour{ID: id, Title: title, Roles: roles, Steps: steps}, nil
}

// decodeStep accepts a bare selector or a step map.
func decodeStep(raw any) (domain.StepDescriptor, error) {
	var ls LoaderStep
	switch v := raw.(type) {
	case string:
		ls.Target = v
	case map[string]any, map[any]any:
		if err := mapstructure.Decode(v, &ls); err != nil {
			return domain.StepDescriptor{}, fmt.Errorf("failed to decode step: %w", err)
		}
	default:
		return domain.StepDescriptor{}, fmt.Errorf("invalid step definition type: %T", v)
	}

	placement, err := domain.ParsePlacement(ls.Placement)
	if err != nil {
		return domain.StepDescriptor{}, err
	}

	content := domain.StepContent{Title: ls.Title, Body: ls.Body}
	if ls.Content != nil {
		if content.Title == "" {
			content.Title = ls.Content.Title
		}
		if content.Body == "" {
			content.Body = ls.Content.Body
		}
	}

	return domain.StepDescriptor{
		Target:    strings.TrimSpace(ls.Target),
		Content:   content,
		Placement: placement,
		FirstStep: ls.FirstStep,
	}, nil
}

// firstHeading returns the text of the first markdown heading in content.
func firstHeading(content string) string {
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
