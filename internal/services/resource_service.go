package services

import (
	"context"
	"fmt"
	"slices"

	"simplecrud/internal/domain"
	"simplecrud/internal/events"
	"simplecrud/internal/forms"
	"simplecrud/internal/repositories"
	"simplecrud/internal/utils"
)

// Repository is the query side a resource service reads through.
type Repository interface {
	CreateQuery(alias string) *repositories.Query
	// FindOneBy returns nil, nil when nothing matches.
	FindOneBy(ctx context.Context, field, value string) (domain.Resource, error)
	Execute(ctx context.Context, q *repositories.Query) ([]domain.Resource, error)
	SortableFields() []string
	StandardSortField() string
	StandardSortDirection() string
}

// PageExecutor is implemented by repositories that can slice in the query.
type PageExecutor interface {
	ExecutePage(ctx context.Context, q *repositories.Query, offset, limit int) ([]domain.Resource, int, error)
}

// Manager persists resources. Update inserts or updates.
type Manager interface {
	Update(ctx context.Context, r domain.Resource) error
	Remove(ctx context.Context, r domain.Resource) error
}

// FilterApplier binds filter predicates to a query.
type FilterApplier interface {
	AddFilterConditions(filter any, q *repositories.Query) error
}

// Definition declares one resource type.
type Definition[T domain.Resource] struct {
	// Name is the resource type name and route segment, e.g. "vehicles".
	Name string
	// New returns an empty resource for the create path.
	New func() T
	// NewFilter returns an empty filter struct to bind list queries into.
	NewFilter func() any
	// ListLimit is the default and maximum page size.
	ListLimit int
	// PushdownPagination slices in the query when the repository supports it.
	PushdownPagination bool
}

func (d Definition[T]) listLimit() int {
	if d.ListLimit <= 0 {
		return domain.DefaultListLimit
	}
	return d.ListLimit
}

// ResourceService runs the CRUD protocol for resource type T.
type ResourceService[T domain.Resource] struct {
	Def     Definition[T]
	Repo    Repository
	Manager Manager
	Filters FilterApplier
	Form    forms.Form[T]
	Events  events.Dispatcher
}

// Locate returns the resource with id, or NotFoundError when nothing matches
// or the match is not a T.
func (s ResourceService[T]) Locate(ctx context.Context, id string) (T, error) {
	var zero T
	res, err := s.Repo.FindOneBy(ctx, "id", id)
	if err != nil {
		return zero, err
	}
	typed, ok := res.(T)
	if res == nil || !ok {
		return zero, domain.NotFoundError{Resource: s.Def.Name, ID: id}
	}
	return typed, nil
}

// List returns one page of the filtered, ordered collection.
func (s ResourceService[T]) List(ctx context.Context, lq domain.ListQuery, filter any) (domain.PaginationResult, error) {
	q := s.Repo.CreateQuery("e")

	orderBy := lq.OrderBy
	if orderBy == "" {
		orderBy = s.Repo.StandardSortField()
	}
	order := lq.Order
	if order == "" {
		order = s.Repo.StandardSortDirection()
	}
	if dir, ok := domain.NormalizeDirection(order); ok && slices.Contains(s.Repo.SortableFields(), orderBy) {
		q.OrderBy(orderBy, dir)
	}

	if s.Filters != nil && filter != nil {
		if err := s.Filters.AddFilterConditions(filter, q); err != nil {
			return domain.PaginationResult{}, fmt.Errorf("%s filters: %w", s.Def.Name, err)
		}
	}

	var (
		page  []domain.Resource
		total int
		w     domain.Window
	)
	if pe, ok := s.Repo.(PageExecutor); ok && s.Def.PushdownPagination {
		w = domain.Paginate(0, lq.Page, lq.Limit, s.Def.listLimit())
		items, n, err := pe.ExecutePage(ctx, q, w.Offset, w.Limit)
		if err != nil {
			return domain.PaginationResult{}, err
		}
		page, total = items, n
		w = domain.Paginate(total, lq.Page, lq.Limit, s.Def.listLimit())
	} else {
		all, err := s.Repo.Execute(ctx, q)
		if err != nil {
			return domain.PaginationResult{}, err
		}
		total = len(all)
		w = domain.Paginate(total, lq.Page, lq.Limit, s.Def.listLimit())
		page = domain.SliceWindow(all, w)
	}

	items := make([]any, len(page))
	for i, r := range page {
		if p, ok := r.(domain.ListPresenter); ok {
			items[i] = p.ListView()
			continue
		}
		items[i] = r
	}
	return domain.PaginationResult{
		Limit:        w.Limit,
		TotalMatches: total,
		Items:        items,
		TotalPages:   w.TotalPages,
		CurrentPage:  w.Page,
	}, nil
}

// NewForm describes the create form, prefilled from the bound filter.
func (s ResourceService[T]) NewForm(filter any, action string) forms.View {
	return s.Form.View(forms.ValuesOf(filter, "form"), "POST", action)
}

// EditForm describes the edit form of the resource with id.
func (s ResourceService[T]) EditForm(ctx context.Context, id, action string) (forms.View, error) {
	res, err := s.Locate(ctx, id)
	if err != nil {
		return forms.View{}, err
	}
	return s.Form.View(s.Form.Values(res), "PUT", action), nil
}

// Create instantiates a new resource, binds body onto it and persists it.
func (s ResourceService[T]) Create(ctx context.Context, body []byte) (T, error) {
	res := s.Def.New()
	if err := s.dispatch(ctx, domain.AfterInstantiate, res); err != nil {
		var zero T
		return zero, err
	}
	if !res.CanCreate(ctx) {
		var zero T
		return zero, domain.ForbiddenError{Resource: s.Def.Name, Action: "create"}
	}
	return s.save(ctx, res, true, body)
}

// Update binds body onto the resource with id and persists it.
func (s ResourceService[T]) Update(ctx context.Context, id string, body []byte) (T, error) {
	res, err := s.Locate(ctx, id)
	if err != nil {
		return res, err
	}
	if !res.CanUpdate(ctx) {
		var zero T
		return zero, domain.ForbiddenError{Resource: s.Def.Name, Action: "update"}
	}
	return s.save(ctx, res, false, body)
}

func (s ResourceService[T]) save(ctx context.Context, res T, created bool, body []byte) (T, error) {
	var zero T
	fieldErrs, err := s.Form.Submit(ctx, body, res)
	if err != nil {
		return zero, err
	}
	if !fieldErrs.Empty() {
		return zero, domain.ValidationError{Fields: fieldErrs}
	}

	before, after, action := domain.BeforeUpdate, domain.AfterUpdate, "update"
	if created {
		before, after, action = domain.BeforeCreate, domain.AfterCreate, "create"
	}
	if err := s.dispatch(ctx, before, res); err != nil {
		return zero, err
	}
	if err := s.Manager.Update(ctx, res); err != nil {
		return zero, err
	}
	if err := s.dispatch(ctx, after, res); err != nil {
		return zero, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), s.Def.Name, action, "id="+res.ResourceID())
	return res, nil
}

// Delete removes the resource with id.
func (s ResourceService[T]) Delete(ctx context.Context, id string) error {
	res, err := s.Locate(ctx, id)
	if err != nil {
		return err
	}
	if !res.CanDelete(ctx) {
		return domain.ForbiddenError{Resource: s.Def.Name, Action: "delete"}
	}
	if err := s.dispatch(ctx, domain.BeforeDelete, res); err != nil {
		return err
	}
	if err := s.Manager.Remove(ctx, res); err != nil {
		return err
	}
	if err := s.dispatch(ctx, domain.AfterDelete, res); err != nil {
		return err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), s.Def.Name, "delete", "id="+id)
	return nil
}

func (s ResourceService[T]) dispatch(ctx context.Context, kind domain.EventKind, res T) error {
	if s.Events == nil {
		return nil
	}
	return s.Events.Dispatch(ctx, domain.NewLifecycleEvent(kind, s.Def.Name, res))
}
