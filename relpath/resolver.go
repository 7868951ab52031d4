package relpath

import (
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/rowmap/errs"
	"github.com/Konsultn-Engineering/rowmap/schema"
)

const (
	opForEntity     errs.Op = "relpath.ForEntity"
	opForRepository errs.Op = "relpath.ForRepository"
)

// HolderPrefix starts the name of every generated holder type.
const HolderPrefix = "Q"

// Resolver finds the generated path of an entity: the holder type Q<Entity>
// declared in the entity's package, and its static named after the entity
// with the first letter lowered.
type Resolver struct {
	registry *Registry
}

func NewResolver(registry *Registry) *Resolver {
	if registry == nil {
		registry = Default
	}
	return &Resolver{registry: registry}
}

// HolderName returns where the holder of entity is expected.
func HolderName(entity reflect.Type) (pkgPath, typeName, static string) {
	return entity.PkgPath(), HolderPrefix + entity.Name(), schema.Decapitalize(entity.Name())
}

// ForEntity returns the generated path of entity.
func (r *Resolver) ForEntity(entity reflect.Type) (Path, error) {
	return r.forEntity(opForEntity, entity)
}

func (r *Resolver) forEntity(op errs.Op, entity reflect.Type) (Path, error) {
	if entity != nil && entity.Kind() == reflect.Ptr {
		entity = entity.Elem()
	}
	if entity == nil || entity.Name() == "" {
		return nil, errs.New(op, errs.ErrMissingGeneratedPathType, entity, "unnamed type")
	}

	pkgPath, typeName, static := HolderName(entity)
	holder, ok := r.registry.LookupType(pkgPath, typeName)
	if !ok {
		return nil, errs.New(op, errs.ErrMissingGeneratedPathType, entity,
			fmt.Sprintf("no holder %s.%s registered", pkgPath, typeName))
	}

	value, ok := r.registry.LookupStatic(holder, static)
	if !ok {
		return nil, errs.New(op, errs.ErrMissingPathSingletonField, entity,
			fmt.Sprintf("holder %s has no static %q", holder, static))
	}
	path, ok := value.(Path)
	if !ok || isNil(value) {
		return nil, errs.New(op, errs.ErrMissingPathSingletonField, entity,
			fmt.Sprintf("static %s.%s is %T, not a path", holder, static, value))
	}
	return path, nil
}

// ForRepository returns the generated path of the entity a repository type
// manages. The entity is the result type of the repository's Entity method.
func (r *Resolver) ForRepository(repo reflect.Type) (Path, error) {
	entity, ok := EntityOf(repo)
	if !ok {
		return nil, errs.New(opForRepository, errs.ErrUnresolvableEntityType, repo,
			"no Entity() method returning a struct type")
	}
	return r.forEntity(opForRepository, entity)
}

// EntityOf resolves the entity type of a repository from its method
// Entity() T or Entity() *T. Interface types, value and pointer method sets
// are all consulted.
func EntityOf(repo reflect.Type) (reflect.Type, bool) {
	if repo == nil {
		return nil, false
	}

	candidates := []reflect.Type{repo}
	if repo.Kind() != reflect.Interface && repo.Kind() != reflect.Ptr {
		candidates = append(candidates, reflect.PointerTo(repo))
	}

	for _, t := range candidates {
		m, ok := t.MethodByName("Entity")
		if !ok {
			continue
		}
		// Method types of concrete types include the receiver.
		wantIn := 1
		if t.Kind() == reflect.Interface {
			wantIn = 0
		}
		if m.Type.NumIn() != wantIn || m.Type.NumOut() != 1 {
			continue
		}
		entity := m.Type.Out(0)
		if entity.Kind() == reflect.Ptr {
			entity = entity.Elem()
		}
		if entity.Kind() == reflect.Struct {
			return entity, true
		}
	}
	return nil, false
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return v == nil
}

// Of is embedded in repository structs to declare their entity.
//
//	type OrderRepository struct {
//		relpath.Of[model.Order]
//		db *pgxpool.Pool
//	}
type Of[T any] struct{}

func (Of[T]) Entity() T {
	var zero T
	return zero
}

// Repository is embedded in repository interfaces to declare their entity.
type Repository[T any] interface {
	Entity() T
}
