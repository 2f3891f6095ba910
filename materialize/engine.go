// Package materialize turns day-of-week recurrence templates into persisted
// per-day items, exactly once per (restaurant, date, type).
//
// Two unique indexes carry the at-most-once guarantee. The instance table is
// unique on (restaurant_id, date, type) and the item table on
// (instance_id, template_id). Both inserts use ON CONFLICT DO NOTHING, so a
// concurrent caller that loses either race simply re-reads the winner's rows.
package materialize

import (
	"context"
	"errors"
	"fmt"

	"kitchen-backend/daywindow"
	"kitchen-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidType        = errors.New("invalid instance type")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// Key identifies one daily instance. Type is empty for domains without types.
type Key struct {
	RestaurantID uuid.UUID
	Date         string
	Type         string
}

// Domain adapts one template/item pair to the engine. All methods receive the
// engine's transaction and must not touch any other handle.
type Domain[T any, I any] interface {
	Kind() string
	ValidType(t string) bool

	// FindInstance returns gorm.ErrRecordNotFound when no instance exists in
	// the window.
	FindInstance(tx *gorm.DB, key Key, w daywindow.Window) (uuid.UUID, error)
	// InsertInstance must insert with ON CONFLICT DO NOTHING and report
	// whether a row was written.
	InsertInstance(tx *gorm.DB, key Key, w daywindow.Window) (bool, error)
	CountItems(tx *gorm.DB, instanceID uuid.UUID) (int64, error)

	// Templates returns eligible templates for the key's weekday in sort order.
	Templates(tx *gorm.DB, key Key, w daywindow.Window) ([]T, error)
	TemplateID(t T) uuid.UUID
	NewItem(instanceID uuid.UUID, t T) I

	// PruneItems removes untouched template items whose template is not in
	// keep. Completed or annotated items are left alone.
	PruneItems(tx *gorm.DB, instanceID uuid.UUID, keep []uuid.UUID) (int64, error)
}

// Outcome describes what a call did.
type Outcome struct {
	InstanceID uuid.UUID
	Window     daywindow.Window
	Created    bool
	Populated  int64
	Pruned     int64
}

// Backfilled reports whether an existing empty instance was filled.
func (o Outcome) Backfilled() bool { return !o.Created && o.Populated > 0 }

type Engine[T any, I any] struct {
	db       *gorm.DB
	domain   Domain[T, I]
	resolver *daywindow.Resolver
	log      *zap.Logger
}

func New[T any, I any](db *gorm.DB, domain Domain[T, I], resolver *daywindow.Resolver, log *zap.Logger) *Engine[T, I] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine[T, I]{
		db:       db,
		domain:   domain,
		resolver: resolver,
		log:      log.With(zap.String("kind", domain.Kind())),
	}
}

func (e *Engine[T, I]) Resolver() *daywindow.Resolver { return e.resolver }

// GetOrMaterialize returns the instance for key, creating it and its template
// items when missing. An existing instance with no items is backfilled. An
// instance that already has items is returned untouched. No eligible
// templates is not an error; the instance is simply empty.
func (e *Engine[T, I]) GetOrMaterialize(ctx context.Context, key Key) (Outcome, error) {
	var out Outcome
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = e.MaterializeTx(tx, key)
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// MaterializeTx is GetOrMaterialize inside a caller-owned transaction, for
// callers that materialize several item sets against one instance.
func (e *Engine[T, I]) MaterializeTx(tx *gorm.DB, key Key) (Outcome, error) {
	w, err := e.prepare(key)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Window: w}

	id, created, err := e.ensureInstance(tx, key, w)
	if err != nil {
		return Outcome{}, err
	}
	out.InstanceID, out.Created = id, created

	n, err := e.domain.CountItems(tx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("count items: %w", err)
	}
	if n > 0 {
		return out, nil
	}

	templates, err := e.domain.Templates(tx, key, w)
	if err != nil {
		return Outcome{}, fmt.Errorf("load templates: %w", err)
	}
	if out.Populated, err = e.insertItems(tx, id, templates); err != nil {
		return Outcome{}, err
	}

	switch {
	case out.Created:
		e.log.Info("materialized instance",
			zap.String("restaurant_id", key.RestaurantID.String()),
			zap.String("date", w.Date),
			zap.String("type", key.Type),
			zap.Int64("items", out.Populated))
	case out.Populated > 0:
		e.log.Warn("backfilled empty instance",
			zap.String("instance_id", id.String()),
			zap.Int64("items", out.Populated))
	}
	return out, nil
}

// Resync brings an existing instance in line with the current templates.
// Missing template items are added; untouched items whose template is no
// longer eligible are removed. Both steps share one transaction.
func (e *Engine[T, I]) Resync(ctx context.Context, key Key) (Outcome, error) {
	var out Outcome
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = e.ResyncTx(tx, key)
		return err
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// ResyncTx is Resync inside a caller-owned transaction.
func (e *Engine[T, I]) ResyncTx(tx *gorm.DB, key Key) (Outcome, error) {
	w, err := e.prepare(key)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Window: w}

	id, created, err := e.ensureInstance(tx, key, w)
	if err != nil {
		return Outcome{}, err
	}
	out.InstanceID, out.Created = id, created

	templates, err := e.domain.Templates(tx, key, w)
	if err != nil {
		return Outcome{}, fmt.Errorf("load templates: %w", err)
	}
	keep := make([]uuid.UUID, 0, len(templates))
	for _, t := range templates {
		keep = append(keep, e.domain.TemplateID(t))
	}
	if out.Pruned, err = e.domain.PruneItems(tx, id, keep); err != nil {
		return Outcome{}, fmt.Errorf("prune items: %w", err)
	}
	if out.Populated, err = e.insertItems(tx, id, templates); err != nil {
		return Outcome{}, err
	}

	e.log.Info("resynced instance",
		zap.String("instance_id", out.InstanceID.String()),
		zap.Int64("added", out.Populated),
		zap.Int64("removed", out.Pruned))
	return out, nil
}

func (e *Engine[T, I]) prepare(key Key) (daywindow.Window, error) {
	if !e.domain.ValidType(key.Type) {
		return daywindow.Window{}, fmt.Errorf("%w: %q", ErrInvalidType, key.Type)
	}
	return e.resolver.Resolve(key.Date)
}

func (e *Engine[T, I]) ensureInstance(tx *gorm.DB, key Key, w daywindow.Window) (uuid.UUID, bool, error) {
	var n int64
	if err := tx.Model(&models.Restaurant{}).
		Where("id = ? AND is_active = ?", key.RestaurantID, true).
		Count(&n).Error; err != nil {
		return uuid.Nil, false, fmt.Errorf("check restaurant: %w", err)
	}
	if n == 0 {
		return uuid.Nil, false, ErrRestaurantNotFound
	}

	id, err := e.domain.FindInstance(tx, key, w)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, fmt.Errorf("find instance: %w", err)
	}

	created, err := e.domain.InsertInstance(tx, key, w)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("insert instance: %w", err)
	}
	// Either our row or the one that beat us to the unique index.
	id, err = e.domain.FindInstance(tx, key, w)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("reload instance: %w", err)
	}
	return id, created, nil
}

func (e *Engine[T, I]) insertItems(tx *gorm.DB, instanceID uuid.UUID, templates []T) (int64, error) {
	if len(templates) == 0 {
		return 0, nil
	}
	items := make([]I, 0, len(templates))
	for _, t := range templates {
		items = append(items, e.domain.NewItem(instanceID, t))
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&items)
	if res.Error != nil {
		return 0, fmt.Errorf("insert items: %w", res.Error)
	}
	return res.RowsAffected, nil
}
